// Package ast defines the expression/pattern/declaration AST that the
// evaluator walks (spec.md §3). The concrete surface grammar and parser
// are out of scope (spec.md §1) — programs in this repo's tests and its
// `cmd/braid` entry point are built directly via these constructors,
// the same way the teacher repo's `internal/ast` nodes are built by its
// parser (github.com/funvibe/funxy/internal/ast/ast_core.go) and then
// walked without further translation.
package ast

// Pattern is the closed sum of pattern/type-expression forms (spec.md
// §3). TypeExpr is syntactically a Pattern reused as a type form, so
// there is no separate TypeExpr type.
type Pattern interface {
	patternNode()
}

// AnyPat is the wildcard pattern `_`.
type AnyPat struct{}

func (AnyPat) patternNode() {}

// VarPat binds the matched value to Name.
type VarPat struct {
	Name string
}

func (VarPat) patternNode() {}

// TuplePat destructures a Tuple value componentwise.
type TuplePat struct {
	Elems []Pattern
}

func (TuplePat) patternNode() {}

// ConcatPat is the pattern-level counterpart of Concat expressions.
type ConcatPat struct {
	Elems []Pattern
}

func (ConcatPat) patternNode() {}

// RepeatPat matches N repetitions of Elem (mirrors RepeatExpr).
type RepeatPat struct {
	N    int
	Elem Pattern
}

func (RepeatPat) patternNode() {}

// AnnoPat annotates Inner with a type expression (itself a Pattern).
type AnnoPat struct {
	Inner Pattern
	Type  Pattern
}

func (AnnoPat) patternNode() {}
