package ast

// Expression is the closed sum of expression forms (spec.md §3).
type Expression interface {
	exprNode()
}

// Index is a non-negative integer literal.
type Index struct {
	N int
}

func (Index) exprNode() {}

// StringExpr is a string literal.
type StringExpr struct {
	Value string
}

func (StringExpr) exprNode() {}

// VarExpr looks up an identifier in the current Context.
type VarExpr struct {
	Name string
}

func (VarExpr) exprNode() {}

// Scope introduces a child context, applies Decls in source order, and
// evaluates Ret in that child context.
type Scope struct {
	Decls []Decl
	Ret   Expression
}

func (Scope) exprNode() {}

// TupleExpr builds a Tuple value, splicing Expand children.
type TupleExpr struct {
	Elems []Expression
}

func (TupleExpr) exprNode() {}

// ConcatExpr is the tensor-concatenation form (spec.md §4.4).
type ConcatExpr struct {
	Elems []Expression
}

func (ConcatExpr) exprNode() {}

// Expand is only legal directly inside a Tuple/Concat/argument list.
type Expand struct {
	Inner Expression
}

func (Expand) exprNode() {}

// RepeatExpr evaluates Inner once and wraps it in a Tuple of N copies.
type RepeatExpr struct {
	N    int
	Elem Expression
}

func (RepeatExpr) exprNode() {}

// Cond is the conditional expression; Else may be nil only if the
// surface grammar permits it (the core always requires both branches
// once desugared, per spec.md §4.4's Cond row).
type Cond struct {
	Test Expression
	Then Expression
	Else Expression
}

func (Cond) exprNode() {}

// Lambda creates a Func closure over the defining Context.
type Lambda struct {
	Param Pattern
	Body  Expression
}

func (Lambda) exprNode() {}

// Invoke applies Target to Arg; dispatch depends on Target's runtime
// shape (spec.md §4.4 "Invocation dispatch").
type Invoke struct {
	Target Expression
	Arg    Expression
}

func (Invoke) exprNode() {}

// StateExpr coerces Inner's value to an amplitude vector.
type StateExpr struct {
	Inner Expression
}

func (StateExpr) exprNode() {}

// PhaseExpr rotates Inner's amplitudes by Value, or raises Inner (when
// it denotes a Gate) to the fractional power Value.
type PhaseExpr struct {
	Value Phase
	Inner Expression
}

func (PhaseExpr) exprNode() {}

// ExtractExpr builds a gate from Cases and applies it to Arg's state.
type ExtractExpr struct {
	Arg   Expression
	Cases []Case
}

func (ExtractExpr) exprNode() {}

// AnnoExpr coerces Inner's value to the type denoted by Type.
type AnnoExpr struct {
	Inner Expression
	Type  Pattern
}

func (AnnoExpr) exprNode() {}

// Case is one row of an Extract case table: either a selector/result
// pair or a Default filler (spec.md §3, §4.4.1).
type Case interface {
	caseNode()
}

// ExpCase pairs a Selector expression with a Result expression.
type ExpCase struct {
	Selector Expression
	Result   Expression
}

func (ExpCase) caseNode() {}

// DefaultCase fills every column with zero probability mass after the
// explicit cases are processed.
type DefaultCase struct {
	Result Expression
}

func (DefaultCase) caseNode() {}
