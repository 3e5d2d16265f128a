// Package value implements the runtime value universe of spec.md §3
// (the "Value" sum) together with Context, the snapshot-semantics
// environment described in spec.md §3 Invariants/Lifecycles and §9.
//
// Value and Context are kept in one package, rather than split the
// way spec.md's component table splits "Type module" from
// "Evaluator", because Go's import graph must be acyclic: a Func
// value captures a Context snapshot, a Macro value's handler is
// invoked with a Context, and Assign/Describes/FromIndex (spec.md
// §4.2) both consume and produce Values while also needing
// internal/types's Type. Housing Value+Context+the coercion
// functions together — and keeping internal/types limited to the
// pure, value-free Type representation — breaks the cycle without
// changing any spec semantics. This mirrors how the teacher keeps its
// own Object and Environment in one package
// (github.com/funvibe/funxy/internal/evaluator/object.go,
// environment.go) rather than splitting them across package
// boundaries that would otherwise need to import each other.
package value

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/kernel"
	"github.com/braidql/braid/internal/rng"
	"github.com/braidql/braid/internal/typecheck"
	"github.com/braidql/braid/internal/types"
)

// Value is the closed sum of runtime values (spec.md §3).
type Value interface {
	valueNode()
}

// Index is a bare classical basis index (spec.md §3's "Index").
type Index struct {
	N int
}

func (Index) valueNode() {}

// StringVal is a literal string value, used for resource paths
// passed to the `import` macro and for diagnostic text.
type StringVal struct {
	Value string
}

func (StringVal) valueNode() {}

// DataVal is a classical tagged value of a nominal DataType: an index
// into DT.Variants. DT identity (pointer equality), not the variant
// name string, is what spec.md Invariant 5 requires callers to use.
type DataVal struct {
	DT    *types.DataType
	Index int
}

func (DataVal) valueNode() {}

func (d DataVal) Variant() string {
	if d.Index < 0 || d.Index >= len(d.DT.Variants) {
		return "?"
	}
	return d.DT.Variants[d.Index]
}

// TupleVal is a product of values.
type TupleVal struct {
	Elems []Value
}

func (TupleVal) valueNode() {}

// FuncVal is a closure: the Context snapshot captured at the moment
// the Lambda was evaluated, the parameter pattern, the body, and an
// inferred function Type (spec.md §4.3's InferType result, attached
// at closure-creation time so later Invoke/build_gate dispatch can
// consult it without re-inferring).
type FuncVal struct {
	Captured *Context
	Param    ast.Pattern
	Body     ast.Expression
	FnType   types.Type
}

func (FuncVal) valueNode() {}

// MacroHandler is the signature every standard macro (spec.md §4.5)
// implements: unlike an ordinary FuncVal invocation, a macro receives
// its argument as unevaluated AST plus the calling Context, so it can
// choose whether/how to evaluate it (the standard macros evaluate it
// in the calling Context; `import` then resolves the resulting path
// against ctx.Path).
type MacroHandler func(arg ast.Expression, ctx *Context) (Value, error)

// MacroVal is a registered standard macro.
type MacroVal struct {
	Name    string
	Handler MacroHandler
}

func (MacroVal) valueNode() {}

// StateVal is a quantum state vector tagged with the Type it was
// built against (spec.md §3's "State(amplitudes, type)"), so measure
// can decode its sampled index back into a structured value via
// FromIndex, and Display can name the type.
type StateVal struct {
	Amps kernel.State
	Typ  types.Type
}

func (StateVal) valueNode() {}

// GateVal is an operator over a Hilbert space, spec.md §3's "Gate".
// Unlike StateVal it carries no Type tag: a gate's row count is its
// only shape, and Invoke re-tags the applied result itself.
type GateVal struct {
	G kernel.Gate
}

func (GateVal) valueNode() {}

// Loader resolves an import path to source text; satisfied by
// internal/resource.FileLoader. Declared here (rather than imported
// from internal/resource) so this package never needs to depend on
// net/http or database/sql — Context only needs the capability, not
// its implementation.
type Loader interface {
	Load(path, basePath string) (text string, resolvedPath string, err error)
}

// Parser turns source text into an Expression. spec.md §1 specifies
// this collaborator only by interface ("surface grammar/parser"); no
// concrete implementation is part of this module.
type Parser interface {
	Parse(text string) (ast.Expression, error)
}

// Context is the evaluation environment: bound names, the advisory
// type context, the source path for `import` resolution, the output
// sink for `print`, the PRNG source for `measure`, and the
// Loader/Parser/NewStdlib hooks the `import` macro needs. Child
// creates a value-copy: mutating a child via Set never affects the
// parent, and a FuncVal captures a Context snapshot by storing a
// pointer to one such copy taken at Lambda-evaluation time (spec.md §3
// Invariants/Lifecycles, §9's resolved Open Question).
type Context struct {
	Path   string
	Values map[string]Value
	Types  *typecheck.TypeContext
	Out    io.Writer
	RNG    rng.Source

	// Tag identifies this Context snapshot for diagnostics only (e.g.
	// braiderr.ResourceLoad messages naming which import chain
	// produced a failing fresh context). It plays no role in lookup,
	// Child, or equality — Contexts have no notion of equality at all.
	Tag uuid.UUID

	Loader Loader
	Parser Parser
	// NewStdlib builds a fresh stdlib-populated Context rooted at
	// path, used by the `import` macro (spec.md §4.5: "evaluate in a
	// fresh stdlib context"). Set by internal/prelude at bootstrap
	// time, since value cannot import prelude without a cycle
	// (prelude registers macros that live in internal/macro, which
	// imports value).
	NewStdlib func(path string) *Context
}

// NewRootContext builds the root Context used to bootstrap the
// prelude (spec.md §6).
func NewRootContext(path string, out io.Writer, src rng.Source) *Context {
	return &Context{
		Path:   path,
		Values: map[string]Value{},
		Types:  typecheck.NewTypeContext(),
		Out:    out,
		RNG:    src,
		Tag:    uuid.New(),
	}
}

// Child returns a deep value-copy of ctx: a new Values map and a new
// TypeContext, both seeded with ctx's current bindings. Further
// mutation of either copy via Set or Types.Set never reaches ctx.
func (ctx *Context) Child() *Context {
	vals := make(map[string]Value, len(ctx.Values))
	for k, v := range ctx.Values {
		vals[k] = v
	}
	return &Context{
		Path:      ctx.Path,
		Values:    vals,
		Types:     ctx.Types.Child(),
		Out:       ctx.Out,
		RNG:       ctx.RNG,
		Tag:       uuid.New(),
		Loader:    ctx.Loader,
		Parser:    ctx.Parser,
		NewStdlib: ctx.NewStdlib,
	}
}

// Get looks up name in ctx's own Values map. There is no outer-chain
// walk: a Context is always fully self-contained (spec.md §9).
func (ctx *Context) Get(name string) (Value, bool) {
	v, ok := ctx.Values[name]
	return v, ok
}

// Set mutates ctx in place, binding name to v. Scope evaluation relies
// on this mutating the *same* child Context across successive
// declarations, so a later declaration sees the earlier ones. A
// FuncVal's snapshot is copied when its Lambda is evaluated, before a
// `let f = ...` binds f, so a lambda does not see its own name.
func (ctx *Context) Set(name string, v Value) {
	ctx.Values[name] = v
}

// Display renders v in the stable, test-asserted format of spec.md §6.
func Display(v Value) string {
	switch vv := v.(type) {
	case Index:
		return fmt.Sprintf("%d", vv.N)
	case StringVal:
		return fmt.Sprintf("%q", vv.Value)
	case DataVal:
		return vv.Variant()
	case TupleVal:
		return displayList(vv.Elems)
	case FuncVal:
		return "fn" + vv.FnType.String()
	case MacroVal:
		return "fn<" + vv.Name + ">"
	case StateVal:
		s := displayAmps(vv.Amps)
		if _, isAny := vv.Typ.(types.Any); !isAny && vv.Typ != nil {
			s += ": " + vv.Typ.String()
		}
		return s
	case GateVal:
		return displayGate(vv.G)
	default:
		return "<?>"
	}
}

func displayList(elems []Value) string {
	s := "("
	for i, e := range elems {
		if i > 0 {
			s += ", "
		}
		s += Display(e)
	}
	return s + ")"
}

func displayAmps(amps kernel.State) string {
	s := "["
	for i, a := range amps {
		if i > 0 {
			s += ", "
		}
		s += formatAmp(a)
	}
	return s + "]"
}

func formatAmp(a complex64) string {
	re, im := float64(real(a)), float64(imag(a))
	if im == 0 {
		return fmt.Sprintf("%.4f", re)
	}
	return fmt.Sprintf("%.4f%+.4fi", re, im)
}

func displayGate(g kernel.Gate) string {
	s := "["
	for i, row := range g {
		if i > 0 {
			s += ", "
		}
		s += displayAmps(row)
	}
	return s + "]"
}
