package eval

import (
	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/value"
)

// EvalExpInline is the mutable-context entry point used by REPL-style
// callers (spec.md §6): when e is a Scope, its declarations are
// applied to ctx itself — not a child — so side-effectful bindings
// survive into the caller's next evaluation; any other expression
// evaluates normally. An error from a declaration (including a failed
// Assert) terminates the call with ctx holding every binding applied
// before the failure.
func EvalExpInline(e ast.Expression, ctx *value.Context) (value.Value, error) {
	scope, ok := e.(ast.Scope)
	if !ok {
		return EvalExp(e, ctx)
	}
	for _, d := range scope.Decls {
		if err := EvalDecl(d, ctx); err != nil {
			return nil, err
		}
	}
	return EvalExp(scope.Ret, ctx)
}

// Module is the result of resolving an import without evaluating it:
// the resolved path, the parsed body, and the fresh stdlib Context the
// body would evaluate in (spec.md §6's `ctx.import(path)`).
type Module struct {
	Path string
	Body ast.Expression
	Ctx  *value.Context
}

// Import resolves path against ctx (relative to ctx.Path, default
// extension applied, scheme-prefixed paths fetched externally), parses
// the loaded source, and pairs it with a fresh stdlib Context rooted
// at the resolved path. The body is not evaluated; ImportEval is the
// evaluating form.
func Import(ctx *value.Context, path string) (*Module, error) {
	if ctx.Loader == nil || ctx.Parser == nil || ctx.NewStdlib == nil {
		return nil, braiderr.New(braiderr.ResourceLoad,
			"import: no resource loader/parser wired into this context").WithContext(ctx.Tag)
	}
	text, resolved, err := ctx.Loader.Load(path, ctx.Path)
	if err != nil {
		if be, ok := err.(*braiderr.Error); ok {
			return nil, be.WithContext(ctx.Tag)
		}
		return nil, err
	}
	body, err := ctx.Parser.Parse(text)
	if err != nil {
		return nil, (&braiderr.Error{Kind: braiderr.Parse, Message: err.Error()}).WithPath(resolved).WithContext(ctx.Tag)
	}
	return &Module{Path: resolved, Body: body, Ctx: ctx.NewStdlib(resolved)}, nil
}

// ImportEval resolves path like Import and evaluates the module body
// in its fresh stdlib Context, returning the resulting value (spec.md
// §6's `ctx.import_eval(path)`; the `import` macro is this operation
// behind a string-argument check).
func ImportEval(ctx *value.Context, path string) (value.Value, error) {
	m, err := Import(ctx, path)
	if err != nil {
		return nil, err
	}
	return EvalExpInline(m.Body, m.Ctx)
}
