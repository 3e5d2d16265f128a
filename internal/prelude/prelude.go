// Package prelude bootstraps the fixed snippet of spec.md §6 directly
// via AST constructors, since no parser is part of this module (§1
// "surface grammar/parser" is specified only by interface):
//
//	data Bool = F | T
//	data Axis = X | Y | Z
//	let ((^), (~), (#)) = (sup, phf, measure)
//	fn (>>)(x, f) = f(x)
//	fn (<<)(f, x) = f(x)
//	fn (.)(f, g)(a) = g(f(a))
//	fn (..)(r)(s) = slice(s, r)
//
// Grounded on the teacher's own prelude-construction style
// (github.com/funvibe/funxy/internal/evaluator/evaluator.go's
// NewEnvironment, which pre-populates a handful of builtin bindings
// before the guest program runs) generalized from "register a few
// builtins" to "construct and evaluate a fixed declaration list",
// since spec.md's prelude is itself written in the guest language.
package prelude

import (
	"io"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/eval"
	"github.com/braidql/braid/internal/macro"
	"github.com/braidql/braid/internal/rng"
	"github.com/braidql/braid/internal/value"
)

// Decls returns the prelude's declaration list as AST, in source
// order.
func Decls() []ast.Decl {
	return []ast.Decl{
		ast.DataDecl{Name: "Bool", Variants: []string{"F", "T"}},
		ast.DataDecl{Name: "Axis", Variants: []string{"X", "Y", "Z"}},
		sugarOperatorsLet(),
		fnDecl(">>", []string{"x", "f"}, ast.Invoke{
			Target: ast.VarExpr{Name: "f"}, Arg: ast.VarExpr{Name: "x"},
		}),
		fnDecl("<<", []string{"f", "x"}, ast.Invoke{
			Target: ast.VarExpr{Name: "f"}, Arg: ast.VarExpr{Name: "x"},
		}),
		composeDecl(),
		sliceSugarDecl(),
	}
}

// sugarOperatorsLet builds `let ((^), (~), (#)) = (sup, phf, measure)`.
func sugarOperatorsLet() ast.Decl {
	return ast.LetDecl{
		Pat: ast.TuplePat{Elems: []ast.Pattern{
			ast.VarPat{Name: "^"},
			ast.VarPat{Name: "~"},
			ast.VarPat{Name: "#"},
		}},
		Value: ast.TupleExpr{Elems: []ast.Expression{
			ast.VarExpr{Name: "sup"},
			ast.VarExpr{Name: "phf"},
			ast.VarExpr{Name: "measure"},
		}},
	}
}

// fnDecl builds `let name = \(p0, p1, ...) -> body`: the names of one
// `fn` parameter list form a single tuple pattern, the same shape
// composeDecl gives `(f, g)`, since a multi-argument call passes its
// arguments as one tuple.
func fnDecl(name string, params []string, body ast.Expression) ast.Decl {
	pats := make([]ast.Pattern, len(params))
	for i, p := range params {
		pats[i] = ast.VarPat{Name: p}
	}
	expr := ast.Lambda{Param: ast.TuplePat{Elems: pats}, Body: body}
	return ast.LetDecl{Pat: ast.VarPat{Name: name}, Value: expr}
}

// composeDecl builds `fn (.)(f, g)(a) = g(f(a))`.
func composeDecl() ast.Decl {
	inner := ast.Invoke{
		Target: ast.VarExpr{Name: "g"},
		Arg:    ast.Invoke{Target: ast.VarExpr{Name: "f"}, Arg: ast.VarExpr{Name: "a"}},
	}
	curried := ast.Lambda{Param: ast.VarPat{Name: "a"}, Body: inner}
	outer := ast.Lambda{
		Param: ast.TuplePat{Elems: []ast.Pattern{ast.VarPat{Name: "f"}, ast.VarPat{Name: "g"}}},
		Body:  curried,
	}
	return ast.LetDecl{Pat: ast.VarPat{Name: "."}, Value: outer}
}

// sliceSugarDecl builds `fn (..)(r)(s) = slice(s, r)`.
func sliceSugarDecl() ast.Decl {
	inner := ast.Invoke{
		Target: ast.VarExpr{Name: "slice"},
		Arg:    ast.TupleExpr{Elems: []ast.Expression{ast.VarExpr{Name: "s"}, ast.VarExpr{Name: "r"}}},
	}
	curried := ast.Lambda{Param: ast.VarPat{Name: "s"}, Body: inner}
	outer := ast.Lambda{Param: ast.VarPat{Name: "r"}, Body: curried}
	return ast.LetDecl{Pat: ast.VarPat{Name: ".."}, Value: outer}
}

// Options configures CreateCtx's collaborators.
type Options struct {
	Out    io.Writer
	RNG    rng.Source
	Loader value.Loader
	Parser value.Parser
}

// CreateCtx constructs a stdlib-populated Context rooted at path and
// evaluates the prelude snippet into it, matching spec.md §6's
// `create_ctx(path) -> Context`.
func CreateCtx(path string, opts Options) (*value.Context, error) {
	ctx := value.NewRootContext(path, opts.Out, opts.RNG)
	ctx.Loader = opts.Loader
	ctx.Parser = opts.Parser
	ctx.NewStdlib = func(p string) *value.Context {
		fresh, err := CreateCtx(p, opts)
		if err != nil {
			// CreateCtx only fails if a prelude declaration itself is
			// malformed, which would be a bug in this package, not a
			// guest-program error; a fresh import context degrading
			// to stdlib-less is safer than propagating a panic here.
			return value.NewRootContext(p, opts.Out, opts.RNG)
		}
		return fresh
	}
	for name, m := range macro.All() {
		ctx.Set(name, m)
	}
	for _, d := range Decls() {
		if err := eval.EvalDecl(d, ctx); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}
