// Package typecheck implements the advisory static layer of spec.md
// §4.3: EvalType (Pattern -> Type) and InferType (Expression -> Type)
// over a name-to-Type context. It never touches a runtime Value, so
// it can be imported by internal/value without creating a cycle —
// the same separation the teacher keeps between its advisory
// internal/typesystem package and its runtime internal/evaluator
// package (github.com/funvibe/funxy/internal/typesystem).
package typecheck

import (
	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/types"
)

// TypeContext maps bound names to their inferred or declared Type.
// Like value.Context it is copied by value on child creation, so a
// child scope's bindings never leak back to the parent.
type TypeContext struct {
	Names map[string]types.Type
}

func NewTypeContext() *TypeContext {
	return &TypeContext{Names: map[string]types.Type{}}
}

// Child returns a value-copy of tc, per the snapshot-context rule
// (spec.md §3 Invariants / Lifecycles, §9).
func (tc *TypeContext) Child() *TypeContext {
	cp := make(map[string]types.Type, len(tc.Names))
	for k, v := range tc.Names {
		cp[k] = v
	}
	return &TypeContext{Names: cp}
}

func (tc *TypeContext) Set(name string, t types.Type) {
	tc.Names[name] = t
}

func (tc *TypeContext) Lookup(name string) (types.Type, bool) {
	t, ok := tc.Names[name]
	return t, ok
}

// EvalType converts a Pattern written in type position (the RHS of a
// `type` declaration, or a Lambda/AnnoExpr annotation) into a Type
// (spec.md §4.3).
func EvalType(p ast.Pattern) types.Type {
	switch pp := p.(type) {
	case ast.AnyPat:
		return types.Any{}
	case ast.VarPat:
		// A bare name in type position only resolves through the
		// enclosing TypeContext; EvalType alone cannot see bindings,
		// so callers that need name resolution use EvalTypeIn.
		return types.Any{}
	case ast.TuplePat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = EvalType(e)
		}
		return types.Tuple{Elems: elems}
	case ast.ConcatPat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = EvalType(e)
		}
		return types.Concat{Elems: elems}
	case ast.RepeatPat:
		elem := EvalType(pp.Elem)
		elems := make([]types.Type, pp.N)
		for i := range elems {
			elems[i] = elem
		}
		return types.Tuple{Elems: elems}
	case ast.AnnoPat:
		return EvalType(pp.Type)
	default:
		return types.Any{}
	}
}

// EvalTypeIn is EvalType with name resolution against tc, used when a
// type pattern references a previously-declared `data`/`type` name
// (VarPat naming a DataType or type alias).
func EvalTypeIn(p ast.Pattern, tc *TypeContext) types.Type {
	if vp, ok := p.(ast.VarPat); ok {
		if t, ok := tc.Lookup(vp.Name); ok {
			return t
		}
		return types.Any{}
	}
	switch pp := p.(type) {
	case ast.TuplePat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = EvalTypeIn(e, tc)
		}
		return types.Tuple{Elems: elems}
	case ast.ConcatPat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = EvalTypeIn(e, tc)
		}
		return types.Concat{Elems: elems}
	case ast.RepeatPat:
		elem := EvalTypeIn(pp.Elem, tc)
		elems := make([]types.Type, pp.N)
		for i := range elems {
			elems[i] = elem
		}
		return types.Tuple{Elems: elems}
	case ast.AnnoPat:
		return EvalTypeIn(pp.Type, tc)
	default:
		return EvalType(p)
	}
}

// ResolveTypeIn is the strict counterpart of EvalTypeIn used where the
// evaluator commits to a type (a `type` declaration's RHS, an
// expression or pattern annotation): a bare name that resolves to
// nothing raises TypeNotFound instead of degrading to Any, which only
// the advisory inference layer is allowed to do.
func ResolveTypeIn(p ast.Pattern, tc *TypeContext) (types.Type, error) {
	switch pp := p.(type) {
	case ast.VarPat:
		if t, ok := tc.Lookup(pp.Name); ok {
			return t, nil
		}
		return nil, braiderr.New(braiderr.TypeNotFound, "type %q is not declared", pp.Name)
	case ast.TuplePat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			t, err := ResolveTypeIn(e, tc)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.Tuple{Elems: elems}, nil
	case ast.ConcatPat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			t, err := ResolveTypeIn(e, tc)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return types.Concat{Elems: elems}, nil
	case ast.RepeatPat:
		elem, err := ResolveTypeIn(pp.Elem, tc)
		if err != nil {
			return nil, err
		}
		elems := make([]types.Type, pp.N)
		for i := range elems {
			elems[i] = elem
		}
		return types.Tuple{Elems: elems}, nil
	case ast.AnnoPat:
		return ResolveTypeIn(pp.Type, tc)
	default:
		return EvalType(p), nil
	}
}

// InferType infers the Type of an expression without evaluating it,
// per spec.md §4.3, including the extract-lambda special case: when a
// Lambda's body is `Extract(Var(x), cases)` and x is exactly the
// lambda's own parameter name, the parameter's inferred type is the
// join (Either) of every case selector's inferred type rather than
// Any — this lets `gate`/`inv`/composition infer a usable argument
// type for extraction-built functions instead of degrading to Any.
func InferType(e ast.Expression, tc *TypeContext) types.Type {
	switch ee := e.(type) {
	case ast.Index:
		return types.Any{}
	case ast.StringExpr:
		return types.Any{}
	case ast.VarExpr:
		if t, ok := tc.Lookup(ee.Name); ok {
			return t
		}
		return types.Any{}
	case ast.TupleExpr:
		elems := make([]types.Type, len(ee.Elems))
		for i, el := range ee.Elems {
			elems[i] = InferType(el, tc)
		}
		return types.Tuple{Elems: elems}
	case ast.ConcatExpr:
		elems := make([]types.Type, len(ee.Elems))
		for i, el := range ee.Elems {
			elems[i] = InferType(el, tc)
		}
		return types.Concat{Elems: elems}
	case ast.Expand:
		return InferType(ee.Inner, tc)
	case ast.RepeatExpr:
		elem := InferType(ee.Elem, tc)
		elems := make([]types.Type, ee.N)
		for i := range elems {
			elems[i] = elem
		}
		return types.Tuple{Elems: elems}
	case ast.Cond:
		return types.Either(InferType(ee.Then, tc), InferType(ee.Else, tc))
	case ast.Scope:
		child := tc.Child()
		for _, d := range ee.Decls {
			applyDeclType(d, child)
		}
		return InferType(ee.Ret, child)
	case ast.Lambda:
		argType := inferLambdaArgType(ee, tc)
		child := tc.Child()
		bindPatternType(ee.Param, argType, child)
		retType := InferType(ee.Body, child)
		return types.Func{Arg: argType, Ret: retType}
	case ast.Invoke:
		targetType := InferType(ee.Target, tc)
		if ft, ok := targetType.(types.Func); ok {
			return ft.Ret
		}
		return types.Any{}
	case ast.StateExpr:
		return InferType(ee.Inner, tc)
	case ast.PhaseExpr:
		return InferType(ee.Inner, tc)
	case ast.ExtractExpr:
		var joined types.Type = types.Any{}
		first := true
		for _, c := range ee.Cases {
			var result ast.Expression
			switch cc := c.(type) {
			case ast.ExpCase:
				result = cc.Result
			case ast.DefaultCase:
				result = cc.Result
			default:
				continue
			}
			rt := InferType(result, tc)
			if first {
				joined = rt
				first = false
			} else {
				joined = types.Either(joined, rt)
			}
		}
		return joined
	case ast.AnnoExpr:
		return EvalTypeIn(ee.Type, tc)
	default:
		return types.Any{}
	}
}

// inferLambdaArgType implements the special case: body is
// Extract(Var(x), cases) with x the lambda's own parameter, in which
// case the argument type is the join of the selector types. All other
// lambdas take their argument type from the parameter pattern itself
// (its annotation, or Any).
func inferLambdaArgType(l ast.Lambda, tc *TypeContext) types.Type {
	vp, ok := l.Param.(ast.VarPat)
	if !ok {
		return inferPatType(l.Param, tc)
	}
	ext, ok := l.Body.(ast.ExtractExpr)
	if !ok {
		return inferPatType(l.Param, tc)
	}
	av, ok := ext.Arg.(ast.VarExpr)
	if !ok || av.Name != vp.Name {
		return inferPatType(l.Param, tc)
	}
	var joined types.Type = types.Any{}
	first := true
	for _, c := range ext.Cases {
		ec, ok := c.(ast.ExpCase)
		if !ok {
			continue
		}
		st := InferType(ec.Selector, tc)
		if first {
			joined = st
			first = false
		} else {
			joined = types.Either(joined, st)
		}
	}
	return joined
}

// inferPatType derives a type from a parameter pattern's own shape:
// annotations resolve through tc, structure recurses, everything else
// is Any.
func inferPatType(p ast.Pattern, tc *TypeContext) types.Type {
	switch pp := p.(type) {
	case ast.TuplePat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = inferPatType(e, tc)
		}
		return types.Tuple{Elems: elems}
	case ast.ConcatPat:
		elems := make([]types.Type, len(pp.Elems))
		for i, e := range pp.Elems {
			elems[i] = inferPatType(e, tc)
		}
		return types.Concat{Elems: elems}
	case ast.RepeatPat:
		elem := inferPatType(pp.Elem, tc)
		elems := make([]types.Type, pp.N)
		for i := range elems {
			elems[i] = elem
		}
		return types.Tuple{Elems: elems}
	case ast.AnnoPat:
		return EvalTypeIn(pp.Type, tc)
	default:
		return types.Any{}
	}
}

func bindPatternType(p ast.Pattern, t types.Type, tc *TypeContext) {
	switch pp := p.(type) {
	case ast.VarPat:
		tc.Set(pp.Name, t)
	case ast.TuplePat:
		tt, ok := t.(types.Tuple)
		for i, e := range pp.Elems {
			if ok && i < len(tt.Elems) {
				bindPatternType(e, tt.Elems[i], tc)
			} else {
				bindPatternType(e, types.Any{}, tc)
			}
		}
	case ast.ConcatPat:
		ct, ok := t.(types.Concat)
		for i, e := range pp.Elems {
			if ok && i < len(ct.Elems) {
				bindPatternType(e, ct.Elems[i], tc)
			} else {
				bindPatternType(e, types.Any{}, tc)
			}
		}
	case ast.RepeatPat:
		bindPatternType(pp.Elem, types.Any{}, tc)
	case ast.AnnoPat:
		bindPatternType(pp.Inner, EvalTypeIn(pp.Type, tc), tc)
	}
}

func applyDeclType(d ast.Decl, tc *TypeContext) {
	switch dd := d.(type) {
	case ast.LetDecl:
		bindPatternType(dd.Pat, InferType(dd.Value, tc), tc)
	case ast.TypeDecl:
		tc.Set(dd.Name, EvalTypeIn(dd.Pat, tc))
	case ast.DataDecl:
		dt := types.NewDataType(dd.Name, dd.Variants)
		tc.Set(dd.Name, types.Data{DT: dt})
	}
}
