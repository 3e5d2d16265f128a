// Package eval implements the tree-walking evaluator of spec.md §4.4:
// EvalExp, EvalDecl, AssignPat, IterateVal, BuildGate,
// CreateExtractGate, and Invoke dispatch. It is the central component
// of the module (spec.md's component table gives it the largest
// share), grounded on the teacher's own evaluator.go
// (github.com/funvibe/funxy/internal/evaluator/evaluator.go), adapted
// from the teacher's tree-walking-with-sentinel-errors style to an
// explicit (Value, error) return convention (see
// internal/braiderr.Error and SPEC_FULL.md §3).
package eval

import (
	"fmt"
	"math"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/kernel"
	"github.com/braidql/braid/internal/typecheck"
	"github.com/braidql/braid/internal/types"
	"github.com/braidql/braid/internal/value"
)

// EvalExp evaluates e in ctx, producing a Value (spec.md §4.4).
func EvalExp(e ast.Expression, ctx *value.Context) (value.Value, error) {
	switch ee := e.(type) {
	case ast.Index:
		return value.Index{N: ee.N}, nil
	case ast.StringExpr:
		return value.StringVal{Value: ee.Value}, nil
	case ast.VarExpr:
		v, ok := ctx.Get(ee.Name)
		if !ok {
			return nil, braiderr.New(braiderr.UnboundName, "unbound name %q", ee.Name)
		}
		return v, nil
	case ast.Scope:
		child := ctx.Child()
		for _, d := range ee.Decls {
			if err := EvalDecl(d, child); err != nil {
				return nil, err
			}
		}
		return EvalExp(ee.Ret, child)
	case ast.Expand:
		return nil, braiderr.New(braiderr.ExpandOutsideCtx, "expand is only legal inside a tuple, concat, or argument list")
	case ast.TupleExpr:
		elems, err := evalSplicedList(ee.Elems, ctx)
		if err != nil {
			return nil, err
		}
		return value.TupleVal{Elems: elems}, nil
	case ast.ConcatExpr:
		return evalConcat(ee, ctx)
	case ast.RepeatExpr:
		v, err := EvalExp(ee.Elem, ctx)
		if err != nil {
			return nil, err
		}
		elems := make([]value.Value, ee.N)
		for i := range elems {
			elems[i] = v
		}
		return value.TupleVal{Elems: elems}, nil
	case ast.Cond:
		cv, err := EvalExp(ee.Test, ctx)
		if err != nil {
			return nil, err
		}
		b, ok := buildBool(cv)
		if !ok {
			return nil, braiderr.New(braiderr.NonBoolean, "condition does not denote a boolean")
		}
		if b {
			return EvalExp(ee.Then, ctx)
		}
		return EvalExp(ee.Else, ctx)
	case ast.Lambda:
		return evalLambda(ee, ctx), nil
	case ast.Invoke:
		return evalInvoke(ee, ctx)
	case ast.StateExpr:
		v, err := EvalExp(ee.Inner, ctx)
		if err != nil {
			return nil, err
		}
		s, t, err := value.BuildStateTyped(v)
		if err != nil {
			return nil, err
		}
		return value.StateVal{Amps: s, Typ: t}, nil
	case ast.PhaseExpr:
		return evalPhase(ee, ctx)
	case ast.ExtractExpr:
		return evalExtract(ee, ctx)
	case ast.AnnoExpr:
		v, err := EvalExp(ee.Inner, ctx)
		if err != nil {
			return nil, err
		}
		t, err := typecheck.ResolveTypeIn(ee.Type, ctx.Types)
		if err != nil {
			return nil, err
		}
		return value.Assign(t, v)
	default:
		return nil, braiderr.New(braiderr.Unimplemented, "unhandled expression form %T", e)
	}
}

func evalSplicedList(exprs []ast.Expression, ctx *value.Context) ([]value.Value, error) {
	var out []value.Value
	for _, e := range exprs {
		if exp, ok := e.(ast.Expand); ok {
			inner, err := EvalExp(exp.Inner, ctx)
			if err != nil {
				return nil, err
			}
			spliced, err := IterateVal(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, spliced...)
			continue
		}
		v, err := EvalExp(e, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if out == nil {
		out = []value.Value{}
	}
	return out, nil
}

// IterateVal produces the sequence of values an Expand splices in
// (spec.md §4.4.4).
func IterateVal(v value.Value) ([]value.Value, error) {
	switch vv := v.(type) {
	case value.Index:
		out := make([]value.Value, vv.N)
		for i := range out {
			out[i] = value.Index{N: i}
		}
		return out, nil
	case value.TupleVal:
		return vv.Elems, nil
	default:
		return nil, braiderr.New(braiderr.NotIterable, "value is not iterable")
	}
}

func evalConcat(ee ast.ConcatExpr, ctx *value.Context) (value.Value, error) {
	vals, err := evalSplicedList(ee.Elems, ctx)
	if err != nil {
		return nil, err
	}
	if len(vals) == 1 {
		if g, ok := BuildGate(vals[0], ctx); ok {
			return value.GateVal{G: g}, nil
		}
	}
	scale := 1.0
	if n := len(vals); n > 0 {
		scale = 1 / math.Sqrt(float64(n))
	}
	var amps kernel.State
	childTypes := make([]types.Type, 0, len(vals))
	for _, v := range vals {
		s, t, err := value.BuildStateTyped(v)
		if err != nil {
			return nil, err
		}
		scaled := make(kernel.State, len(s))
		for i, a := range s {
			scaled[i] = complex64(complex(scale, 0)) * a
		}
		amps = append(amps, scaled...)
		childTypes = append(childTypes, t)
	}
	return value.StateVal{Amps: amps, Typ: types.Concat{Elems: childTypes}}, nil
}

func evalLambda(l ast.Lambda, ctx *value.Context) value.Value {
	snapshot := ctx.Child()
	fnType := typecheck.InferType(l, ctx.Types)
	return value.FuncVal{Captured: snapshot, Param: l.Param, Body: l.Body, FnType: fnType}
}

func evalInvoke(iv ast.Invoke, ctx *value.Context) (value.Value, error) {
	target, err := EvalExp(iv.Target, ctx)
	if err != nil {
		return nil, err
	}
	switch fv := target.(type) {
	case value.FuncVal:
		argVal, err := evalArg(iv.Arg, ctx)
		if err != nil {
			return nil, err
		}
		callCtx := fv.Captured.Child()
		if err := AssignPat(fv.Param, argVal, callCtx); err != nil {
			return nil, err
		}
		return EvalExp(fv.Body, callCtx)
	case value.MacroVal:
		return fv.Handler(iv.Arg, ctx)
	case value.GateVal:
		argVal, err := evalArg(iv.Arg, ctx)
		if err != nil {
			return nil, err
		}
		s, err := value.BuildStateUntyped(argVal)
		if err != nil {
			return nil, err
		}
		return value.StateVal{Amps: kernel.Extract(s, fv.G), Typ: types.Any{}}, nil
	default:
		if g, ok := BuildGate(target, ctx); ok {
			argVal, err := evalArg(iv.Arg, ctx)
			if err != nil {
				return nil, err
			}
			s, err := value.BuildStateUntyped(argVal)
			if err != nil {
				return nil, err
			}
			return value.StateVal{Amps: kernel.Extract(s, g), Typ: types.Any{}}, nil
		}
		return nil, braiderr.New(braiderr.NotCallable, "value is not callable")
	}
}

// evalArg evaluates an invocation argument; an Expand here splices
// into the (single) argument position as a tuple of the iterated
// values, since an argument list is one of Expand's legal contexts.
// Macro targets never come through here — they receive the unevaluated
// argument expression as-is.
func evalArg(e ast.Expression, ctx *value.Context) (value.Value, error) {
	exp, ok := e.(ast.Expand)
	if !ok {
		return EvalExp(e, ctx)
	}
	inner, err := EvalExp(exp.Inner, ctx)
	if err != nil {
		return nil, err
	}
	spliced, err := IterateVal(inner)
	if err != nil {
		return nil, err
	}
	return value.TupleVal{Elems: spliced}, nil
}

func evalPhase(pe ast.PhaseExpr, ctx *value.Context) (value.Value, error) {
	v, err := EvalExp(pe.Inner, ctx)
	if err != nil {
		return nil, err
	}
	phi := pe.Value.Complex128()
	if g, ok := BuildGate(v, ctx); ok {
		return value.GateVal{G: kernel.Power(g, phi)}, nil
	}
	s, t, err := value.BuildStateTyped(v)
	if err != nil {
		return nil, err
	}
	return value.StateVal{Amps: kernel.Phase(s, phi), Typ: t}, nil
}

func evalExtract(ee ast.ExtractExpr, ctx *value.Context) (value.Value, error) {
	argVal, err := EvalExp(ee.Arg, ctx)
	if err != nil {
		return nil, err
	}
	s, err := value.BuildStateUntyped(argVal)
	if err != nil {
		return nil, err
	}
	g, err := CreateExtractGate(ee.Cases, len(s), ctx)
	if err != nil {
		return nil, err
	}
	return value.StateVal{Amps: kernel.Extract(s, g), Typ: types.Any{}}, nil
}

// buildBool recognizes a value of any two-variant data type, such as
// the prelude's Bool (F=0, T=1), or a bare Index(0|1), matching the teacher's "truthiness of the result"
// pattern (internal/evaluator/evaluator.go's evalIfExpression) while
// keeping Bool as an ordinary nominal DataType rather than a
// privileged builtin, per spec.md's prelude design (§6).
func buildBool(v value.Value) (bool, bool) {
	switch vv := v.(type) {
	case value.Index:
		switch vv.N {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return false, false
	case value.DataVal:
		if len(vv.DT.Variants) != 2 {
			return false, false
		}
		return vv.Index == 1, true
	default:
		return false, false
	}
}

// BuildGate produces the Gate a value denotes, if any (spec.md §4.4
// "build_gate"). It returns ok=false rather than an error because
// several call sites (Invoke dispatch, Concat-of-one, Phase) use it
// purely as a type test before falling back to state-based handling.
func BuildGate(v value.Value, ctx *value.Context) (kernel.Gate, bool) {
	switch vv := v.(type) {
	case value.GateVal:
		return vv.G, true
	case value.TupleVal:
		acc := kernel.Gate{kernel.GetState(0)}
		for _, el := range vv.Elems {
			g, ok := BuildGate(el, ctx)
			if !ok {
				return nil, false
			}
			acc = kernel.CombineGates(acc, g)
		}
		return acc, true
	case value.FuncVal:
		ext, ok := vv.Body.(ast.ExtractExpr)
		if !ok {
			return nil, false
		}
		g, err := CreateExtractGate(ext.Cases, 0, vv.Captured)
		if err != nil {
			return nil, false
		}
		return g, true
	default:
		return nil, false
	}
}

// CreateExtractGate implements spec.md §4.4.1, the central algorithm:
// cases are consumed in source order, Exp cases accumulate into a
// column via linear combination, Default only fills columns with zero
// total probability mass so far, and the whole matrix is
// rectangularized at the end.
func CreateExtractGate(cases []ast.Case, minInputSize int, ctx *value.Context) (kernel.Gate, error) {
	var dims kernel.Gate
	ensureLen := func(n int) {
		for len(dims) < n {
			dims = append(dims, kernel.State{})
		}
	}
	ensureLen(minInputSize)
	for _, c := range cases {
		switch cc := c.(type) {
		case ast.ExpCase:
			sv, err := EvalExp(cc.Selector, ctx)
			if err != nil {
				return nil, err
			}
			s, err := value.BuildStateUntyped(sv)
			if err != nil {
				return nil, err
			}
			rv, err := EvalExp(cc.Result, ctx)
			if err != nil {
				return nil, err
			}
			r, err := value.BuildStateUntyped(rv)
			if err != nil {
				return nil, err
			}
			ensureLen(len(s))
			for i, si := range s {
				if si == 0 {
					continue
				}
				l := len(r)
				if len(dims[i]) > l {
					l = len(dims[i])
				}
				dims[i] = addScaled(kernel.Pad(dims[i], l), kernel.Pad(r, l), si)
			}
		case ast.DefaultCase:
			rv, err := EvalExp(cc.Result, ctx)
			if err != nil {
				return nil, err
			}
			r, err := value.BuildStateUntyped(rv)
			if err != nil {
				return nil, err
			}
			for i := range dims {
				if kernel.ProbSum(dims[i]) == 0 {
					dims[i] = r
				}
			}
		default:
			return nil, braiderr.New(braiderr.Unimplemented, "unhandled case form %T", c)
		}
	}
	return kernel.Rectangularize(dims), nil
}

func addScaled(a, b kernel.State, scale complex64) kernel.State {
	out := make(kernel.State, len(a))
	for i := range a {
		out[i] = a[i] + scale*b[i]
	}
	return out
}

// AssignPat implements spec.md §4.4.3: structural destructuring of a
// value against a pattern, binding names into ctx.
func AssignPat(p ast.Pattern, v value.Value, ctx *value.Context) error {
	switch pp := p.(type) {
	case ast.AnyPat:
		return nil
	case ast.VarPat:
		ctx.Set(pp.Name, v)
		return nil
	case ast.TuplePat:
		tv, ok := v.(value.TupleVal)
		if !ok || len(tv.Elems) != len(pp.Elems) {
			return braiderr.New(braiderr.PatternMismatch, "tuple pattern arity mismatch")
		}
		for i, sub := range pp.Elems {
			if err := AssignPat(sub, tv.Elems[i], ctx); err != nil {
				return err
			}
		}
		return nil
	case ast.ConcatPat:
		sv, ok := v.(value.StateVal)
		if !ok {
			return braiderr.New(braiderr.PatternMismatch, "concat pattern requires a State value")
		}
		ct, ok := sv.Typ.(types.Concat)
		if !ok || len(ct.Elems) != len(pp.Elems) {
			return braiderr.New(braiderr.PatternMismatch, "concat pattern arity mismatch")
		}
		offset := 0
		for i, sub := range pp.Elems {
			size, known := types.Size(ct.Elems[i])
			if !known {
				return braiderr.New(braiderr.PatternMismatch, "cannot destructure a concat part of unknown size")
			}
			part := kernel.Pad(sv.Amps[minInt(offset, len(sv.Amps)):minInt(offset+size, len(sv.Amps))], size)
			if err := AssignPat(sub, value.StateVal{Amps: part, Typ: ct.Elems[i]}, ctx); err != nil {
				return err
			}
			offset += size
		}
		return nil
	case ast.RepeatPat:
		tv, ok := v.(value.TupleVal)
		if !ok || len(tv.Elems) != pp.N {
			return braiderr.New(braiderr.PatternMismatch, "repeat pattern arity mismatch")
		}
		for _, el := range tv.Elems {
			if err := AssignPat(pp.Elem, el, ctx); err != nil {
				return err
			}
		}
		return nil
	case ast.AnnoPat:
		t, err := typecheck.ResolveTypeIn(pp.Type, ctx.Types)
		if err != nil {
			return err
		}
		coerced, err := value.Assign(t, v)
		if err != nil {
			return err
		}
		return AssignPat(pp.Inner, coerced, ctx)
	default:
		return braiderr.New(braiderr.PatternMismatch, "unhandled pattern form %T", p)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// EvalDecl implements spec.md §4.4.2.
func EvalDecl(d ast.Decl, ctx *value.Context) error {
	switch dd := d.(type) {
	case ast.LetDecl:
		v, err := EvalExp(dd.Value, ctx)
		if err != nil {
			return err
		}
		return AssignPat(dd.Pat, v, ctx)
	case ast.TypeDecl:
		t, err := typecheck.ResolveTypeIn(dd.Pat, ctx.Types)
		if err != nil {
			return err
		}
		ctx.Types.Set(dd.Name, t)
		return nil
	case ast.DataDecl:
		dt := types.NewDataType(dd.Name, dd.Variants)
		for i, name := range dd.Variants {
			ctx.Set(name, value.DataVal{DT: dt, Index: i})
		}
		ctx.Types.Set(dd.Name, types.Data{DT: dt})
		return nil
	case ast.AssertDecl:
		av, err := EvalExp(dd.A, ctx)
		if err != nil {
			return err
		}
		bv, err := EvalExp(dd.B, ctx)
		if err != nil {
			return err
		}
		ok, err := assertEqual(av, bv)
		if err != nil {
			return err
		}
		if !ok {
			return braiderr.New(braiderr.AssertionFailed, "assertion failed: %s != %s", value.Display(av), value.Display(bv))
		}
		return nil
	case ast.PrintDecl:
		v, err := EvalExp(dd.Value, ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, ":: %s\n", value.Display(v))
		return nil
	case ast.DoDecl:
		_, err := EvalExp(dd.Value, ctx)
		return err
	default:
		return braiderr.New(braiderr.Unimplemented, "unhandled declaration form %T", d)
	}
}

func assertEqual(a, b value.Value) (bool, error) {
	as, aok := a.(value.StateVal)
	bs, bok := b.(value.StateVal)
	if aok && bok {
		l := len(as.Amps)
		if len(bs.Amps) > l {
			l = len(bs.Amps)
		}
		pa := kernel.Pad(as.Amps, l)
		pb := kernel.Pad(bs.Amps, l)
		var sumSq float64
		for i := range pa {
			d := pa[i] - pb[i]
			re, im := float64(real(d)), float64(imag(d))
			sumSq += re*re + im*im
		}
		return sumSq < 1e-5, nil
	}
	return valuesEqual(a, b), nil
}

// valuesEqual is the "strict value equality" spec.md §4.4.2's Assert
// falls back to for any non-State pair.
func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Index:
		bv, ok := b.(value.Index)
		return ok && av.N == bv.N
	case value.StringVal:
		bv, ok := b.(value.StringVal)
		return ok && av.Value == bv.Value
	case value.DataVal:
		bv, ok := b.(value.DataVal)
		return ok && av.DT == bv.DT && av.Index == bv.Index
	case value.TupleVal:
		bv, ok := b.(value.TupleVal)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !valuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
