// Package macro implements the eleven standard macros of spec.md §4.5.
// Each is a value.MacroHandler: it receives the argument expression
// unevaluated, plus the calling Context, exactly like the teacher's
// builtins receive pre-evaluated arguments in
// github.com/funvibe/funxy/internal/evaluator/builtins.go — the
// difference (unevaluated AST in, not values) is spec-mandated, but
// the registration pattern (a name -> handler table installed into
// the root context) is the teacher's own.
package macro

import (
	"math"
	"math/cmplx"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/eval"
	"github.com/braidql/braid/internal/kernel"
	"github.com/braidql/braid/internal/types"
	"github.com/braidql/braid/internal/value"
)

// All returns the eleven standard macros as value.MacroVal bindings,
// keyed by name, ready to be installed into a root Context.
func All() map[string]value.MacroVal {
	return map[string]value.MacroVal{
		"sup":      {Name: "sup", Handler: Sup},
		"phf":      {Name: "phf", Handler: Phf},
		"gate":     {Name: "gate", Handler: Gate},
		"inv":      {Name: "inv", Handler: Inv},
		"len":      {Name: "len", Handler: Len},
		"slice":    {Name: "slice", Handler: Slice},
		"weighted": {Name: "weighted", Handler: Weighted},
		"fourier":  {Name: "fourier", Handler: Fourier},
		"repeat":   {Name: "repeat", Handler: Repeat},
		"measure":  {Name: "measure", Handler: Measure},
		"import":   {Name: "import", Handler: Import},
	}
}

// Sup: tuple argument -> create_sup of each element's built state;
// non-tuple argument just builds its own state. The result is always
// tagged Any — a superposition of differently-typed members has no
// single member type to carry.
func Sup(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	v, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	tv, ok := v.(value.TupleVal)
	if !ok {
		s, err := value.BuildStateUntyped(v)
		if err != nil {
			return nil, err
		}
		return value.StateVal{Amps: s, Typ: types.Any{}}, nil
	}
	states := make([]kernel.State, len(tv.Elems))
	for i, el := range tv.Elems {
		s, err := value.BuildStateUntyped(el)
		if err != nil {
			return nil, err
		}
		states[i] = s
	}
	return value.StateVal{Amps: kernel.CreateSup(states), Typ: types.Any{}}, nil
}

// Phf: if the argument denotes a gate, Gate(negate(g)); else
// State(phase_flip(s), t).
func Phf(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	v, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	if g, ok := eval.BuildGate(v, ctx); ok {
		return value.GateVal{G: kernel.Negate(g)}, nil
	}
	s, t, err := value.BuildStateTyped(v)
	if err != nil {
		return nil, err
	}
	return value.StateVal{Amps: kernel.PhaseFlip(s), Typ: t}, nil
}

// Gate: evaluate the argument, require it be gate-buildable, produce
// a Tuple of its rows as State values.
func Gate(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	v, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	g, ok := eval.BuildGate(v, ctx)
	if !ok {
		return nil, braiderr.New(braiderr.Unbuildable, "gate: argument is not gate-buildable")
	}
	rows := make([]value.Value, len(g))
	for i, row := range g {
		rows[i] = value.StateVal{Amps: row, Typ: types.Any{}}
	}
	return value.TupleVal{Elems: rows}, nil
}

// Inv: Gate(inverse(g)).
func Inv(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	v, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	g, ok := eval.BuildGate(v, ctx)
	if !ok {
		return nil, braiderr.New(braiderr.Unbuildable, "inv: argument is not gate-buildable")
	}
	return value.GateVal{G: kernel.Inverse(g)}, nil
}

// Len: state or gate length.
func Len(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	v, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	if g, ok := eval.BuildGate(v, ctx); ok {
		return value.Index{N: len(g)}, nil
	}
	s, _, err := value.BuildStateTyped(v)
	if err != nil {
		return nil, err
	}
	return value.Index{N: len(s)}, nil
}

// Slice: (state, size) or (state, (a, b)) -> State from a..b of the
// source, zero-filling beyond the end.
func Slice(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	tv, ok := argVal.(value.TupleVal)
	if !ok || len(tv.Elems) != 2 {
		return nil, braiderr.New(braiderr.ArityMismatch, "slice: expected (state, range)")
	}
	s, _, err := value.BuildStateTyped(tv.Elems[0])
	if err != nil {
		return nil, err
	}
	a, b, err := sliceRange(tv.Elems[1])
	if err != nil {
		return nil, err
	}
	out := make(kernel.State, b-a)
	for i := a; i < b; i++ {
		if i >= 0 && i < len(s) {
			out[i-a] = s[i]
		}
	}
	return value.StateVal{Amps: out, Typ: types.Any{}}, nil
}

func sliceRange(v value.Value) (int, int, error) {
	switch vv := v.(type) {
	case value.Index:
		return 0, vv.N, nil
	case value.TupleVal:
		if len(vv.Elems) != 2 {
			return 0, 0, braiderr.New(braiderr.ArityMismatch, "slice: range tuple must have 2 elements")
		}
		ai, aok := vv.Elems[0].(value.Index)
		bi, bok := vv.Elems[1].(value.Index)
		if !aok || !bok {
			return 0, 0, braiderr.New(braiderr.TypeMismatch, "slice: range bounds must be indices")
		}
		if ai.N > bi.N {
			return 0, 0, braiderr.New(braiderr.InvalidSliceRange, "slice: invalid range %d > %d", ai.N, bi.N)
		}
		return ai.N, bi.N, nil
	default:
		return 0, 0, braiderr.New(braiderr.TypeMismatch, "slice: expected a size or (a, b) range")
	}
}

// Weighted: a tuple of non-negative integer literals -> a normalized
// state with amplitude sqrt(w_i)/sqrt(sum(w)).
func Weighted(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	tv, ok := argVal.(value.TupleVal)
	if !ok {
		return nil, braiderr.New(braiderr.TypeMismatch, "weighted: expected a tuple of weights")
	}
	weights := make([]int, len(tv.Elems))
	total := 0
	for i, el := range tv.Elems {
		idx, ok := el.(value.Index)
		if !ok || idx.N < 0 {
			return nil, braiderr.New(braiderr.InvalidWeight, "weighted: weights must be non-negative integer literals")
		}
		weights[i] = idx.N
		total += idx.N
	}
	if total == 0 {
		return nil, braiderr.New(braiderr.InvalidWeight, "weighted: weights sum to zero")
	}
	amps := make(kernel.State, len(weights))
	denom := math.Sqrt(float64(total))
	for i, w := range weights {
		amps[i] = complex64(complex(math.Sqrt(float64(w))/denom, 0))
	}
	return value.StateVal{Amps: amps, Typ: types.Any{}}, nil
}

// Fourier: Index(n), n>0 -> the n-point inverse-DFT matrix with
// entries omega^(ij)/sqrt(n), omega = e^{-2*pi*i/n}.
func Fourier(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	idx, ok := argVal.(value.Index)
	if !ok || idx.N <= 0 {
		return nil, braiderr.New(braiderr.NonPositiveDim, "fourier: expected Index(n) with n > 0")
	}
	n := idx.N
	omega := cmplx.Exp(complex(0, -2*math.Pi/float64(n)))
	sq := math.Sqrt(float64(n))
	rows := make(kernel.Gate, n)
	for i := 0; i < n; i++ {
		row := make(kernel.State, n)
		for j := 0; j < n; j++ {
			row[j] = complex64(cmplx.Pow(omega, complex(float64(i*j), 0)) / complex(sq, 0))
		}
		rows[i] = row
	}
	return value.GateVal{G: rows}, nil
}

// Repeat: (value, n) -> for a gate, broadcast across both axes
// scaling by 1/sqrt(n); for a state, tile n times and divide every
// amplitude by sqrt(n).
func Repeat(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	tv, ok := argVal.(value.TupleVal)
	if !ok || len(tv.Elems) != 2 {
		return nil, braiderr.New(braiderr.ArityMismatch, "repeat: expected (value, n)")
	}
	nIdx, ok := tv.Elems[1].(value.Index)
	if !ok || nIdx.N <= 0 {
		return nil, braiderr.New(braiderr.NonPositiveDim, "repeat: n must be a positive Index")
	}
	n := nIdx.N
	scale := complex64(complex(1/math.Sqrt(float64(n)), 0))
	if g, ok := eval.BuildGate(tv.Elems[0], ctx); ok {
		g = kernel.Rectangularize(g)
		w := kernel.Width(g)
		// Broadcast g across both axes: every row is tiled n times with
		// each entry scaled by 1/sqrt(n), and the widened rows are then
		// repeated n times vertically.
		out := make(kernel.Gate, 0, len(g)*n)
		wide := make(kernel.Gate, len(g))
		for i, row := range g {
			wr := make(kernel.State, w*n)
			for rep := 0; rep < n; rep++ {
				for j, x := range row {
					wr[rep*w+j] = scale * x
				}
			}
			wide[i] = wr
		}
		for rep := 0; rep < n; rep++ {
			out = append(out, wide...)
		}
		return value.GateVal{G: out}, nil
	}
	s, err := value.BuildStateUntyped(tv.Elems[0])
	if err != nil {
		return nil, err
	}
	out := make(kernel.State, len(s)*n)
	for rep := 0; rep < n; rep++ {
		for i, a := range s {
			out[rep*len(s)+i] = scale * a
		}
	}
	// The tiled state's dimension is n times the source's, so the
	// source type no longer describes it.
	return value.StateVal{Amps: out, Typ: types.Any{}}, nil
}

// Measure: Index(measure(build_state(arg))), re-tagged by the source
// type when present.
func Measure(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	s, t, err := value.BuildStateTyped(argVal)
	if err != nil {
		return nil, err
	}
	i := kernel.Measure(s, ctx.RNG)
	if _, isAny := t.(types.Any); isAny {
		return value.Index{N: i}, nil
	}
	return value.FromIndex(t, i)
}

// Import: resolve path relative to the context path (appending a
// default extension if absent), load the source, parse it, evaluate
// it in a fresh stdlib context, and return the resulting value. The
// resolution/evaluation itself is eval.ImportEval; this macro is the
// guest-language surface over it.
func Import(arg ast.Expression, ctx *value.Context) (value.Value, error) {
	argVal, err := eval.EvalExp(arg, ctx)
	if err != nil {
		return nil, err
	}
	sv, ok := argVal.(value.StringVal)
	if !ok {
		return nil, braiderr.New(braiderr.TypeMismatch, "import: expected a string path")
	}
	return eval.ImportEval(ctx, sv.Value)
}
