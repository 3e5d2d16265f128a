package eval_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/eval"
	"github.com/braidql/braid/internal/prelude"
	"github.com/braidql/braid/internal/rng"
	"github.com/braidql/braid/internal/value"
)

func newCtx(t *testing.T, seed uint64) (*value.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	ctx, err := prelude.CreateCtx("test.braid", prelude.Options{
		Out: &buf,
		RNG: rng.NewDeterministic(seed),
	})
	if err != nil {
		t.Fatalf("prelude.CreateCtx: %v", err)
	}
	return ctx, &buf
}

func boolDataDecl() ast.Decl {
	return ast.DataDecl{Name: "Bool", Variants: []string{"F", "T"}}
}

// spec.md §8 scenario 1: data Bool = F | T; let x = T; #x -> Index(1)
// deterministically.
func TestScenario1BasicDataAndMeasure(t *testing.T) {
	ctx, _ := newCtx(t, 1)
	prog := ast.Scope{
		Decls: []ast.Decl{
			boolDataDecl(),
			ast.LetDecl{Pat: ast.VarPat{Name: "x"}, Value: ast.VarExpr{Name: "T"}},
		},
		Ret: ast.Invoke{Target: ast.VarExpr{Name: "#"}, Arg: ast.VarExpr{Name: "x"}},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	// Measure re-tags its result by the source's type (here Bool) rather
	// than collapsing to a bare Index, so a classically-certain T comes
	// back as DataVal{Index: 1}, not Index{N: 1}.
	got, ok := v.(value.DataVal)
	if !ok || got.Index != 1 {
		t.Fatalf("#x = %v, want a Bool DataVal with Index 1", v)
	}
}

// spec.md §8 scenario 2: sup(F, T) is an equal-weighted normalized
// superposition; measuring it many times yields ~50/50 frequencies.
func TestScenario2SuperpositionAndMeasurementDistribution(t *testing.T) {
	ctx, _ := newCtx(t, 2)
	sup := ast.Scope{
		Decls: []ast.Decl{boolDataDecl()},
		Ret: ast.Invoke{
			Target: ast.VarExpr{Name: "sup"},
			Arg:    ast.TupleExpr{Elems: []ast.Expression{ast.VarExpr{Name: "F"}, ast.VarExpr{Name: "T"}}},
		},
	}
	v, err := eval.EvalExp(sup, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv, ok := v.(value.StateVal)
	if !ok || len(sv.Amps) != 2 {
		t.Fatalf("sup(F,T) = %v, want a 2-amplitude State", v)
	}
	want := 1 / math.Sqrt2
	for i, a := range sv.Amps {
		if math.Abs(float64(real(a))-want) > 1e-4 {
			t.Errorf("amplitude %d = %v, want ~%.4f", i, a, want)
		}
	}

	counts := [2]int{}
	for i := 0; i < 10000; i++ {
		measureExpr := ast.Invoke{Target: ast.VarExpr{Name: "#"}, Arg: sup}
		mv, err := eval.EvalExp(measureExpr, ctx)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		// sup's result is tagged Any, so measuring it yields a bare Index.
		counts[mv.(value.Index).N]++
	}
	for i, c := range counts {
		freq := float64(c) / 10000
		if freq < 0.48 || freq > 0.52 {
			t.Errorf("measured outcome %d frequency = %v, want in [0.48, 0.52]", i, freq)
		}
	}
}

// spec.md §8 scenario 3: a classical-NOT extraction gate.
func TestScenario3ClassicalNotExtractGate(t *testing.T) {
	ctx, _ := newCtx(t, 3)
	notLambda := ast.Lambda{
		Param: ast.VarPat{Name: "x"},
		Body: ast.ExtractExpr{
			Arg: ast.VarExpr{Name: "x"},
			Cases: []ast.Case{
				ast.ExpCase{Selector: ast.VarExpr{Name: "F"}, Result: ast.VarExpr{Name: "T"}},
				ast.ExpCase{Selector: ast.VarExpr{Name: "T"}, Result: ast.VarExpr{Name: "F"}},
			},
		},
	}
	prog := ast.Scope{
		Decls: []ast.Decl{
			boolDataDecl(),
			ast.LetDecl{Pat: ast.VarPat{Name: "not"}, Value: notLambda},
		},
		Ret: ast.Invoke{Target: ast.VarExpr{Name: "not"}, Arg: ast.VarExpr{Name: "T"}},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv, ok := v.(value.StateVal)
	if !ok {
		t.Fatalf("not(T) = %v, want a State", v)
	}
	want := []complex64{1, 0}
	if len(sv.Amps) != 2 {
		t.Fatalf("not(T) amplitudes = %v, want length 2", sv.Amps)
	}
	for i := range want {
		if sv.Amps[i] != want[i] {
			t.Fatalf("not(T) = %v, want %v", sv.Amps, want)
		}
	}
}

// spec.md §8 scenario 4: a two-selector Hadamard-like extract gate;
// h(h(F)) collapses back toward F.
func TestScenario4HadamardViaTwoSelectorExtract(t *testing.T) {
	ctx, _ := newCtx(t, 4)
	hLambda := ast.Lambda{
		Param: ast.VarPat{Name: "x"},
		Body: ast.ExtractExpr{
			Arg: ast.VarExpr{Name: "x"},
			Cases: []ast.Case{
				ast.ExpCase{
					Selector: ast.VarExpr{Name: "F"},
					Result: ast.Invoke{
						Target: ast.VarExpr{Name: "sup"},
						Arg:    ast.TupleExpr{Elems: []ast.Expression{ast.VarExpr{Name: "F"}, ast.VarExpr{Name: "T"}}},
					},
				},
				ast.ExpCase{
					Selector: ast.VarExpr{Name: "T"},
					Result: ast.Invoke{
						Target: ast.VarExpr{Name: "sup"},
						Arg: ast.TupleExpr{Elems: []ast.Expression{
							ast.VarExpr{Name: "F"},
							ast.Invoke{Target: ast.VarExpr{Name: "~"}, Arg: ast.VarExpr{Name: "T"}},
						}},
					},
				},
			},
		},
	}
	decls := []ast.Decl{boolDataDecl(), ast.LetDecl{Pat: ast.VarPat{Name: "h"}, Value: hLambda}}

	hf := ast.Scope{Decls: decls, Ret: ast.Invoke{Target: ast.VarExpr{Name: "h"}, Arg: ast.VarExpr{Name: "F"}}}
	v, err := eval.EvalExp(hf, ctx)
	if err != nil {
		t.Fatalf("h(F): %v", err)
	}
	sv := v.(value.StateVal)
	want := 1 / math.Sqrt2
	for i, a := range sv.Amps {
		if math.Abs(float64(real(a))-want) > 1e-4 {
			t.Errorf("h(F)[%d] = %v, want ~%.4f", i, a, want)
		}
	}

	hhf := ast.Scope{
		Decls: decls,
		Ret: ast.Invoke{
			Target: ast.VarExpr{Name: "h"},
			Arg:    ast.Invoke{Target: ast.VarExpr{Name: "h"}, Arg: ast.VarExpr{Name: "F"}},
		},
	}
	v2, err := eval.EvalExp(hhf, ctx)
	if err != nil {
		t.Fatalf("h(h(F)): %v", err)
	}
	sv2 := v2.(value.StateVal)
	if math.Abs(float64(real(sv2.Amps[0]))-1) > 1e-3 {
		t.Fatalf("h(h(F))[0] = %v, want ~1", sv2.Amps[0])
	}
}

// spec.md §8 scenario 5: tensor product ordering for a tuple of
// classical registers.
func TestScenario5TensorProductOrdering(t *testing.T) {
	ctx, _ := newCtx(t, 5)
	prog := ast.Scope{
		Decls: []ast.Decl{ast.DataDecl{Name: "Bit", Variants: []string{"O", "I"}}},
		Ret: ast.StateExpr{Inner: ast.TupleExpr{Elems: []ast.Expression{
			ast.VarExpr{Name: "I"}, ast.VarExpr{Name: "O"},
		}}},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv := v.(value.StateVal)
	want := []complex64{0, 0, 1, 0}
	if len(sv.Amps) != len(want) {
		t.Fatalf("state = %v, want length %d", sv.Amps, len(want))
	}
	for i := range want {
		if sv.Amps[i] != want[i] {
			t.Fatalf("state = %v, want %v", sv.Amps, want)
		}
	}
}

// spec.md §8 scenario 6: @[1/2] not is a gate square root — applying
// it twice approximates the classical NOT.
func TestScenario6PhasePowerOnGate(t *testing.T) {
	ctx, _ := newCtx(t, 16)
	notLambda := ast.Lambda{
		Param: ast.VarPat{Name: "x"},
		Body: ast.ExtractExpr{
			Arg: ast.VarExpr{Name: "x"},
			Cases: []ast.Case{
				ast.ExpCase{Selector: ast.VarExpr{Name: "F"}, Result: ast.VarExpr{Name: "T"}},
				ast.ExpCase{Selector: ast.VarExpr{Name: "T"}, Result: ast.VarExpr{Name: "F"}},
			},
		},
	}
	sqrtNot := ast.PhaseExpr{Value: ast.Rational(1, 2), Inner: notLambda}
	prog := ast.Scope{
		Decls: []ast.Decl{
			boolDataDecl(),
			ast.LetDecl{Pat: ast.VarPat{Name: "sq"}, Value: sqrtNot},
		},
		Ret: ast.Invoke{
			Target: ast.VarExpr{Name: "sq"},
			Arg:    ast.Invoke{Target: ast.VarExpr{Name: "sq"}, Arg: ast.VarExpr{Name: "T"}},
		},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv, ok := v.(value.StateVal)
	if !ok || len(sv.Amps) != 2 {
		t.Fatalf("sq(sq(T)) = %v, want a 2-amplitude State", v)
	}
	// not(T) = F = [1, 0]; allow the eigendecomposition's numerical slack.
	if d := cabs(sv.Amps[0] - 1); d > 1e-3 {
		t.Fatalf("sq(sq(T))[0] = %v, want ~1 (off by %v)", sv.Amps[0], d)
	}
	if d := cabs(sv.Amps[1]); d > 1e-3 {
		t.Fatalf("sq(sq(T))[1] = %v, want ~0 (off by %v)", sv.Amps[1], d)
	}
}

func cabs(a complex64) float64 {
	re, im := float64(real(a)), float64(imag(a))
	return math.Sqrt(re*re + im*im)
}

// spec.md §6: EvalExpInline applies a Scope's declarations to the
// caller's own Context, so bindings survive into the next evaluation.
func TestEvalExpInlineMutatesCallerContext(t *testing.T) {
	ctx, _ := newCtx(t, 17)
	first := ast.Scope{
		Decls: []ast.Decl{ast.LetDecl{Pat: ast.VarPat{Name: "x"}, Value: ast.Index{N: 7}}},
		Ret:   ast.VarExpr{Name: "x"},
	}
	v, err := eval.EvalExpInline(first, ctx)
	if err != nil {
		t.Fatalf("EvalExpInline: %v", err)
	}
	if v.(value.Index).N != 7 {
		t.Fatalf("inline scope value = %v, want Index(7)", v)
	}
	// x must still be visible in a later evaluation against the same ctx.
	v2, err := eval.EvalExp(ast.VarExpr{Name: "x"}, ctx)
	if err != nil {
		t.Fatalf("x should survive EvalExpInline: %v", err)
	}
	if v2.(value.Index).N != 7 {
		t.Fatalf("x = %v after inline scope, want Index(7)", v2)
	}
}

func TestEvalExpInlineNonScopeEvaluatesNormally(t *testing.T) {
	ctx, _ := newCtx(t, 18)
	v, err := eval.EvalExpInline(ast.Index{N: 3}, ctx)
	if err != nil || v.(value.Index).N != 3 {
		t.Fatalf("EvalExpInline(Index) = %v, %v, want Index(3)", v, err)
	}
}

func TestAnnoWithUndeclaredTypeNameFails(t *testing.T) {
	ctx, _ := newCtx(t, 19)
	anno := ast.AnnoExpr{Inner: ast.Index{N: 0}, Type: ast.VarPat{Name: "Missing"}}
	_, err := eval.EvalExp(anno, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.TypeNotFound {
		t.Fatalf("err = %v, want TypeNotFound", err)
	}
}

func TestAnnoRetagsStateWithDeclaredType(t *testing.T) {
	ctx, _ := newCtx(t, 20)
	prog := ast.Scope{
		Decls: []ast.Decl{boolDataDecl()},
		Ret: ast.AnnoExpr{
			Inner: ast.StateExpr{Inner: ast.Index{N: 1}},
			Type:  ast.VarPat{Name: "Bool"},
		},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv := v.(value.StateVal)
	if value.Display(sv) != "[0.0000, 1.0000]: Bool" {
		t.Fatalf("annotated state displays as %q, want it tagged Bool", value.Display(sv))
	}
}

func TestUnboundNameFails(t *testing.T) {
	ctx, _ := newCtx(t, 6)
	_, err := eval.EvalExp(ast.VarExpr{Name: "nope"}, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.UnboundName {
		t.Fatalf("err = %v, want UnboundName", err)
	}
}

func TestExpandOutsideContextFails(t *testing.T) {
	ctx, _ := newCtx(t, 7)
	_, err := eval.EvalExp(ast.Expand{Inner: ast.Index{N: 3}}, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.ExpandOutsideCtx {
		t.Fatalf("err = %v, want ExpandOutsideContext", err)
	}
}

func TestExpandSplicesInsideTuple(t *testing.T) {
	ctx, _ := newCtx(t, 8)
	prog := ast.TupleExpr{Elems: []ast.Expression{
		ast.Expand{Inner: ast.Index{N: 3}},
		ast.Index{N: 9},
	}}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	tv := v.(value.TupleVal)
	if len(tv.Elems) != 4 {
		t.Fatalf("expand(3) spliced into a tuple should yield 3+1=4 elements, got %d", len(tv.Elems))
	}
	for i := 0; i < 3; i++ {
		if tv.Elems[i].(value.Index).N != i {
			t.Fatalf("spliced element %d = %v, want Index(%d)", i, tv.Elems[i], i)
		}
	}
	if tv.Elems[3].(value.Index).N != 9 {
		t.Fatalf("trailing element = %v, want Index(9)", tv.Elems[3])
	}
}

func TestExpandSplicesIntoArgumentPosition(t *testing.T) {
	ctx, _ := newCtx(t, 21)
	identity := ast.Lambda{Param: ast.VarPat{Name: "x"}, Body: ast.VarExpr{Name: "x"}}
	prog := ast.Scope{
		Decls: []ast.Decl{ast.LetDecl{Pat: ast.VarPat{Name: "f"}, Value: identity}},
		Ret:   ast.Invoke{Target: ast.VarExpr{Name: "f"}, Arg: ast.Expand{Inner: ast.Index{N: 3}}},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	tv, ok := v.(value.TupleVal)
	if !ok || len(tv.Elems) != 3 {
		t.Fatalf("f(expand(3)) = %v, want a 3-element Tuple", v)
	}
}

func TestExpandSplicesInsideConcat(t *testing.T) {
	ctx, _ := newCtx(t, 22)
	// concat of expand(2) = concat(Index(0), Index(1)); each element's
	// state is scaled by 1/sqrt(2) and the states are concatenated.
	prog := ast.ConcatExpr{Elems: []ast.Expression{ast.Expand{Inner: ast.Index{N: 2}}}}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	sv, ok := v.(value.StateVal)
	if !ok {
		t.Fatalf("concat(expand(2)) = %v, want a State", v)
	}
	want := []complex64{complex64(complex(1/math.Sqrt2, 0)), 0, complex64(complex(1/math.Sqrt2, 0))}
	if len(sv.Amps) != len(want) {
		t.Fatalf("concat(expand(2)) = %v, want length %d", sv.Amps, len(want))
	}
	for i := range want {
		if cabs(sv.Amps[i]-want[i]) > 1e-4 {
			t.Fatalf("concat(expand(2)) = %v, want %v", sv.Amps, want)
		}
	}
}

func TestCondNonBooleanFails(t *testing.T) {
	ctx, _ := newCtx(t, 9)
	cond := ast.Cond{Test: ast.Index{N: 5}, Then: ast.Index{N: 1}, Else: ast.Index{N: 0}}
	_, err := eval.EvalExp(cond, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.NonBoolean {
		t.Fatalf("err = %v, want NonBoolean", err)
	}
}

func TestCondDispatchesOnBoolData(t *testing.T) {
	ctx, _ := newCtx(t, 10)
	prog := ast.Scope{
		Decls: []ast.Decl{boolDataDecl()},
		Ret: ast.Cond{
			Test: ast.VarExpr{Name: "T"},
			Then: ast.Index{N: 100},
			Else: ast.Index{N: 200},
		},
	}
	v, err := eval.EvalExp(prog, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.(value.Index).N != 100 {
		t.Fatalf("cond on T = %v, want Index(100)", v)
	}
}

func TestAssertionFailedRaises(t *testing.T) {
	ctx, _ := newCtx(t, 11)
	scope := ast.Scope{
		Decls: []ast.Decl{ast.AssertDecl{A: ast.Index{N: 1}, B: ast.Index{N: 2}}},
		Ret:   ast.Index{N: 0},
	}
	_, err := eval.EvalExp(scope, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.AssertionFailed {
		t.Fatalf("err = %v, want AssertionFailed", err)
	}
}

func TestAssertionPassesWithinTolerance(t *testing.T) {
	ctx, _ := newCtx(t, 12)
	scope := ast.Scope{
		Decls: []ast.Decl{ast.AssertDecl{
			A: ast.StateExpr{Inner: ast.Index{N: 0}},
			B: ast.StateExpr{Inner: ast.Index{N: 0}},
		}},
		Ret: ast.Index{N: 0},
	}
	if _, err := eval.EvalExp(scope, ctx); err != nil {
		t.Fatalf("expected assertion to pass, got %v", err)
	}
}

func TestPrintWritesToContextOut(t *testing.T) {
	ctx, buf := newCtx(t, 13)
	scope := ast.Scope{
		Decls: []ast.Decl{ast.PrintDecl{Value: ast.Index{N: 42}}},
		Ret:   ast.Index{N: 0},
	}
	if _, err := eval.EvalExp(scope, ctx); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got, want := buf.String(), ":: 42\n"; got != want {
		t.Fatalf("Print output = %q, want %q", got, want)
	}
}

func TestNotCallableFails(t *testing.T) {
	ctx, _ := newCtx(t, 14)
	_, err := eval.EvalExp(ast.Invoke{Target: ast.Index{N: 1}, Arg: ast.Index{N: 2}}, ctx)
	if kind, ok := braiderr.Of(err); !ok || kind != braiderr.NotCallable {
		t.Fatalf("err = %v, want NotCallable", err)
	}
}

func TestScopeLetBindingIsCallable(t *testing.T) {
	ctx, _ := newCtx(t, 15)
	identity := ast.Lambda{Param: ast.VarPat{Name: "x"}, Body: ast.VarExpr{Name: "x"}}
	scope := ast.Scope{
		Decls: []ast.Decl{ast.LetDecl{Pat: ast.VarPat{Name: "f"}, Value: identity}},
		Ret:   ast.Invoke{Target: ast.VarExpr{Name: "f"}, Arg: ast.Index{N: 7}},
	}
	v, err := eval.EvalExp(scope, ctx)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.(value.Index).N != 7 {
		t.Fatalf("f(7) = %v, want Index(7)", v)
	}
}
