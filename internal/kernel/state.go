// Package kernel implements the numeric kernel of spec.md §4.1: dense
// complex-amplitude vectors ("states") and matrices built from them
// ("gates"), and the pad/combine/sup/phase/extract/measure algebra over
// them. It is grounded on the original implementation's
// `engine.rs`/`eval.rs` (original_source/src/engine.rs) for the exact
// shape of each operation, re-expressed the way the teacher repo shapes
// a small self-contained numeric subsystem (plain functions over a
// named slice type, e.g. funvibe-funxy's persistent_map.go), rather
// than a generic linear-algebra package — this interpreter only ever
// needs the handful of operations spec.md names, and a more general
// dependency (gonum/mat) does not expose a complex general
// eigendecomposition, which Power (kernel/eigen.go) needs; see
// DESIGN.md for the full reasoning.
package kernel

// State is a dense amplitude vector; State[i] is the amplitude of
// classical outcome i (spec.md GLOSSARY).
type State []complex64

// Gate is a matrix whose rows are amplitude vectors; Gate[i] is the
// output column-state for classical input index i (spec.md Invariant
// 4). Width(g) = max(|row|) — gates may be ragged until
// Rectangularize is called.
type Gate [][]complex64

// GetState produces the standard basis vector of dimension n+1 with
// amplitude 1 at index n (trailing-1 encoding). GetState(0) = [1], the
// scalar identity used as the neutral element of Combine.
func GetState(n int) State {
	s := make(State, n+1)
	s[n] = 1
	return s
}

// Pad right-extends v with zero amplitudes until len(v) >= n.
func Pad(v State, n int) State {
	if len(v) >= n {
		return v
	}
	out := make(State, n)
	copy(out, v)
	return out
}

func maxLen(a, b State) int {
	if len(a) > len(b) {
		return len(a)
	}
	return len(b)
}

// zip pads a and b to a common length and combines componentwise.
func zip(a, b State, f func(x, y complex64) complex64) State {
	n := maxLen(a, b)
	a, b = Pad(a, n), Pad(b, n)
	out := make(State, n)
	for i := range out {
		out[i] = f(a[i], b[i])
	}
	return out
}

// Combine is the tensor (Kronecker) product: [a0*b, a1*b, ...]
// flattened. It joins classical registers of dimension d_a, d_b into a
// register of dimension d_a*d_b with index encoding i = i_a*d_b + i_b.
func Combine(a, b State) State {
	out := make(State, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, x*y)
		}
	}
	return out
}

// ProbSum returns sum_i |v_i|^2.
func ProbSum(v State) float64 {
	var sum float64
	for _, x := range v {
		re, im := float64(real(x)), float64(imag(x))
		sum += re*re + im*im
	}
	return sum
}

// CreateSup zero-pads all states to a common length, sums them
// componentwise, and divides every amplitude by the pooled L2 norm
// sqrt(sum_i prob_sum(s_i)). An empty list produces an empty state.
func CreateSup(states []State) State {
	if len(states) == 0 {
		return State{}
	}
	var total float64
	for _, s := range states {
		total += ProbSum(s)
	}
	acc := State{}
	for _, s := range states {
		acc = zip(acc, s, func(x, y complex64) complex64 { return x + y })
	}
	return scaleReal(acc, 1/sqrt(total))
}

// Sup is the two-argument convenience form of CreateSup.
func Sup(a, b State) State {
	return CreateSup([]State{a, b})
}

// Normalized divides v by its L2 norm.
func Normalized(v State) State {
	return scaleReal(v, 1/sqrt(ProbSum(v)))
}

func scaleReal(v State, k float64) State {
	out := make(State, len(v))
	kk := complex64(complex(k, 0))
	for i, x := range v {
		out[i] = x * kk
	}
	return out
}

// PhaseFlip negates every amplitude.
func PhaseFlip(v State) State {
	out := make(State, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

// Phase multiplies every amplitude by e^{i*pi*phi}. phi may carry an
// imaginary component, which contributes real amplitude gain rather
// than pure rotation (spec.md §4.1: "intentional, per the source"; the
// kernel does not enforce unitarity).
func Phase(v State, phi complex128) State {
	factor := cExp(iPi * phi)
	f64 := complex64(factor)
	out := make(State, len(v))
	for i, x := range v {
		out[i] = x * f64
	}
	return out
}

// Extract applies gate g to state s: create_sup({ s_i * g[i] | i }),
// the fundamental "apply matrix to state" primitive.
func Extract(s State, g Gate) State {
	cols := make([]State, 0, len(s))
	for i, amp := range s {
		var col State
		if i < len(g) {
			col = State(g[i])
		}
		scaled := make(State, len(col))
		for j, y := range col {
			scaled[j] = amp * y
		}
		cols = append(cols, scaled)
	}
	return CreateSup(cols)
}
