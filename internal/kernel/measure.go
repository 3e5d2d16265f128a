package kernel

import "github.com/braidql/braid/internal/rng"

// Measure samples a classical index i with probability proportional to
// |v_i|^2, using the supplied PRNG source. Per spec.md's Design Notes
// ("No-cloning"), measurement intentionally does not consume or
// otherwise mutate v — the caller may measure the same State value
// again.
func Measure(v State, src rng.Source) int {
	total := ProbSum(v)
	if total <= 0 || len(v) == 0 {
		return 0
	}
	target := src.Float64() * total
	var acc float64
	for i, x := range v {
		re, im := float64(real(x)), float64(imag(x))
		acc += re*re + im*im
		if target < acc {
			return i
		}
	}
	return len(v) - 1
}
