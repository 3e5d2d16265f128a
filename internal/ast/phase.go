package ast

import "math"

// Phase is the resolved value of one of the parser's phase literal
// forms (spec.md §6): `n/d` rational, `n%` percent of 1, `nd` degrees
// (n/180 turns), `nr` radians (n/π), bare `n`, or a complex literal
// `[φ_re, φ_im]`. The surface syntax is the parser's job (out of
// scope); this type is the resolved value the evaluator's Phase
// expression carries, so any of the constructors below may be used
// when building an AST by hand (as spec.md §8's scenarios do).
type Phase complex128

// Rational builds the `n/d` phase literal form: n/d turns of a half
// rotation, matching kernel.Phase's e^{iπφ} convention.
func Rational(n, d int) Phase {
	return Phase(complex(float64(n)/float64(d), 0))
}

// Percent builds the `n%` form: n percent of a full half-turn (1.0).
func Percent(n float64) Phase {
	return Phase(complex(n/100, 0))
}

// Degrees builds the `nd` form: n/180 turns.
func Degrees(n float64) Phase {
	return Phase(complex(n/180, 0))
}

// Radians builds the `nr` form: n/π turns.
func Radians(n float64) Phase {
	return Phase(complex(n/math.Pi, 0))
}

// Complex builds a phase literal with both a real rotation component
// and an imaginary amplitude-gain component, per spec.md §4.1's note
// that the richer form allows an imaginary part.
func Complex(re, im float64) Phase {
	return Phase(complex(re, im))
}

func (p Phase) Complex128() complex128 { return complex128(p) }
