package kernel

import (
	"math"
	"math/cmplx"
)

// iPi is i*pi, used by Phase's e^{i*pi*phi} convention (spec.md §4.1).
var iPi = complex(0, math.Pi)

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}

func cExp(z complex128) complex128 {
	return cmplx.Exp(z)
}
