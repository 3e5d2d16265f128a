package kernel

import "math/cmplx"

// Power raises a square gate to a fractional power p via
// eigendecomposition: compute g's eigenvalues and an orthonormal
// eigenbasis V, form D with D_ii = lambda_i^p, result = V * D * V^H
// (spec.md §4.1). As a shortcut, p == 1 returns g unchanged.
//
// V^H stands in for V^-1, which is exact when g is normal — unitary
// gates in particular, the only gates Power is meaningfully applied to
// given spec.md §1's trust-the-caller stance on unitarity.
//
// g is rectangularized first so every row has the same length; if it
// is not square (width != number of rows) it is treated as square by
// padding to max(rows, width), matching the kernel's silent
// zero-padding convention elsewhere.
func Power(g Gate, p complex128) Gate {
	if p == 1 {
		return g
	}
	square := squareUp(g)
	n := len(square)
	if n == 0 {
		return Gate{}
	}
	m := gateToCMat(square)
	v, ordered := eigenvectors(m, eigenvalues(m))
	powered := make([]complex128, n)
	for i, lambda := range ordered {
		powered[i] = cpow(lambda, p)
	}
	out := make(cmat, n)
	for i := 0; i < n; i++ {
		out[i] = make([]complex128, n)
		for j := 0; j < n; j++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += v[i][k] * powered[k] * cmplx.Conj(v[j][k])
			}
			out[i][j] = sum
		}
	}
	return out.toGate()
}

func squareUp(g Gate) Gate {
	rect := Rectangularize(g)
	n := len(rect)
	w := Width(rect)
	dim := n
	if w > dim {
		dim = w
	}
	out := make(Gate, dim)
	for i := 0; i < dim; i++ {
		row := make([]complex64, dim)
		if i < len(rect) {
			copy(row, rect[i])
		}
		out[i] = row
	}
	return out
}
