package kernel

import (
	"math"
	"math/cmplx"
)

// cmat is a dense complex128 matrix used internally by Power's
// eigendecomposition; kernel's public surface stays in terms of
// Gate/State (complex64) for consistency with spec.md's amplitude
// representation, widening to complex128 only for the numerically
// sensitive QR iteration below.
type cmat [][]complex128

func gateToCMat(g Gate) cmat {
	n := len(g)
	m := make(cmat, n)
	for i, row := range g {
		r := make([]complex128, n)
		for j := 0; j < n && j < len(row); j++ {
			r[j] = complex128(row[j])
		}
		m[i] = r
	}
	return m
}

func (m cmat) toGate() Gate {
	g := make(Gate, len(m))
	for i, row := range m {
		r := make([]complex64, len(row))
		for j, x := range row {
			r[j] = complex64(x)
		}
		g[i] = r
	}
	return g
}

func (m cmat) clone() cmat {
	out := make(cmat, len(m))
	for i, row := range m {
		out[i] = append([]complex128(nil), row...)
	}
	return out
}

func matMul(a, b cmat) cmat {
	n := len(a)
	out := make(cmat, n)
	for i := 0; i < n; i++ {
		out[i] = make([]complex128, n)
		for j := 0; j < n; j++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// qrDecompose factors a (n x n) into Q*R via modified Gram-Schmidt
// over the complex inner product <x,y> = sum(conj(x_i)*y_i), with Q
// unitary and R upper triangular. A numerically dependent column is
// replaced by a standard basis vector re-orthogonalized against the
// columns already produced, keeping Q unitary even when a is singular
// (shifted iteration matrices routinely are).
func qrDecompose(a cmat) (q, r cmat) {
	n := len(a)
	cols := make([][]complex128, n)
	for j := 0; j < n; j++ {
		col := make([]complex128, n)
		for i := 0; i < n; i++ {
			col[i] = a[i][j]
		}
		cols[j] = col
	}
	qCols := make([][]complex128, n)
	r = make(cmat, n)
	for i := range r {
		r[i] = make([]complex128, n)
	}
	for j := 0; j < n; j++ {
		v := append([]complex128(nil), cols[j]...)
		for k := 0; k < j; k++ {
			var dot complex128
			for i := 0; i < n; i++ {
				dot += cmplx.Conj(qCols[k][i]) * v[i]
			}
			r[k][j] = dot
			for i := 0; i < n; i++ {
				v[i] -= dot * qCols[k][i]
			}
		}
		norm := vecNorm(v)
		r[j][j] = complex(norm, 0)
		if norm > 1e-12 {
			qCols[j] = vecScale(v, 1/norm)
		} else {
			qCols[j] = completeColumn(qCols[:j], n)
		}
	}
	q = make(cmat, n)
	for i := range q {
		q[i] = make([]complex128, n)
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			q[i][j] = qCols[j][i]
		}
	}
	return q, r
}

// completeColumn finds a unit vector orthogonal to every column in
// prev by orthogonalizing standard basis vectors until one survives.
func completeColumn(prev [][]complex128, n int) []complex128 {
	for k := 0; k < n; k++ {
		v := make([]complex128, n)
		v[k] = 1
		for _, p := range prev {
			var dot complex128
			for i := 0; i < n; i++ {
				dot += cmplx.Conj(p[i]) * v[i]
			}
			for i := 0; i < n; i++ {
				v[i] -= dot * p[i]
			}
		}
		if norm := vecNorm(v); norm > 1e-6 {
			return vecScale(v, 1/norm)
		}
	}
	// prev spans the whole space; unreachable for j < n columns.
	v := make([]complex128, n)
	v[0] = 1
	return v
}

func vecNorm(v []complex128) float64 {
	var sum float64
	for _, x := range v {
		sum += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(sum)
}

func vecScale(v []complex128, k float64) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = x * complex(k, 0)
	}
	return out
}

// eigenvalues2x2 solves the characteristic quadratic of a 2x2 block
// exactly: lambda = tr/2 +- sqrt((tr/2)^2 - det).
func eigenvalues2x2(a, b, c, d complex128) (complex128, complex128) {
	half := (a + d) / 2
	disc := cmplx.Sqrt(half*half - (a*d - b*c))
	return half + disc, half - disc
}

// eigenvalues runs the shifted QR algorithm with deflation on a copy
// of m. Each step applies a Wilkinson-style shift taken from the
// trailing 2x2 block; once the active block's trailing row is
// negligible off the diagonal, that row deflates, and a remaining 2x2
// (or 1x1) active block is solved in closed form. Plain unshifted
// iteration stalls on gates with equal-modulus eigenvalue pairs (the
// classical NOT gate is the canonical case), which is exactly what
// the shift avoids.
func eigenvalues(m cmat) []complex128 {
	n := len(m)
	a := m.clone()
	vals := make([]complex128, n)
	active := n
	const maxIter = 500
	for active > 2 {
		for iter := 0; iter < maxIter; iter++ {
			var offDiag float64
			for c := 0; c < active-1; c++ {
				offDiag += cmplx.Abs(a[active-1][c])
			}
			if offDiag < 1e-12*(cmplx.Abs(a[active-1][active-1])+1) {
				break
			}
			l1, l2 := eigenvalues2x2(a[active-2][active-2], a[active-2][active-1], a[active-1][active-2], a[active-1][active-1])
			shift := l1
			if cmplx.Abs(l2-a[active-1][active-1]) < cmplx.Abs(l1-a[active-1][active-1]) {
				shift = l2
			}
			if iter%8 == 7 {
				// Exceptional shift: a Wilkinson shift of (or near) zero
				// leaves permutation-like matrices stationary (every QR
				// step reproduces the input exactly), so periodically
				// kick the iteration off that fixed point with a shift
				// proportional to the stuck sub-diagonal mass.
				shift = a[active-1][active-1] + complex(0.7348, 0.4159)*complex(offDiag, 0)
			}
			sub := submatrix(a, active)
			for i := 0; i < active; i++ {
				sub[i][i] -= shift
			}
			q, r := qrDecompose(sub)
			next := matMul(r, q)
			for i := 0; i < active; i++ {
				next[i][i] += shift
				copy(a[i][:active], next[i])
			}
		}
		vals[active-1] = a[active-1][active-1]
		active--
	}
	if active == 2 {
		vals[0], vals[1] = eigenvalues2x2(a[0][0], a[0][1], a[1][0], a[1][1])
	} else if active == 1 {
		vals[0] = a[0][0]
	}
	return vals
}

func submatrix(a cmat, k int) cmat {
	out := make(cmat, k)
	for i := 0; i < k; i++ {
		out[i] = append([]complex128(nil), a[i][:k]...)
	}
	return out
}

// eigenvectors recovers, for each cluster of (numerically) equal
// eigenvalues, an orthonormal basis of the null space of (m - lambda*I)
// by Gaussian elimination, and assembles the vectors as the columns of
// V. The returned ordered slice holds, per column, the eigenvalue the
// column belongs to (clustering may reorder relative to vals). For a
// normal matrix (unitary gates in particular, the only gates Power is
// meaningfully applied to per spec.md §1's trust-the-caller stance)
// distinct eigenspaces are mutually orthogonal, so V comes out unitary
// and V^-1 is its conjugate transpose.
func eigenvectors(m cmat, vals []complex128) (v cmat, ordered []complex128) {
	n := len(m)
	v = make(cmat, n)
	for i := range v {
		v[i] = make([]complex128, n)
	}
	ordered = make([]complex128, n)
	col := 0
	done := make([]bool, n)
	for i := 0; i < n && col < n; i++ {
		if done[i] {
			continue
		}
		mult := 0
		for j := i; j < n; j++ {
			if !done[j] && cmplx.Abs(vals[j]-vals[i]) < 1e-6 {
				done[j] = true
				mult++
			}
		}
		basis := nullSpace(shifted(m, vals[i]), mult)
		basis = orthonormalize(basis)
		for _, b := range basis {
			if col >= n {
				break
			}
			for row := 0; row < n; row++ {
				v[row][col] = b[row]
			}
			ordered[col] = vals[i]
			col++
		}
	}
	// Numerical fallback: fill any remaining columns so V stays square.
	for ; col < n; col++ {
		prev := make([][]complex128, col)
		for k := 0; k < col; k++ {
			c := make([]complex128, n)
			for row := 0; row < n; row++ {
				c[row] = v[row][k]
			}
			prev[k] = c
		}
		b := completeColumn(prev, n)
		for row := 0; row < n; row++ {
			v[row][col] = b[row]
		}
		ordered[col] = vals[col]
	}
	return v, ordered
}

func shifted(m cmat, lambda complex128) cmat {
	out := m.clone()
	for i := range out {
		out[i][i] -= lambda
	}
	return out
}

// nullSpace returns up to want vectors spanning the (numerical) null
// space of a, via Gaussian elimination with partial pivoting: free
// columns each yield one basis vector.
func nullSpace(a cmat, want int) [][]complex128 {
	n := len(a)
	m := a.clone()
	pivotCol := make([]int, 0, n)
	row := 0
	for colIdx := 0; colIdx < n && row < n; colIdx++ {
		best := row
		for r := row + 1; r < n; r++ {
			if cmplx.Abs(m[r][colIdx]) > cmplx.Abs(m[best][colIdx]) {
				best = r
			}
		}
		if cmplx.Abs(m[best][colIdx]) < 1e-7 {
			continue
		}
		m[row], m[best] = m[best], m[row]
		p := m[row][colIdx]
		for c := colIdx; c < n; c++ {
			m[row][c] /= p
		}
		for r := 0; r < n; r++ {
			if r == row {
				continue
			}
			f := m[r][colIdx]
			if f == 0 {
				continue
			}
			for c := colIdx; c < n; c++ {
				m[r][c] -= f * m[row][c]
			}
		}
		pivotCol = append(pivotCol, colIdx)
		row++
	}
	isPivot := make([]bool, n)
	for _, c := range pivotCol {
		isPivot[c] = true
	}
	var basis [][]complex128
	for free := 0; free < n && len(basis) < want; free++ {
		if isPivot[free] {
			continue
		}
		vec := make([]complex128, n)
		vec[free] = 1
		for r, c := range pivotCol {
			vec[c] = -m[r][free]
		}
		basis = append(basis, vec)
	}
	return basis
}

func orthonormalize(vs [][]complex128) [][]complex128 {
	var out [][]complex128
	for _, v := range vs {
		w := append([]complex128(nil), v...)
		for _, u := range out {
			var dot complex128
			for i := range w {
				dot += cmplx.Conj(u[i]) * w[i]
			}
			for i := range w {
				w[i] -= dot * u[i]
			}
		}
		if norm := vecNorm(w); norm > 1e-9 {
			out = append(out, vecScale(w, 1/norm))
		}
	}
	return out
}

// cpow raises a complex number to a complex power p via the principal
// branch of the complex power law z^p = exp(p * log(z)), so a complex
// exponent (imaginary amplitude gain, spec.md §4.1) is honored too.
func cpow(z complex128, p complex128) complex128 {
	if z == 0 {
		return 0
	}
	return cmplx.Exp(p * cmplx.Log(z))
}
