package kernel

// Width returns max(|row|) across g, the matrix's column count.
func Width(g Gate) int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Rectangularize zero-pads every row to Width(g) so the matrix is
// dense. create_extract_gate (spec.md §4.4.1 step 2) always calls this
// before returning a gate; the teacher's Gate representation tolerates
// raggedness everywhere, which spec.md's Design Notes call out as a
// source of latent bugs — this implementation rectangularizes eagerly
// instead.
func Rectangularize(g Gate) Gate {
	w := Width(g)
	out := make(Gate, len(g))
	for i, row := range g {
		out[i] = []complex64(Pad(State(row), w))
	}
	return out
}

// CombineGates is the Kronecker product of two gates, used when
// building a gate for a Tuple of gate-buildable values (spec.md §4.4
// "build_gate").
func CombineGates(a, b Gate) Gate {
	out := make(Gate, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, []complex64(Combine(State(x), State(y))))
		}
	}
	return out
}

// Transpose swaps rows and columns, zero-filling short rows.
func Transpose(g Gate) Gate {
	w := Width(g)
	out := make(Gate, w)
	for i := 0; i < w; i++ {
		col := make([]complex64, len(g))
		for j, row := range g {
			if i < len(row) {
				col[j] = row[i]
			}
		}
		out[i] = col
	}
	return out
}

// Negate negates every entry of a matrix.
func Negate(g Gate) Gate {
	out := make(Gate, len(g))
	for i, row := range g {
		nr := make([]complex64, len(row))
		for j, x := range row {
			nr[j] = -x
		}
		out[i] = nr
	}
	return out
}

// Inverse is the conjugate-transpose of g. It is only correct when g is
// unitary; per spec.md §1 non-goals, unitarity is never checked — the
// caller's program is trusted.
func Inverse(g Gate) Gate {
	t := Transpose(g)
	out := make(Gate, len(t))
	for i, row := range t {
		cr := make([]complex64, len(row))
		for j, x := range row {
			cr[j] = complex64(complex(real(x), -imag(x)))
		}
		out[i] = cr
	}
	return out
}
