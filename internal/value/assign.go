package value

import (
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/kernel"
	"github.com/braidql/braid/internal/types"
)

// Describes reports whether Assign(t, v) would succeed (spec.md §4.2).
func Describes(t types.Type, v Value) bool {
	_, err := Assign(t, v)
	return err == nil
}

// Assign coerces v to a value of type t, returning a new Value
// (spec.md §4.2). It never mutates v. Cases apply in the spec's order:
// Any passes anything through; a Tuple type destructures a Tuple
// value; a Concat type of one part coerces any buildable value to a
// state tagged with that part; a classical value decodes via
// FromIndex; a State re-tags (with a size check); anything else is a
// mismatch.
func Assign(t types.Type, v Value) (Value, error) {
	switch tt := t.(type) {
	case types.Any:
		return v, nil
	case types.Tuple:
		if tv, ok := v.(TupleVal); ok {
			if len(tt.Elems) != len(tv.Elems) {
				return nil, braiderr.New(braiderr.ArityMismatch,
					"tuple type has %d elements, value has %d", len(tt.Elems), len(tv.Elems))
			}
			out := make([]Value, len(tv.Elems))
			for i, el := range tv.Elems {
				av, err := Assign(tt.Elems[i], el)
				if err != nil {
					return nil, err
				}
				out[i] = av
			}
			return TupleVal{Elems: out}, nil
		}
	case types.Concat:
		if len(tt.Elems) != 1 {
			return nil, braiderr.New(braiderr.Unimplemented,
				"assign to Concat of %d parts is unimplemented", len(tt.Elems))
		}
		s, err := BuildStateUntyped(v)
		if err != nil {
			return nil, err
		}
		return StateVal{Amps: s, Typ: tt.Elems[0]}, nil
	}
	if n, ok := classicalIndex(v); ok {
		return FromIndex(t, n)
	}
	if sv, ok := v.(StateVal); ok {
		if size, known := types.Size(t); known && size != len(sv.Amps) {
			return nil, braiderr.New(braiderr.TypeMismatch,
				"state of size %d cannot be retagged to type %s (size %d)", len(sv.Amps), t.String(), size)
		}
		return StateVal{Amps: sv.Amps, Typ: t}, nil
	}
	return nil, braiderr.New(braiderr.TypeMismatch,
		"cannot assign value to type %s", t.String())
}

// classicalIndex extracts the bare integer underlying an Index or
// DataVal, the only two Value forms from_index can decode from
// (spec.md §4.2: "classical_index is n for Index(n) or Data(_, n)").
func classicalIndex(v Value) (int, bool) {
	switch vv := v.(type) {
	case Index:
		return vv.N, true
	case DataVal:
		return vv.Index, true
	default:
		return 0, false
	}
}

// FromIndex decodes a classical integer into a typed value (spec.md
// §4.2).
func FromIndex(t types.Type, n int) (Value, error) {
	switch tt := t.(type) {
	case types.Any:
		return Index{N: n}, nil
	case types.Data:
		return DataVal{DT: tt.DT, Index: n}, nil
	case types.Tuple:
		elems := make([]Value, len(tt.Elems))
		rem := n
		divisor := 1
		sizes := make([]int, len(tt.Elems))
		for i, e := range tt.Elems {
			s, ok := types.Size(e)
			if !ok {
				s = 1
			}
			sizes[i] = s
		}
		for i, e := range tt.Elems {
			idx := (rem / divisor) % nonZero(sizes[i])
			dv, err := FromIndex(e, idx)
			if err != nil {
				return nil, err
			}
			elems[i] = dv
			divisor *= nonZero(sizes[i])
		}
		return TupleVal{Elems: elems}, nil
	case types.Concat:
		return nil, braiderr.New(braiderr.NoIndexDecoding, "cannot decode an index into a Concat type")
	case types.Func:
		return nil, braiderr.New(braiderr.NoIndexDecoding, "cannot decode an index into a Func type")
	default:
		return nil, braiderr.New(braiderr.NoIndexDecoding, "cannot decode an index into %s", t.String())
	}
}

func nonZero(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// BuildStateUntyped is build_state_typed's amplitude-vector half: it
// coerces v to a kernel.State without needing the Context an
// evaluator-level build_gate call would need, since spec.md's
// build_state_typed never inspects a captured closure. The paired
// inferred Type is produced by BuildStateTyped below; this helper
// exists separately because Assign's Concat case only needs the
// vector, not the type.
func BuildStateUntyped(v Value) (kernel.State, error) {
	s, _, err := BuildStateTyped(v)
	return s, err
}

// BuildStateTyped coerces v to an amplitude vector plus the Type it
// carries (spec.md §4.4 "build_state_typed").
func BuildStateTyped(v Value) (kernel.State, types.Type, error) {
	switch vv := v.(type) {
	case Index:
		return kernel.GetState(vv.N), types.Any{}, nil
	case DataVal:
		return kernel.Pad(kernel.GetState(vv.Index), len(vv.DT.Variants)), types.Data{DT: vv.DT}, nil
	case TupleVal:
		acc := kernel.GetState(0)
		childTypes := make([]types.Type, len(vv.Elems))
		for i, el := range vv.Elems {
			s, t, err := BuildStateTyped(el)
			if err != nil {
				return nil, nil, err
			}
			acc = kernel.Combine(acc, s)
			childTypes[i] = t
		}
		return acc, types.Tuple{Elems: childTypes}, nil
	case StateVal:
		return vv.Amps, vv.Typ, nil
	default:
		return nil, nil, braiderr.New(braiderr.Unbuildable, "value is not buildable into a state")
	}
}
