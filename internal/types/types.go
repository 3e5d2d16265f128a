// Package types implements the pure type representation of spec.md §3
// and §4.2: the `Type` closed sum (Any, Data, Tuple, Concat, Func),
// `DataType` (nominal, identified by pointer equality), and `Size`.
//
// The structural-assignment/coercion half of spec.md §4.2 (`Assign`,
// `Describes`, `FromIndex`) is NOT here — it operates on runtime
// Values, and Go forbids the import cycle that would create (this
// package would need the value package for Value, and the value
// package already needs this package for the Type tag carried by
// State/Func values). It lives in internal/value instead, alongside
// the Value type it coerces; see that package's assign.go and
// DESIGN.md for the split rationale. This mirrors the teacher's own
// choice to keep `internal/typesystem` free of `evaluator.Object`
// dependencies (github.com/funvibe/funxy/internal/typesystem/types.go)
// so the advisory type layer can be imported without pulling in the
// whole runtime.
package types

import (
	"strings"

	"github.com/google/uuid"
)

// Type is the closed sum of type forms (spec.md §3).
type Type interface {
	String() string
	typeNode()
}

// Any is the structural wildcard type: it accepts any value unchanged.
type Any struct{}

func (Any) String() string { return "_" }
func (Any) typeNode()      {}

// DataType is a nominal finite enumeration. Two DataType declarations
// with identical variant lists are nonetheless distinct types — Go
// pointer identity gives this for free (spec.md Invariant 5). Tag is a
// debugging label only (diagnostics, REPL introspection); equality and
// Display never consult it, so two DataTypes sharing ID/Variants by
// coincidence still compare unequal per Invariant 5.
type DataType struct {
	ID       string
	Variants []string
	Tag      uuid.UUID
}

// NewDataType allocates a DataType with a fresh debugging Tag (spec.md
// §4.4.2 "Data" declaration: "allocate a shared DataType").
func NewDataType(id string, variants []string) *DataType {
	return &DataType{ID: id, Variants: variants, Tag: uuid.New()}
}

// Data wraps a *DataType as a Type value.
type Data struct {
	DT *DataType
}

func (d Data) String() string { return d.DT.ID }
func (Data) typeNode()        {}

// Tuple is the product type.
type Tuple struct {
	Elems []Type
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (Tuple) typeNode() {}

// Concat is the tensor-concatenation type.
type Concat struct {
	Elems []Type
}

func (t Concat) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (Concat) typeNode() {}

// Func is the function type, arg -> ret.
type Func struct {
	Arg Type
	Ret Type
}

func (f Func) String() string { return "(" + f.Arg.String() + " -> " + f.Ret.String() + ")" }
func (Func) typeNode()        {}

// Size returns the total Hilbert dimension of t, and whether it is
// known at all (spec.md §4.2). Any and Func have unknown size.
func Size(t Type) (size int, known bool) {
	switch tt := t.(type) {
	case Any:
		return 0, false
	case Data:
		return len(tt.DT.Variants), true
	case Tuple:
		total := 1
		for _, e := range tt.Elems {
			s, ok := Size(e)
			if !ok {
				return 0, false
			}
			total *= s
		}
		return total, true
	case Concat:
		total := 0
		for _, e := range tt.Elems {
			s, ok := Size(e)
			if !ok {
				return 0, false
			}
			total += s
		}
		if len(tt.Elems) == 0 {
			return 1, true
		}
		return total, true
	case Func:
		return 0, false
	default:
		return 0, false
	}
}

// Equal is a structural comparison used by either_type/infer_type's
// join rule (spec.md §4.3); Data types compare by the underlying
// *DataType pointer, matching Invariant 5.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Any:
		_, ok := b.(Any)
		return ok
	case Data:
		bv, ok := b.(Data)
		return ok && av.DT == bv.DT
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case Concat:
		bv, ok := b.(Concat)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case Func:
		bv, ok := b.(Func)
		return ok && Equal(av.Arg, bv.Arg) && Equal(av.Ret, bv.Ret)
	default:
		return false
	}
}

// Either implements either_type(a, b) from spec.md §4.3: a if a==b,
// else Any.
func Either(a, b Type) Type {
	if Equal(a, b) {
		return a
	}
	return Any{}
}
