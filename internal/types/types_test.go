package types

import "testing"

func TestSizeAny(t *testing.T) {
	if _, known := Size(Any{}); known {
		t.Fatal("Size(Any) should be unknown")
	}
}

func TestSizeData(t *testing.T) {
	dt := NewDataType("Bool", []string{"F", "T"})
	size, known := Size(Data{DT: dt})
	if !known || size != 2 {
		t.Fatalf("Size(Bool) = (%d, %v), want (2, true)", size, known)
	}
}

func TestSizeTupleIsProduct(t *testing.T) {
	bit := Data{DT: NewDataType("Bit", []string{"O", "I"})}
	tup := Tuple{Elems: []Type{bit, bit, bit}}
	size, known := Size(tup)
	if !known || size != 8 {
		t.Fatalf("Size(Bit^3) = (%d, %v), want (8, true)", size, known)
	}
}

func TestSizeEmptyTupleIsOne(t *testing.T) {
	size, known := Size(Tuple{})
	if !known || size != 1 {
		t.Fatalf("Size(()) = (%d, %v), want (1, true)", size, known)
	}
}

func TestSizeConcatIsSum(t *testing.T) {
	bit := Data{DT: NewDataType("Bit", []string{"O", "I"})}
	c := Concat{Elems: []Type{bit, bit}}
	size, known := Size(c)
	if !known || size != 4 {
		t.Fatalf("Size(Concat[Bit,Bit]) = (%d, %v), want (4, true)", size, known)
	}
}

func TestSizeEmptyConcatIsOne(t *testing.T) {
	size, known := Size(Concat{})
	if !known || size != 1 {
		t.Fatalf("Size(Concat{}) = (%d, %v), want (1, true)", size, known)
	}
}

func TestSizeUnknownPropagates(t *testing.T) {
	tup := Tuple{Elems: []Type{Any{}, Data{DT: NewDataType("X", []string{"A"})}}}
	if _, known := Size(tup); known {
		t.Fatal("Size(tuple containing Any) should be unknown")
	}
}

func TestSizeFuncUnknown(t *testing.T) {
	if _, known := Size(Func{Arg: Any{}, Ret: Any{}}); known {
		t.Fatal("Size(Func) should be unknown")
	}
}

// spec.md Invariant 5: two DataType declarations with identical
// variant lists are nonetheless distinct types — pointer identity,
// not structural equality.
func TestDataTypesAreDistinctByIdentityNotShape(t *testing.T) {
	a := NewDataType("Bool", []string{"F", "T"})
	b := NewDataType("Bool", []string{"F", "T"})
	if Equal(Data{DT: a}, Data{DT: b}) {
		t.Fatal("two distinct DataType allocations with identical shape compared equal")
	}
	if !Equal(Data{DT: a}, Data{DT: a}) {
		t.Fatal("a DataType does not compare equal to itself")
	}
	if a.Tag == b.Tag {
		t.Fatal("two NewDataType calls produced the same debugging Tag")
	}
}

func TestEitherJoin(t *testing.T) {
	bit := Data{DT: NewDataType("Bit", []string{"O", "I"})}
	if got := Either(bit, bit); got != bit {
		t.Fatalf("Either(t, t) = %v, want t", got)
	}
	other := Data{DT: NewDataType("Other", []string{"A", "B"})}
	if _, ok := Either(bit, other).(Any); !ok {
		t.Fatalf("Either(t1, t2) for distinct types should be Any")
	}
}

func TestTupleAndConcatString(t *testing.T) {
	bit := Data{DT: NewDataType("Bit", []string{"O", "I"})}
	tup := Tuple{Elems: []Type{bit, bit}}
	if got, want := tup.String(), "(Bit, Bit)"; got != want {
		t.Fatalf("Tuple.String() = %q, want %q", got, want)
	}
	c := Concat{Elems: []Type{bit}}
	if got, want := c.String(), "[Bit]"; got != want {
		t.Fatalf("Concat.String() = %q, want %q", got, want)
	}
}
