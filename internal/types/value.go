package types

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a typed value: a concrete instance of one of the five element
// types, or the distinguished NULL. The zero Value is NULL.
type Value struct {
	typ   ElementType
	isSet bool
	i     int64
	f     float64
	s     string
}

// Null is the distinguished NULL value.
var Null = Value{}

// IsNull reports whether v carries no concrete value.
func (v Value) IsNull() bool { return !v.isSet }

// Type returns v's element type. Calling Type on NULL returns the zero
// ElementType (Int32); callers must check IsNull first when the type
// matters, since NULL has no type of its own in this model.
func (v Value) Type() ElementType { return v.typ }

func NewInt32(x int32) Value   { return Value{typ: Int32, isSet: true, i: int64(x)} }
func NewInt64(x int64) Value   { return Value{typ: Int64, isSet: true, i: x} }
func NewFloat(x float32) Value { return Value{typ: Float, isSet: true, f: float64(x)} }
func NewDouble(x float64) Value {
	return Value{typ: Double, isSet: true, f: x}
}
func NewString(x string) Value { return Value{typ: String, isSet: true, s: x} }

// Int32 returns the value as an int32. Panics if not set or not Int32.
func (v Value) Int32() int32 {
	v.mustBe(Int32)
	return int32(v.i)
}

// Int64 returns the value as an int64. Panics if not set or not Int64.
func (v Value) Int64() int64 {
	v.mustBe(Int64)
	return v.i
}

// Float32 returns the value as a float32. Panics if not set or not Float.
func (v Value) Float32() float32 {
	v.mustBe(Float)
	return float32(v.f)
}

// Float64 returns the value as a float64. Panics if not set or not Double.
func (v Value) Float64() float64 {
	v.mustBe(Double)
	return v.f
}

// Str returns the value as a string. Panics if not set or not String.
func (v Value) Str() string {
	v.mustBe(String)
	return v.s
}

func (v Value) mustBe(t ElementType) {
	if !v.isSet {
		panic("types: value is NULL")
	}
	if v.typ != t {
		panic(fmt.Sprintf("types: value is %s, not %s", v.typ, t))
	}
}

// AsFloat64 widens any numeric value to float64, for use in arithmetic and
// comparison evaluation that does not need to preserve the original width.
// Panics for NULL or String.
func (v Value) AsFloat64() float64 {
	if !v.isSet {
		panic("types: value is NULL")
	}
	switch v.typ {
	case Int32, Int64:
		return float64(v.i)
	case Float, Double:
		return v.f
	default:
		panic(fmt.Sprintf("types: %s has no numeric representation", v.typ))
	}
}

// AsInt64 widens any integer value to int64. Panics for NULL, floats, or
// String.
func (v Value) AsInt64() int64 {
	if !v.isSet {
		panic("types: value is NULL")
	}
	switch v.typ {
	case Int32, Int64:
		return v.i
	default:
		panic(fmt.Sprintf("types: %s is not an integer type", v.typ))
	}
}

// Compare returns -1, 0, or 1 comparing v to o. Both must be non-NULL and of
// the same type; comparisons across NULL are handled by callers before
// Compare is reached, since SQL NULL comparisons yield NULL rather than a
// boolean (spec.md §4.7 "Numeric semantics").
func (v Value) Compare(o Value) int {
	if v.typ != o.typ {
		panic(fmt.Sprintf("types: cannot compare %s to %s", v.typ, o.typ))
	}
	switch v.typ {
	case Int32, Int64:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		default:
			return 0
		}
	case Float, Double:
		switch {
		case v.f < o.f:
			return -1
		case v.f > o.f:
			return 1
		default:
			return 0
		}
	case String:
		switch {
		case v.s < o.s:
			return -1
		case v.s > o.s:
			return 1
		default:
			return 0
		}
	default:
		panic(fmt.Sprintf("types: unknown element type %s", v.typ))
	}
}

// String renders v for diagnostics, sorting keys, and the string-serialization
// helper columns expose for set operations (spec.md §4.2).
func (v Value) String() string {
	if !v.isSet {
		return "NULL"
	}
	switch v.typ {
	case Int32, Int64:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case Double:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	default:
		return fmt.Sprintf("<%s>", v.typ)
	}
}

// IsNaN reports whether v is a floating value holding NaN, relevant for
// Double/Float comparison semantics that must not treat NaN as equal to
// itself.
func (v Value) IsNaN() bool {
	return v.isSet && (v.typ == Float || v.typ == Double) && math.IsNaN(v.f)
}
