package tv

import (
	"fmt"
	"math"
)

// Value is the 8-byte payload of a tagged value. Interpretation depends
// on the paired DataType: immediate bits for scalars, a string-table
// handle for strings, an arena handle for dicts.
type Value uint64

// Handle identifies an object in the string table or the counted object
// arena. Handle 0 is reserved and always invalid.
type Handle uint32

// TypedValue is a (type tag, payload) pair.
type TypedValue struct {
	Type DataType
	Val  Value
}

// Uninit returns the absent-entry sentinel value.
func Uninit() TypedValue {
	return TypedValue{Type: KindUninit}
}

// MakeNull returns the null value.
func MakeNull() TypedValue {
	return TypedValue{Type: KindNull}
}

// MakeBool returns a boolean value.
func MakeBool(b bool) TypedValue {
	var v Value
	if b {
		v = 1
	}
	return TypedValue{Type: KindBool, Val: v}
}

// MakeInt returns a 64-bit integer value.
func MakeInt(i int64) TypedValue {
	return TypedValue{Type: KindInt, Val: Value(i)}
}

// MakeDbl returns a 64-bit float value.
func MakeDbl(f float64) TypedValue {
	return TypedValue{Type: KindDbl, Val: Value(math.Float64bits(f))}
}

// MakeStr returns a string value referencing sd. The tag is persistent
// for static and uncounted strings, counted otherwise. Does not adjust
// sd's reference count; the caller passes ownership of one reference.
func MakeStr(sd *StringData) TypedValue {
	t := KindStr
	if sd.IsStatic() || sd.IsUncounted() {
		t = KindPersistentStr
	}
	return TypedValue{Type: t, Val: Value(sd.handle)}
}

// MakeClsMeth packs a (class id, func id) pair. ClsMeth values are
// immediates here; they reference uncounted VM metadata.
func MakeClsMeth(cls, fn uint32) TypedValue {
	return TypedValue{Type: KindClsMeth, Val: Value(uint64(cls)<<32 | uint64(fn))}
}

// MakeCounted returns a value of the given refcounted dict type whose
// payload is an arena handle. Ownership of one reference transfers in.
func MakeCounted(t DataType, h Handle) TypedValue {
	if !IsRefcounted(t) && t != KindPersistentDict {
		panic(fmt.Sprintf("tv: MakeCounted with immediate type %v", t))
	}
	return TypedValue{Type: t, Val: Value(h)}
}

// IsUninit reports whether this is the absent sentinel.
func (v TypedValue) IsUninit() bool {
	return v.Type == KindUninit
}

// Int returns the integer payload. Callers check the tag first.
func (v TypedValue) Int() int64 {
	return int64(v.Val)
}

// Dbl returns the float payload.
func (v TypedValue) Dbl() float64 {
	return math.Float64frombits(uint64(v.Val))
}

// Bool returns the boolean payload.
func (v TypedValue) Bool() bool {
	return v.Val != 0
}

// Str resolves the string payload against the string table.
func (v TypedValue) Str() *StringData {
	if !IsString(v.Type) {
		panic(fmt.Sprintf("tv: Str() on %v", v.Type))
	}
	return lookupString(Handle(v.Val))
}

// ClsMeth unpacks a (class id, func id) pair.
func (v TypedValue) ClsMeth() (cls, fn uint32) {
	return uint32(uint64(v.Val) >> 32), uint32(v.Val)
}

// Handle returns the payload as an object handle.
func (v TypedValue) Handle() Handle {
	return Handle(v.Val)
}

func (v TypedValue) String() string {
	switch {
	case v.Type == KindInt:
		return fmt.Sprintf("Int(%d)", v.Int())
	case v.Type == KindDbl:
		return fmt.Sprintf("Dbl(%g)", v.Dbl())
	case v.Type == KindBool:
		return fmt.Sprintf("Bool(%t)", v.Bool())
	case IsString(v.Type):
		return fmt.Sprintf("%v(%q)", v.Type, v.Str().String())
	default:
		return v.Type.String()
	}
}
