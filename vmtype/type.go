package vmtype

import (
	"strings"

	"github.com/loomlang/bespoke/tv"
)

type bits uint16

const (
	bUninit bits = 1 << iota
	bNull
	bBool
	bInt
	bDbl
	bStaticStr
	bCountedStr
	bClsMeth
	bArrLike
)

// Type is an element of the value-type lattice: a set of possible value
// kinds, optionally refined to a single known static string constant.
type Type struct {
	m   bits
	str *tv.StringData // non-nil only when m == bStaticStr
}

var (
	TBottom     = Type{}
	TUninit     = Type{m: bUninit}
	TNull       = Type{m: bNull}
	TBool       = Type{m: bBool}
	TInt        = Type{m: bInt}
	TDbl        = Type{m: bDbl}
	TStaticStr  = Type{m: bStaticStr}
	TCountedStr = Type{m: bCountedStr}
	TStr        = Type{m: bStaticStr | bCountedStr}
	TClsMeth    = Type{m: bClsMeth}
	TArrLike    = Type{m: bArrLike}

	// TInitCell is any initialized value.
	TInitCell = Type{m: bNull | bBool | bInt | bDbl | bStaticStr |
		bCountedStr | bClsMeth | bArrLike}

	// TCell is any cell, initialized or not.
	TCell = Type{m: TInitCell.m | bUninit}
)

// ConstStr returns the type of one known static string.
func ConstStr(sd *tv.StringData) Type {
	if sd == nil || !sd.IsStatic() {
		panic("vmtype: ConstStr requires a static string")
	}
	return Type{m: bStaticStr, str: sd}
}

// SubtypeOf reports whether every value of t is a value of o.
func (t Type) SubtypeOf(o Type) bool {
	if t.m&^o.m != 0 {
		return false
	}
	if o.str != nil {
		return t.str == o.str || t.m == 0
	}
	return true
}

// Union returns the least upper bound of t and o.
func (t Type) Union(o Type) Type {
	u := Type{m: t.m | o.m}
	if t.str == o.str {
		u.str = t.str
	} else if t.m == 0 {
		u.str = o.str
	} else if o.m == 0 {
		u.str = t.str
	}
	return u
}

// ConstStrVal returns the known constant string, if any.
func (t Type) ConstStrVal() (*tv.StringData, bool) {
	return t.str, t.str != nil
}

func (t Type) String() string {
	if t.m == 0 {
		return "Bottom"
	}
	if t.str != nil {
		return "StaticStr=" + t.str.String()
	}
	if t.m == TCell.m {
		return "Cell"
	}
	if t.m == TInitCell.m {
		return "InitCell"
	}
	names := []struct {
		b bits
		s string
	}{
		{bUninit, "Uninit"}, {bNull, "Null"}, {bBool, "Bool"},
		{bInt, "Int"}, {bDbl, "Dbl"}, {bStaticStr, "StaticStr"},
		{bCountedStr, "CountedStr"}, {bClsMeth, "ClsMeth"},
		{bArrLike, "ArrLike"},
	}
	var parts []string
	for _, n := range names {
		if t.m&n.b != 0 {
			parts = append(parts, n.s)
		}
	}
	return strings.Join(parts, "|")
}
