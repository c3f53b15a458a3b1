package layout

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/loomlang/bespoke/tv"
)

// MaxShapeKeys caps the number of keys in one shape. Slots and positions
// are single bytes, so this can never exceed 255. Consumed by debug
// asserts on position accesses as well.
var MaxShapeKeys = 255

// KeyOrder is an ordered sequence of static string keys. It identifies a
// shape and is content-addressable: hash and equality are over the
// sequence of key contents.
type KeyOrder struct {
	keys []*tv.StringData
	hash uint64
}

// NewKeyOrder builds a key order over interned keys. The slice is not
// copied; callers hand it off.
func NewKeyOrder(keys []*tv.StringData) KeyOrder {
	var d xxhash.Digest
	d.Reset()
	var lenbuf [1]byte
	for _, k := range keys {
		if k == nil {
			continue
		}
		// Separator byte keeps ["ab"] distinct from ["a","b"].
		_, _ = d.WriteString(k.String())
		lenbuf[0] = 0
		_, _ = d.Write(lenbuf[:])
	}
	return KeyOrder{keys: keys, hash: d.Sum64()}
}

// InternKeys is a convenience that interns raw strings into a key order.
func InternKeys(keys ...string) KeyOrder {
	sds := make([]*tv.StringData, len(keys))
	for i, k := range keys {
		sds[i] = tv.Intern(k)
	}
	return NewKeyOrder(sds)
}

// Len returns the number of keys.
func (ko KeyOrder) Len() int { return len(ko.keys) }

// Empty reports whether the key order has no keys.
func (ko KeyOrder) Empty() bool { return len(ko.keys) == 0 }

// At returns the key at position i.
func (ko KeyOrder) At(i int) *tv.StringData { return ko.keys[i] }

// Hash returns the content hash.
func (ko KeyOrder) Hash() uint64 { return ko.hash }

// Valid reports whether this key order can describe a shape: non-empty,
// within the key cap, every key a live static string.
func (ko KeyOrder) Valid() bool {
	if len(ko.keys) == 0 || len(ko.keys) > MaxShapeKeys {
		return false
	}
	for _, k := range ko.keys {
		if k == nil || !k.IsStatic() {
			return false
		}
	}
	return true
}

// Equal compares two key orders by content.
func (ko KeyOrder) Equal(other KeyOrder) bool {
	if ko.hash != other.hash || len(ko.keys) != len(other.keys) {
		return false
	}
	for i, k := range ko.keys {
		// Static keys are interned; pointer equality is content equality.
		if k != other.keys[i] {
			return false
		}
	}
	return true
}

func (ko KeyOrder) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, k := range ko.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k.String())
	}
	b.WriteByte(']')
	return b.String()
}
