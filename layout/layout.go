package layout

import (
	"fmt"

	"github.com/loomlang/bespoke/heap"
	"github.com/loomlang/bespoke/tv"
)

// HeaderSize is the fixed instance header every struct dict starts with.
// Region offsets in a descriptor are measured from the end of it.
const HeaderSize = 16

// Index is the published 16-bit layout identifier. Its high byte carries
// the struct-layout bit tag; see EncodeIndex.
type Index uint16

// Slot is a fixed per-key index in [0, NumFields).
type Slot int

// InvalidSlot marks a key that is not in the shape.
const InvalidSlot Slot = -1

// EncodeIndex turns a raw registry serial into the published index. The
// low 8 bits of the serial pass through; the high bits shift up one so
// bit 8 can carry the struct-layout tag. The resulting high byte b
// always satisfies b & 0b1000_0001 == 0b0000_0001, which distinguishes
// concrete struct layouts from the other layout families.
func EncodeIndex(serial uint16) Index {
	if serial >= MaxNumLayouts {
		panic(fmt.Sprintf("layout: serial %d beyond layout cap", serial))
	}
	hi := serial >> 8
	lo := serial & 0xff
	idx := Index(hi<<9 | lo | 0x100)
	if !IsStructIndex(idx) {
		panic(fmt.Sprintf("layout: encoded index %#x fails the struct tag", uint16(idx)))
	}
	return idx
}

// IsStructIndex checks the struct-layout bit tag.
func IsStructIndex(idx Index) bool {
	b := byte(idx >> 8)
	return b&0b1000_0001 == 0b0000_0001
}

// decodeSerial inverts EncodeIndex.
func decodeSerial(idx Index) uint16 {
	return uint16(idx)>>9<<8 | uint16(idx)&0xff
}

// Field is the per-slot metadata; for struct dicts just the key.
type Field struct {
	Key *tv.StringData
}

// StructLayout is a concrete layout descriptor. Immutable after
// construction; owned by the registry and never freed.
type StructLayout struct {
	index    Index
	keyOrder KeyOrder
	fields   []Field

	// staticSlots is the hot path: hashed and compared by pointer
	// identity, valid because keys are interned. valueSlots is the
	// cold fallback for non-static lookup keys, hashed by contents.
	staticSlots map[*tv.StringData]Slot
	valueSlots  map[string]Slot

	typeOffset  int
	valueOffset int
	sizeIndex   uint8

	parent *TopLayout
}

func newStructLayout(index Index, ko KeyOrder, parent *TopLayout) *StructLayout {
	n := ko.Len()
	l := &StructLayout{
		index:       index,
		keyOrder:    ko,
		fields:      make([]Field, n),
		staticSlots: make(map[*tv.StringData]Slot, n),
		valueSlots:  make(map[string]Slot, n),
		parent:      parent,
	}
	for i := 0; i < n; i++ {
		key := ko.At(i)
		if !key.IsStatic() {
			panic("layout: non-static key in key order")
		}
		l.fields[i] = Field{Key: key}
		l.staticSlots[key] = Slot(i)
		l.valueSlots[key.String()] = Slot(i)
	}

	// Positions come first, then types, then 8-aligned values.
	l.typeOffset = n
	l.valueOffset = (l.typeOffset + n + 7) &^ 7
	l.sizeIndex = heap.Size2Index(HeaderSize + l.valueOffset + n*8)

	if l.valueOffset%8 != 0 || l.valueOffset/8 > 255 || n > 255 {
		panic(fmt.Sprintf("layout: %s breaks the packing bounds", l))
	}
	return l
}

// Index returns the published layout index.
func (l *StructLayout) Index() Index { return l.index }

// NumFields returns the number of keys in the shape.
func (l *StructLayout) NumFields() int { return len(l.fields) }

// KeyOrder returns the identifying key order.
func (l *StructLayout) KeyOrder() KeyOrder { return l.keyOrder }

// Field returns the per-slot metadata.
func (l *StructLayout) Field(slot Slot) Field {
	if slot < 0 || int(slot) >= len(l.fields) {
		panic(fmt.Sprintf("layout: field %d out of %d", slot, len(l.fields)))
	}
	return l.fields[slot]
}

// Parent returns the Top layout.
func (l *StructLayout) Parent() *TopLayout { return l.parent }

// TypeOffset is the byte offset, from the end of the header, of the
// per-slot type tag array.
func (l *StructLayout) TypeOffset() int { return l.typeOffset }

// ValueOffset is the byte offset, from the end of the header, of the
// 8-byte value payload array. Always 8-byte aligned.
func (l *StructLayout) ValueOffset() int { return l.valueOffset }

// SizeIndex is the heap size class of a whole instance.
func (l *StructLayout) SizeIndex() uint8 { return l.sizeIndex }

// TypeOffsetForSlot is the byte offset, from the instance start, of one
// slot's type tag. Used by JIT-emitted accessors.
func (l *StructLayout) TypeOffsetForSlot(slot Slot) int {
	return HeaderSize + l.typeOffset + int(slot)
}

// ValueOffsetForSlot is the byte offset, from the instance start, of one
// slot's value payload.
func (l *StructLayout) ValueOffsetForSlot(slot Slot) int {
	return HeaderSize + l.valueOffset + int(slot)*8
}

// KeySlot maps a key to its slot, or InvalidSlot. Static keys resolve by
// pointer identity; anything else takes the cold by-value path.
func (l *StructLayout) KeySlot(key *tv.StringData) Slot {
	if !key.IsStatic() {
		return l.keySlotNonStatic(key)
	}
	if slot, ok := l.staticSlots[key]; ok {
		return slot
	}
	return InvalidSlot
}

//go:noinline
func (l *StructLayout) keySlotNonStatic(key *tv.StringData) Slot {
	if slot, ok := l.valueSlots[key.String()]; ok {
		return slot
	}
	return InvalidSlot
}

func (l *StructLayout) String() string {
	ko := l.keyOrder.String()
	return "StructDict<" + ko[1:len(ko)-1] + ">"
}
