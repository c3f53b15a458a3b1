package structdict

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/loomlang/bespoke/heap"
	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
)

// HeaderKind is the kind byte stamped at offset 0 of every instance.
const HeaderKind byte = 0xBD

// Header byte offsets. The layout caches at offsets 3..7 duplicate
// descriptor fields so JIT-style accessors can work from the instance
// alone.
const (
	offKind       = 0 // HeaderKind
	offRefLo      = 1 // low byte of the refcount, mirrored for dumps
	offAux        = 2 // aux bits
	offSizeIndex  = 3 // heap size class of the buffer
	offIndex      = 4 // layout index, little-endian uint16
	offNumFields  = 6 // layout.NumFields
	offValueQuads = 7 // layout.ValueOffset / 8
	offSize       = 8 // live entry count, little-endian uint32
)

const (
	auxLegacy    = 0x01
	auxStatic    = 0x02
	auxUncounted = 0x04
)

// staticRefCount marks instances that are never released. It is large
// enough that cowCheck always copies them.
const staticRefCount int32 = math.MaxInt32

// Dict is one struct dict instance. The buffer holds the header and the
// three regions; count is the authoritative refcount.
type Dict struct {
	data   []byte
	layout *layout.StructLayout
	count  int32
	handle tv.Handle
}

// Layout returns the immutable layout descriptor.
func (d *Dict) Layout() *layout.StructLayout { return d.layout }

// LayoutIndex returns the published layout index from the header.
func (d *Dict) LayoutIndex() layout.Index {
	return layout.Index(binary.LittleEndian.Uint16(d.data[offIndex:]))
}

// Size returns the number of live entries.
func (d *Dict) Size() int { return int(binary.LittleEndian.Uint32(d.data[offSize:])) }

func (d *Dict) setSize(n int) { binary.LittleEndian.PutUint32(d.data[offSize:], uint32(n)) }

// NumFields returns the slot count cached in the header.
func (d *Dict) NumFields() int { return int(d.data[offNumFields]) }

// IsLegacy reports the legacy marshaling bit.
func (d *Dict) IsLegacy() bool { return d.data[offAux]&auxLegacy != 0 }

// IsStatic reports whether this instance is never released.
func (d *Dict) IsStatic() bool { return d.data[offAux]&auxStatic != 0 }

// IsUncounted reports whether this instance was converted for sharing
// beyond a single request.
func (d *Dict) IsUncounted() bool { return d.data[offAux]&auxUncounted != 0 }

// RefCount returns the current reference count.
func (d *Dict) RefCount() int32 { return d.count }

func (d *Dict) setAux(bit byte, on bool) {
	if on {
		d.data[offAux] |= bit
	} else {
		d.data[offAux] &^= bit
	}
}

func (d *Dict) syncCountByte() { d.data[offRefLo] = byte(d.count) }

// HeapSize returns the byte size of the instance buffer.
func (d *Dict) HeapSize() int { return heap.Index2Size(d.data[offSizeIndex]) }

// Region accessors. Positions index by iteration position, types and
// values by slot.

func (d *Dict) posAt(pos int) layout.Slot {
	return layout.Slot(d.data[layout.HeaderSize+pos])
}

func (d *Dict) setPosAt(pos int, slot layout.Slot) {
	d.data[layout.HeaderSize+pos] = byte(slot)
}

func (d *Dict) typeAt(slot layout.Slot) tv.DataType {
	return tv.DataType(d.data[d.layout.TypeOffsetForSlot(slot)])
}

func (d *Dict) setTypeAt(slot layout.Slot, t tv.DataType) {
	d.data[d.layout.TypeOffsetForSlot(slot)] = byte(t)
}

func (d *Dict) valueAt(slot layout.Slot) tv.Value {
	return tv.Value(binary.LittleEndian.Uint64(d.data[d.layout.ValueOffsetForSlot(slot):]))
}

func (d *Dict) setValueAt(slot layout.Slot, v tv.Value) {
	binary.LittleEndian.PutUint64(d.data[d.layout.ValueOffsetForSlot(slot):], uint64(v))
}

// TypedValueUnchecked reads a slot without checking for Uninit. Callers
// on the iteration path know the slot is live.
func (d *Dict) TypedValueUnchecked(slot layout.Slot) tv.TypedValue {
	return tv.TypedValue{Type: d.typeAt(slot), Val: d.valueAt(slot)}
}

func (d *Dict) String() string {
	return fmt.Sprintf("%s size=%d", d.layout, d.Size())
}

// checkInvariants panics when the header disagrees with the layout or
// the regions are inconsistent. Constructors and tests call it; the hot
// paths do not.
func (d *Dict) checkInvariants() {
	l := d.layout
	if d.data[offKind] != HeaderKind {
		panic(fmt.Sprintf("structdict: kind byte %#x", d.data[offKind]))
	}
	if d.LayoutIndex() != l.Index() {
		panic(fmt.Sprintf("structdict: header index %#x, layout %#x",
			uint16(d.LayoutIndex()), uint16(l.Index())))
	}
	if d.NumFields() != l.NumFields() {
		panic(fmt.Sprintf("structdict: header numFields %d, layout %d",
			d.NumFields(), l.NumFields()))
	}
	if d.data[offSizeIndex] != l.SizeIndex() {
		panic(fmt.Sprintf("structdict: header size class %d, layout %d",
			d.data[offSizeIndex], l.SizeIndex()))
	}
	if int(d.data[offValueQuads]) != l.ValueOffset()/8 {
		panic(fmt.Sprintf("structdict: header value offset %d, layout %d",
			int(d.data[offValueQuads])*8, l.ValueOffset()))
	}
	if d.Size() > l.NumFields() {
		panic(fmt.Sprintf("structdict: size %d over %d fields", d.Size(), l.NumFields()))
	}
	seen := make(map[layout.Slot]bool, d.Size())
	for pos := 0; pos < d.Size(); pos++ {
		slot := d.posAt(pos)
		if int(slot) >= l.NumFields() || seen[slot] {
			panic(fmt.Sprintf("structdict: bad position %d -> slot %d", pos, slot))
		}
		seen[slot] = true
		if d.typeAt(slot) == tv.KindUninit {
			panic(fmt.Sprintf("structdict: live slot %d tagged Uninit", slot))
		}
	}
	for slot := 0; slot < l.NumFields(); slot++ {
		if !seen[layout.Slot(slot)] && d.typeAt(layout.Slot(slot)) != tv.KindUninit {
			panic(fmt.Sprintf("structdict: dead slot %d holds %v", slot, d.typeAt(layout.Slot(slot))))
		}
	}
}
