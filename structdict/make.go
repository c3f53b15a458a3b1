package structdict

import (
	"encoding/binary"
	"fmt"

	"github.com/loomlang/bespoke/heap"
	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
	"github.com/loomlang/bespoke/vanilla"
)

func allocDict(l *layout.StructLayout, legacy, static bool) *Dict {
	var buf []byte
	if static {
		buf = heap.StaticAlloc(heap.Index2Size(l.SizeIndex()))
	} else {
		buf = heap.AllocIndex(l.SizeIndex())
		// Pool buffers are dirty; scrub the header and the byte regions.
		// Values need no scrub, an Uninit tag gates every read.
		for i := 0; i < layout.HeaderSize+l.ValueOffset(); i++ {
			buf[i] = 0
		}
	}

	d := &Dict{data: buf, layout: l, count: 1}
	if static {
		d.count = staticRefCount
	}

	buf[offKind] = HeaderKind
	buf[offSizeIndex] = l.SizeIndex()
	binary.LittleEndian.PutUint16(buf[offIndex:], uint16(l.Index()))
	buf[offNumFields] = byte(l.NumFields())
	buf[offValueQuads] = byte(l.ValueOffset() / 8)
	if legacy {
		buf[offAux] |= auxLegacy
	}
	if static {
		buf[offAux] |= auxStatic
	}
	d.syncCountByte()
	return d
}

// MakeReserve returns an empty instance of the layout with one
// reference. Every slot starts absent.
func MakeReserve(l *layout.StructLayout, legacy bool) *Dict {
	return allocDict(l, legacy, false)
}

// MakeStaticReserve returns an empty instance that is never released.
func MakeStaticReserve(l *layout.StructLayout, legacy bool) *Dict {
	return allocDict(l, legacy, true)
}

// MakeStructDict is the bulk constructor. slots gives the insertion
// order; vals arrives with the value for slots[i] at vals[n-i-1], the
// order an evaluation stack pops them in. Ownership of one reference
// per value moves in.
func MakeStructDict(l *layout.StructLayout, slots []layout.Slot, vals []tv.TypedValue, legacy bool) *Dict {
	if len(slots) != len(vals) {
		panic(fmt.Sprintf("structdict: %d slots, %d values", len(slots), len(vals)))
	}
	d := allocDict(l, legacy, false)
	n := len(slots)
	for i, slot := range slots {
		v := vals[n-i-1]
		if v.IsUninit() {
			panic(fmt.Sprintf("structdict: Uninit value for slot %d", slot))
		}
		d.setPosAt(i, slot)
		d.setTypeAt(slot, v.Type)
		d.setValueAt(slot, v.Val)
	}
	d.setSize(n)
	d.checkInvariants()
	return d
}

// MakeFromVanilla builds a struct dict from a vanilla dict whose keys
// all belong to the layout. Returns nil when any key does not fit; the
// vanilla dict is never consumed.
func MakeFromVanilla(vad *vanilla.Dict, l *layout.StructLayout) *Dict {
	d := allocDict(l, vad.IsLegacy(), false)

	fail := false
	vad.IterateKV(func(k, v tv.TypedValue) bool {
		if !tv.IsString(k.Type) {
			fail = true
			return false
		}
		slot := l.KeySlot(k.Str())
		if slot == layout.InvalidSlot {
			fail = true
			return false
		}
		d.addNextSlot(slot)
		d.setTypeAt(slot, v.Type)
		d.setValueAt(slot, v.Val)
		tv.IncRef(v)
		return true
	})

	if fail {
		d.Release()
		return nil
	}
	d.checkInvariants()
	return d
}
