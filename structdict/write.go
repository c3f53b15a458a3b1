package structdict

import (
	"fmt"

	"github.com/loomlang/bespoke/errors"
	"github.com/loomlang/bespoke/heap"
	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
	"github.com/loomlang/bespoke/vanilla"
)

func (d *Dict) cowCheck() bool { return d.count > 1 }

// copyDict clones the instance into a fresh counted buffer and bumps
// every live value. Off the hot path; mutators call it only when the
// receiver is shared.
//
//go:noinline
func (d *Dict) copyDict() *Dict {
	buf := heap.AllocIndex(d.data[offSizeIndex])
	copy(buf, d.data)
	cp := &Dict{data: buf, layout: d.layout, count: 1}
	cp.data[offAux] &^= auxStatic | auxUncounted
	cp.syncCountByte()
	cp.incRefValues()
	return cp
}

func (d *Dict) incRefValues() {
	for pos := 0; pos < d.Size(); pos++ {
		tv.IncRef(d.TypedValueUnchecked(d.getSlotInPos(pos)))
	}
}

// prepare returns an instance safe to mutate: the receiver when
// unshared, a fresh copy otherwise. Move semantics: on copy, one
// reference drops off the receiver.
func (d *Dict) prepare() *Dict {
	if !d.cowCheck() {
		return d
	}
	cp := d.copyDict()
	if !d.IsStatic() {
		d.count--
		d.syncCountByte()
	}
	return cp
}

// LvalStr prepares slot for an in-place write. Keys outside the shape
// or currently absent are out of bounds.
func (d *Dict) LvalStr(key *tv.StringData) (*Dict, layout.Slot, error) {
	slot := d.layout.KeySlot(key)
	if slot == layout.InvalidSlot || d.typeAt(slot) == tv.KindUninit {
		return d, layout.InvalidSlot, errors.OutOfBoundsStr(errors.PhaseMutate, key.String())
	}
	return d.prepare(), slot, nil
}

// LvalInt always fails; struct dicts hold no integer keys.
func (d *Dict) LvalInt(k int64) (*Dict, layout.Slot, error) {
	return d, layout.InvalidSlot, errors.OutOfBoundsInt(errors.PhaseMutate, k)
}

// ElemStr resolves a slot for member access. A miss returns the
// receiver with InvalidSlot (a null sink) unless throwOnMissing asks
// for an error. On a hit the slot's type relaxes modulo persistence so
// the caller may mutate the cell in place; ClsMeth values defer to
// LvalStr instead, they never mutate in place.
func (d *Dict) ElemStr(key *tv.StringData, throwOnMissing bool) (*Dict, layout.Slot, error) {
	slot := d.layout.KeySlot(key)
	if slot == layout.InvalidSlot || d.typeAt(slot) == tv.KindUninit {
		if throwOnMissing {
			return d, layout.InvalidSlot, errors.OutOfBoundsStr(errors.PhaseLookup, key.String())
		}
		return d, layout.InvalidSlot, nil
	}
	if d.typeAt(slot) == tv.KindClsMeth {
		return d.LvalStr(key)
	}
	res := d.prepare()
	res.setTypeAt(slot, tv.ModuloPersistence(res.typeAt(slot)))
	return res, slot, nil
}

// ElemInt resolves an integer member access: a null sink, or an error
// when asked to throw.
func (d *Dict) ElemInt(k int64, throwOnMissing bool) (*Dict, layout.Slot, error) {
	if throwOnMissing {
		return d, layout.InvalidSlot, errors.OutOfBoundsInt(errors.PhaseLookup, k)
	}
	return d, layout.InvalidSlot, nil
}

// SetIntMove stores at an integer key, which no layout expresses: the
// instance escalates. One reference moves off the receiver and one off
// v.
func (d *Dict) SetIntMove(k int64, v tv.TypedValue) *vanilla.Dict {
	vad := d.escalateWithCapacity(d.Size()+1, "SetIntMove")
	vad = vad.SetIntMove(k, v)
	d.Release()
	return vad
}

// SetStrMove stores v at a string key, consuming one reference each on
// the receiver's moved ref, key, and v. A key in the shape keeps the
// struct representation; anything else escalates and the vanilla result
// comes back in the second return.
func (d *Dict) SetStrMove(key *tv.StringData, v tv.TypedValue) (*Dict, *vanilla.Dict) {
	slot := d.layout.KeySlot(key)
	if slot == layout.InvalidSlot {
		vad := d.escalateWithCapacity(d.Size()+1, "SetStrMove")
		vad = vad.SetStrMove(key, v)
		d.Release()
		return nil, vad
	}
	res := d.SetStrInSlot(slot, v)
	tv.DecRef(tv.MakeStr(key))
	return res, nil
}

// SetStrInSlot stores v at a known slot, copying a shared receiver
// first. The JIT fast path when the layout is pinned at compile time.
func (d *Dict) SetStrInSlot(slot layout.Slot, v tv.TypedValue) *Dict {
	res := d.prepare()
	res.SetStrInSlotInPlace(slot, v)
	return res
}

// SetStrInSlotInPlace stores v at a known slot on an unshared instance.
func (d *Dict) SetStrInSlotInPlace(slot layout.Slot, v tv.TypedValue) {
	if d.cowCheck() {
		panic(fmt.Sprintf("structdict: in-place write on shared instance (count %d)", d.count))
	}
	if d.typeAt(slot) == tv.KindUninit {
		d.addNextSlot(slot)
	} else {
		tv.DecRef(d.TypedValueUnchecked(slot))
	}
	d.setTypeAt(slot, v.Type)
	d.setValueAt(slot, v.Val)
}

// RemoveInt is a no-op; no integer key is ever present.
func (d *Dict) RemoveInt(int64) *Dict { return d }

// RemoveStr drops a string key. The slot stays in the layout, its entry
// goes absent and its position compacts away. A miss returns the
// receiver untouched.
func (d *Dict) RemoveStr(key *tv.StringData) *Dict {
	slot := d.layout.KeySlot(key)
	if slot == layout.InvalidSlot || d.typeAt(slot) == tv.KindUninit {
		return d
	}
	res := d.prepare()
	tv.DecRef(res.TypedValueUnchecked(slot))
	res.setTypeAt(slot, tv.KindUninit)
	res.removeSlot(slot)
	return res
}

// AppendMove appends v at the next integer key, which always escalates.
func (d *Dict) AppendMove(v tv.TypedValue) *vanilla.Dict {
	vad := d.escalateWithCapacity(d.Size()+1, "AppendMove")
	vad = vad.AppendMove(v)
	d.Release()
	return vad
}

// Pop removes the most recently inserted entry and returns its value;
// ownership of the value's reference transfers to the caller. An empty
// dict returns null and the receiver untouched.
func (d *Dict) Pop() (*Dict, tv.TypedValue) {
	if d.Size() == 0 {
		return d, tv.MakeNull()
	}
	res := d.prepare()
	pos := res.Size() - 1
	slot := res.getSlotInPos(pos)
	v := res.TypedValueUnchecked(slot)
	res.setTypeAt(slot, tv.KindUninit)
	res.setSize(pos)
	return res, v
}

// SetLegacyArray returns an instance with the legacy bit set to legacy,
// copying a shared receiver first.
func (d *Dict) SetLegacyArray(legacy bool) *Dict {
	res := d.prepare()
	res.setAux(auxLegacy, legacy)
	return res
}

// PreSort hands a vanilla copy to the sort machinery. The receiver
// keeps its references; PostSort decides what survives.
func (d *Dict) PreSort(sortName string) *vanilla.Dict {
	return d.escalateWithCapacity(d.Size(), sortName)
}

// PostSort tries to re-shape the sorted vanilla dict. When the sorted
// keys still match the layout the vanilla copy is released and a struct
// dict returns; otherwise the vanilla dict itself comes back. The
// receiver is untouched either way; the caller swaps and releases it.
func (d *Dict) PostSort(vad *vanilla.Dict) (*Dict, *vanilla.Dict) {
	res := MakeFromVanilla(vad, d.layout)
	if res == nil {
		return nil, vad
	}
	vad.Release()
	return res, nil
}

// addNextSlot records slot as the next iteration position.
func (d *Dict) addNextSlot(slot layout.Slot) {
	if int(slot) >= layout.MaxShapeKeys {
		panic(fmt.Sprintf("structdict: slot %d over the key cap", slot))
	}
	n := d.Size()
	d.setPosAt(n, slot)
	d.setSize(n + 1)
}

// removeSlot filters slot out of the positions region in one pass.
func (d *Dict) removeSlot(slot layout.Slot) {
	n := d.Size()
	idx := 0
	for pos := 0; pos < n; pos++ {
		cur := d.posAt(pos)
		if cur == slot {
			continue
		}
		d.setPosAt(idx, cur)
		idx++
	}
	d.setSize(n - 1)
}

func (d *Dict) getSlotInPos(pos int) layout.Slot {
	if pos >= d.Size() {
		panic(fmt.Sprintf("structdict: position %d past size %d", pos, d.Size()))
	}
	return d.posAt(pos)
}
