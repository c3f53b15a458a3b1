package structdict

import (
	"github.com/loomlang/bespoke/heap"
	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
)

// Retain adds one reference. Part of tv.Counted; statics never count.
func (d *Dict) Retain() {
	if d.IsStatic() {
		return
	}
	d.count++
	d.syncCountByte()
}

// ReleaseRef drops one reference and reports whether it was the last,
// freeing the contents when so. Part of tv.Counted.
func (d *Dict) ReleaseRef() bool {
	if d.IsStatic() {
		return false
	}
	if d.count > 1 {
		d.count--
		d.syncCountByte()
		return false
	}
	d.releaseNow()
	return true
}

// Release drops one reference, freeing the instance and its arena slot
// at zero. No-op on static instances.
func (d *Dict) Release() {
	if d.ReleaseRef() && d.handle != 0 {
		tv.DropCounted(d.handle)
		d.handle = 0
	}
}

func (d *Dict) releaseNow() {
	d.decRefValues()
	heap.FreeIndex(d.data, d.data[offSizeIndex])
	d.data = nil
	d.count = 0
}

func (d *Dict) decRefValues() {
	for pos := 0; pos < d.Size(); pos++ {
		tv.DecRef(d.TypedValueUnchecked(d.getSlotInPos(pos)))
	}
}

// TypedValue returns a tagged value carrying this dict, registering it
// in the counted arena on first use. No new reference transfers.
func (d *Dict) TypedValue() tv.TypedValue {
	if d.handle == 0 {
		d.handle = tv.RegisterCounted(d)
	}
	t := tv.KindDict
	if d.IsStatic() || d.IsUncounted() {
		t = tv.KindPersistentDict
	}
	return tv.MakeCounted(t, d.handle)
}

// ConvertToUncounted rewrites every live value into uncounted form in
// place and marks the instance uncounted. Part of tv.UncountedConverter.
func (d *Dict) ConvertToUncounted(env *tv.UncountedEnv) {
	for pos := 0; pos < d.Size(); pos++ {
		slot := d.getSlotInPos(pos)
		v := tv.ConvertToUncounted(env, d.TypedValueUnchecked(slot))
		d.setTypeAt(slot, v.Type)
		d.setValueAt(slot, v.Val)
	}
	d.setAux(auxUncounted, true)
	d.count = 1
	d.syncCountByte()
}

// ReleaseUncounted sweeps an uncounted instance: every live value drops
// its uncounted reference and the buffer returns to the pool.
func (d *Dict) ReleaseUncounted() {
	for pos := 0; pos < d.Size(); pos++ {
		tv.DecRefUncounted(d.TypedValueUnchecked(d.getSlotInPos(pos)))
	}
	heap.FreeIndex(d.data, d.data[offSizeIndex])
	d.data = nil
	if d.handle != 0 {
		tv.DropCounted(d.handle)
		d.handle = 0
	}
}

// Scan visits every refcounted value in slot order, live or not; dead
// slots are Uninit and skip naturally. GC-style tracing hook.
func (d *Dict) Scan(fn func(tv.TypedValue) bool) {
	for slot := 0; slot < d.layout.NumFields(); slot++ {
		v := d.TypedValueUnchecked(layout.Slot(slot))
		if !tv.IsRefcounted(v.Type) {
			continue
		}
		if !fn(v) {
			return
		}
	}
}
