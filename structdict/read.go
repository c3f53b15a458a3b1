package structdict

import (
	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
)

// NvGetInt looks up an integer key. Struct dicts never hold one, so
// this always reports absence.
func (d *Dict) NvGetInt(int64) tv.TypedValue { return tv.Uninit() }

// NvGetStr looks up a string key. Absent keys, in or out of the shape,
// come back Uninit.
func (d *Dict) NvGetStr(key *tv.StringData) tv.TypedValue {
	slot := d.layout.KeySlot(key)
	if slot == layout.InvalidSlot {
		return tv.Uninit()
	}
	if d.typeAt(slot) == tv.KindUninit {
		return tv.Uninit()
	}
	return d.TypedValueUnchecked(slot)
}

// GetPosKey returns the key at an iteration position as a persistent
// string value.
func (d *Dict) GetPosKey(pos int) tv.TypedValue {
	slot := d.getSlotInPos(pos)
	return tv.MakeStr(d.layout.Field(slot).Key)
}

// GetPosVal returns the value at an iteration position. No reference
// transfers.
func (d *Dict) GetPosVal(pos int) tv.TypedValue {
	return d.TypedValueUnchecked(d.getSlotInPos(pos))
}

// Iteration positions run [0, Size()); Size() is the end sentinel.

func (d *Dict) IterBegin() int { return 0 }

func (d *Dict) IterEnd() int { return d.Size() }

// IterLast returns the last valid position, or the end sentinel on an
// empty dict.
func (d *Dict) IterLast() int {
	if n := d.Size(); n > 0 {
		return n - 1
	}
	return d.Size()
}

func (d *Dict) IterAdvance(pos int) int {
	if pos < d.Size() {
		return pos + 1
	}
	return d.Size()
}

func (d *Dict) IterRewind(pos int) int {
	if pos > 0 {
		return pos - 1
	}
	return d.Size()
}

// IsVectorData reports whether the entries could be a vector. Struct
// dicts have string keys only, so this holds just for the empty dict.
func (d *Dict) IsVectorData() bool { return d.Size() == 0 }
