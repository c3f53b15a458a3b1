package vanilla

import (
	"github.com/loomlang/bespoke/tv"
)

// entry is one insertion-ordered slot. A nil skey means the key is the
// integer ikey. Removed entries stay in place as dead slots so the
// index maps never need rebuilding on removal.
type entry struct {
	skey *tv.StringData
	ikey int64
	val  tv.TypedValue
	dead bool
}

// Dict is the general ordered dictionary. The zero value is not usable;
// construct with MakeReserve.
type Dict struct {
	entries    []entry
	strIdx     map[string]int
	intIdx     map[int64]int
	size       int
	count      int32
	handle     tv.Handle
	nextIntKey int64
	legacy     bool
	uncounted  bool
}

// MakeReserve returns an empty dict with one reference and room for
// capacity entries.
func MakeReserve(capacity int, legacy bool) *Dict {
	return &Dict{
		entries: make([]entry, 0, capacity),
		strIdx:  make(map[string]int, capacity),
		intIdx:  make(map[int64]int),
		count:   1,
		legacy:  legacy,
	}
}

// Size returns the number of live entries.
func (d *Dict) Size() int { return d.size }

// RefCount returns the current reference count.
func (d *Dict) RefCount() int32 { return d.count }

// IsLegacy reports the legacy marshaling bit.
func (d *Dict) IsLegacy() bool { return d.legacy }

// IsUncounted reports whether this dict was converted for sharing
// beyond a single request.
func (d *Dict) IsUncounted() bool { return d.uncounted }

// SetLegacyInPlace flips the legacy bit without a copy. Callers must
// hold the only reference.
func (d *Dict) SetLegacyInPlace(legacy bool) { d.legacy = legacy }

// IsVectorData reports whether the live keys are exactly 0..size-1 in
// order.
func (d *Dict) IsVectorData() bool {
	next := int64(0)
	for _, e := range d.entries {
		if e.dead {
			continue
		}
		if e.skey != nil || e.ikey != next {
			return false
		}
		next++
	}
	return true
}

// prepare returns a dict safe to mutate: the receiver when unshared, a
// fresh copy otherwise. The copy owns new references on its contents
// and one reference drops off the receiver.
func (d *Dict) prepare() *Dict {
	if d.count <= 1 {
		return d
	}
	cp := &Dict{
		entries:    make([]entry, len(d.entries)),
		strIdx:     make(map[string]int, len(d.strIdx)),
		intIdx:     make(map[int64]int, len(d.intIdx)),
		size:       d.size,
		count:      1,
		nextIntKey: d.nextIntKey,
		legacy:     d.legacy,
	}
	copy(cp.entries, d.entries)
	for k, i := range d.strIdx {
		cp.strIdx[k] = i
	}
	for k, i := range d.intIdx {
		cp.intIdx[k] = i
	}
	for _, e := range cp.entries {
		if e.dead {
			continue
		}
		if e.skey != nil {
			tv.IncRef(tv.MakeStr(e.skey))
		}
		tv.IncRef(e.val)
	}
	d.count--
	return cp
}

// GetStr returns the value at a string key, or Uninit when absent.
func (d *Dict) GetStr(key *tv.StringData) tv.TypedValue {
	if i, ok := d.strIdx[key.String()]; ok {
		return d.entries[i].val
	}
	return tv.Uninit()
}

// GetInt returns the value at an integer key, or Uninit when absent.
func (d *Dict) GetInt(k int64) tv.TypedValue {
	if i, ok := d.intIdx[k]; ok {
		return d.entries[i].val
	}
	return tv.Uninit()
}

// SetStrMove stores v at a string key, consuming one reference each on
// key and v. Returns the dict holding the result, fresh when the
// receiver was shared.
func (d *Dict) SetStrMove(key *tv.StringData, v tv.TypedValue) *Dict {
	res := d.prepare()
	if i, ok := res.strIdx[key.String()]; ok {
		old := res.entries[i].val
		res.entries[i].val = v
		tv.DecRef(old)
		// Entry already owns a key reference; drop the inbound one.
		tv.DecRef(tv.MakeStr(key))
		return res
	}
	res.strIdx[key.String()] = len(res.entries)
	res.entries = append(res.entries, entry{skey: key, val: v})
	res.size++
	return res
}

// SetIntMove stores v at an integer key, consuming one reference on v.
func (d *Dict) SetIntMove(k int64, v tv.TypedValue) *Dict {
	res := d.prepare()
	if i, ok := res.intIdx[k]; ok {
		old := res.entries[i].val
		res.entries[i].val = v
		tv.DecRef(old)
		return res
	}
	res.intIdx[k] = len(res.entries)
	res.entries = append(res.entries, entry{ikey: k, val: v})
	res.size++
	if k >= res.nextIntKey {
		res.nextIntKey = k + 1
	}
	return res
}

// AppendMove stores v at the next integer key, consuming one reference
// on v.
func (d *Dict) AppendMove(v tv.TypedValue) *Dict {
	return d.SetIntMove(d.nextIntKey, v)
}

// RemoveStr drops a string key. A miss is a no-op and returns the
// receiver unshared.
func (d *Dict) RemoveStr(key *tv.StringData) *Dict {
	i, ok := d.strIdx[key.String()]
	if !ok {
		return d
	}
	res := d.prepare()
	e := &res.entries[i]
	tv.DecRef(tv.MakeStr(e.skey))
	tv.DecRef(e.val)
	e.skey = nil
	e.val = tv.Uninit()
	e.dead = true
	delete(res.strIdx, key.String())
	res.size--
	return res
}

// RemoveInt drops an integer key. A miss is a no-op.
func (d *Dict) RemoveInt(k int64) *Dict {
	i, ok := d.intIdx[k]
	if !ok {
		return d
	}
	res := d.prepare()
	e := &res.entries[i]
	tv.DecRef(e.val)
	e.val = tv.Uninit()
	e.dead = true
	delete(res.intIdx, k)
	res.size--
	return res
}

// Pop removes and returns the last live entry's value, transferring its
// reference to the caller. Returns Uninit on an empty dict.
func (d *Dict) Pop() (*Dict, tv.TypedValue) {
	last := -1
	for i := len(d.entries) - 1; i >= 0; i-- {
		if !d.entries[i].dead {
			last = i
			break
		}
	}
	if last < 0 {
		return d, tv.Uninit()
	}
	res := d.prepare()
	e := &res.entries[last]
	v := e.val
	if e.skey != nil {
		tv.DecRef(tv.MakeStr(e.skey))
		delete(res.strIdx, e.skey.String())
		e.skey = nil
	} else {
		delete(res.intIdx, e.ikey)
		if e.ikey == res.nextIntKey-1 {
			res.nextIntKey--
		}
	}
	e.val = tv.Uninit()
	e.dead = true
	res.size--
	return res, v
}

// IterateKV visits live entries in insertion order. Keys arrive as
// typed values; stop by returning false. No references transfer.
func (d *Dict) IterateKV(fn func(k, v tv.TypedValue) bool) {
	for _, e := range d.entries {
		if e.dead {
			continue
		}
		var k tv.TypedValue
		if e.skey != nil {
			k = tv.MakeStr(e.skey)
		} else {
			k = tv.MakeInt(e.ikey)
		}
		if !fn(k, e.val) {
			return
		}
	}
}

// TypedValue returns a tagged value carrying this dict, registering it
// in the counted arena on first use. The caller receives no new
// reference.
func (d *Dict) TypedValue() tv.TypedValue {
	if d.handle == 0 {
		d.handle = tv.RegisterCounted(d)
	}
	t := tv.KindDict
	if d.uncounted {
		t = tv.KindPersistentDict
	}
	return tv.MakeCounted(t, d.handle)
}

// Retain adds one reference. Part of tv.Counted.
func (d *Dict) Retain() { d.count++ }

// ReleaseRef drops one reference and frees the contents when it was the
// last. Part of tv.Counted.
func (d *Dict) ReleaseRef() bool {
	if d.count > 1 {
		d.count--
		return false
	}
	d.releaseContents()
	return true
}

// Release drops one reference, freeing the dict and its arena slot at
// zero.
func (d *Dict) Release() {
	if d.ReleaseRef() && d.handle != 0 {
		tv.DropCounted(d.handle)
		d.handle = 0
	}
}

func (d *Dict) releaseContents() {
	for i := range d.entries {
		e := &d.entries[i]
		if e.dead {
			continue
		}
		if e.skey != nil {
			tv.DecRef(tv.MakeStr(e.skey))
		}
		tv.DecRef(e.val)
	}
	d.entries = nil
	d.strIdx = nil
	d.intIdx = nil
	d.size = 0
}

// ConvertToUncounted rewrites keys and values into uncounted form in
// place. Part of tv.UncountedConverter; the surrounding conversion owns
// the only reference.
func (d *Dict) ConvertToUncounted(env *tv.UncountedEnv) {
	for i := range d.entries {
		e := &d.entries[i]
		if e.dead {
			continue
		}
		if e.skey != nil && !e.skey.IsStatic() && !e.skey.IsUncounted() {
			kv := tv.ConvertToUncounted(env, tv.MakeStr(e.skey))
			e.skey = kv.Str()
			d.strIdx[e.skey.String()] = i
		}
		e.val = tv.ConvertToUncounted(env, e.val)
	}
	d.uncounted = true
	d.count = 1
}

// ReleaseUncounted sweeps an uncounted dict: every key and value drops
// its uncounted reference and the arena slot is freed.
func (d *Dict) ReleaseUncounted() {
	for i := range d.entries {
		e := &d.entries[i]
		if e.dead {
			continue
		}
		if e.skey != nil {
			tv.DecRefUncounted(tv.MakeStr(e.skey))
		}
		tv.DecRefUncounted(e.val)
	}
	d.entries = nil
	d.strIdx = nil
	d.intIdx = nil
	d.size = 0
	if d.handle != 0 {
		tv.DropCounted(d.handle)
		d.handle = 0
	}
}
