package vanilla

import (
	"testing"

	"github.com/loomlang/bespoke/tv"
)

func TestDict_SetGetOrder(t *testing.T) {
	d := MakeReserve(4, false)
	d = d.SetStrMove(tv.Intern("a"), tv.MakeInt(1))
	d = d.SetIntMove(7, tv.MakeInt(2))
	d = d.SetStrMove(tv.Intern("b"), tv.MakeInt(3))

	if d.Size() != 3 {
		t.Fatalf("Size = %d, want 3", d.Size())
	}
	if got := d.GetStr(tv.Intern("a")); got.Int() != 1 {
		t.Errorf("GetStr(a) = %v", got)
	}
	if got := d.GetInt(7); got.Int() != 2 {
		t.Errorf("GetInt(7) = %v", got)
	}
	if !d.GetStr(tv.Intern("missing")).IsUninit() {
		t.Error("missing key not Uninit")
	}

	var keys []string
	d.IterateKV(func(k, v tv.TypedValue) bool {
		keys = append(keys, k.String())
		return true
	})
	want := []string{`PersistentStr("a")`, "Int(7)", `PersistentStr("b")`}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("iteration order[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
	d.Release()
}

func TestDict_OverwriteDropsOldValue(t *testing.T) {
	base := tv.LiveCountedStrings()
	d := MakeReserve(2, false)
	d = d.SetStrMove(tv.Intern("k"), tv.MakeStr(tv.NewString("old")))
	d = d.SetStrMove(tv.Intern("k"), tv.MakeStr(tv.NewString("new")))

	if d.Size() != 1 {
		t.Fatalf("Size = %d, want 1", d.Size())
	}
	if got := d.GetStr(tv.Intern("k")).Str().String(); got != "new" {
		t.Errorf("value = %q, want new", got)
	}
	d.Release()
	if got := tv.LiveCountedStrings(); got != base {
		t.Errorf("leaked %d counted strings", got-base)
	}
}

func TestDict_AppendNextIntKey(t *testing.T) {
	d := MakeReserve(4, false)
	d = d.AppendMove(tv.MakeInt(10))
	d = d.AppendMove(tv.MakeInt(11))
	d = d.SetIntMove(100, tv.MakeInt(12))
	d = d.AppendMove(tv.MakeInt(13))

	if got := d.GetInt(0); got.Int() != 10 {
		t.Errorf("GetInt(0) = %v", got)
	}
	if got := d.GetInt(101); got.Int() != 13 {
		t.Errorf("append after explicit key landed at %v, want key 101", got)
	}
	if d.IsVectorData() {
		t.Error("sparse int keys reported as vector data")
	}
	d.Release()

	v := MakeReserve(2, false)
	v = v.AppendMove(tv.MakeInt(0))
	v = v.AppendMove(tv.MakeInt(1))
	if !v.IsVectorData() {
		t.Error("dense appends not vector data")
	}
	v.Release()
}

func TestDict_RemoveKeepsOrder(t *testing.T) {
	d := MakeReserve(4, false)
	d = d.SetStrMove(tv.Intern("a"), tv.MakeInt(1))
	d = d.SetStrMove(tv.Intern("b"), tv.MakeInt(2))
	d = d.SetStrMove(tv.Intern("c"), tv.MakeInt(3))
	d = d.RemoveStr(tv.Intern("b"))

	if d.Size() != 2 {
		t.Fatalf("Size = %d, want 2", d.Size())
	}
	if !d.GetStr(tv.Intern("b")).IsUninit() {
		t.Error("removed key still present")
	}
	var vals []int64
	d.IterateKV(func(k, v tv.TypedValue) bool {
		vals = append(vals, v.Int())
		return true
	})
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Errorf("iteration after remove = %v, want [1 3]", vals)
	}

	// Reinsertion lands at the end.
	d = d.SetStrMove(tv.Intern("b"), tv.MakeInt(4))
	vals = vals[:0]
	d.IterateKV(func(k, v tv.TypedValue) bool {
		vals = append(vals, v.Int())
		return true
	})
	if len(vals) != 3 || vals[2] != 4 {
		t.Errorf("iteration after reinsert = %v, want [1 3 4]", vals)
	}
	d.Release()
}

func TestDict_CopyOnWrite(t *testing.T) {
	base := tv.LiveCountedStrings()
	d := MakeReserve(2, false)
	d = d.SetStrMove(tv.Intern("k"), tv.MakeStr(tv.NewString("shared")))

	d.Retain() // second owner
	mutated := d.SetStrMove(tv.Intern("extra"), tv.MakeInt(5))

	if mutated == d {
		t.Fatal("shared dict mutated in place")
	}
	if d.Size() != 1 || mutated.Size() != 2 {
		t.Errorf("sizes = %d/%d, want 1/2", d.Size(), mutated.Size())
	}
	if !d.GetStr(tv.Intern("extra")).IsUninit() {
		t.Error("mutation leaked into the shared original")
	}

	d.Release()
	mutated.Release()
	if got := tv.LiveCountedStrings(); got != base {
		t.Errorf("leaked %d counted strings", got-base)
	}
}

func TestDict_Pop(t *testing.T) {
	d := MakeReserve(2, false)
	d = d.AppendMove(tv.MakeInt(1))
	d = d.AppendMove(tv.MakeInt(2))

	d, v := d.Pop()
	if v.Int() != 2 {
		t.Errorf("Pop = %v, want 2", v)
	}
	if d.Size() != 1 {
		t.Errorf("Size after pop = %d", d.Size())
	}
	// The popped key is reusable.
	d = d.AppendMove(tv.MakeInt(3))
	if got := d.GetInt(1); got.Int() != 3 {
		t.Errorf("append after pop = %v, want key 1", got)
	}

	empty := MakeReserve(0, false)
	if _, v := empty.Pop(); !v.IsUninit() {
		t.Error("Pop on empty dict returned a value")
	}
	empty.Release()
	d.Release()
}

func TestDict_ArenaRoundTrip(t *testing.T) {
	d := MakeReserve(1, false)
	d = d.SetStrMove(tv.Intern("k"), tv.MakeInt(9))

	v := d.TypedValue()
	if v.Type != tv.KindDict {
		t.Fatalf("TypedValue type = %v", v.Type)
	}
	got := tv.LookupCounted(v.Handle()).(*Dict)
	if got != d {
		t.Fatal("arena handle does not resolve to the dict")
	}

	tv.IncRef(v)
	if d.RefCount() != 2 {
		t.Errorf("RefCount = %d, want 2", d.RefCount())
	}
	tv.DecRef(v)
	d.Release()
}

func TestDict_UncountedConversion(t *testing.T) {
	base := tv.LiveCountedStrings()
	d := MakeReserve(2, false)
	d = d.SetStrMove(tv.NewString("ckey"), tv.MakeStr(tv.NewString("cval")))
	d = d.SetStrMove(tv.Intern("s"), tv.MakeInt(1))

	env := tv.NewUncountedEnv()
	d.ConvertToUncounted(env)

	if got := tv.LiveCountedStrings(); got != base {
		t.Fatalf("counted strings survive conversion: %d", got-base)
	}
	if v := d.TypedValue(); v.Type != tv.KindPersistentDict {
		t.Errorf("uncounted dict tagged %v", v.Type)
	}
	if got := d.GetStr(tv.Intern("ckey")); got.IsUninit() || got.Str().String() != "cval" {
		t.Errorf("converted key lookup = %v", got)
	}

	d.ReleaseUncounted()
}

func TestDict_LegacyBit(t *testing.T) {
	d := MakeReserve(0, true)
	if !d.IsLegacy() {
		t.Error("legacy bit lost at construction")
	}
	d.SetLegacyInPlace(false)
	if d.IsLegacy() {
		t.Error("SetLegacyInPlace(false) ignored")
	}
	d.Release()
}
