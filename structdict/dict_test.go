package structdict

import (
	"encoding/binary"
	"testing"

	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/tv"
	"github.com/loomlang/bespoke/vanilla"
)

func testLayout(t *testing.T, keys ...string) *layout.StructLayout {
	t.Helper()
	l := layout.Default().GetLayout(layout.InternKeys(keys...), true)
	if l == nil {
		t.Fatalf("layout registration failed for %v", keys)
	}
	return l
}

func collect(d *Dict) (keys []string, vals []tv.TypedValue) {
	for pos := d.IterBegin(); pos != d.IterEnd(); pos = d.IterAdvance(pos) {
		keys = append(keys, d.GetPosKey(pos).Str().String())
		vals = append(vals, d.GetPosVal(pos))
	}
	return
}

func setStr(t *testing.T, d *Dict, key string, v tv.TypedValue) *Dict {
	t.Helper()
	res, vad := d.SetStrMove(tv.Intern(key), v)
	if vad != nil {
		t.Fatalf("SetStrMove(%q) escalated", key)
	}
	return res
}

func TestLifecycle(t *testing.T) {
	l := testLayout(t, "a", "b", "c")
	d := MakeReserve(l, false)
	d = setStr(t, d, "b", tv.MakeInt(7))
	d = setStr(t, d, "a", tv.MakeStr(tv.NewString("hi")))
	d = setStr(t, d, "c", tv.MakeDbl(3.14))
	d.checkInvariants()

	if d.Size() != 3 {
		t.Fatalf("Size = %d, want 3", d.Size())
	}
	keys, vals := collect(d)
	if keys[0] != "b" || keys[1] != "a" || keys[2] != "c" {
		t.Errorf("iteration keys = %v, want [b a c]", keys)
	}
	if vals[0].Int() != 7 || vals[1].Str().String() != "hi" || vals[2].Dbl() != 3.14 {
		t.Errorf("iteration values = %v", vals)
	}

	if got := d.NvGetStr(tv.Intern("a")); got.Str().String() != "hi" {
		t.Errorf("NvGetStr(a) = %v", got)
	}
	if !d.NvGetStr(tv.Intern("missing")).IsUninit() {
		t.Error("missing key not Uninit")
	}
	if !d.NvGetStr(tv.Intern("zzz")).IsUninit() {
		t.Error("out-of-shape key not Uninit")
	}
	if !d.NvGetInt(0).IsUninit() {
		t.Error("int key not Uninit")
	}
	d.Release()
}

func TestRemoveAndReAdd(t *testing.T) {
	l := testLayout(t, "a", "b", "c")
	d := MakeReserve(l, false)
	d = setStr(t, d, "b", tv.MakeInt(7))
	d = setStr(t, d, "a", tv.MakeStr(tv.NewString("hi")))
	d = setStr(t, d, "c", tv.MakeDbl(3.14))

	d = d.RemoveStr(tv.Intern("a"))
	d.checkInvariants()
	if d.Size() != 2 {
		t.Fatalf("Size after remove = %d, want 2", d.Size())
	}
	keys, _ := collect(d)
	if keys[0] != "b" || keys[1] != "c" {
		t.Errorf("iteration after remove = %v, want [b c]", keys)
	}

	// A removed key that returns lands at the end.
	d = setStr(t, d, "a", tv.MakeInt(42))
	keys, vals := collect(d)
	if len(keys) != 3 || keys[2] != "a" || vals[2].Int() != 42 {
		t.Errorf("iteration after re-add = %v %v", keys, vals)
	}

	// Removing an absent key is the identity, no copy.
	if got := d.RemoveStr(tv.Intern("zzz")); got != d {
		t.Error("removing out-of-shape key copied the instance")
	}
	d2 := d.RemoveStr(tv.Intern("b"))
	if got := d2.RemoveStr(tv.Intern("b")); got != d2 {
		t.Error("removing an absent slot copied the instance")
	}
	d2.Release()
}

func TestIdempotentSet(t *testing.T) {
	l := testLayout(t, "k1", "k2")
	d := MakeReserve(l, false)
	d = setStr(t, d, "k1", tv.MakeInt(42))
	d = setStr(t, d, "k1", tv.MakeInt(42))
	if d.Size() != 1 {
		t.Errorf("Size = %d after setting one key twice", d.Size())
	}
	d.Release()
}

func TestBulkConstructorReversesValues(t *testing.T) {
	l := testLayout(t, "a", "b", "c")
	// Insert slot 2 ("c") then slot 0 ("a"); values arrive in stack
	// order, so slots[i] pairs with vals[n-i-1].
	slots := []layout.Slot{2, 0}
	vals := []tv.TypedValue{tv.MakeInt(100), tv.MakeInt(200)}
	d := MakeStructDict(l, slots, vals, false)

	if d.Size() != 2 {
		t.Fatalf("Size = %d, want 2", d.Size())
	}
	keys, got := collect(d)
	if keys[0] != "c" || keys[1] != "a" {
		t.Errorf("iteration keys = %v, want [c a]", keys)
	}
	if got[0].Int() != 200 || got[1].Int() != 100 {
		t.Errorf("iteration values = %v, want [200 100]", got)
	}
	d.Release()
}

func TestMakeFromVanilla(t *testing.T) {
	l := testLayout(t, "a", "b", "c")

	vad := vanilla.MakeReserve(2, false)
	vad = vad.SetStrMove(tv.Intern("a"), tv.MakeInt(1))
	vad = vad.SetStrMove(tv.Intern("b"), tv.MakeInt(2))

	d := MakeFromVanilla(vad, l)
	if d == nil {
		t.Fatal("MakeFromVanilla failed for fitting keys")
	}
	if d.Size() != 2 {
		t.Errorf("Size = %d, want 2", d.Size())
	}
	keys, vals := collect(d)
	if keys[0] != "a" || keys[1] != "b" || vals[0].Int() != 1 || vals[1].Int() != 2 {
		t.Errorf("round trip = %v %v", keys, vals)
	}
	d.Release()
	vad.Release()

	bad := vanilla.MakeReserve(2, false)
	bad = bad.SetStrMove(tv.Intern("a"), tv.MakeInt(1))
	bad = bad.SetStrMove(tv.Intern("d"), tv.MakeInt(4))
	if MakeFromVanilla(bad, l) != nil {
		t.Error("MakeFromVanilla accepted a foreign key")
	}
	bad.Release()
}

func TestRefcountNeutrality(t *testing.T) {
	base := tv.LiveCountedStrings()
	l := testLayout(t, "n1", "n2", "n3")
	d := MakeReserve(l, false)
	d = setStr(t, d, "n1", tv.MakeStr(tv.NewString("v1")))
	d = setStr(t, d, "n2", tv.MakeStr(tv.NewString("v2")))
	d = setStr(t, d, "n3", tv.MakeStr(tv.NewString("v3")))

	// Overwrite drops the old value's only reference.
	d = setStr(t, d, "n2", tv.MakeStr(tv.NewString("v2b")))
	d = d.RemoveStr(tv.Intern("n3"))
	d.Release()

	if got := tv.LiveCountedStrings(); got != base {
		t.Errorf("leaked %d counted strings", got-base)
	}
}

func TestStaticInstance(t *testing.T) {
	l := testLayout(t, "s1", "s2")
	d := MakeStaticReserve(l, false)
	if !d.IsStatic() {
		t.Fatal("static bit missing")
	}

	// Statics never count and never free.
	d.Retain()
	d.Release()
	if d.RefCount() != staticRefCount {
		t.Errorf("static refcount moved to %d", d.RefCount())
	}

	// Mutation copies; the copy is counted and the static is untouched.
	res, vad := d.SetStrMove(tv.Intern("s1"), tv.MakeInt(1))
	if vad != nil {
		t.Fatal("in-shape set escalated")
	}
	if res == d {
		t.Fatal("static instance mutated in place")
	}
	if res.IsStatic() {
		t.Error("copy of a static is still static")
	}
	if d.Size() != 0 || res.Size() != 1 {
		t.Errorf("sizes = %d/%d, want 0/1", d.Size(), res.Size())
	}
	res.Release()
}

func TestNestedDictValue(t *testing.T) {
	l := testLayout(t, "inner")
	inner := vanilla.MakeReserve(1, false)
	inner = inner.AppendMove(tv.MakeInt(5))

	d := MakeReserve(l, false)
	d = setStr(t, d, "inner", inner.TypedValue())

	got := d.NvGetStr(tv.Intern("inner"))
	if got.Type != tv.KindDict {
		t.Fatalf("nested value type = %v", got.Type)
	}
	if tv.LookupCounted(got.Handle()).(*vanilla.Dict) != inner {
		t.Fatal("nested dict identity lost")
	}
	if inner.RefCount() != 1 {
		t.Errorf("inner refcount = %d, want 1", inner.RefCount())
	}
	d.Release() // releases inner too
}

func TestHeaderCaches(t *testing.T) {
	l := testLayout(t, "h1", "h2", "h3", "h4", "h5")
	d := MakeReserve(l, true)
	defer d.Release()

	if d.LayoutIndex() != l.Index() {
		t.Errorf("header index %#x, layout %#x", uint16(d.LayoutIndex()), uint16(l.Index()))
	}
	if d.NumFields() != 5 {
		t.Errorf("NumFields = %d", d.NumFields())
	}
	if !d.IsLegacy() {
		t.Error("legacy bit lost at construction")
	}
	if d.HeapSize() < layout.HeaderSize+l.ValueOffset()+5*8 {
		t.Errorf("HeapSize = %d too small", d.HeapSize())
	}
	d.checkInvariants()
}

func TestSizeFieldWidth(t *testing.T) {
	l := testLayout(t, "w1", "w2")
	d := MakeReserve(l, false)
	defer d.Release()

	if got := binary.LittleEndian.Uint32(d.data[offSize:]); got != 0 {
		t.Fatalf("size field at construction = %d", got)
	}
	d = setStr(t, d, "w1", tv.MakeInt(1))
	d = setStr(t, d, "w2", tv.MakeInt(2))

	// The live count occupies all four header bytes at offSize.
	if got := binary.LittleEndian.Uint32(d.data[offSize:]); got != 2 {
		t.Fatalf("size field = %d, want 2", got)
	}
	if d.data[offSize+1] != 0 || d.data[offSize+2] != 0 || d.data[offSize+3] != 0 {
		t.Error("high size bytes not maintained")
	}
	if d.Size() != 2 {
		t.Errorf("Size = %d, want 2", d.Size())
	}
}
