package layoutrepo

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"github.com/loomlang/bespoke/errors"
	"github.com/loomlang/bespoke/layout"
)

func openTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layouts.db")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, path
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	r, _ := openTestRepo(t)

	src := layout.NewRegistry()
	a := src.GetLayout(layout.InternKeys("rt_a", "rt_b"), true)
	b := src.GetLayout(layout.InternKeys("rt_c"), true)
	c := src.GetLayout(layout.InternKeys("rt_a", "rt_b", "rt_c"), true)

	if err := r.Save(src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := layout.NewRegistry()
	if err := r.Restore(dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dst.NumLayouts() != src.NumLayouts() {
		t.Fatalf("NumLayouts = %d, want %d", dst.NumLayouts(), src.NumLayouts())
	}
	for _, l := range []*layout.StructLayout{a, b, c} {
		got := dst.FromIndex(l.Index())
		if got == nil {
			t.Fatalf("layout %v missing after restore", l)
		}
		if !got.KeyOrder().Equal(l.KeyOrder()) {
			t.Errorf("layout %#x restored with keys %v", uint16(l.Index()), got.KeyOrder())
		}
	}
}

func TestRestoreIntoEmptyFile(t *testing.T) {
	r, _ := openTestRepo(t)
	reg := layout.NewRegistry()
	if err := r.Restore(reg); err != nil {
		t.Fatalf("Restore on empty repo: %v", err)
	}
	if reg.NumLayouts() != 0 {
		t.Errorf("empty restore created %d layouts", reg.NumLayouts())
	}
}

func TestRestoreIndexMismatchIsFatal(t *testing.T) {
	r, _ := openTestRepo(t)

	src := layout.NewRegistry()
	src.GetLayout(layout.InternKeys("mm_a"), true)
	if err := r.Save(src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A registry that already assigned the serial elsewhere has diverged
	// from the repository; Deserialize treats that as unrecoverable.
	dst := layout.NewRegistry()
	dst.GetLayout(layout.InternKeys("mm_other"), true)
	defer func() {
		if recover() == nil {
			t.Fatal("index mismatch did not panic")
		}
	}()
	r.Restore(dst)
}

func TestRestoreCorruptRecord(t *testing.T) {
	r, path := openTestRepo(t)

	src := layout.NewRegistry()
	src.GetLayout(layout.InternKeys("cr_a"), true)
	if err := r.Save(src); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("layouts")).Put([]byte{0xff, 0xff}, []byte("not msgpack"))
	})
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	db.Close()

	r2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r2.Close()
	err = r2.Restore(layout.NewRegistry())
	if !stderrors.Is(err, errors.CorruptRecord(nil, "")) {
		t.Fatalf("Restore = %v, want corrupt record", err)
	}
}
