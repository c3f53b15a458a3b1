package tv

import (
	"fmt"
	"sync"
)

// Counted is implemented by refcounted objects stored in the arena
// (nested dicts, for this library). Counts are non-atomic; the holder
// goroutine owns them.
type Counted interface {
	// Retain adds one reference.
	Retain()

	// ReleaseRef drops one reference and reports whether it was the
	// last; the object must free its contents before returning true.
	ReleaseRef() bool
}

// UncountedConverter is optionally implemented by Counted objects that
// can rewrite their contents into uncounted form in place.
type UncountedConverter interface {
	ConvertToUncounted(env *UncountedEnv)
}

// UncountedReleaser is the sweep-side twin of UncountedConverter:
// converted objects free their uncounted contents and their arena slot.
// Static objects report IsUncounted false and are never swept.
type UncountedReleaser interface {
	IsUncounted() bool
	ReleaseUncounted()
}

// The counted object arena: handle table for non-string refcounted
// payloads.
var arena = struct {
	mu      sync.RWMutex
	entries []Counted
	free    []Handle
}{}

// RegisterCounted stores obj in the arena and returns its handle.
func RegisterCounted(obj Counted) Handle {
	arena.mu.Lock()
	defer arena.mu.Unlock()

	if n := len(arena.free); n > 0 {
		h := arena.free[n-1]
		arena.free = arena.free[:n-1]
		arena.entries[h-1] = obj
		return h
	}
	arena.entries = append(arena.entries, obj)
	return Handle(len(arena.entries))
}

// LookupCounted resolves an arena handle.
func LookupCounted(h Handle) Counted {
	arena.mu.RLock()
	defer arena.mu.RUnlock()
	if h == 0 || int(h) > len(arena.entries) {
		panic(fmt.Sprintf("tv: invalid arena handle %d", h))
	}
	obj := arena.entries[h-1]
	if obj == nil {
		panic(fmt.Sprintf("tv: dangling arena handle %d", h))
	}
	return obj
}

// DropCounted removes an object whose last reference is gone.
func DropCounted(h Handle) {
	arena.mu.Lock()
	defer arena.mu.Unlock()
	if h == 0 || int(h) > len(arena.entries) || arena.entries[h-1] == nil {
		panic(fmt.Sprintf("tv: dropping invalid arena handle %d", h))
	}
	arena.entries[h-1] = nil
	arena.free = append(arena.free, h)
}
