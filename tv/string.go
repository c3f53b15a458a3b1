package tv

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// StringData is a runtime string object. Static strings come from the
// intern pool and live for the process lifetime; counted strings are
// owned by whoever holds their references; uncounted strings are
// produced by ConvertToUncounted and swept by DecRefUncounted.
type StringData struct {
	str       string
	hash      uint64
	handle    Handle
	count     int32
	static    bool
	uncounted bool
}

// String returns the string contents.
func (sd *StringData) String() string { return sd.str }

// Hash returns the content hash, computed once at creation.
func (sd *StringData) Hash() uint64 { return sd.hash }

// Handle returns the string table handle used as a value payload.
func (sd *StringData) Handle() Handle { return sd.handle }

// IsStatic reports whether this string is interned for process lifetime.
func (sd *StringData) IsStatic() bool { return sd.static }

// IsUncounted reports whether this string is an uncounted conversion.
func (sd *StringData) IsUncounted() bool { return sd.uncounted }

// RefCount returns the current count. Meaningful for counted and
// uncounted strings only.
func (sd *StringData) RefCount() int32 { return sd.count }

// The process string table. Every StringData is registered here so an
// 8-byte payload can resolve back to the object.
var strtab = struct {
	mu       sync.RWMutex
	entries  []*StringData
	free     []Handle
	interned map[string]*StringData
	counted  int // live counted strings, for leak checks
}{
	interned: make(map[string]*StringData),
}

func registerLocked(sd *StringData) {
	if n := len(strtab.free); n > 0 {
		h := strtab.free[n-1]
		strtab.free = strtab.free[:n-1]
		strtab.entries[h-1] = sd
		sd.handle = h
		return
	}
	strtab.entries = append(strtab.entries, sd)
	sd.handle = Handle(len(strtab.entries))
}

// Intern returns the canonical static StringData for s, creating it on
// first use. The returned pointer is stable for the process lifetime:
// pointer equality implies value equality.
func Intern(s string) *StringData {
	strtab.mu.RLock()
	sd := strtab.interned[s]
	strtab.mu.RUnlock()
	if sd != nil {
		return sd
	}

	strtab.mu.Lock()
	defer strtab.mu.Unlock()
	if sd := strtab.interned[s]; sd != nil {
		return sd
	}
	sd = &StringData{str: s, hash: xxhash.Sum64String(s), static: true}
	registerLocked(sd)
	strtab.interned[s] = sd
	return sd
}

// NewString creates a counted string with one reference.
func NewString(s string) *StringData {
	sd := &StringData{str: s, hash: xxhash.Sum64String(s), count: 1}
	strtab.mu.Lock()
	registerLocked(sd)
	strtab.counted++
	strtab.mu.Unlock()
	return sd
}

func newUncountedString(s string) *StringData {
	sd := &StringData{str: s, hash: xxhash.Sum64String(s), count: 1, uncounted: true}
	strtab.mu.Lock()
	registerLocked(sd)
	strtab.mu.Unlock()
	return sd
}

func lookupString(h Handle) *StringData {
	strtab.mu.RLock()
	defer strtab.mu.RUnlock()
	if h == 0 || int(h) > len(strtab.entries) {
		panic(fmt.Sprintf("tv: invalid string handle %d", h))
	}
	sd := strtab.entries[h-1]
	if sd == nil {
		panic(fmt.Sprintf("tv: dangling string handle %d", h))
	}
	return sd
}

func freeString(sd *StringData) {
	strtab.mu.Lock()
	defer strtab.mu.Unlock()
	strtab.entries[sd.handle-1] = nil
	strtab.free = append(strtab.free, sd.handle)
	if !sd.uncounted {
		strtab.counted--
	}
	sd.handle = 0
}

// LiveCountedStrings reports how many counted strings are alive. Used by
// refcount-neutrality checks.
func LiveCountedStrings() int {
	strtab.mu.RLock()
	defer strtab.mu.RUnlock()
	return strtab.counted
}
