package layout

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MaxNumLayouts caps how many layouts one process can register,
// including the Top layout at serial 0. Past the cap no new shape can be
// created and callers stay on the vanilla representation.
const MaxNumLayouts = 1 << 14

// Registry deduplicates layout descriptors by key order and assigns
// their indices. Lookups take the read lock; the only writer path is
// insertion, which double-checks after upgrading to the write lock.
type Registry struct {
	mu         sync.RWMutex
	byHash     map[uint64][]*StructLayout
	bySerial   []*StructLayout // serial -> layout; serial 0 (Top) is nil here
	top        *TopLayout
	count      int // layouts registered, Top included
	maxLayouts int
}

// NewRegistry creates an empty registry with the process cap.
func NewRegistry() *Registry {
	return newRegistryWithCap(MaxNumLayouts)
}

func newRegistryWithCap(maxLayouts int) *Registry {
	return &Registry{
		byHash:     make(map[uint64][]*StructLayout),
		bySerial:   make([]*StructLayout, 1), // reserve serial 0 for Top
		maxLayouts: maxLayouts,
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// GetLayout returns the descriptor for a key order, or nil for invalid
// key orders. With create=false a miss returns nil; with create=true a
// new descriptor is registered unless the cap is reached.
func (r *Registry) GetLayout(ko KeyOrder, create bool) *StructLayout {
	if ko.Empty() || !ko.Valid() {
		return nil
	}

	r.mu.RLock()
	l := r.findLocked(ko)
	r.mu.RUnlock()
	if l != nil || !create {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l := r.findLocked(ko); l != nil {
		return l
	}

	if r.count == r.maxLayouts {
		return nil
	}

	// The Top layout takes serial 0 before any concrete layout exists,
	// so every concrete descriptor has a parent.
	if r.count == 0 {
		r.top = newTopLayout()
		r.count++
	}

	serial := uint16(r.count)
	r.count++
	l = newStructLayout(EncodeIndex(serial), ko, r.top)
	r.byHash[ko.Hash()] = append(r.byHash[ko.Hash()], l)
	r.bySerial = append(r.bySerial, l)

	logger.Debug("registered struct layout",
		zap.Uint16("index", uint16(l.Index())),
		zap.String("layout", l.String()),
		zap.Int("num_fields", l.NumFields()),
	)
	return l
}

func (r *Registry) findLocked(ko KeyOrder) *StructLayout {
	for _, l := range r.byHash[ko.Hash()] {
		if l.keyOrder.Equal(ko) {
			return l
		}
	}
	return nil
}

// Deserialize replays a registration from a durable repository that
// recorded the assigned index. The registry must assign the expected
// index back; a mismatch means the repository and the process disagree
// about creation order, which is unrecoverable.
func (r *Registry) Deserialize(expected Index, ko KeyOrder) *StructLayout {
	l := r.GetLayout(ko, true)
	if l == nil {
		panic(fmt.Sprintf("layout: cannot deserialize %s", ko))
	}
	if l.Index() != expected {
		panic(fmt.Sprintf("layout: deserialized %s as %#x, repository says %#x",
			ko, uint16(l.Index()), uint16(expected)))
	}
	return l
}

// FromIndex resolves a published index to its descriptor, or nil. The
// Top layout is not resolvable here; no instance carries it.
func (r *Registry) FromIndex(idx Index) *StructLayout {
	if !IsStructIndex(idx) {
		return nil
	}
	serial := int(decodeSerial(idx))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if serial <= 0 || serial >= len(r.bySerial) {
		return nil
	}
	return r.bySerial[serial]
}

// Top returns the Top layout, or nil before the first registration.
func (r *Registry) Top() *TopLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.top
}

// NumLayouts reports how many layouts are registered, Top included.
func (r *Registry) NumLayouts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Each visits concrete descriptors in serial order. Used by durable
// repositories, which must persist creation order to replay it.
func (r *Registry) Each(fn func(*StructLayout) bool) {
	r.mu.RLock()
	layouts := make([]*StructLayout, len(r.bySerial))
	copy(layouts, r.bySerial)
	r.mu.RUnlock()

	for _, l := range layouts {
		if l == nil {
			continue
		}
		if !fn(l) {
			return
		}
	}
}
