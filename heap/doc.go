// Package heap models the process heap's size-class allocator.
//
// Allocations are grouped into size classes: four quantum-spaced classes
// up to 64 bytes, then four classes per doubling. A size maps to a class
// via Size2Index and every allocation is rounded up to its class size,
// so objects of one class can recycle each other's storage.
//
// Refcounted allocations go through per-class pools (AllocIndex /
// FreeIndex). Static allocations, which outlive any single request, come
// from one of two uncounted allocators selected by the LowStaticArrays
// tunable; they are never freed.
package heap
