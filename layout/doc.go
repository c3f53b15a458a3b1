// Package layout implements struct-dict layout descriptors and the
// process-wide registry that deduplicates them.
//
// A layout descriptor (StructLayout) is built from a key order: an
// ordered sequence of static strings. It assigns each key a slot, fixes
// the byte offsets of the type and value regions of every instance of
// that shape, and resolves the total allocation to a heap size class.
// Descriptors are immutable after construction and are never freed.
//
// The Registry maps key orders to descriptors under a reader-writer
// lock. Each descriptor gets a stable 16-bit index whose high byte is
// bit-tagged to mark "concrete struct layout" in the wider layout
// taxonomy. The distinguished Top layout (serial 0) stands for "some
// struct dict of unknown shape"; it is the parent of every concrete
// descriptor and is created lazily on the first concrete registration.
//
// Descriptors also carry the JIT type-propagation hooks: pure functions
// from value types to predicted array layouts, used by the compiler to
// lower dict operations ahead of time.
package layout
