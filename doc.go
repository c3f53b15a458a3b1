// Package bespoke implements struct-shaped dictionaries for the Loom
// runtime: a specialized dict representation for values whose keys are a
// small, fixed set of interned strings.
//
// A struct dict is a fixed-size, contiguously laid out object. Its shape
// is described by a layout descriptor that assigns each key a slot and
// fixes the byte offsets of the type-tag and value regions. Descriptors
// are deduplicated process-wide by key order, so two dicts built at
// unrelated sites with the same keys share one descriptor - the JIT
// relies on that pointer equality for type specialization.
//
// The representation is optimistic. Operations the shape cannot express
// (integer keys, keys outside the descriptor, appends, comparator sorts)
// escalate one-way to the general insertion-ordered dictionary.
//
// # Packages
//
//	bespoke/             Root package, documentation only
//	├── tv/              Tagged values, intern pool, refcount primitives
//	├── heap/            Size-class allocation model, static allocators
//	├── vmtype/          JIT value-type lattice
//	├── layout/          Descriptors, layout registry, JIT type hooks
//	├── vanilla/         General dictionary escalation target
//	├── structdict/      The struct dict instance and its operations
//	├── errors/          Structured error types
//	├── layoutrepo/      Durable (index, key order) persistence via bbolt
//	└── cmd/layouts/     Repository inspection and seeding utility
//
// # Thread Safety
//
// Layout descriptors are immutable after publication and the registry is
// guarded by a reader-writer lock; both are safe for concurrent use. A
// refcounted struct dict instance belongs to one goroutine at a time -
// its reference count is deliberately non-atomic. Static instances are
// immutable and may be read concurrently.
package bespoke
