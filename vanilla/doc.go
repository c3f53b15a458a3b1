// Package vanilla implements the general ordered dictionary.
//
// A vanilla dict accepts any mix of integer and string keys and
// iterates in insertion order. It is the escalation target for shaped
// dicts: once an operation falls outside a struct layout, the instance
// is rewritten as a vanilla dict and never goes back on its own.
//
// Dicts are refcounted and copy-on-write. Mutators consume one
// reference on inbound counted keys and values and may return a fresh
// dict when the receiver is shared.
package vanilla
