// Package structdict implements the struct-shaped dictionary: a dict
// whose string keys come from a fixed layout, stored as a packed binary
// instance instead of a hash table.
//
// An instance is one flat byte buffer: a 16-byte header, then a
// positions region (insertion order, one slot byte per live entry), a
// types region (one tag byte per slot, KindUninit marking an absent
// key), and an 8-aligned values region (one 8-byte payload per slot).
// All region offsets come from the immutable layout descriptor; reads
// never chase pointers past the descriptor.
//
// Instances are refcounted and copy-on-write. Mutators follow move
// semantics: they consume one reference on the receiver and on any
// counted operands, and return the dict holding the result. Operations
// the layout cannot express (integer keys, appends, unknown string
// keys) escalate to a vanilla dict; escalation is one-way.
package structdict
