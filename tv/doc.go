// Package tv implements the tagged value representation shared by every
// dict layout: a one-byte DataType tag paired with an 8-byte Value
// payload.
//
// Immediate types (null, bool, int, double, clsmeth) carry their bits in
// the payload directly. String payloads are handles into the process
// string table; static strings are interned there for the life of the
// process, so pointer equality of *StringData implies value equality.
// Other refcounted payloads (nested dicts) are handles into the counted
// object arena.
//
// Reference counts are deliberately non-atomic: a counted value belongs
// to one goroutine at a time. Static and uncounted values opt out of
// counting entirely and may be shared freely.
package tv
