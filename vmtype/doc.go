// Package vmtype implements the value-type lattice the JIT reasons
// with. A Type is a bitset over primitive value kinds, optionally
// refined by a known constant static string. The layout hooks in the
// layout package map these types to array-layout predictions.
package vmtype
