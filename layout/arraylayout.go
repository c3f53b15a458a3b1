package layout

import "github.com/loomlang/bespoke/vmtype"

// ArrayLayout is the layout lattice the JIT propagates: an operation on
// a struct dict either stays in its concrete layout, falls back to the
// vanilla representation, or loses all layout information (Top).
type ArrayLayout struct {
	kind   arrayLayoutKind
	layout *StructLayout
}

type arrayLayoutKind uint8

const (
	alTop arrayLayoutKind = iota
	alVanilla
	alStruct
	alTopStruct
)

// TopArrayLayout is "any array layout".
func TopArrayLayout() ArrayLayout { return ArrayLayout{kind: alTop} }

// TopStructArrayLayout is "some struct layout, shape unknown".
func TopStructArrayLayout() ArrayLayout { return ArrayLayout{kind: alTopStruct} }

// VanillaArrayLayout is the general hash-table representation.
func VanillaArrayLayout() ArrayLayout { return ArrayLayout{kind: alVanilla} }

// StructArrayLayout pins a concrete struct layout.
func StructArrayLayout(l *StructLayout) ArrayLayout {
	return ArrayLayout{kind: alStruct, layout: l}
}

// IsTop reports whether no layout information remains.
func (a ArrayLayout) IsTop() bool { return a.kind == alTop }

// IsVanilla reports whether the prediction is the general representation.
func (a ArrayLayout) IsVanilla() bool { return a.kind == alVanilla }

// Struct returns the pinned concrete layout, or nil.
func (a ArrayLayout) Struct() *StructLayout { return a.layout }

func (a ArrayLayout) String() string {
	switch a.kind {
	case alVanilla:
		return "Vanilla"
	case alStruct:
		return a.layout.String()
	case alTopStruct:
		return "StructDict<Top>"
	default:
		return "Top"
	}
}

// JIT type-propagation hooks. Pure functions: given the types the
// compiler knows for keys and values, predict the layout of the result
// and the type of the element. The compiler uses these to lower dict
// operations against a fixed slot instead of a hash probe.

// AppendType predicts the layout after an append. Appends take integer
// keys, which defeat the struct shape unconditionally.
func (l *StructLayout) AppendType(val vmtype.Type) ArrayLayout {
	return VanillaArrayLayout()
}

// RemoveType predicts the layout after removing a key. Removal never
// changes the shape.
func (l *StructLayout) RemoveType(key vmtype.Type) ArrayLayout {
	return StructArrayLayout(l)
}

// SetType predicts the layout after a keyed set.
func (l *StructLayout) SetType(key, val vmtype.Type) ArrayLayout {
	if key.SubtypeOf(vmtype.TInt) {
		return VanillaArrayLayout()
	}
	sd, ok := key.ConstStrVal()
	if !ok {
		return TopArrayLayout()
	}
	if l.KeySlot(sd) == InvalidSlot {
		return VanillaArrayLayout()
	}
	return StructArrayLayout(l)
}

// ElemType predicts the element type for a keyed read. The bool reports
// whether the element is statically known to be present.
func (l *StructLayout) ElemType(key vmtype.Type) (vmtype.Type, bool) {
	if key.SubtypeOf(vmtype.TInt) {
		return vmtype.TBottom, false
	}
	sd, ok := key.ConstStrVal()
	if !ok {
		return vmtype.TInitCell, false
	}
	if l.KeySlot(sd) == InvalidSlot {
		return vmtype.TBottom, false
	}
	return vmtype.TInitCell, false
}

// FirstLastType gives the type of the first or last key or value.
func (l *StructLayout) FirstLastType(isFirst, isKey bool) (vmtype.Type, bool) {
	if isKey {
		return vmtype.TStaticStr, false
	}
	return vmtype.TInitCell, false
}

// IterPosType gives the type of the key or value at an iterator position.
func (l *StructLayout) IterPosType(pos vmtype.Type, isKey bool) vmtype.Type {
	if isKey {
		return vmtype.TStaticStr
	}
	return vmtype.TInitCell
}

// Top layout hooks: same shape-defeating rules with looser bounds, since
// no slot table is available.

func (l *TopLayout) AppendType(val vmtype.Type) ArrayLayout {
	return VanillaArrayLayout()
}

func (l *TopLayout) RemoveType(key vmtype.Type) ArrayLayout {
	return TopStructArrayLayout()
}

func (l *TopLayout) SetType(key, val vmtype.Type) ArrayLayout {
	return TopArrayLayout()
}

func (l *TopLayout) ElemType(key vmtype.Type) (vmtype.Type, bool) {
	if key.SubtypeOf(vmtype.TInt) {
		return vmtype.TBottom, false
	}
	return vmtype.TInitCell, false
}

func (l *TopLayout) FirstLastType(isFirst, isKey bool) (vmtype.Type, bool) {
	if isKey {
		return vmtype.TStaticStr, false
	}
	return vmtype.TInitCell, false
}

func (l *TopLayout) IterPosType(pos vmtype.Type, isKey bool) vmtype.Type {
	if isKey {
		return vmtype.TStaticStr
	}
	return vmtype.TInitCell
}
