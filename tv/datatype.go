package tv

// DataType is the one-byte type tag of a tagged value. The high bit
// marks refcounted variants; clearing it yields the persistent twin.
type DataType uint8

const countedBit DataType = 0x80

const (
	// KindUninit is the absent-entry sentinel. It must be zero so a
	// memset'd type region reads as all-absent.
	KindUninit DataType = 0x00

	KindNull    DataType = 0x01
	KindBool    DataType = 0x02
	KindInt     DataType = 0x03
	KindDbl     DataType = 0x04
	KindClsMeth DataType = 0x05

	KindPersistentStr  DataType = 0x06
	KindStr            DataType = KindPersistentStr | countedBit
	KindPersistentDict DataType = 0x07
	KindDict           DataType = KindPersistentDict | countedBit
)

// IsRefcounted reports whether values of this type participate in
// reference counting.
func IsRefcounted(t DataType) bool {
	return t&countedBit != 0
}

// ModuloPersistence maps a persistent type to its counted twin. Used
// when handing out a mutable reference into a shared structure: the
// caller may overwrite the cell, so the tag must not promise
// persistence. Other types map to themselves.
func ModuloPersistence(t DataType) DataType {
	if t == KindPersistentStr || t == KindPersistentDict {
		return t | countedBit
	}
	return t
}

// IsString reports whether the type is either string variant.
func IsString(t DataType) bool {
	return t&^countedBit == KindPersistentStr
}

// IsDict reports whether the type is either dict variant.
func IsDict(t DataType) bool {
	return t&^countedBit == KindPersistentDict
}

func (t DataType) String() string {
	switch t {
	case KindUninit:
		return "Uninit"
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindDbl:
		return "Dbl"
	case KindClsMeth:
		return "ClsMeth"
	case KindPersistentStr:
		return "PersistentStr"
	case KindStr:
		return "Str"
	case KindPersistentDict:
		return "PersistentDict"
	case KindDict:
		return "Dict"
	}
	return "Invalid"
}
