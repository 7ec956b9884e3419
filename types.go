package tsdb

import (
	"strconv"
)

// TypeTag identifies the value kind of a Field or of an Array's elements.
// Tag values are part of the wire format and never change.
type TypeTag byte

const (
	TypeUnknown TypeTag = iota
	TypeByte
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeBool
	TypeChar
	TypeString
	TypeVector2
	TypeVector3
	TypeVector4
	TypeQuaternion
	TypeMatrix2
	TypeMatrix3
	TypeMatrix4

	typeTagCount
)

// ContainerTag is the first byte of every encoded node. It lives in its own
// tag space, separate from TypeTag.
type ContainerTag byte

const (
	ContainerDatabase ContainerTag = iota
	ContainerObject
	ContainerArray
	ContainerField
)

func (c ContainerTag) String() string {
	switch c {
	case ContainerDatabase:
		return "database"
	case ContainerObject:
		return "object"
	case ContainerArray:
		return "array"
	case ContainerField:
		return "field"
	default:
		return "container(" + strconv.Itoa(int(c)) + ")"
	}
}

// typeInfo is the registry entry of a value kind. Adding a kind to the format
// means adding an entry here plus its Write/Read primitives.
type typeInfo struct {
	name  string
	width int // 0 means variable (strings)
	read  func(src []byte, off int) (any, int, error)
}

func reader[T any](f func(src []byte, off int) (T, int, error)) func([]byte, int) (any, int, error) {
	return func(src []byte, off int) (any, int, error) {
		v, off, err := f(src, off)
		if err != nil {
			return nil, off, err
		}
		return v, off, nil
	}
}

var typeInfos = [typeTagCount]typeInfo{
	TypeByte:       {"byte", 1, reader(ReadByte)},
	TypeInt16:      {"short", 2, reader(ReadInt16)},
	TypeInt32:      {"int32", 4, reader(ReadInt32)},
	TypeInt64:      {"int64", 8, reader(ReadInt64)},
	TypeFloat32:    {"float32", 4, reader(ReadFloat32)},
	TypeFloat64:    {"float64", 8, reader(ReadFloat64)},
	TypeBool:       {"bool", 1, reader(ReadBool)},
	TypeChar:       {"char", 2, reader(ReadChar)},
	TypeString:     {"string", 0, reader(ReadString)},
	TypeVector2:    {"vector2", 8, reader(ReadVector2)},
	TypeVector3:    {"vector3", 12, reader(ReadVector3)},
	TypeVector4:    {"vector4", 16, reader(ReadVector4)},
	TypeQuaternion: {"quaternion", 16, reader(ReadQuaternion)},
	TypeMatrix2:    {"matrix2", 16, reader(ReadMatrix2)},
	TypeMatrix3:    {"matrix3", 36, reader(ReadMatrix3)},
	TypeMatrix4:    {"matrix4", 64, reader(ReadMatrix4)},
}

// Valid reports whether t is a registered value kind.
func (t TypeTag) Valid() bool {
	return t > TypeUnknown && t < typeTagCount
}

// Width returns the fixed encoded width of a value of kind t, or 0 for
// strings (whose width depends on the value, see StringWidth) and for
// unregistered tags.
func (t TypeTag) Width() int {
	if !t.Valid() {
		return 0
	}
	return typeInfos[t].width
}

func (t TypeTag) String() string {
	if !t.Valid() {
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeInfos[t].name
}

// ParseTypeTag is the inverse of TypeTag.String for registered kinds.
func ParseTypeTag(s string) (TypeTag, bool) {
	for t := TypeByte; t < typeTagCount; t++ {
		if typeInfos[t].name == s {
			return t, true
		}
	}
	return TypeUnknown, false
}

// payloadEnd returns the offset just past the single value of kind t that
// starts at src[off].
func payloadEnd(t TypeTag, src []byte, off int) (int, error) {
	if !t.Valid() {
		return off, &FormatError{Data: src, Off: off, Kind: ErrUnsupportedType, Tag: byte(t), Msg: "unknown value type " + t.String()}
	}
	if t == TypeString {
		return skipString(src, off)
	}
	w := typeInfos[t].width
	if err := checkRead(src, off, w); err != nil {
		return off, err
	}
	return off + w, nil
}

// readValue decodes a single value of kind t at src[off].
func readValue(t TypeTag, src []byte, off int) (any, int, error) {
	if !t.Valid() {
		return nil, off, &FormatError{Data: src, Off: off, Kind: ErrUnsupportedType, Tag: byte(t), Msg: "unknown value type " + t.String()}
	}
	return typeInfos[t].read(src, off)
}

// DecodeValue converts the raw payload of exactly one value of kind t into its
// native Go representation: byte, int16, int32, int64, float32, float64,
// bool, rune, string, Vector2, Vector3, Vector4, Quaternion, Matrix2, Matrix3
// or Matrix4.
func DecodeValue(t TypeTag, payload []byte) (any, error) {
	v, end, err := readValue(t, payload, 0)
	if err != nil {
		return nil, err
	}
	if end != len(payload) {
		return nil, formatErrf(payload, end, ErrSizeMismatch, "%d trailing bytes after %v value", len(payload)-end, t)
	}
	return v, nil
}
