package tsdb

import (
	"bytes"
	"fmt"
)

// Field is a single named value. The value is kept in its encoded form, so a
// Field's size is known without re-encoding and typed accessors decode on
// demand.
type Field struct {
	name string
	typ  TypeTag
	data []byte
}

func newField[T any](name string, t TypeTag, v T, write func([]byte, int, T) (int, error)) *Field {
	data := make([]byte, t.Width())
	must(write(data, 0, v))
	return &Field{name: checkName(name), typ: t, data: data}
}

func ByteField(name string, v byte) *Field    { return newField(name, TypeByte, v, WriteByte) }
func Int16Field(name string, v int16) *Field  { return newField(name, TypeInt16, v, WriteInt16) }
func Int32Field(name string, v int32) *Field  { return newField(name, TypeInt32, v, WriteInt32) }
func Int64Field(name string, v int64) *Field  { return newField(name, TypeInt64, v, WriteInt64) }
func BoolField(name string, v bool) *Field    { return newField(name, TypeBool, v, WriteBool) }
func CharField(name string, v rune) *Field    { return newField(name, TypeChar, v, WriteChar) }
func Vector2Field(name string, v Vector2) *Field {
	return newField(name, TypeVector2, v, WriteVector2)
}
func Vector3Field(name string, v Vector3) *Field {
	return newField(name, TypeVector3, v, WriteVector3)
}
func Vector4Field(name string, v Vector4) *Field {
	return newField(name, TypeVector4, v, WriteVector4)
}
func QuaternionField(name string, v Quaternion) *Field {
	return newField(name, TypeQuaternion, v, WriteQuaternion)
}
func Matrix2Field(name string, v Matrix2) *Field {
	return newField(name, TypeMatrix2, v, WriteMatrix2)
}
func Matrix3Field(name string, v Matrix3) *Field {
	return newField(name, TypeMatrix3, v, WriteMatrix3)
}
func Matrix4Field(name string, v Matrix4) *Field {
	return newField(name, TypeMatrix4, v, WriteMatrix4)
}

func Float32Field(name string, v float32) *Field {
	return newField(name, TypeFloat32, v, WriteFloat32)
}

func Float64Field(name string, v float64) *Field {
	return newField(name, TypeFloat64, v, WriteFloat64)
}

// StringField panics if v is longer than MaxStringUnits UTF-16 code units.
func StringField(name string, v string) *Field {
	data := make([]byte, StringWidth(v))
	must(WriteString(data, 0, v))
	return &Field{name: checkName(name), typ: TypeString, data: data}
}

// NewField builds a field from an already encoded payload, which must hold
// exactly one value of kind t.
func NewField(name string, t TypeTag, payload []byte) (*Field, error) {
	end, err := payloadEnd(t, payload, 0)
	if err != nil {
		return nil, err
	}
	if end != len(payload) {
		return nil, formatErrf(payload, end, ErrSizeMismatch, "%d trailing bytes after %v value", len(payload)-end, t)
	}
	return &Field{name: checkName(name), typ: t, data: bytes.Clone(payload)}, nil
}

func (f *Field) Name() string            { return f.name }
func (f *Field) Type() TypeTag           { return f.typ }
func (f *Field) Container() ContainerTag { return ContainerField }

// Payload returns the encoded value. The caller must not modify it.
func (f *Field) Payload() []byte { return f.data }

// Size is tag + nameLen + name + size + valueType + payload.
func (f *Field) Size() int {
	return headerSize(f.name) + 1 + len(f.data)
}

func (f *Field) Serialize(dest []byte, off int) (int, error) {
	return serializeNode(f, dest, off)
}

func (f *Field) serialize(dest []byte, off int) (int, error) {
	start := off
	sizeOff, off, err := writeHeader(dest, off, ContainerField, f.name)
	if err != nil {
		return start, err
	}
	if off, err = WriteByte(dest, off, byte(f.typ)); err != nil {
		return start, err
	}
	if off, err = WriteRaw(dest, off, f.data); err != nil {
		return start, err
	}
	return off, patchSize(dest, sizeOff, start, off)
}

func (f *Field) Encode() ([]byte, error) {
	return encodeNode(f)
}

// DeserializeField decodes a field starting at src[off] and returns the offset
// just past it.
func DeserializeField(src []byte, off int) (*Field, int, error) {
	h, p, err := readHeader(src, off, ContainerField)
	if err != nil {
		return nil, off, err
	}
	if err := checkExtent(src, h, p); err != nil {
		return nil, off, err
	}
	tag, p, err := ReadByte(src, p)
	if err != nil {
		return nil, off, err
	}
	t := TypeTag(tag)
	end, err := payloadEnd(t, src, p)
	if err != nil {
		return nil, off, err
	}
	data, p, err := ReadRaw(src, p, end-p)
	if err != nil {
		return nil, off, err
	}
	if err := checkConsumed(src, h, p); err != nil {
		return nil, off, err
	}
	return &Field{name: h.name, typ: t, data: data}, p, nil
}

func fieldValue[T any](f *Field, t TypeTag, read func([]byte, int) (T, int, error)) (T, bool) {
	var zero T
	if f == nil || f.typ != t {
		return zero, false
	}
	v, _, err := read(f.data, 0)
	if err != nil {
		return zero, false
	}
	return v, true
}

// The As* accessors return the field's value and true when the field holds a
// value of the matching kind. They are safe to call on a nil *Field, so the
// result of a failed lookup can be queried directly.

func (f *Field) AsByte() (byte, bool)      { return fieldValue(f, TypeByte, ReadByte) }
func (f *Field) AsInt16() (int16, bool)    { return fieldValue(f, TypeInt16, ReadInt16) }
func (f *Field) AsInt32() (int32, bool)    { return fieldValue(f, TypeInt32, ReadInt32) }
func (f *Field) AsInt64() (int64, bool)    { return fieldValue(f, TypeInt64, ReadInt64) }
func (f *Field) AsFloat32() (float32, bool) { return fieldValue(f, TypeFloat32, ReadFloat32) }
func (f *Field) AsFloat64() (float64, bool) { return fieldValue(f, TypeFloat64, ReadFloat64) }
func (f *Field) AsBool() (bool, bool)      { return fieldValue(f, TypeBool, ReadBool) }
func (f *Field) AsChar() (rune, bool)      { return fieldValue(f, TypeChar, ReadChar) }
func (f *Field) AsString() (string, bool)  { return fieldValue(f, TypeString, ReadString) }

func (f *Field) AsVector2() (Vector2, bool) { return fieldValue(f, TypeVector2, ReadVector2) }
func (f *Field) AsVector3() (Vector3, bool) { return fieldValue(f, TypeVector3, ReadVector3) }
func (f *Field) AsVector4() (Vector4, bool) { return fieldValue(f, TypeVector4, ReadVector4) }
func (f *Field) AsMatrix2() (Matrix2, bool) { return fieldValue(f, TypeMatrix2, ReadMatrix2) }
func (f *Field) AsMatrix3() (Matrix3, bool) { return fieldValue(f, TypeMatrix3, ReadMatrix3) }
func (f *Field) AsMatrix4() (Matrix4, bool) { return fieldValue(f, TypeMatrix4, ReadMatrix4) }

func (f *Field) AsQuaternion() (Quaternion, bool) {
	return fieldValue(f, TypeQuaternion, ReadQuaternion)
}

// Value returns the decoded value as its native Go type, see DecodeValue.
func (f *Field) Value() any {
	if f == nil {
		return nil
	}
	v, err := DecodeValue(f.typ, f.data)
	if err != nil {
		return nil
	}
	return v
}

func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.name == other.name && f.typ == other.typ && bytes.Equal(f.data, other.data)
}

func (f *Field) String() string {
	return fmt.Sprintf("%s %v = %v", f.name, f.typ, f.Value())
}
