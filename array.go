package tsdb

import (
	"bytes"
	"fmt"
	"math"
)

// Array is a named homogeneous sequence of values. Like Field, elements are
// kept encoded and back-to-back.
type Array struct {
	name  string
	typ   TypeTag
	count int
	data  []byte
}

func checkCount(n int) {
	if n > math.MaxInt32 {
		panic(fmt.Sprintf("tsdb: array of %d elements exceeds int32 count", n))
	}
}

func newArray[T any](name string, t TypeTag, vs []T, write func([]byte, int, T) (int, error)) *Array {
	checkCount(len(vs))
	data := make([]byte, len(vs)*t.Width())
	off := 0
	for _, v := range vs {
		off = must(write(data, off, v))
	}
	return &Array{name: checkName(name), typ: t, count: len(vs), data: data}
}

func ByteArray(name string, vs []byte) *Array       { return newArray(name, TypeByte, vs, WriteByte) }
func Int16Array(name string, vs []int16) *Array     { return newArray(name, TypeInt16, vs, WriteInt16) }
func Int32Array(name string, vs []int32) *Array     { return newArray(name, TypeInt32, vs, WriteInt32) }
func Int64Array(name string, vs []int64) *Array     { return newArray(name, TypeInt64, vs, WriteInt64) }
func Float32Array(name string, vs []float32) *Array { return newArray(name, TypeFloat32, vs, WriteFloat32) }
func Float64Array(name string, vs []float64) *Array { return newArray(name, TypeFloat64, vs, WriteFloat64) }
func BoolArray(name string, vs []bool) *Array       { return newArray(name, TypeBool, vs, WriteBool) }
func CharArray(name string, vs []rune) *Array       { return newArray(name, TypeChar, vs, WriteChar) }

func Vector2Array(name string, vs []Vector2) *Array {
	return newArray(name, TypeVector2, vs, WriteVector2)
}

func Vector3Array(name string, vs []Vector3) *Array {
	return newArray(name, TypeVector3, vs, WriteVector3)
}

func Vector4Array(name string, vs []Vector4) *Array {
	return newArray(name, TypeVector4, vs, WriteVector4)
}

func QuaternionArray(name string, vs []Quaternion) *Array {
	return newArray(name, TypeQuaternion, vs, WriteQuaternion)
}

func Matrix2Array(name string, vs []Matrix2) *Array {
	return newArray(name, TypeMatrix2, vs, WriteMatrix2)
}

func Matrix3Array(name string, vs []Matrix3) *Array {
	return newArray(name, TypeMatrix3, vs, WriteMatrix3)
}

func Matrix4Array(name string, vs []Matrix4) *Array {
	return newArray(name, TypeMatrix4, vs, WriteMatrix4)
}

// StringArray encodes each element with its own character count prefix, so
// elements may differ in length. It panics if any element is longer than
// MaxStringUnits UTF-16 code units.
func StringArray(name string, vs []string) *Array {
	checkCount(len(vs))
	n := 0
	for _, v := range vs {
		n += StringWidth(v)
	}
	data := make([]byte, n)
	off := 0
	for _, v := range vs {
		off = must(WriteString(data, off, v))
	}
	return &Array{name: checkName(name), typ: TypeString, count: len(vs), data: data}
}

func (a *Array) Name() string            { return a.name }
func (a *Array) ElemType() TypeTag       { return a.typ }
func (a *Array) Len() int                { return a.count }
func (a *Array) Container() ContainerTag { return ContainerArray }

// Payload returns the encoded elements. The caller must not modify it.
func (a *Array) Payload() []byte { return a.data }

// Size is tag + nameLen + name + size + elemType + count + payload.
func (a *Array) Size() int {
	return headerSize(a.name) + 1 + 4 + len(a.data)
}

func (a *Array) Serialize(dest []byte, off int) (int, error) {
	return serializeNode(a, dest, off)
}

func (a *Array) serialize(dest []byte, off int) (int, error) {
	start := off
	sizeOff, off, err := writeHeader(dest, off, ContainerArray, a.name)
	if err != nil {
		return start, err
	}
	if off, err = WriteByte(dest, off, byte(a.typ)); err != nil {
		return start, err
	}
	if off, err = WriteInt32(dest, off, int32(a.count)); err != nil {
		return start, err
	}
	if off, err = WriteRaw(dest, off, a.data); err != nil {
		return start, err
	}
	return off, patchSize(dest, sizeOff, start, off)
}

func (a *Array) Encode() ([]byte, error) {
	return encodeNode(a)
}

// DeserializeArray decodes an array starting at src[off] and returns the
// offset just past it. Element counts are checked against the remaining
// input before anything is allocated.
func DeserializeArray(src []byte, off int) (*Array, int, error) {
	h, p, err := readHeader(src, off, ContainerArray)
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
	if !t.Valid() {
		return nil, off, &FormatError{Data: src, Off: p - 1, Kind: ErrUnsupportedType, Tag: tag, Msg: "unknown element type " + t.String()}
	}
	countOff := p
	count, p, err := ReadInt32(src, p)
	if err != nil {
		return nil, off, err
	}
	if count < 0 {
		return nil, off, formatErrf(src, countOff, ErrSizeMismatch, "%q has negative element count %d", h.name, count)
	}

	var end int
	if w := t.Width(); w > 0 {
		need := int64(count) * int64(w)
		if need > int64(len(src)-p) {
			return nil, off, formatErrf(src, p, ErrTruncated, "%q needs %d bytes for %d %v elements, %d remaining", h.name, need, count, t, len(src)-p)
		}
		end = p + int(need)
	} else {
		end = p
		for i := int32(0); i < count; i++ {
			if end, err = skipString(src, end); err != nil {
				return nil, off, err
			}
		}
	}

	data, p, err := ReadRaw(src, p, end-p)
	if err != nil {
		return nil, off, err
	}
	if err := checkConsumed(src, h, p); err != nil {
		return nil, off, err
	}
	return &Array{name: h.name, typ: t, count: int(count), data: data}, p, nil
}

func arrayValues[T any](a *Array, t TypeTag, read func([]byte, int) (T, int, error)) ([]T, bool) {
	if a == nil || a.typ != t {
		return nil, false
	}
	vs := make([]T, a.count)
	off := 0
	for i := range vs {
		v, next, err := read(a.data, off)
		if err != nil {
			return nil, false
		}
		vs[i], off = v, next
	}
	return vs, true
}

// The As* accessors decode all elements when the array holds elements of the
// matching kind. They are safe to call on a nil *Array.

func (a *Array) AsBytes() ([]byte, bool)       { return arrayValues(a, TypeByte, ReadByte) }
func (a *Array) AsInt16s() ([]int16, bool)     { return arrayValues(a, TypeInt16, ReadInt16) }
func (a *Array) AsInt32s() ([]int32, bool)     { return arrayValues(a, TypeInt32, ReadInt32) }
func (a *Array) AsInt64s() ([]int64, bool)     { return arrayValues(a, TypeInt64, ReadInt64) }
func (a *Array) AsFloat32s() ([]float32, bool) { return arrayValues(a, TypeFloat32, ReadFloat32) }
func (a *Array) AsFloat64s() ([]float64, bool) { return arrayValues(a, TypeFloat64, ReadFloat64) }
func (a *Array) AsBools() ([]bool, bool)       { return arrayValues(a, TypeBool, ReadBool) }
func (a *Array) AsChars() ([]rune, bool)       { return arrayValues(a, TypeChar, ReadChar) }
func (a *Array) AsStrings() ([]string, bool)   { return arrayValues(a, TypeString, ReadString) }
func (a *Array) AsVector2s() ([]Vector2, bool) { return arrayValues(a, TypeVector2, ReadVector2) }
func (a *Array) AsVector3s() ([]Vector3, bool) { return arrayValues(a, TypeVector3, ReadVector3) }
func (a *Array) AsVector4s() ([]Vector4, bool) { return arrayValues(a, TypeVector4, ReadVector4) }
func (a *Array) AsMatrix2s() ([]Matrix2, bool) { return arrayValues(a, TypeMatrix2, ReadMatrix2) }
func (a *Array) AsMatrix3s() ([]Matrix3, bool) { return arrayValues(a, TypeMatrix3, ReadMatrix3) }
func (a *Array) AsMatrix4s() ([]Matrix4, bool) { return arrayValues(a, TypeMatrix4, ReadMatrix4) }

func (a *Array) AsQuaternions() ([]Quaternion, bool) {
	return arrayValues(a, TypeQuaternion, ReadQuaternion)
}

// Values decodes every element into its native Go type, see DecodeValue.
func (a *Array) Values() []any {
	if a == nil {
		return nil
	}
	vs := make([]any, 0, a.count)
	off := 0
	for i := 0; i < a.count; i++ {
		v, next, err := readValue(a.typ, a.data, off)
		if err != nil {
			return vs
		}
		vs = append(vs, v)
		off = next
	}
	return vs
}

func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.name == other.name && a.typ == other.typ && a.count == other.count && bytes.Equal(a.data, other.data)
}

func (a *Array) String() string {
	return fmt.Sprintf("%s []%v (%d)", a.name, a.typ, a.count)
}
