package tsdb

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

// Primitive codec. Every WriteX stores v at dest[off:] and returns the offset
// just past it; every ReadX is its exact inverse. All values are big-endian.
//
// A write that does not fit leaves dest untouched and returns off together
// with a *BufferError. A read past the end of src returns a *FormatError of
// kind ErrTruncated.

// MaxStringUnits is the longest string, in UTF-16 code units, that fits the
// 16-bit character count prefix.
const MaxStringUnits = math.MaxUint16

func checkWrite(dest []byte, off, n int) error {
	if off < 0 || len(dest)-off < n {
		return &BufferError{Off: off, Need: n, Len: len(dest)}
	}
	return nil
}

func checkRead(src []byte, off, n int) error {
	if off < 0 || len(src)-off < n {
		return formatErrf(src, off, ErrTruncated, "need %d bytes, %d remaining", n, max(len(src)-off, 0))
	}
	return nil
}

func WriteRaw(dest []byte, off int, v []byte) (int, error) {
	if err := checkWrite(dest, off, len(v)); err != nil {
		return off, err
	}
	return off + copy(dest[off:], v), nil
}

// ReadRaw returns a copy of src[off:off+n].
func ReadRaw(src []byte, off, n int) ([]byte, int, error) {
	if n < 0 {
		return nil, off, formatErrf(src, off, ErrTruncated, "negative length %d", n)
	}
	if err := checkRead(src, off, n); err != nil {
		return nil, off, err
	}
	v := make([]byte, n)
	copy(v, src[off:])
	return v, off + n, nil
}

func WriteByte(dest []byte, off int, v byte) (int, error) {
	if err := checkWrite(dest, off, 1); err != nil {
		return off, err
	}
	dest[off] = v
	return off + 1, nil
}

func ReadByte(src []byte, off int) (byte, int, error) {
	if err := checkRead(src, off, 1); err != nil {
		return 0, off, err
	}
	return src[off], off + 1, nil
}

func WriteUint16(dest []byte, off int, v uint16) (int, error) {
	if err := checkWrite(dest, off, 2); err != nil {
		return off, err
	}
	binary.BigEndian.PutUint16(dest[off:], v)
	return off + 2, nil
}

func ReadUint16(src []byte, off int) (uint16, int, error) {
	if err := checkRead(src, off, 2); err != nil {
		return 0, off, err
	}
	return binary.BigEndian.Uint16(src[off:]), off + 2, nil
}

func WriteInt16(dest []byte, off int, v int16) (int, error) {
	return WriteUint16(dest, off, uint16(v))
}

func ReadInt16(src []byte, off int) (int16, int, error) {
	v, off, err := ReadUint16(src, off)
	return int16(v), off, err
}

func WriteUint32(dest []byte, off int, v uint32) (int, error) {
	if err := checkWrite(dest, off, 4); err != nil {
		return off, err
	}
	binary.BigEndian.PutUint32(dest[off:], v)
	return off + 4, nil
}

func ReadUint32(src []byte, off int) (uint32, int, error) {
	if err := checkRead(src, off, 4); err != nil {
		return 0, off, err
	}
	return binary.BigEndian.Uint32(src[off:]), off + 4, nil
}

func WriteInt32(dest []byte, off int, v int32) (int, error) {
	return WriteUint32(dest, off, uint32(v))
}

func ReadInt32(src []byte, off int) (int32, int, error) {
	v, off, err := ReadUint32(src, off)
	return int32(v), off, err
}

func WriteInt64(dest []byte, off int, v int64) (int, error) {
	if err := checkWrite(dest, off, 8); err != nil {
		return off, err
	}
	binary.BigEndian.PutUint64(dest[off:], uint64(v))
	return off + 8, nil
}

func ReadInt64(src []byte, off int) (int64, int, error) {
	if err := checkRead(src, off, 8); err != nil {
		return 0, off, err
	}
	return int64(binary.BigEndian.Uint64(src[off:])), off + 8, nil
}

func WriteFloat32(dest []byte, off int, v float32) (int, error) {
	return WriteUint32(dest, off, math.Float32bits(v))
}

func ReadFloat32(src []byte, off int) (float32, int, error) {
	v, off, err := ReadUint32(src, off)
	return math.Float32frombits(v), off, err
}

func WriteFloat64(dest []byte, off int, v float64) (int, error) {
	return WriteInt64(dest, off, int64(math.Float64bits(v)))
}

func ReadFloat64(src []byte, off int) (float64, int, error) {
	v, off, err := ReadInt64(src, off)
	return math.Float64frombits(uint64(v)), off, err
}

func WriteBool(dest []byte, off int, v bool) (int, error) {
	var b byte
	if v {
		b = 1
	}
	return WriteByte(dest, off, b)
}

// ReadBool treats any non-zero byte as true.
func ReadBool(src []byte, off int) (bool, int, error) {
	v, off, err := ReadByte(src, off)
	return v != 0, off, err
}

// WriteChar stores a single UTF-16 code unit. Runes outside the Basic
// Multilingual Plane do not fit and are written as U+FFFD.
func WriteChar(dest []byte, off int, v rune) (int, error) {
	if v < 0 || v > 0xFFFF {
		v = utf8.RuneError
	}
	return WriteUint16(dest, off, uint16(v))
}

func ReadChar(src []byte, off int) (rune, int, error) {
	v, off, err := ReadUint16(src, off)
	return rune(v), off, err
}

// StringUnits returns the number of UTF-16 code units needed to encode s.
// Invalid UTF-8 sequences count as one unit each (they encode as U+FFFD).
func StringUnits(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// StringWidth returns the encoded size of s: a 2-byte character count plus
// 2 bytes per UTF-16 code unit.
func StringWidth(s string) int {
	return 2 + 2*StringUnits(s)
}

// WriteString writes the UTF-16 code unit count of v as a 16-bit prefix,
// followed by the code units themselves. Note that the prefix is a character
// count, not a byte count.
func WriteString(dest []byte, off int, v string) (int, error) {
	units := utf16.Encode([]rune(v))
	if len(units) > MaxStringUnits {
		return off, fmt.Errorf("%w: %d UTF-16 units, max %d", ErrStringTooLong, len(units), MaxStringUnits)
	}
	if err := checkWrite(dest, off, 2+2*len(units)); err != nil {
		return off, err
	}
	binary.BigEndian.PutUint16(dest[off:], uint16(len(units)))
	off += 2
	for _, u := range units {
		binary.BigEndian.PutUint16(dest[off:], u)
		off += 2
	}
	return off, nil
}

func ReadString(src []byte, off int) (string, int, error) {
	n, p, err := ReadUint16(src, off)
	if err != nil {
		return "", off, err
	}
	if err := checkRead(src, p, 2*int(n)); err != nil {
		return "", off, err
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(src[p:])
		p += 2
	}
	return string(utf16.Decode(units)), p, nil
}

// skipString returns the offset just past the string starting at off.
func skipString(src []byte, off int) (int, error) {
	n, p, err := ReadUint16(src, off)
	if err != nil {
		return off, err
	}
	if err := checkRead(src, p, 2*int(n)); err != nil {
		return off, err
	}
	return p + 2*int(n), nil
}

func writeFloat32s(dest []byte, off int, vs ...float32) (int, error) {
	if err := checkWrite(dest, off, 4*len(vs)); err != nil {
		return off, err
	}
	for _, v := range vs {
		binary.BigEndian.PutUint32(dest[off:], math.Float32bits(v))
		off += 4
	}
	return off, nil
}

func readFloat32s(src []byte, off int, vs []float32) (int, error) {
	if err := checkRead(src, off, 4*len(vs)); err != nil {
		return off, err
	}
	for i := range vs {
		vs[i] = math.Float32frombits(binary.BigEndian.Uint32(src[off:]))
		off += 4
	}
	return off, nil
}

func WriteVector2(dest []byte, off int, v Vector2) (int, error) {
	return writeFloat32s(dest, off, v.X, v.Y)
}

func ReadVector2(src []byte, off int) (Vector2, int, error) {
	var c [2]float32
	off, err := readFloat32s(src, off, c[:])
	return Vector2{c[0], c[1]}, off, err
}

func WriteVector3(dest []byte, off int, v Vector3) (int, error) {
	return writeFloat32s(dest, off, v.X, v.Y, v.Z)
}

func ReadVector3(src []byte, off int) (Vector3, int, error) {
	var c [3]float32
	off, err := readFloat32s(src, off, c[:])
	return Vector3{c[0], c[1], c[2]}, off, err
}

func WriteVector4(dest []byte, off int, v Vector4) (int, error) {
	return writeFloat32s(dest, off, v.X, v.Y, v.Z, v.W)
}

func ReadVector4(src []byte, off int) (Vector4, int, error) {
	var c [4]float32
	off, err := readFloat32s(src, off, c[:])
	return Vector4{c[0], c[1], c[2], c[3]}, off, err
}

func WriteQuaternion(dest []byte, off int, v Quaternion) (int, error) {
	return writeFloat32s(dest, off, v.X, v.Y, v.Z, v.W)
}

func ReadQuaternion(src []byte, off int) (Quaternion, int, error) {
	var c [4]float32
	off, err := readFloat32s(src, off, c[:])
	return Quaternion{c[0], c[1], c[2], c[3]}, off, err
}

func WriteMatrix2(dest []byte, off int, v Matrix2) (int, error) {
	return writeFloat32s(dest, off, v[:]...)
}

func ReadMatrix2(src []byte, off int) (Matrix2, int, error) {
	var m Matrix2
	off, err := readFloat32s(src, off, m[:])
	return m, off, err
}

func WriteMatrix3(dest []byte, off int, v Matrix3) (int, error) {
	return writeFloat32s(dest, off, v[:]...)
}

func ReadMatrix3(src []byte, off int) (Matrix3, int, error) {
	var m Matrix3
	off, err := readFloat32s(src, off, m[:])
	return m, off, err
}

func WriteMatrix4(dest []byte, off int, v Matrix4) (int, error) {
	return writeFloat32s(dest, off, v[:]...)
}

func ReadMatrix4(src []byte, off int) (Matrix4, int, error) {
	var m Matrix4
	off, err := readFloat32s(src, off, m[:])
	return m, off, err
}
