package tsdb

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		err := formatErrf([]byte{0xAA, 0xBB}, 1, ErrTruncated, "oops")
		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.ErrorIs(t, err, ErrTruncated)
		assert.NotErrorIs(t, err, ErrBadHeader)
		s := err.Error()
		assert.Contains(t, s, "oops")
		assert.Contains(t, s, "truncated")
		assert.Contains(t, s, "offset 1")
		assert.Contains(t, s, "(2) aabb")
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		s := formatErrf(data, 0, ErrSizeMismatch, "oops").Error()
		assert.Contains(t, s, "(200)")
		assert.Contains(t, s, "...")
		assert.False(t, strings.Contains(s, "6465"), "middle bytes elided: %s", s)
	})
}

func TestTagErr(t *testing.T) {
	err := tagErr(nil, 5, ContainerField, ContainerObject)
	assert.ErrorIs(t, err, ErrTagMismatch)
	assert.Contains(t, err.Error(), "expected object")
}

func TestBufferError(t *testing.T) {
	err := error(&BufferError{Off: 2, Need: 4, Len: 3})
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Contains(t, err.Error(), "need 4 bytes at offset 2")
}

func TestTypeTags(t *testing.T) {
	for tag := TypeByte; tag < typeTagCount; tag++ {
		require.True(t, tag.Valid())
		parsed, ok := ParseTypeTag(tag.String())
		require.True(t, ok, tag.String())
		assert.Equal(t, tag, parsed)
		if tag != TypeString {
			assert.Positive(t, tag.Width(), tag.String())
		}
	}
	assert.False(t, TypeUnknown.Valid())
	assert.False(t, TypeTag(17).Valid())
	assert.Equal(t, 0, TypeString.Width())
	assert.Equal(t, 64, TypeMatrix4.Width())
	assert.Equal(t, "type(99)", TypeTag(99).String())
	assert.Equal(t, "field", ContainerField.String())
	assert.Equal(t, "container(9)", ContainerTag(9).String())
	_, ok := ParseTypeTag("nope")
	assert.False(t, ok)
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(TypeInt16, []byte{0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, int16(-1), v)

	v, err = DecodeValue(TypeVector2, must(Vector2Field("v", Vector2{1, 2}).Encode())[1+2+1+4+1:])
	require.NoError(t, err)
	assert.Equal(t, Vector2{1, 2}, v)

	_, err = DecodeValue(TypeInt16, []byte{0, 0, 0})
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = DecodeValue(TypeTag(42), nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
