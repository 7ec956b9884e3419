package tsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	db := NewDatabase("Example").Add(
		NewObject("Example").
			AddObject(NewObject("Child").Add(CharField("c", 'x'))).
			AddField(Int32Field("Example Variable", 12)).
			AddField(StringField("s", "hi")).
			AddArray(ByteArray("b", []byte{1, 0xFF})),
	)
	a := Dump(db)
	e := `database "Example" v1.3 (129 bytes)
  object "Example" (107 bytes)
    object "Child" (29 bytes)
      char c = 'x'
    int32 Example Variable = 12
    string s = "hi"
    byte[2] b = [0x01, 0xff]
`
	assert.Equal(t, e, a)
}

func TestExport(t *testing.T) {
	db := NewDatabase("d").Add(NewObject("o").Add(
		Float64Field("g", 9.5),
		StringArray("tags", []string{"a", "b"}),
	))
	m := Export(db)
	assert.Equal(t, "d", m["name"])
	assert.Equal(t, "1.3", m["version"])
	objs := m["objects"].([]any)
	require.Len(t, objs, 1)
	o := objs[0].(map[string]any)
	assert.Equal(t, "o", o["name"])
	fields := o["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, map[string]any{"name": "g", "type": "float64", "value": 9.5}, fields[0])
	arrays := o["arrays"].([]any)
	require.Len(t, arrays, 1)
	assert.Equal(t, []any{"a", "b"}, arrays[0].(map[string]any)["values"])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "<invalid>", FormatValue(TypeInt32, nil))
	assert.Equal(t, "1.5", FormatValue(TypeFloat32, float32(1.5)))
	assert.Equal(t, "{1 2}", FormatValue(TypeVector2, Vector2{1, 2}))
}
