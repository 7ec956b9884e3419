package tsdb

import (
	"fmt"
	"strconv"
	"strings"
)

const indentStep = "  "

// Dump renders db as an indented human-readable tree, one node per line.
func Dump(db *Database) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "database %q v%d.%d (%d bytes)\n", db.name, db.Major(), db.Minor(), db.Size())
	for _, o := range db.objects.items {
		dumpObject(&buf, indentStep, o)
	}
	return buf.String()
}

func dumpObject(w *strings.Builder, indent string, o *Object) {
	fmt.Fprintf(w, "%sobject %q (%d bytes)\n", indent, o.name, o.Size())
	inner := indent + indentStep
	for _, child := range o.objects.items {
		dumpObject(w, inner, child)
	}
	for _, f := range o.fields.items {
		fmt.Fprintf(w, "%s%s %s = %s\n", inner, f.typ, f.name, FormatValue(f.typ, f.Value()))
	}
	for _, a := range o.arrays.items {
		w.WriteString(inner)
		fmt.Fprintf(w, "%s[%d] %s = [", a.typ, a.count, a.name)
		for i, v := range a.Values() {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(FormatValue(a.typ, v))
		}
		w.WriteString("]\n")
	}
}

// FormatValue formats a value produced by DecodeValue for debug output.
func FormatValue(t TypeTag, v any) string {
	if v == nil {
		return "<invalid>"
	}
	switch t {
	case TypeByte:
		return fmt.Sprintf("0x%02x", v)
	case TypeChar:
		return strconv.QuoteRune(v.(rune))
	case TypeString:
		return strconv.Quote(v.(string))
	case TypeFloat32:
		return strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32)
	case TypeFloat64:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case TypeMatrix2, TypeMatrix3, TypeMatrix4:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprint(v)
	}
}

// Export converts db into a tree of maps and slices suitable for generic
// encoders (JSON, msgpack, CBOR). Collections become slices to keep their
// order.
func Export(db *Database) map[string]any {
	objs := make([]any, 0, db.objects.len())
	for _, o := range db.objects.items {
		objs = append(objs, exportObject(o))
	}
	return map[string]any{
		"name":    db.name,
		"version": fmt.Sprintf("%d.%d", db.Major(), db.Minor()),
		"objects": objs,
	}
}

func exportObject(o *Object) map[string]any {
	objs := make([]any, 0, o.objects.len())
	for _, child := range o.objects.items {
		objs = append(objs, exportObject(child))
	}
	fields := make([]any, 0, o.fields.len())
	for _, f := range o.fields.items {
		fields = append(fields, map[string]any{
			"name":  f.name,
			"type":  f.typ.String(),
			"value": f.Value(),
		})
	}
	arrays := make([]any, 0, o.arrays.len())
	for _, a := range o.arrays.items {
		arrays = append(arrays, map[string]any{
			"name":   a.name,
			"type":   a.typ.String(),
			"values": a.Values(),
		})
	}
	return map[string]any{
		"name":    o.name,
		"objects": objs,
		"fields":  fields,
		"arrays":  arrays,
	}
}
