/*
Package tsdb implements TSDB, a self-describing binary container format for
tree-shaped, strongly typed data.

A TSDB tree is rooted in a Database holding named Objects. Every Object holds
three independent named collections: child Objects, Fields (one typed value)
and Arrays (a homogeneous sequence of typed values). The encoding carries
enough tags to reconstruct the structure and value types without a schema.

Trees are built bottom-up:

	db := tsdb.NewDatabase("Example").Add(
		tsdb.NewObject("Entity").Add(
			tsdb.Int32Field("Id", 42),
			tsdb.StringArray("Tags", []string{"a", "bc"}),
		),
	)
	data, err := tsdb.Marshal(db)

and read back with Unmarshal and the Find and As* accessors:

	db, err := tsdb.Unmarshal(data)
	id, ok := db.FindObject("Entity").FindField("Id").AsInt32()

# Wire format

All integers are big-endian; nothing is padded. Every node starts with a
container tag (Database=0, Object=1, Array=2, Field=3), a 16-bit name length,
the UTF-8 name, and a signed 32-bit size. The size is the exact byte count of
the node's whole encoding, counting the tag and size field themselves, so a
reader can skip any node without understanding it.

	Database := "TSDB" version:16 tag:8 nameLen:16 name size:32
	            objectCount:16 Object*
	Object   := tag:8 nameLen:16 name size:32
	            childCount:16 Object* fieldCount:16 Field* arrayCount:16 Array*
	Field    := tag:8 nameLen:16 name size:32 valueType:8 value
	Array    := tag:8 nameLen:16 name size:32 elemType:8 count:32 value*

The Database size also covers the magic and version in front of its tag.
The version is major<<8 | minor and is recorded but never interpreted.

**Values.** Fixed-width kinds are byte, short, int32, int64, float32, float64,
bool (one byte, non-zero is true), char (one UTF-16 code unit), vector2/3/4,
quaternion and matrix2/3/4 (float32 components, matrices row-major).

**Strings** are a 16-bit count of UTF-16 code units followed by the units.
The prefix counts characters, not bytes, so a string of c units occupies
2 + 2c bytes. Arrays of strings repeat the prefix for every element.

# Sizes

Size is computed from the tree on demand. Serialize writes a placeholder size
and patches it once the node's body is out, so the stored size always equals
the bytes written. Decoding rejects any node whose stored size disagrees with
the bytes it actually consumed.

# Collections

Within a collection, names are unique. Adding a node whose name is already
taken replaces the old node in place, keeping its position. Collections
iterate and encode in insertion order, so equal trees encode identically.
*/
package tsdb
