package tsdb

import (
	"fmt"
)

// Object is a named node holding three independent collections: child
// objects, fields and arrays. Names are unique within each collection but may
// repeat across them.
type Object struct {
	name    string
	objects named[*Object]
	fields  named[*Field]
	arrays  named[*Array]
}

func NewObject(name string) *Object {
	return &Object{name: checkName(name)}
}

func (o *Object) Name() string            { return o.name }
func (o *Object) Container() ContainerTag { return ContainerObject }

// AddObject inserts child, replacing any child object with the same name in
// place. It returns o to allow chaining.
func (o *Object) AddObject(child *Object) *Object {
	o.objects.put(nonNil(child))
	return o
}

func (o *Object) AddField(f *Field) *Object {
	o.fields.put(nonNil(f))
	return o
}

func (o *Object) AddArray(a *Array) *Object {
	o.arrays.put(nonNil(a))
	return o
}

// Add inserts each node into the collection matching its kind.
func (o *Object) Add(nodes ...Node) *Object {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Object:
			o.AddObject(n)
		case *Field:
			o.AddField(n)
		case *Array:
			o.AddArray(n)
		default:
			panic(fmt.Sprintf("tsdb: cannot add %T to an object", n))
		}
	}
	return o
}

// FindObject returns the child object with the given name, or nil. Like the
// other Find methods, it is safe to call on a nil *Object.
func (o *Object) FindObject(name string) *Object {
	if o == nil {
		return nil
	}
	return o.objects.get(name)
}

func (o *Object) FindField(name string) *Field {
	if o == nil {
		return nil
	}
	return o.fields.get(name)
}

func (o *Object) FindArray(name string) *Array {
	if o == nil {
		return nil
	}
	return o.arrays.get(name)
}

// Objects returns the child objects in insertion order. The caller must not
// modify the returned slice.
func (o *Object) Objects() []*Object { return o.objects.items }
func (o *Object) Fields() []*Field   { return o.fields.items }
func (o *Object) Arrays() []*Array   { return o.arrays.items }

func (o *Object) ObjectCount() int { return o.objects.len() }
func (o *Object) FieldCount() int  { return o.fields.len() }
func (o *Object) ArrayCount() int  { return o.arrays.len() }

// Size is the header, three 16-bit counts and every child's own size.
func (o *Object) Size() int {
	return headerSize(o.name) + 2 + o.objects.size() + 2 + o.fields.size() + 2 + o.arrays.size()
}

func (o *Object) Serialize(dest []byte, off int) (int, error) {
	return serializeNode(o, dest, off)
}

func (o *Object) serialize(dest []byte, off int) (int, error) {
	start := off
	sizeOff, off, err := writeHeader(dest, off, ContainerObject, o.name)
	if err != nil {
		return start, err
	}
	if off, err = o.serializeBody(dest, off); err != nil {
		return start, err
	}
	return off, patchSize(dest, sizeOff, start, off)
}

func (o *Object) serializeBody(dest []byte, off int) (int, error) {
	off, err := o.objects.serialize(dest, off)
	if err != nil {
		return off, err
	}
	if off, err = o.fields.serialize(dest, off); err != nil {
		return off, err
	}
	return o.arrays.serialize(dest, off)
}

func (o *Object) Encode() ([]byte, error) {
	return encodeNode(o)
}

// DeserializeObject decodes an object and everything below it, starting at
// src[off], and returns the offset just past it.
func DeserializeObject(src []byte, off int) (*Object, int, error) {
	h, p, err := readHeader(src, off, ContainerObject)
	if err != nil {
		return nil, off, err
	}
	if err := checkExtent(src, h, p); err != nil {
		return nil, off, err
	}
	o := &Object{name: h.name}

	n, p, err := ReadUint16(src, p)
	if err != nil {
		return nil, off, err
	}
	for i := 0; i < int(n); i++ {
		var child *Object
		if child, p, err = DeserializeObject(src, p); err != nil {
			return nil, off, err
		}
		o.objects.put(child)
	}

	if n, p, err = ReadUint16(src, p); err != nil {
		return nil, off, err
	}
	for i := 0; i < int(n); i++ {
		var f *Field
		if f, p, err = DeserializeField(src, p); err != nil {
			return nil, off, err
		}
		o.fields.put(f)
	}

	if n, p, err = ReadUint16(src, p); err != nil {
		return nil, off, err
	}
	for i := 0; i < int(n); i++ {
		var a *Array
		if a, p, err = DeserializeArray(src, p); err != nil {
			return nil, off, err
		}
		o.arrays.put(a)
	}

	if err := checkConsumed(src, h, p); err != nil {
		return nil, off, err
	}
	return o, p, nil
}

// Equal reports whether both trees have the same names, kinds, payloads and
// membership, in the same order.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.name == other.name &&
		o.objects.equal(&other.objects, (*Object).Equal) &&
		o.fields.equal(&other.fields, (*Field).Equal) &&
		o.arrays.equal(&other.arrays, (*Array).Equal)
}

func (o *Object) String() string {
	return fmt.Sprintf("%s {%d objects, %d fields, %d arrays}", o.name, o.objects.len(), o.fields.len(), o.arrays.len())
}
