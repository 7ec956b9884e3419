package tsdb

import (
	"fmt"
	"math"
)

// Node is a named, self-sized element of a TSDB tree: *Object, *Field or *Array.
type Node interface {
	Name() string

	// Size returns the exact number of bytes Serialize writes for this node.
	Size() int

	Container() ContainerTag

	// Serialize writes the node at dest[off:] and returns the offset just
	// past it. If dest is too small, nothing is written and a *BufferError
	// is returned.
	Serialize(dest []byte, off int) (int, error)

	serialize(dest []byte, off int) (int, error)
}

// Every node starts with: tag:8 nameLen:16 name size:32.
const nodeHeaderSize = 1 + 2 + 4

func headerSize(name string) int {
	return nodeHeaderSize + len(name)
}

func checkName(name string) string {
	if len(name) > math.MaxUint16 {
		panic(fmt.Sprintf("tsdb: name is %d bytes, max %d", len(name), math.MaxUint16))
	}
	return name
}

// writeHeader writes the common node header with a zero size and returns the
// offset of the size field, to be patched by patchSize once the body is out.
func writeHeader(dest []byte, off int, tag ContainerTag, name string) (sizeOff, end int, err error) {
	if off, err = WriteByte(dest, off, byte(tag)); err != nil {
		return 0, off, err
	}
	if off, err = WriteUint16(dest, off, uint16(len(name))); err != nil {
		return 0, off, err
	}
	if err = checkWrite(dest, off, len(name)); err != nil {
		return 0, off, err
	}
	off += copy(dest[off:], name)
	sizeOff = off
	if off, err = WriteInt32(dest, off, 0); err != nil {
		return 0, off, err
	}
	return sizeOff, off, nil
}

func patchSize(dest []byte, sizeOff, start, end int) error {
	n := end - start
	if n > math.MaxInt32 {
		return fmt.Errorf("tsdb: node at offset %d is %d bytes, exceeds int32 size field", start, n)
	}
	_, err := WriteInt32(dest, sizeOff, int32(n))
	return err
}

// serializeNode pre-checks that all of n fits so that a too-small buffer is
// reported before anything is written.
func serializeNode(n Node, dest []byte, off int) (int, error) {
	if err := checkWrite(dest, off, n.Size()); err != nil {
		return off, err
	}
	return n.serialize(dest, off)
}

func encodeNode(n Node) ([]byte, error) {
	buf := make([]byte, n.Size())
	end, err := n.serialize(buf, 0)
	if err != nil {
		return nil, err
	}
	return buf[:end], nil
}

type nodeHeader struct {
	start int
	name  string
	size  int
}

// readHeader reads and validates the common node header starting at src[off].
func readHeader(src []byte, off int, expected ContainerTag) (nodeHeader, int, error) {
	tag, p, err := ReadByte(src, off)
	if err != nil {
		return nodeHeader{}, off, err
	}
	if ContainerTag(tag) != expected {
		return nodeHeader{}, off, tagErr(src, off, ContainerTag(tag), expected)
	}
	nameLen, p, err := ReadUint16(src, p)
	if err != nil {
		return nodeHeader{}, off, err
	}
	if err := checkRead(src, p, int(nameLen)); err != nil {
		return nodeHeader{}, off, err
	}
	name := string(src[p : p+int(nameLen)])
	p += int(nameLen)
	size, p, err := ReadInt32(src, p)
	if err != nil {
		return nodeHeader{}, off, err
	}
	return nodeHeader{start: off, name: name, size: int(size)}, p, nil
}

// checkExtent fails early when a node claims more bytes than remain in src or
// fewer bytes than its own header.
func checkExtent(src []byte, h nodeHeader, headerEnd int) error {
	if h.size < headerEnd-h.start {
		return formatErrf(src, h.start, ErrSizeMismatch, "%q declares size %d, smaller than its %d-byte header", h.name, h.size, headerEnd-h.start)
	}
	if h.size > len(src)-h.start {
		return formatErrf(src, h.start, ErrTruncated, "%q declares size %d, only %d bytes remaining", h.name, h.size, len(src)-h.start)
	}
	return nil
}

func checkConsumed(src []byte, h nodeHeader, end int) error {
	if end-h.start != h.size {
		return formatErrf(src, h.start, ErrSizeMismatch, "%q declares size %d, decoded %d bytes", h.name, h.size, end-h.start)
	}
	return nil
}

// named is an insertion-ordered collection of nodes keyed by name. Putting a
// node under an existing name replaces the previous one in place.
type named[T Node] struct {
	items []T
	index map[string]int
}

func (c *named[T]) put(v T) {
	name := v.Name()
	if i, ok := c.index[name]; ok {
		c.items[i] = v
		return
	}
	if len(c.items) >= math.MaxUint16 {
		panic(fmt.Sprintf("tsdb: cannot add %q, collection is limited to %d entries", name, math.MaxUint16))
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[name] = len(c.items)
	c.items = append(c.items, v)
}

func (c *named[T]) get(name string) T {
	if i, ok := c.index[name]; ok {
		return c.items[i]
	}
	var zero T
	return zero
}

func (c *named[T]) len() int {
	return len(c.items)
}

func (c *named[T]) size() int {
	n := 0
	for _, v := range c.items {
		n += v.Size()
	}
	return n
}

func (c *named[T]) serialize(dest []byte, off int) (int, error) {
	off, err := WriteUint16(dest, off, uint16(len(c.items)))
	if err != nil {
		return off, err
	}
	for _, v := range c.items {
		off, err = v.serialize(dest, off)
		if err != nil {
			return off, err
		}
	}
	return off, nil
}

func (c *named[T]) equal(other *named[T], eq func(a, b T) bool) bool {
	if len(c.items) != len(other.items) {
		return false
	}
	for i, v := range c.items {
		if !eq(v, other.items[i]) {
			return false
		}
	}
	return true
}
