package tsdb

import (
	"fmt"
)

const (
	// Magic opens every encoded database.
	Magic = "TSDB"

	// Version is written into new databases as major<<8 | minor.
	Version uint16 = 0x0103
)

// Database is the root of a TSDB tree: a versioned, named envelope around an
// ordered set of top-level objects.
type Database struct {
	name    string
	version uint16
	objects named[*Object]
}

func NewDatabase(name string) *Database {
	return &Database{name: checkName(name), version: Version}
}

func (db *Database) Name() string            { return db.name }
func (db *Database) Container() ContainerTag { return ContainerDatabase }

// Version returns the format version the database was written with. Decoding
// records it but does not interpret it.
func (db *Database) Version() uint16 { return db.version }
func (db *Database) Major() int      { return int(db.version >> 8) }
func (db *Database) Minor() int      { return int(db.version & 0xFF) }

// Add inserts top-level objects, replacing any existing object with the same
// name in place.
func (db *Database) Add(objs ...*Object) *Database {
	for _, o := range objs {
		db.objects.put(nonNil(o))
	}
	return db
}

// FindObject returns the top-level object with the given name, or nil. It is
// safe to call on a nil *Database.
func (db *Database) FindObject(name string) *Object {
	if db == nil {
		return nil
	}
	return db.objects.get(name)
}

func (db *Database) Objects() []*Object { return db.objects.items }
func (db *Database) ObjectCount() int   { return db.objects.len() }

// Size is magic + version + header + object count + objects.
func (db *Database) Size() int {
	return len(Magic) + 2 + headerSize(db.name) + 2 + db.objects.size()
}

func (db *Database) Serialize(dest []byte, off int) (int, error) {
	return serializeNode(db, dest, off)
}

func (db *Database) serialize(dest []byte, off int) (int, error) {
	start := off
	if err := checkWrite(dest, off, len(Magic)); err != nil {
		return start, err
	}
	off += copy(dest[off:], Magic)
	off, err := WriteUint16(dest, off, db.version)
	if err != nil {
		return start, err
	}
	sizeOff, off, err := writeHeader(dest, off, ContainerDatabase, db.name)
	if err != nil {
		return start, err
	}
	if off, err = db.objects.serialize(dest, off); err != nil {
		return start, err
	}
	return off, patchSize(dest, sizeOff, start, off)
}

func (db *Database) Encode() ([]byte, error) {
	return encodeNode(db)
}

func (db *Database) Equal(other *Database) bool {
	if db == nil || other == nil {
		return db == other
	}
	return db.name == other.name && db.version == other.version &&
		db.objects.equal(&other.objects, (*Object).Equal)
}

func (db *Database) String() string {
	return fmt.Sprintf("%s v%d.%d {%d objects}", db.name, db.Major(), db.Minor(), db.objects.len())
}

// Marshal encodes db into an exactly sized buffer.
func Marshal(db *Database) ([]byte, error) {
	return db.Encode()
}

// Unmarshal decodes a database that must occupy all of data.
func Unmarshal(data []byte) (*Database, error) {
	db, end, err := DeserializeDatabase(data, 0)
	if err != nil {
		return nil, err
	}
	if end != len(data) {
		return nil, formatErrf(data, end, ErrSizeMismatch, "%d trailing bytes after database", len(data)-end)
	}
	return db, nil
}

func checkMagic(src []byte, off int) error {
	if off < 0 || off > len(src) {
		return formatErrf(src, off, ErrTruncated, "offset out of range")
	}
	n := min(len(Magic), len(src)-off)
	if string(src[off:off+n]) != Magic[:n] {
		return formatErrf(src, off, ErrBadHeader, "expected %q magic", Magic)
	}
	if n < len(Magic) {
		return formatErrf(src, off, ErrTruncated, "incomplete %q magic", Magic)
	}
	return nil
}

// DeserializeDatabase decodes a database starting at src[off] and returns the
// offset just past it. The magic is verified before anything else is read.
func DeserializeDatabase(src []byte, off int) (*Database, int, error) {
	if err := checkMagic(src, off); err != nil {
		return nil, off, err
	}
	version, p, err := ReadUint16(src, off+len(Magic))
	if err != nil {
		return nil, off, err
	}
	h, p, err := readHeader(src, p, ContainerDatabase)
	if err != nil {
		return nil, off, err
	}
	h.start = off // the stored size covers magic and version too
	if err := checkExtent(src, h, p); err != nil {
		return nil, off, err
	}
	db := &Database{name: h.name, version: version}

	n, p, err := ReadUint16(src, p)
	if err != nil {
		return nil, off, err
	}
	for i := 0; i < int(n); i++ {
		oh, _, err := readHeader(src, p, ContainerObject)
		if err != nil {
			return nil, off, err
		}
		obj, _, err := DeserializeObject(src, p)
		if err != nil {
			return nil, off, err
		}
		db.objects.put(obj)
		p = oh.start + oh.size
	}

	if err := checkConsumed(src, h, p); err != nil {
		return nil, off, err
	}
	return db, p, nil
}
