// Package catalog keeps many TSDB databases in a single bbolt file, keyed by
// database name.
//
// Each database is stored twice over: its raw encoding in the "data" bucket,
// and a small msgpack Entry in the "meta" bucket describing it. Listing and
// stat calls only touch the meta bucket. Reads verify the raw bytes against
// the Entry's xxhash checksum before decoding.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/tsdb"
)

const (
	dataBucket = "data"
	metaBucket = "meta"
)

// Entry describes one stored database.
type Entry struct {
	Name        string    `msgpack:"n"`
	Version     uint16    `msgpack:"v"`
	Size        int       `msgpack:"sz"`
	ObjectCount int       `msgpack:"oc"`
	Checksum    uint64    `msgpack:"ck"`
	ModCount    uint64    `msgpack:"mc"`
	Saved       time.Time `msgpack:"tm"`
}

type Options struct {
	Logger *slog.Logger

	// IsTesting trades durability for speed, like edb's option of the same
	// name: no fsync and a small initial mmap.
	IsTesting bool
	MmapSize  int
	Timeout   time.Duration

	// Now is used to stamp Entry.Saved, time.Now by default.
	Now func() time.Time
}

type Catalog struct {
	st     storage
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates a bbolt-backed catalog at path.
func Open(path string, opt Options) (*Catalog, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.InitialMmapSize = 64 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c, err := newCatalog(newBoltStorage(bdb), opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	c.logger.Debug("catalog: opened", "path", path)
	return c, nil
}

// OpenMemory returns a catalog that lives only in memory.
func OpenMemory(opt Options) (*Catalog, error) {
	return newCatalog(newMemStorage(), opt)
}

func newCatalog(st storage, opt Options) (*Catalog, error) {
	c := &Catalog{st: st, logger: opt.Logger, now: opt.Now}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	err := c.update(func(tx storageTx) error {
		for _, name := range []string{dataBucket, metaBucket} {
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: init: %w", err)
	}
	return c, nil
}

func (c *Catalog) Close() error {
	return c.st.Close()
}

func (c *Catalog) view(f func(tx storageTx) error) error {
	tx, err := c.st.BeginTx(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

func (c *Catalog) update(f func(tx storageTx) error) error {
	tx, err := c.st.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func checkName(name string) error {
	if name == "" {
		return entryErrf(name, ErrInvalidName, "empty name")
	}
	return nil
}

// Put stores db under its name, replacing any previous database of that name.
func (c *Catalog) Put(db *tsdb.Database) (Entry, error) {
	data, err := tsdb.Marshal(db)
	if err != nil {
		return Entry{}, entryErrf(db.Name(), err, "encode")
	}
	return c.put(db, data)
}

// PutRaw stores an already encoded database. The data is fully decoded first,
// so a catalog never holds bytes that fail to decode.
func (c *Catalog) PutRaw(data []byte) (Entry, error) {
	db, err := tsdb.Unmarshal(data)
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: rejecting raw data: %w", err)
	}
	return c.put(db, data)
}

func (c *Catalog) put(db *tsdb.Database, data []byte) (Entry, error) {
	name := db.Name()
	if err := checkName(name); err != nil {
		return Entry{}, err
	}
	e := Entry{
		Name:        name,
		Version:     db.Version(),
		Size:        len(data),
		ObjectCount: db.ObjectCount(),
		Checksum:    xxhash.Sum64(data),
		Saved:       c.now(),
	}
	key := []byte(name)
	err := c.update(func(tx storageTx) error {
		meta := tx.Bucket(metaBucket)
		if raw := meta.Get(key); raw != nil {
			prev, err := decodeEntry(name, raw)
			if err != nil {
				return err
			}
			e.ModCount = prev.ModCount + 1
		}
		if err := tx.Bucket(dataBucket).Put(key, data); err != nil {
			return err
		}
		return meta.Put(key, encodeEntry(&e))
	})
	if err != nil {
		return Entry{}, entryErrf(name, err, "put")
	}
	c.logger.Debug("catalog: put", "name", name, "size", e.Size, "objects", e.ObjectCount, "mod", e.ModCount)
	return e, nil
}

// Stat returns the entry describing name without reading its data.
func (c *Catalog) Stat(name string) (Entry, error) {
	var e Entry
	err := c.view(func(tx storageTx) error {
		raw := tx.Bucket(metaBucket).Get([]byte(name))
		if raw == nil {
			return entryErrf(name, ErrNotFound, "")
		}
		var err error
		e, err = decodeEntry(name, raw)
		return err
	})
	return e, err
}

// GetRaw returns a copy of the encoded database stored under name, after
// checking it against the recorded size and checksum.
func (c *Catalog) GetRaw(name string) ([]byte, Entry, error) {
	var data []byte
	var e Entry
	err := c.view(func(tx storageTx) error {
		key := []byte(name)
		raw := tx.Bucket(metaBucket).Get(key)
		if raw == nil {
			return entryErrf(name, ErrNotFound, "")
		}
		var err error
		if e, err = decodeEntry(name, raw); err != nil {
			return err
		}
		stored := tx.Bucket(dataBucket).Get(key)
		if stored == nil {
			return entryErrf(name, ErrNotFound, "data missing for existing entry")
		}
		if len(stored) != e.Size {
			return entryErrf(name, ErrChecksumMismatch, "size %d, recorded %d", len(stored), e.Size)
		}
		if sum := xxhash.Sum64(stored); sum != e.Checksum {
			return entryErrf(name, ErrChecksumMismatch, "xxhash %016x, recorded %016x", sum, e.Checksum)
		}
		data = bytes.Clone(stored)
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("catalog: get failed", "name", name, "err", err)
		}
		return nil, Entry{}, err
	}
	return data, e, nil
}

// Get decodes the database stored under name.
func (c *Catalog) Get(name string) (*tsdb.Database, error) {
	data, _, err := c.GetRaw(name)
	if err != nil {
		return nil, err
	}
	db, err := tsdb.Unmarshal(data)
	if err != nil {
		return nil, entryErrf(name, err, "decode")
	}
	return db, nil
}

// List returns all entries in name order.
func (c *Catalog) List() ([]Entry, error) {
	return c.ListPrefix("")
}

// ListPrefix returns the entries whose names start with prefix, in name order.
func (c *Catalog) ListPrefix(prefix string) ([]Entry, error) {
	var entries []Entry
	err := c.view(func(tx storageTx) error {
		p := []byte(prefix)
		cur := tx.Bucket(metaBucket).Cursor()
		for k, v := cur.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = cur.Next() {
			e, err := decodeEntry(string(k), v)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// Delete removes name. It fails with ErrNotFound if nothing is stored under it.
func (c *Catalog) Delete(name string) error {
	key := []byte(name)
	err := c.update(func(tx storageTx) error {
		meta := tx.Bucket(metaBucket)
		if meta.Get(key) == nil {
			return entryErrf(name, ErrNotFound, "")
		}
		if err := meta.Delete(key); err != nil {
			return err
		}
		return tx.Bucket(dataBucket).Delete(key)
	})
	if err != nil {
		return err
	}
	c.logger.Debug("catalog: deleted", "name", name)
	return nil
}
