package catalog

// storage is the key-value backend of a Catalog: bbolt on disk, or an
// in-memory map for tests.
type storage interface {
	// BeginTx starts a new transaction. At most one writable transaction is
	// open at a time; others block until it ends.
	BeginTx(writable bool) (storageTx, error)
	Close() error
}

type storageTx interface {
	Writable() bool

	// Bucket returns nil if the bucket doesn't exist.
	Bucket(name string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times,
	// including after Commit.
	Rollback() error

	// Size returns the database size in bytes (0 if unknown / not applicable).
	Size() int64
}

// storageBucket is a sorted key-value collection. Slices returned by Get and
// by cursors are only valid until the transaction ends.
type storageBucket interface {
	// Get returns nil if the key is missing.
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() storageCursor

	// Stats returns storage-specific bucket statistics. Backends that don't
	// track allocation sizes report the payload size as both in-use and
	// allocated.
	Stats() bucketStats
}

type bucketStats struct {
	KeyN        int
	LeafInuse   int64
	LeafAlloc   int64
	BranchAlloc int64
}

func (s bucketStats) TotalAlloc() int64 { return s.BranchAlloc + s.LeafAlloc }

// storageCursor iterates over a bucket in key order. A nil key means the
// cursor has run off the end.
type storageCursor interface {
	First() (key, value []byte)

	// Seek moves to the first key >= seek.
	Seek(seek []byte) (key, value []byte)

	Next() (key, value []byte)
}
