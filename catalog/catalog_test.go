package catalog

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/tsdb"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions() (Options, *bytes.Buffer) {
	var buf bytes.Buffer
	return Options{
		Logger:    slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		IsTesting: true,
		Now:       func() time.Time { return fixedTime },
	}, &buf
}

// forEachBackend runs f against a fresh bolt-backed and a fresh in-memory
// catalog.
func forEachBackend(t *testing.T, f func(t *testing.T, c *Catalog, logs *bytes.Buffer)) {
	t.Run("bolt", func(t *testing.T) {
		opt, logs := testOptions()
		c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), opt)
		require.NoError(t, err)
		defer c.Close()
		f(t, c, logs)
	})
	t.Run("mem", func(t *testing.T) {
		opt, logs := testOptions()
		c, err := OpenMemory(opt)
		require.NoError(t, err)
		defer c.Close()
		f(t, c, logs)
	})
}

func sampleDB(name string, id int64) *tsdb.Database {
	return tsdb.NewDatabase(name).Add(
		tsdb.NewObject("Entity").Add(
			tsdb.Int64Field("ID", id),
			tsdb.StringField("Name", "thing"),
			tsdb.Float32Array("Weights", []float32{0.5, 1.5}),
		),
	)
}

func TestPutGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, logs *bytes.Buffer) {
		db := sampleDB("level1", 7)
		e, err := c.Put(db)
		require.NoError(t, err)
		assert.Equal(t, "level1", e.Name)
		assert.Equal(t, tsdb.Version, e.Version)
		assert.Equal(t, db.Size(), e.Size)
		assert.Equal(t, 1, e.ObjectCount)
		assert.Equal(t, uint64(0), e.ModCount)
		assert.NotZero(t, e.Checksum)

		got, err := c.Get("level1")
		require.NoError(t, err)
		assert.True(t, db.Equal(got))

		st, err := c.Stat("level1")
		require.NoError(t, err)
		assert.Equal(t, e.Checksum, st.Checksum)
		assert.True(t, fixedTime.Equal(st.Saved), "saved = %v", st.Saved)
		assert.Contains(t, logs.String(), "catalog: put")
	})
}

func TestPut_OverwriteBumpsModCount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		_, err := c.Put(sampleDB("x", 1))
		require.NoError(t, err)
		_, err = c.Put(sampleDB("x", 2))
		require.NoError(t, err)
		e, err := c.Put(sampleDB("x", 3))
		require.NoError(t, err)
		assert.Equal(t, uint64(2), e.ModCount)

		got, err := c.Get("x")
		require.NoError(t, err)
		id, ok := got.FindObject("Entity").FindField("ID").AsInt64()
		require.True(t, ok)
		assert.Equal(t, int64(3), id)
	})
}

func TestPutRaw(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		data, err := tsdb.Marshal(sampleDB("raw", 1))
		require.NoError(t, err)
		e, err := c.PutRaw(data)
		require.NoError(t, err)
		assert.Equal(t, "raw", e.Name)

		got, _, err := c.GetRaw("raw")
		require.NoError(t, err)
		assert.Equal(t, data, got)

		_, err = c.PutRaw(data[:len(data)-1])
		require.ErrorIs(t, err, tsdb.ErrTruncated)
		_, err = c.PutRaw([]byte("garbage"))
		require.ErrorIs(t, err, tsdb.ErrBadHeader)
	})
}

func TestNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		_, err := c.Get("nope")
		require.ErrorIs(t, err, ErrNotFound)
		var ee *EntryError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, "nope", ee.Name)

		_, err = c.Stat("nope")
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, c.Delete("nope"), ErrNotFound)
	})
}

func TestEmptyNameRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		_, err := c.Put(sampleDB("", 1))
		require.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestChecksumMismatch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, logs *bytes.Buffer) {
		_, err := c.Put(sampleDB("victim", 1))
		require.NoError(t, err)

		require.NoError(t, c.update(func(tx storageTx) error {
			b := tx.Bucket(dataBucket)
			data := bytes.Clone(b.Get([]byte("victim")))
			data[len(data)-1] ^= 0xFF
			return b.Put([]byte("victim"), data)
		}))

		_, err = c.Get("victim")
		require.ErrorIs(t, err, ErrChecksumMismatch)
		assert.Contains(t, logs.String(), "get failed")
	})
}

func TestListAndDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		for _, name := range []string{"maps/b", "maps/a", "saves/1"} {
			_, err := c.Put(sampleDB(name, 1))
			require.NoError(t, err)
		}

		entries, err := c.List()
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "maps/a", entries[0].Name)
		assert.Equal(t, "maps/b", entries[1].Name)
		assert.Equal(t, "saves/1", entries[2].Name)

		entries, err = c.ListPrefix("maps/")
		require.NoError(t, err)
		require.Len(t, entries, 2)

		require.NoError(t, c.Delete("maps/a"))
		entries, err = c.List()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		_, err = c.Get("maps/a")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStats(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		db := sampleDB("s", 1)
		_, err := c.Put(db)
		require.NoError(t, err)
		s, err := c.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, s.Entries)
		assert.GreaterOrEqual(t, s.DataSize, int64(db.Size()))
		assert.Positive(t, s.MetaSize)
		assert.GreaterOrEqual(t, s.TotalAlloc(), s.TotalSize())
	})
}

func TestConcurrentPuts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, c *Catalog, _ *bytes.Buffer) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := c.Put(sampleDB("shared", int64(i)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
		e, err := c.Stat("shared")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), e.ModCount)
	})
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	opt, _ := testOptions()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path, opt)
	require.NoError(t, err)
	_, err = c.Put(sampleDB("kept", 1))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path, opt)
	require.NoError(t, err)
	defer c.Close()
	got, err := c.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name())
}

func TestEntryError(t *testing.T) {
	err := entryErrf("a", ErrNotFound, "")
	assert.Equal(t, `catalog: "a": not found`, err.Error())
	err = entryErrf("a", ErrChecksumMismatch, "size %d", 1)
	assert.Equal(t, `catalog: "a": size 1: checksum mismatch`, err.Error())
}

func TestEntryEncoding(t *testing.T) {
	e := Entry{Name: "n", Version: 0x0103, Size: 10, ObjectCount: 2, Checksum: 0xDEADBEEF, ModCount: 3, Saved: fixedTime}
	got, err := decodeEntry("n", encodeEntry(&e))
	require.NoError(t, err)
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Checksum, got.Checksum)
	assert.Equal(t, e.ModCount, got.ModCount)
	assert.True(t, e.Saved.Equal(got.Saved))

	_, err = decodeEntry("n", []byte{0xC1})
	require.Error(t, err)
}
