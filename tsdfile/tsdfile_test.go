package tsdfile

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/tsdb"
)

func testOptions(t testing.TB) (Options, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return Options{Logger: logger, NoSync: true}, &buf
}

func exampleDB(name string) *tsdb.Database {
	return tsdb.NewDatabase(name).Add(
		tsdb.NewObject("Entity").Add(
			tsdb.Int64Field("ID", 1),
			tsdb.Vector3Field("Position", tsdb.Vector3{X: 1, Y: 2, Z: 3}),
			tsdb.StringArray("Tags", []string{"player", "hero"}),
		),
	)
}

func TestWriteReadFile(t *testing.T) {
	opt, logs := testOptions(t)
	path := filepath.Join(t.TempDir(), "world.tsd")
	db := exampleDB("World")

	require.NoError(t, WriteFile(path, db, opt))
	read, err := ReadFile(path, opt)
	require.NoError(t, err)
	assert.True(t, db.Equal(read))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, db.Size(), len(raw))
	assert.Contains(t, logs.String(), "tsdfile: wrote")
	assert.Contains(t, logs.String(), "tsdfile: read")
}

func TestWriteFile_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	opt, _ := testOptions(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tsd")

	require.NoError(t, WriteFile(path, exampleDB("one"), opt))
	require.NoError(t, WriteFile(path, exampleDB("two"), opt))

	read, err := ReadFile(path, opt)
	require.NoError(t, err)
	assert.Equal(t, "two", read.Name())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.tsd", entries[0].Name())
}

func TestWriteFile_Synced(t *testing.T) {
	opt, _ := testOptions(t)
	opt.NoSync = false
	path := filepath.Join(t.TempDir(), "synced.tsd")
	require.NoError(t, WriteFile(path, exampleDB("s"), opt))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(exampleDB("s").Size()), fi.Size())
}

func TestReadFile_Corrupt(t *testing.T) {
	opt, logs := testOptions(t)
	path := filepath.Join(t.TempDir(), "bad.tsd")
	require.NoError(t, os.WriteFile(path, []byte("NOPE, not a database"), 0o644))

	_, err := ReadFile(path, opt)
	require.ErrorIs(t, err, tsdb.ErrBadHeader)
	var fe *tsdb.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Error(), "4e4f5045") // still readable once unmapped
	assert.Contains(t, logs.String(), "decode failed")
}

func TestReadFile_Empty(t *testing.T) {
	opt, _ := testOptions(t)
	path := filepath.Join(t.TempDir(), "empty.tsd")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := ReadFile(path, opt)
	require.ErrorIs(t, err, tsdb.ErrTruncated)
}

func TestReadFile_Missing(t *testing.T) {
	opt, _ := testOptions(t)
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.tsd"), opt)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadDir(t *testing.T) {
	opt, _ := testOptions(t)
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "b.tsd"), exampleDB("b"), opt))
	require.NoError(t, WriteFile(filepath.Join(dir, "a.TSD"), exampleDB("a"), opt))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tsd"), 0o755))

	dbs, err := ReadDir(dir, opt)
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "a", dbs[0].Name())
	assert.Equal(t, "b", dbs[1].Name())
}

func TestExt(t *testing.T) {
	assert.True(t, HasExt("x/y.tsd"))
	assert.True(t, HasExt("Y.TSD"))
	assert.False(t, HasExt("y.tsdb"))
	assert.Equal(t, "save.tsd", WithExt("save"))
	assert.Equal(t, "save.tsd", WithExt("save.tsd"))
}
