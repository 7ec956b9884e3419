// Package tsdfile reads and writes TSDB databases as standalone .tsd files.
//
// Reads memory-map the file and decode straight from the mapping; decoded
// trees never alias their source, so the mapping is released before ReadFile
// returns. Writes go to a temporary file in the target directory which is
// synced and then renamed over the destination, so readers observe either
// the old or the new database, never a partial one.
package tsdfile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andreyvit/tsdb"
)

// Ext is the conventional extension of TSDB files.
const Ext = ".tsd"

type Options struct {
	Logger *slog.Logger

	// NoSync skips fdatasync before the rename in WriteFile. Only meant for
	// tests and throwaway data.
	NoSync bool

	// Perm is the mode of files created by WriteFile, 0644 by default.
	Perm fs.FileMode
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Perm == 0 {
		o.Perm = 0o644
	}
	return o
}

// HasExt reports whether path ends in Ext, ignoring case.
func HasExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

// WithExt appends Ext to path unless it is already there.
func WithExt(path string) string {
	if HasExt(path) {
		return path
	}
	return path + Ext
}

// ReadFile decodes the database stored at path. The whole file must be a
// single database.
func ReadFile(path string, opt Options) (*tsdb.Database, error) {
	opt = opt.withDefaults()
	logger := opt.Logger.With("path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() > math.MaxInt {
		return nil, fmt.Errorf("%s: file too large (%d bytes)", path, fi.Size())
	}
	size := int(fi.Size())

	var data []byte
	if size > 0 {
		data, err = mapFile(f, size)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer func() {
			if err := unmapFile(data); err != nil {
				logger.Error("tsdfile: munmap failed", "err", err)
			}
		}()
	}

	db, err := tsdb.Unmarshal(data)
	if err != nil {
		var fe *tsdb.FormatError
		if errors.As(err, &fe) {
			// the error must stay readable after the mapping is gone
			fe.Data = bytes.Clone(fe.Data)
		}
		logger.Error("tsdfile: decode failed", "err", err, "size", size, hexAttr("head", head(data, 16)))
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("tsdfile: read", "db", db.Name(), "version", db.Version(), "size", size, "objects", db.ObjectCount(), "mmap", mmapSupported)
	return db, nil
}

// WriteFile atomically replaces the file at path with the encoding of db.
func WriteFile(path string, db *tsdb.Database, opt Options) (err error) {
	opt = opt.withDefaults()
	logger := opt.Logger.With("path", path)

	data, err := tsdb.Marshal(db)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", path, err)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tempPath)
			logger.Error("tsdfile: write failed", "err", err)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if !opt.NoSync {
		if err = fdatasync(f); err != nil {
			return fmt.Errorf("%s: fdatasync: %w", tempPath, err)
		}
	}
	if err = f.Chmod(opt.Perm); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tempPath, path); err != nil {
		return err
	}
	logger.Debug("tsdfile: wrote", "db", db.Name(), "size", len(data), "objects", db.ObjectCount(), "sync", !opt.NoSync)
	return nil
}

// ReadDir decodes every .tsd file directly inside dir, in file name order.
// It stops at the first file that fails to decode.
func ReadDir(dir string, opt Options) ([]*tsdb.Database, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && HasExt(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	dbs := make([]*tsdb.Database, 0, len(names))
	for _, name := range names {
		db, err := ReadFile(filepath.Join(dir, name), opt)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func hexAttr(key string, b []byte) slog.Attr {
	if len(b) == 0 {
		return slog.String(key, "<empty>")
	}
	return slog.String(key, hex.EncodeToString(b))
}
