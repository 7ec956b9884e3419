package catalog

// Stats summarizes a catalog's storage use.
type Stats struct {
	Entries int

	DataSize  int64
	DataAlloc int64
	MetaSize  int64
	MetaAlloc int64

	// FileSize is the size of the backing file, 0 for in-memory catalogs.
	FileSize int64
}

func (s *Stats) TotalSize() int64 {
	return s.DataSize + s.MetaSize
}

func (s *Stats) TotalAlloc() int64 {
	return s.DataAlloc + s.MetaAlloc
}

func (c *Catalog) Stats() (Stats, error) {
	var s Stats
	err := c.view(func(tx storageTx) error {
		ds := tx.Bucket(dataBucket).Stats()
		ms := tx.Bucket(metaBucket).Stats()
		s = Stats{
			Entries:   ms.KeyN,
			DataSize:  ds.LeafInuse,
			DataAlloc: ds.TotalAlloc(),
			MetaSize:  ms.LeafInuse,
			MetaAlloc: ms.TotalAlloc(),
			FileSize:  tx.Size(),
		}
		return nil
	})
	return s, err
}
