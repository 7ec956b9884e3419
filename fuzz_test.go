package tsdb

import (
	"testing"
)

func FuzzUnmarshal(f *testing.F) {
	f.Add(must(Marshal(sampleDatabase())))
	f.Add(must(Marshal(NewDatabase("Example").Add(NewObject("Example").Add(Int32Field("Example Variable", 12))))))
	f.Add([]byte("TSDB"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		db, err := Unmarshal(data)
		if err != nil {
			return
		}
		// anything that decodes must re-encode to a buffer of its declared size
		out, err := Marshal(db)
		if err != nil {
			t.Fatalf("Marshal after successful Unmarshal: %v", err)
		}
		if len(out) != db.Size() {
			t.Fatalf("len(Marshal) = %d, wanted Size() = %d", len(out), db.Size())
		}
		_ = Dump(db)
	})
}
