package catalog

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

var entryBufPool = &sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func encodeEntry(e *Entry) []byte {
	buf := entryBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer entryBufPool.Put(buf)

	enc := msgpack.GetEncoder()
	enc.ResetDict(buf, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(e)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", e, err))
	}
	return bytes.Clone(buf.Bytes())
}

func decodeEntry(name string, raw []byte) (Entry, error) {
	var e Entry
	var r bytes.Reader
	r.Reset(raw)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(&e)
	msgpack.PutDecoder(dec)
	if err != nil {
		return Entry{}, entryErrf(name, err, "failed to decode entry metadata (%d bytes)", len(raw))
	}
	return e, nil
}
