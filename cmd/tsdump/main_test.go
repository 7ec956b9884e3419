package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func tsdump(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeExample(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "example.tsd")
	_, stderr, code := tsdump(t, "example", path)
	require.Equal(t, 0, code, stderr)
	return path
}

func TestInfo(t *testing.T) {
	path := writeExample(t)
	out, stderr, code := tsdump(t, "info", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "name:     Example")
	assert.Contains(t, out, "version:  1.3")
	assert.Contains(t, out, "objects:  1")
}

func TestDump_Text(t *testing.T) {
	path := writeExample(t)
	out, stderr, code := tsdump(t, "dump", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, `database "Example" v1.3`)
	assert.Contains(t, out, "int32 Example Variable = 12")
	assert.Contains(t, out, `string[2] strings = ["string", "string two!"]`)
}

func TestDump_Structured(t *testing.T) {
	path := writeExample(t)

	out, stderr, code := tsdump(t, "dump", "--format=json", path)
	require.Equal(t, 0, code, stderr)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Example", m["name"])

	out, stderr, code = tsdump(t, "dump", "-f", "msgpack", path)
	require.Equal(t, 0, code, stderr)
	m = nil
	require.NoError(t, msgpack.Unmarshal([]byte(out), &m))
	assert.Equal(t, "1.3", m["version"])

	out, stderr, code = tsdump(t, "dump", "--format", "cbor", path)
	require.Equal(t, 0, code, stderr)
	m = nil
	require.NoError(t, cbor.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Example", m["name"])
}

func TestCatalogCommands(t *testing.T) {
	path := writeExample(t)
	dir := t.TempDir()
	cat := filepath.Join(dir, "catalog.db")

	out, stderr, code := tsdump(t, "catalog", "put", cat, path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "-> Example")

	out, stderr, code = tsdump(t, "catalog", "ls", cat)
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Example"), lines[1])

	out, stderr, code = tsdump(t, "catalog", "stats", cat)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "entries:  1")

	extracted := filepath.Join(dir, "out.tsd")
	_, stderr, code = tsdump(t, "catalog", "get", cat, "Example", extracted)
	require.Equal(t, 0, code, stderr)
	out, _, code = tsdump(t, "info", extracted)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "name:     Example")

	_, stderr, code = tsdump(t, "catalog", "rm", cat, "Example")
	require.Equal(t, 0, code, stderr)
	_, stderr, code = tsdump(t, "catalog", "rm", cat, "Example")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

func TestErrors(t *testing.T) {
	_, stderr, code := tsdump(t, "info", filepath.Join(t.TempDir(), "missing.tsd"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.tsd")

	_, _, code = tsdump(t, "bogus")
	assert.Equal(t, 2, code)

	_, _, code = tsdump(t, "dump", "--format=xml", "x.tsd")
	assert.Equal(t, 2, code)
}
