package lazydb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazydb"
)

func openTestDB(t *testing.T, opts ...lazydb.Option) (*lazydb.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.lazydb")
	db, err := lazydb.Open(path, opts...)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db, path
}

func reopen(t *testing.T, db *lazydb.DB, path string) *lazydb.DB {
	t.Helper()

	require.NoError(t, db.Close())

	db2, err := lazydb.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { db2.Close() })

	return db2
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestWriteReadAllTypes(t *testing.T) {
	db, _ := openTestDB(t)

	writes := map[string]any{
		"string": "here is a test value",
		"int":    int64(346735),
		"dict":   map[string]any{"a": float64(1), "b": "two"},
		"list":   []int64{1, 2, 3},
		"bytes":  []byte{0xde, 0xad, 0xbe, 0xef},
	}

	for key, value := range writes {
		require.NoError(t, db.Write(key, value))
	}

	for key, want := range writes {
		got, err := db.Read(key)
		require.NoError(t, err)
		assert.Equal(t, want, got, "key %q", key)
	}
}

func TestIntAndStringKeysAreDistinct(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.Write(42, "int keyed"))
	require.NoError(t, db.Write("42", "string keyed"))

	v1, err := db.Read(42)
	require.NoError(t, err)
	assert.Equal(t, "int keyed", v1)

	v2, err := db.Read("42")
	require.NoError(t, err)
	assert.Equal(t, "string keyed", v2)
}

func TestOverwriteShadowsOldValue(t *testing.T) {
	db, path := openTestDB(t)

	require.NoError(t, db.Write("k", "first"))
	sizeAfterFirst := fileSize(t, path)

	require.NoError(t, db.Write("k", "second"))

	val, err := db.Read("k")
	require.NoError(t, err)
	assert.Equal(t, "second", val)

	// both records stay on disk; only the index forgot the first
	assert.Greater(t, fileSize(t, path), sizeAfterFirst)
	assert.Equal(t, 1, db.Count())

	// the shadow survives a rebuild of the index
	db = reopen(t, db, path)
	val, err = db.Read("k")
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}

func TestReadMissingKey(t *testing.T) {
	db, _ := openTestDB(t)

	_, err := db.Read("never written")
	assert.ErrorIs(t, err, lazydb.ErrKeyNotFound)

	require.NoError(t, db.Write("other", "value"))

	_, err = db.Read("never written")
	assert.ErrorIs(t, err, lazydb.ErrKeyNotFound)
	_, err = db.Read(99)
	assert.ErrorIs(t, err, lazydb.ErrKeyNotFound)
}

func TestReopenScenario(t *testing.T) {
	db, path := openTestDB(t)

	require.NoError(t, db.Write(42, "hello"))
	require.NoError(t, db.Write("answer", 42))
	require.NoError(t, db.Write("nums", []int64{1, 2, 3}))
	require.NoError(t, db.Write("meta", map[string]any{"a": float64(1)}))

	db = reopen(t, db, path)

	v, err := db.Read(42)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = db.Read("answer")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = db.Read("nums")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, v)

	v, err = db.Read("meta")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)
}

func TestSettingsPersistAcrossReopen(t *testing.T) {
	db, path := openTestDB(t,
		lazydb.WithContentIntSize(2),
		lazydb.WithIntListSize(8),
	)

	require.NoError(t, db.Write("nums", []int64{-1, 1 << 40}))
	require.NoError(t, db.Write("greeting", "hello"))

	// reopen without options; the stored widths must win
	db = reopen(t, db, path)

	settings := db.Settings()
	assert.Equal(t, 2, settings.ContentIntSize)
	assert.Equal(t, 8, settings.IntListSize)

	v, err := db.Read("nums")
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 1 << 40}, v)

	v, err = db.Read("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestUnsupportedWriteLeavesFileUntouched(t *testing.T) {
	db, path := openTestDB(t)

	require.NoError(t, db.Write("k", "v"))
	size := fileSize(t, path)

	assert.ErrorIs(t, db.Write("bad", 3.14), lazydb.ErrUnsupportedType)
	assert.ErrorIs(t, db.Write(3.14, "bad"), lazydb.ErrUnsupportedType)

	assert.Equal(t, size, fileSize(t, path))
	assert.Equal(t, 1, db.Count())
}

func TestKeysAndCount(t *testing.T) {
	db, _ := openTestDB(t)

	assert.Equal(t, 0, db.Count())
	assert.Empty(t, db.Keys())

	require.NoError(t, db.Write("a", "1"))
	require.NoError(t, db.Write(2, "2"))
	require.NoError(t, db.Write("a", "overwritten"))

	assert.Equal(t, 2, db.Count())
	assert.ElementsMatch(t, []any{"a", int64(2)}, db.Keys())
	assert.True(t, db.Has("a"))
	assert.True(t, db.Has(2))
	assert.False(t, db.Has("b"))
}

func TestClosedHandle(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.Write("k", "v"))
	require.NoError(t, db.Close())

	assert.ErrorIs(t, db.Write("k", "v"), lazydb.ErrClosed)
	_, err := db.Read("k")
	assert.ErrorIs(t, err, lazydb.ErrClosed)
	assert.False(t, db.Has("k"))
	assert.ErrorIs(t, db.Close(), lazydb.ErrClosed)
}
