package leveldb

import (
	"testing"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/engine"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func openMem(t *testing.T) *DB {
	t.Helper()
	db, err := OpenStorage(storage.NewMemStorage(), engine.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func commit(t *testing.T, db *DB, pairs ...string) {
	t.Helper()
	err := db.Commit(func(yield func([]byte, []byte) bool) {
		for i := 0; i+1 < len(pairs); i += 2 {
			var val []byte
			if pairs[i+1] != "<del>" {
				val = []byte(pairs[i+1])
			}
			if !yield([]byte(pairs[i]), val) {
				return
			}
		}
	})
	require.NoError(t, err)
}

func TestSnapshotIsolation(t *testing.T) {
	db := openMem(t)
	commit(t, db, "a", "1", "b", "2", "c", "3")

	old, err := db.Snapshot()
	require.NoError(t, err)
	defer old.Release()

	commit(t, db, "a", "<del>", "b", "20")

	val, found, err := old.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", string(val))

	cur, err := db.Snapshot()
	require.NoError(t, err)
	defer cur.Release()

	_, found, err = cur.Get([]byte("a"))
	require.NoError(t, err)
	require.False(t, found)

	val, _, err = cur.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, "20", string(val))
}

func TestIteratorEdges(t *testing.T) {
	db := openMem(t)
	commit(t, db, "a", "", "b", "2", "c", "3", "d", "4")

	s, err := db.Snapshot()
	require.NoError(t, err)
	defer s.Release()

	it := s.NewIterator([]byte("b"), []byte("d"))
	require.True(t, it.SeekLast())
	require.Equal(t, "c", string(it.Key()))
	require.False(t, it.Next())
	require.False(t, it.Prev(), "stays exhausted past the edge")
	require.True(t, it.SeekFirst())
	require.Equal(t, "b", string(it.Key()))
	require.False(t, it.Prev())
	require.False(t, it.Valid())
	require.False(t, it.Seek([]byte("d")))
	it.Close()
	require.False(t, it.Valid())

	it = s.NewIterator(nil, nil)
	defer it.Close()
	require.True(t, it.SeekFirst())
	require.Equal(t, "a", string(it.Key()))
	require.NotNil(t, it.Val())
	require.Empty(t, it.Val())
}

func TestRegistered(t *testing.T) {
	require.Contains(t, engine.Names(), Name)

	e, err := engine.Open(Name, engine.Options{InMemory: true, CacheMB: 8})
	require.NoError(t, err)
	require.Equal(t, Name, e.Name())
	require.NoError(t, e.Close())

	_, err = e.Snapshot()
	require.ErrorIs(t, err, cursor.ErrClosed)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(engine.Options{Path: dir})
	require.NoError(t, err)
	commit(t, db, "k", "v")
	require.NoError(t, db.Close())

	db, err = Open(engine.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()
	s, err := db.Snapshot()
	require.NoError(t, err)
	defer s.Release()
	val, found, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", string(val))
}
