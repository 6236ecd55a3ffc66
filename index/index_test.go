package index_test

import (
	"testing"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/index"
	"github.com/dacapoday/cursor/internal/harness"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dacapoday/cursor/kv"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCreateOpen(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		_, err := index.Open(env.View(), "users")
		require.ErrorIs(t, err, cursor.ErrIndexNotFound)

		newIndex(t, env, true)
		env.Update(func(tx *kv.Tx) {
			_, err := index.Create(tx, "test", false)
			require.ErrorIs(t, err, cursor.ErrIndexExists)
		})

		ix, err := index.Open(env.View(), "test")
		require.NoError(t, err)
		require.Equal(t, "test", ix.Name())
		require.True(t, ix.Unique())
	})
}

func TestInsertDuplicate(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, true, kid{key1, loc1})

		env.Update(func(tx *kv.Tx) {
			require.NoError(t, ix.Insert(tx, key1, loc1, false), "same entry is a no-op")

			err := ix.Insert(tx, key1, loc2, false)
			require.ErrorIs(t, err, cursor.ErrDuplicateKey)

			require.ErrorIs(t, ix.Insert(tx, key2, cursor.NullRowID, true), cursor.ErrNullRowID)
			require.NoError(t, ix.Insert(tx, key2, loc1, false))
		})

		count, err := ix.NumEntries(env.View())
		require.NoError(t, err)
		require.EqualValues(t, 2, count)
	})
}

func TestFindLocAndRemove(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, false, kid{key1, loc2}, kid{key1, loc1}, kid{key2, loc1})

		id, found, err := ix.FindLoc(env.View(), key1)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, loc1, id)

		_, found, err = ix.FindLoc(env.View(), key3)
		require.NoError(t, err)
		require.False(t, found)

		remove(t, env, ix, kid{key1, loc1}, kid{key3, loc1})
		id, found, err = ix.FindLoc(env.View(), key1)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, loc2, id)

		remove(t, env, ix, kid{key1, loc2}, kid{key2, loc1})
		empty, err := ix.IsEmpty(env.View())
		require.NoError(t, err)
		require.True(t, empty)
	})
}

// TestKeysWithZeroBytes checks that keys sharing a prefix up to a zero byte
// keep their order and bounds.
func TestKeysWithZeroBytes(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		a, b, c := []byte("a"), []byte("a\x00"), []byte("a\x00b")
		ix := newIndex(t, env, false, kid{c, loc1}, kid{a, loc1}, kid{b, loc1})

		cur := ix.NewCursor(env.View(), cursor.Forward)
		defer cur.Close()
		cur.SetEndPosition(cursor.Bound(b, true))
		require.Equal(t, at(a, loc1), r(cur.SeekStart()))
		require.Equal(t, at(b, loc1), r(cur.Next()))
		require.Equal(t, eof, r(cur.Next()))
	})
}

func TestIndexesAreIsolated(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		var first, second *index.Index
		env.Update(func(tx *kv.Tx) {
			var err error
			first, err = index.Create(tx, "a", false)
			require.NoError(t, err)
			second, err = index.Create(tx, "a\x00", false)
			require.NoError(t, err)
			require.NoError(t, first.Insert(tx, key1, loc1, true))
			require.NoError(t, second.Insert(tx, key2, loc1, true))
		})

		for _, ix := range []*index.Index{first, second} {
			count, err := ix.NumEntries(env.View())
			require.NoError(t, err)
			require.EqualValues(t, 1, count, ix.Name())
		}

		c := second.NewCursor(env.View(), cursor.Reverse)
		defer c.Close()
		require.Equal(t, at(key2, loc1), r(c.SeekStart()))
		require.Equal(t, eof, r(c.Next()))
	})
}

// TestReadYourWrites runs a cursor on an open transaction.
func TestReadYourWrites(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, false, kid{key1, loc1}, kid{key3, loc1})

		tx, err := env.DB.Begin()
		require.NoError(t, err)
		defer tx.Rollback()

		require.NoError(t, ix.Insert(tx, key2, loc1, true))
		require.NoError(t, ix.Remove(tx, key3, loc1))

		c := ix.NewCursor(tx, cursor.Forward)
		defer c.Close()
		require.Equal(t, at(key1, loc1), r(c.SeekStart()))
		require.Equal(t, at(key2, loc1), r(c.Next()))

		c.Save()
		require.NoError(t, ix.Insert(tx, key4, loc1, true))
		c.Restore(tx)
		require.Equal(t, at(key4, loc1), r(c.Next()))
		require.Equal(t, eof, r(c.Next()))
	})
}

func TestMisuse(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, false, kid{key1, loc1})

		c := ix.NewCursor(env.View(), cursor.Forward)
		defer c.Close()

		misuse := func(fn func()) {
			t.Helper()
			defer func() {
				err, ok := recover().(error)
				require.True(t, ok)
				require.ErrorIs(t, err, cursor.ErrMisuse)
			}()
			fn()
		}

		misuse(func() { c.Restore(env.View()) })
		misuse(func() { c.Next() })

		c.Save()
		misuse(func() { c.Next() })
		misuse(func() { c.Seek(key1, true) })
		c.Restore(env.View())
		misuse(func() { c.Restore(env.View()) })

		c.Close()
		misuse(func() { c.SeekStart() })
	})
}

var errBoom = errors.New("boom")

type failingView struct {
	cursor.View
}

func (v failingView) NewIterator(lower, upper []byte) iterator.Iterator {
	return failingIter{}
}

type failingIter struct{}

func (failingIter) Valid() bool          { return false }
func (failingIter) Error() error         { return errBoom }
func (failingIter) Key() []byte          { return nil }
func (failingIter) Val() []byte          { return nil }
func (failingIter) Next() bool           { return false }
func (failingIter) Prev() bool           { return false }
func (failingIter) SeekFirst() bool      { return false }
func (failingIter) SeekLast() bool       { return false }
func (failingIter) Seek(key []byte) bool { return false }
func (failingIter) Close()               {}

func TestErrorIsLatched(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, false, kid{key1, loc1})

		c := ix.NewCursor(failingView{env.View()}, cursor.Forward)
		defer c.Close()
		require.Equal(t, eof, r(c.SeekStart()))
		require.ErrorIs(t, c.Error(), errBoom)

		c.Save()
		c.Restore(env.View())
		require.Equal(t, eof, r(c.Seek(key1, true)), "a failed cursor stays failed")
		require.ErrorIs(t, c.Error(), errBoom)
	})
}
