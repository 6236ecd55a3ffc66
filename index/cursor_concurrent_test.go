package index_test

import (
	"bytes"
	"testing"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/index"
	"github.com/dacapoday/cursor/internal/harness"
	"github.com/dacapoday/cursor/keystring"
	"github.com/dacapoday/cursor/kv"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestRestoreUnderConcurrentWrites walks an index, restoring on a fresh
// snapshot after every entry, while another goroutine inserts and removes
// keys. The walk must be strictly ascending and must see every key that was
// never touched by the writer.
func TestRestoreUnderConcurrentWrites(t *testing.T) {
	const n = 200

	harness.Run(t, func(t *testing.T, env *harness.Env) {
		db := env.DB
		var ix *index.Index
		require.NoError(t, db.Update(func(tx *kv.Tx) (err error) {
			if ix, err = index.Create(tx, "test", false); err != nil {
				return
			}
			for i := int64(0); i < n; i += 2 {
				if err = ix.Insert(tx, keystring.Int64(i), cursor.RowID(i+1), true); err != nil {
					return
				}
			}
			return
		}))

		var g errgroup.Group
		g.Go(func() error {
			for i := int64(1); i < n; i += 2 {
				err := db.Update(func(tx *kv.Tx) error {
					if err := ix.Insert(tx, keystring.Int64(i), cursor.RowID(i+1), true); err != nil {
						return err
					}
					if i >= 5 {
						return ix.Remove(tx, keystring.Int64(i-4), cursor.RowID(i-3))
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})

		seen := make(map[int64]bool)
		g.Go(func() error {
			snap, err := db.Snapshot()
			if err != nil {
				return err
			}
			c := ix.NewCursor(snap, cursor.Forward)
			defer func() {
				c.Close()
				if snap != nil {
					snap.Release()
				}
			}()

			var prev *cursor.IndexKeyEntry
			for e, ok := c.SeekStart(); ok; e, ok = c.Next() {
				if prev != nil {
					if cmp := bytes.Compare(prev.Key, e.Key); cmp > 0 || (cmp == 0 && prev.ID >= e.ID) {
						return errors.Errorf("entry %x/%d after %x/%d", e.Key, e.ID, prev.Key, prev.ID)
					}
				}
				last := e
				prev = &last
				seen[int64(e.ID)-1] = true

				c.Save()
				snap.Release()
				if snap, err = db.Snapshot(); err != nil {
					snap = nil
					return err
				}
				c.Restore(snap)
			}
			return c.Error()
		})
		require.NoError(t, g.Wait())

		for i := int64(0); i < n; i += 2 {
			require.True(t, seen[i], "key %d", i)
		}
	})
}
