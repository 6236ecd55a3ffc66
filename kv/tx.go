package kv

import (
	"time"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/btree"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dacapoday/cursor/metrics"
)

// Begin starts a transaction on a fresh snapshot.
// Important: Caller must call Commit or Rollback.
func (db *DB) Begin() (tx *Tx, err error) {
	snap, err := db.engine.Snapshot()
	if err != nil {
		return
	}
	tx = &Tx{engine: db.engine, snapshot: snap}
	return
}

// Tx is a unit of work. A nil value in pending marks a delete.
// Not thread-safe.
type Tx struct {
	engine   cursor.Engine
	snapshot cursor.Snapshot
	pending  btree.BTree[[]byte]
}

var _ cursor.Writer = (*Tx)(nil)

func (tx *Tx) close() {
	tx.engine = nil
	tx.snapshot.Release()
	tx.snapshot = nil
	tx.pending.Reset()
}

// Rollback discards pending changes. Iterators created from the Tx must be
// closed first. Calling Rollback after Commit is a no-op.
func (tx *Tx) Rollback() {
	if tx.engine == nil {
		return
	}
	tx.close()
}

// Commit applies pending changes atomically and ends the transaction.
func (tx *Tx) Commit() (err error) {
	if tx.engine == nil {
		err = cursor.ErrClosed
		return
	}
	if tx.pending.Empty() {
		tx.close()
		return
	}

	name := tx.engine.Name()
	changes := tx.pending.Len()
	start := time.Now()
	err = tx.engine.Commit(func(yield func([]byte, []byte) bool) {
		for key, val := range tx.pending.All() {
			if !yield([]byte(key), val) {
				return
			}
		}
	})
	elapsed := time.Since(start)
	metrics.CommitSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	cursor.Logger().Debug("kv commit", "engine", name, "changes", changes, "cost", elapsed, "err", err)
	tx.close()
	return
}

// Pending returns the number of buffered changes.
func (tx *Tx) Pending() int {
	return tx.pending.Len()
}

// Get returns the value for key, pending changes first.
func (tx *Tx) Get(key []byte) ([]byte, bool, error) {
	if val, found := tx.pending.Get(string(key)); found {
		return val, val != nil, nil
	}
	return tx.snapshot.Get(key)
}

// Set buffers a write. Both key and val are copied.
func (tx *Tx) Set(key, val []byte) {
	tx.pending.Put(string(key), append([]byte{}, val...))
}

// Delete buffers a delete.
func (tx *Tx) Delete(key []byte) {
	tx.pending.Put(string(key), nil)
}

// NewIterator returns an iterator over [lower, upper) that merges pending
// changes into the snapshot. Writes made while it is open may be missed.
func (tx *Tx) NewIterator(lower, upper []byte) iterator.Iterator {
	iter := new(iterator.Overlay[*iterator.Bounded[*pendingIter], iterator.Iterator])
	iter.Load(
		iterator.Bound(&pendingIter{it: tx.pending.Iter()}, lower, upper),
		tx.snapshot.NewIterator(lower, upper),
	)
	return iter
}
