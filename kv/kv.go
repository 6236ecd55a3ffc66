// Package kv layers transactions over a storage engine.
//
// A Tx buffers changes in an in-memory B-tree on top of an engine snapshot.
// Reads through the Tx see its own pending writes; Commit hands the sorted
// changes to the engine in one atomic batch.
package kv

import (
	"github.com/dacapoday/cursor"
	"github.com/pkg/errors"
)

// DB is a transactional key space over an engine.
type DB struct {
	engine cursor.Engine
}

// Open wraps an already opened engine. Closing the DB closes the engine.
func Open(e cursor.Engine) *DB {
	return &DB{engine: e}
}

// Engine returns the underlying engine.
func (db *DB) Engine() cursor.Engine {
	return db.engine
}

// Snapshot captures the committed state.
// Important: Caller must call Release.
func (db *DB) Snapshot() (cursor.Snapshot, error) {
	return db.engine.Snapshot()
}

// View runs fn against a snapshot that is released when fn returns.
func (db *DB) View(fn func(cursor.View) error) error {
	snap, err := db.engine.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(snap)
}

// Update runs fn in a new transaction and commits it when fn returns nil.
func (db *DB) Update(fn func(tx *Tx) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	if err = fn(tx); err != nil {
		return
	}
	return tx.Commit()
}

func (db *DB) Close() error {
	return errors.Wrap(db.engine.Close(), "close engine")
}
