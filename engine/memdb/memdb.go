// Package memdb is an in-memory multi-version engine on a red-black tree.
//
// Every commit gets a sequence number and every key keeps its history of
// versions, so a snapshot is just a sequence number: it sees the newest
// version of each key at or below it. History is kept for the life of the
// engine, which makes memdb suitable for tests and small working sets.
package memdb

import (
	"iter"
	"sync"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/engine"
	"github.com/dacapoday/cursor/iterator"
	"github.com/emirpasic/gods/trees/redblacktree"
)

const Name = "memdb"

func init() {
	engine.Register(Name, func(engine.Options) (cursor.Engine, error) {
		return New(), nil
	})
}

// DB is an in-memory engine. It is safe for concurrent use.
type DB struct {
	mu     sync.RWMutex
	tree   *redblacktree.Tree
	seq    uint64
	closed bool
}

var _ cursor.Engine = (*DB)(nil)

// version is one committed value of a key; a nil val is a delete.
type version struct {
	seq uint64
	val []byte
}

type history struct {
	versions []version
}

// at returns the value visible at seq.
func (h *history) at(seq uint64) ([]byte, bool) {
	for i := len(h.versions) - 1; i >= 0; i-- {
		if v := h.versions[i]; v.seq <= seq {
			return v.val, v.val != nil
		}
	}
	return nil, false
}

// New returns an empty engine.
func New() *DB {
	return &DB{tree: redblacktree.NewWithStringComparator()}
}

func (db *DB) Name() string {
	return Name
}

// Snapshot captures the current sequence number.
func (db *DB) Snapshot() (cursor.Snapshot, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, cursor.ErrClosed
	}
	return &snapshot{db: db, seq: db.seq}, nil
}

// Commit applies changes as one new version.
func (db *DB) Commit(sortedChanges iter.Seq2[[]byte, []byte]) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return cursor.ErrClosed
	}
	seq := db.seq + 1
	for key, val := range sortedChanges {
		if val != nil {
			val = append([]byte{}, val...)
		}
		k := string(key)
		if found, ok := db.tree.Get(k); ok {
			h := found.(*history)
			if n := len(h.versions); h.versions[n-1].seq == seq {
				h.versions[n-1].val = val
				continue
			}
			h.versions = append(h.versions, version{seq, val})
			continue
		}
		if val == nil {
			continue
		}
		db.tree.Put(k, &history{versions: []version{{seq, val}}})
	}
	db.seq = seq
	return nil
}

// Close marks the engine closed. Open snapshots stay readable.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.closed = true
	return nil
}

type snapshot struct {
	db  *DB
	seq uint64
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	found, ok := s.db.tree.Get(string(key))
	if !ok {
		return nil, false, nil
	}
	val, ok := found.(*history).at(s.seq)
	return val, ok, nil
}

func (s *snapshot) NewIterator(lower, upper []byte) iterator.Iterator {
	return iterator.Bound(&treeIter{db: s.db, seq: s.seq}, lower, upper)
}

func (s *snapshot) Release() {}
