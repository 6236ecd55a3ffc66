// Package badger is a persistent engine on Badger.
//
// A snapshot is a read-only Badger transaction. Badger iterators only move
// one way, so the adapter swaps between a forward and a reverse iterator
// when the direction changes.
package badger

import (
	"fmt"
	"iter"
	"strings"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/engine"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	log "github.com/xuperchain/log15"
)

const Name = "badger"

func init() {
	engine.Register(Name, func(opts engine.Options) (cursor.Engine, error) {
		return Open(opts)
	})
}

// DB wraps a Badger database.
type DB struct {
	bdb *badger.DB
}

var _ cursor.Engine = (*DB)(nil)

// Open opens a Badger database at opts.Path, or in memory when
// opts.InMemory is set.
func Open(opts engine.Options) (*DB, error) {
	var o badger.Options
	if opts.InMemory {
		o = badger.DefaultOptions("").WithInMemory(true).WithMemTableSize(16 << 20)
	} else {
		o = badger.DefaultOptions(opts.Path)
	}
	o = o.WithLogger(logger{cursor.Logger().New("engine", Name)})
	if opts.CacheMB > 0 {
		size := int64(opts.CacheMB) << 20
		o = o.WithBlockCacheSize(size / 2).WithIndexCacheSize(size / 4)
	}
	bdb, err := badger.Open(o)
	if err != nil {
		return nil, errors.Wrap(err, "badger open")
	}
	return &DB{bdb: bdb}, nil
}

func (db *DB) Name() string {
	return Name
}

func (db *DB) Snapshot() (cursor.Snapshot, error) {
	if db.bdb.IsClosed() {
		return nil, cursor.ErrClosed
	}
	return &snapshot{txn: db.bdb.NewTransaction(false)}, nil
}

// Commit applies changes in one update transaction.
func (db *DB) Commit(sortedChanges iter.Seq2[[]byte, []byte]) error {
	if db.bdb.IsClosed() {
		return cursor.ErrClosed
	}
	err := db.bdb.Update(func(txn *badger.Txn) error {
		for key, val := range sortedChanges {
			var err error
			if val == nil {
				err = txn.Delete(key)
			} else {
				err = txn.Set(append([]byte{}, key...), append([]byte{}, val...))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return cursor.ErrClosed
	}
	return errors.Wrap(err, "badger commit")
}

func (db *DB) Close() error {
	return db.bdb.Close()
}

type snapshot struct {
	txn *badger.Txn
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	item, err := s.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "badger get")
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "badger value")
	}
	if val == nil {
		val = []byte{}
	}
	return val, true, nil
}

func (s *snapshot) NewIterator(lower, upper []byte) iterator.Iterator {
	return iterator.Bound(&txnIter{txn: s.txn}, lower, upper)
}

func (s *snapshot) Release() {
	s.txn.Discard()
}

// logger routes Badger logs to log15.
type logger struct {
	log.Logger
}

func (l logger) Errorf(format string, args ...interface{}) {
	l.Error(msg(format, args))
}

func (l logger) Warningf(format string, args ...interface{}) {
	l.Warn(msg(format, args))
}

func (l logger) Infof(format string, args ...interface{}) {
	l.Info(msg(format, args))
}

func (l logger) Debugf(format string, args ...interface{}) {
	l.Debug(msg(format, args))
}

func msg(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
