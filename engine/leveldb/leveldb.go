// Package leveldb is a persistent engine on goleveldb.
package leveldb

import (
	"iter"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/engine"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const Name = "leveldb"

func init() {
	engine.Register(Name, func(opts engine.Options) (cursor.Engine, error) {
		if opts.InMemory {
			return OpenStorage(storage.NewMemStorage(), opts)
		}
		return Open(opts)
	})
}

// DB wraps a goleveldb database.
type DB struct {
	ldb *leveldb.DB
}

var _ cursor.Engine = (*DB)(nil)

func options(opts engine.Options) *opt.Options {
	o := &opt.Options{
		Filter: filter.NewBloomFilter(10),
	}
	if opts.CacheMB > 0 {
		o.BlockCacheCapacity = opts.CacheMB / 2 * opt.MiB
		o.WriteBuffer = opts.CacheMB / 4 * opt.MiB
	}
	return o
}

// Open opens or creates a database at opts.Path. A corrupted database is
// recovered before it is opened.
func Open(opts engine.Options) (*DB, error) {
	o := options(opts)
	ldb, err := leveldb.OpenFile(opts.Path, o)
	if ldberrors.IsCorrupted(err) {
		log := cursor.Logger()
		log.Warn("leveldb corruption detected", "path", opts.Path, "err", err)
		ldb, err = leveldb.RecoverFile(opts.Path, o)
		if err != nil {
			return nil, errors.Wrapf(err, "recover %s", opts.Path)
		}
		log.Warn("leveldb recovered from corruption", "path", opts.Path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", opts.Path)
	}
	return &DB{ldb: ldb}, nil
}

// OpenStorage opens a database on an explicit goleveldb storage,
// such as storage.NewMemStorage().
func OpenStorage(stor storage.Storage, opts engine.Options) (*DB, error) {
	ldb, err := leveldb.Open(stor, options(opts))
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	return &DB{ldb: ldb}, nil
}

func (db *DB) Name() string {
	return Name
}

func (db *DB) Snapshot() (cursor.Snapshot, error) {
	snap, err := db.ldb.GetSnapshot()
	if err != nil {
		if errors.Is(err, leveldb.ErrClosed) {
			return nil, cursor.ErrClosed
		}
		return nil, errors.Wrap(err, "leveldb snapshot")
	}
	return &snapshot{snap: snap}, nil
}

// Commit writes changes in one batch.
func (db *DB) Commit(sortedChanges iter.Seq2[[]byte, []byte]) error {
	batch := new(leveldb.Batch)
	for key, val := range sortedChanges {
		if val == nil {
			batch.Delete(key)
		} else {
			batch.Put(key, val)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	err := db.ldb.Write(batch, nil)
	if errors.Is(err, leveldb.ErrClosed) {
		return cursor.ErrClosed
	}
	return errors.Wrap(err, "leveldb write")
}

func (db *DB) Close() error {
	return db.ldb.Close()
}
