package leveldb

import (
	"github.com/dacapoday/cursor/iterator"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbiter "github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type snapshot struct {
	snap *leveldb.Snapshot
}

func (s *snapshot) Get(key []byte) ([]byte, bool, error) {
	val, err := s.snap.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "leveldb get")
	}
	if val == nil {
		val = []byte{}
	}
	return val, true, nil
}

// NewIterator pushes the range down to goleveldb.
func (s *snapshot) NewIterator(lower, upper []byte) iterator.Iterator {
	return &snapIter{it: s.snap.NewIterator(&util.Range{Start: lower, Limit: upper}, nil)}
}

func (s *snapshot) Release() {
	s.snap.Release()
}

// snapIter adapts a goleveldb iterator. goleveldb restarts from the other end
// when Next or Prev is called past an edge, so both stop at invalid.
type snapIter struct {
	it     ldbiter.Iterator
	closed bool
}

func (i *snapIter) Valid() bool {
	return !i.closed && i.it.Valid()
}

func (i *snapIter) Error() error {
	return i.it.Error()
}

func (i *snapIter) Key() []byte {
	return i.it.Key()
}

func (i *snapIter) Val() []byte {
	val := i.it.Value()
	if val == nil && i.it.Valid() {
		return []byte{}
	}
	return val
}

func (i *snapIter) Next() bool {
	if !i.Valid() {
		return false
	}
	return i.it.Next()
}

func (i *snapIter) Prev() bool {
	if !i.Valid() {
		return false
	}
	return i.it.Prev()
}

func (i *snapIter) SeekFirst() bool {
	return !i.closed && i.it.First()
}

func (i *snapIter) SeekLast() bool {
	return !i.closed && i.it.Last()
}

func (i *snapIter) Seek(key []byte) bool {
	return !i.closed && i.it.Seek(key)
}

func (i *snapIter) Close() {
	if !i.closed {
		i.closed = true
		i.it.Release()
	}
}
