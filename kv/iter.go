package kv

import (
	"github.com/dacapoday/cursor/btree"
	"github.com/dacapoday/cursor/iterator"
)

// pendingIter exposes the pending B-tree as an iterator.Iterator.
// Deletes surface as tombstones (nil values).
type pendingIter struct {
	it  *btree.Iter[[]byte]
	key []byte
}

var _ iterator.Iterator = (*pendingIter)(nil)

func (iter *pendingIter) Valid() bool {
	return iter.it.Valid()
}

func (iter *pendingIter) Error() error {
	return nil
}

func (iter *pendingIter) Key() []byte {
	iter.key = append(iter.key[:0], iter.it.Key()...)
	return iter.key
}

func (iter *pendingIter) Val() []byte {
	return iter.it.Val()
}

func (iter *pendingIter) Next() bool {
	return iter.it.Next()
}

func (iter *pendingIter) Prev() bool {
	return iter.it.Prev()
}

func (iter *pendingIter) SeekFirst() bool {
	return iter.it.SeekFirst()
}

func (iter *pendingIter) SeekLast() bool {
	return iter.it.SeekLast()
}

func (iter *pendingIter) Seek(key []byte) bool {
	return iter.it.Seek(string(key))
}

func (iter *pendingIter) Close() {}
