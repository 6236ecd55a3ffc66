package iterator

import (
	"bytes"
	"sort"
)

// sliceIter iterates a sorted slice of pairs. A nil val is a tombstone.
type sliceIter struct {
	keys, vals [][]byte
	pos        int
	closed     bool
}

func newSliceIter(pairs ...string) *sliceIter {
	it := &sliceIter{pos: -1}
	for i := 0; i+1 < len(pairs); i += 2 {
		it.keys = append(it.keys, []byte(pairs[i]))
		switch pairs[i+1] {
		case "<del>":
			it.vals = append(it.vals, nil)
		case "":
			it.vals = append(it.vals, []byte{})
		default:
			it.vals = append(it.vals, []byte(pairs[i+1]))
		}
	}
	return it
}

func (it *sliceIter) Valid() bool  { return it.pos >= 0 && it.pos < len(it.keys) }
func (it *sliceIter) Error() error { return nil }
func (it *sliceIter) Key() []byte  { return it.keys[it.pos] }
func (it *sliceIter) Val() []byte  { return it.vals[it.pos] }
func (it *sliceIter) Close()       { it.closed = true }

func (it *sliceIter) Next() bool {
	if !it.Valid() {
		return false
	}
	it.pos++
	return it.Valid()
}

func (it *sliceIter) Prev() bool {
	if !it.Valid() {
		return false
	}
	it.pos--
	return it.Valid()
}

func (it *sliceIter) SeekFirst() bool {
	it.pos = 0
	return it.Valid()
}

func (it *sliceIter) SeekLast() bool {
	it.pos = len(it.keys) - 1
	return it.Valid()
}

func (it *sliceIter) Seek(key []byte) bool {
	it.pos = sort.Search(len(it.keys), func(i int) bool {
		return bytes.Compare(it.keys[i], key) >= 0
	})
	return it.Valid()
}

func collect(it Iterator) (out []string) {
	for ok := it.SeekFirst(); ok; ok = it.Next() {
		out = append(out, string(it.Key())+"="+string(it.Val()))
	}
	return
}

func collectReverse(it Iterator) (out []string) {
	for ok := it.SeekLast(); ok; ok = it.Prev() {
		out = append(out, string(it.Key())+"="+string(it.Val()))
	}
	return
}
