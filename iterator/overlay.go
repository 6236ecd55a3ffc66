package iterator

import "bytes"

// Overlay merges a sorted overlay of pending changes into a sorted base.
//
// When both iterators hold the same key the overlay wins. An overlay entry
// with a nil value is a tombstone: the key is hidden from the result, whether
// or not the base has it.
//
// Overlay keeps both children positioned around the current key: at the first
// key >= current while moving forward, at the last key <= current while moving
// backward. Changing direction re-seeks the children from the current key.
type Overlay[Over Iterator, Base Iterator] struct {
	over    Over
	base    Base
	key     []byte
	valid   bool
	cover   bool
	reverse bool
	err     error
}

var _ Iterator = (*Overlay[Iterator, Iterator])(nil)

// Load initializes the overlay with its children. The overlay starts unpositioned.
func (iter *Overlay[Over, Base]) Load(over Over, base Base) {
	iter.over, iter.base = over, base
	iter.key = iter.key[:0]
	iter.valid, iter.cover, iter.reverse = false, false, false
	iter.err = nil
}

// Valid returns true if positioned at a live entry.
func (iter *Overlay[Over, Base]) Valid() bool {
	return iter.valid
}

// Error returns the first error reported by either child.
func (iter *Overlay[Over, Base]) Error() error {
	return iter.err
}

// Key returns the current key.
func (iter *Overlay[Over, Base]) Key() []byte {
	if !iter.valid {
		return nil
	}
	return iter.key
}

// Val returns the current value, taken from the overlay when it covers the key.
func (iter *Overlay[Over, Base]) Val() []byte {
	if !iter.valid {
		return nil
	}
	if iter.cover {
		return iter.over.Val()
	}
	return iter.base.Val()
}

// Close closes both children.
func (iter *Overlay[Over, Base]) Close() {
	iter.valid = false
	iter.over.Close()
	iter.base.Close()
}

// Next advances to the next live key.
func (iter *Overlay[Over, Base]) Next() bool {
	if !iter.valid {
		return false
	}
	if iter.reverse {
		iter.over.Seek(iter.key)
		iter.base.Seek(iter.key)
		iter.reverse = false
	}
	if iter.over.Valid() && bytes.Equal(iter.over.Key(), iter.key) {
		iter.over.Next()
	}
	if iter.base.Valid() && bytes.Equal(iter.base.Key(), iter.key) {
		iter.base.Next()
	}
	return iter.forward()
}

// Prev moves to the previous live key.
func (iter *Overlay[Over, Base]) Prev() bool {
	if !iter.valid {
		return false
	}
	if !iter.reverse {
		floor(iter.over, iter.key)
		floor(iter.base, iter.key)
		iter.reverse = true
	}
	if iter.over.Valid() && bytes.Equal(iter.over.Key(), iter.key) {
		iter.over.Prev()
	}
	if iter.base.Valid() && bytes.Equal(iter.base.Key(), iter.key) {
		iter.base.Prev()
	}
	return iter.backward()
}

// SeekFirst positions at the first live key.
func (iter *Overlay[Over, Base]) SeekFirst() bool {
	iter.over.SeekFirst()
	iter.base.SeekFirst()
	iter.reverse = false
	return iter.forward()
}

// SeekLast positions at the last live key.
func (iter *Overlay[Over, Base]) SeekLast() bool {
	iter.over.SeekLast()
	iter.base.SeekLast()
	iter.reverse = true
	return iter.backward()
}

// Seek positions at the first live key >= key.
func (iter *Overlay[Over, Base]) Seek(key []byte) bool {
	iter.over.Seek(key)
	iter.base.Seek(key)
	iter.reverse = false
	return iter.forward()
}

// forward settles on the smaller child key, skipping tombstones.
func (iter *Overlay[Over, Base]) forward() bool {
	for {
		if iter.fault() {
			return false
		}
		ov, bv := iter.over.Valid(), iter.base.Valid()
		if !ov && !bv {
			iter.valid = false
			return false
		}

		cmp := -1
		if ov && bv {
			cmp = bytes.Compare(iter.over.Key(), iter.base.Key())
		} else if bv {
			cmp = 1
		}

		if cmp <= 0 && iter.over.Val() == nil {
			if cmp == 0 {
				iter.base.Next()
			}
			iter.over.Next()
			continue
		}
		iter.land(cmp <= 0)
		return true
	}
}

// backward settles on the larger child key, skipping tombstones.
func (iter *Overlay[Over, Base]) backward() bool {
	for {
		if iter.fault() {
			return false
		}
		ov, bv := iter.over.Valid(), iter.base.Valid()
		if !ov && !bv {
			iter.valid = false
			return false
		}

		cmp := 1
		if ov && bv {
			cmp = bytes.Compare(iter.over.Key(), iter.base.Key())
		} else if bv {
			cmp = -1
		}

		if cmp >= 0 && iter.over.Val() == nil {
			if cmp == 0 {
				iter.base.Prev()
			}
			iter.over.Prev()
			continue
		}
		iter.land(cmp >= 0)
		return true
	}
}

func (iter *Overlay[Over, Base]) land(cover bool) {
	iter.cover = cover
	if cover {
		iter.key = append(iter.key[:0], iter.over.Key()...)
	} else {
		iter.key = append(iter.key[:0], iter.base.Key()...)
	}
	iter.valid = true
}

func (iter *Overlay[Over, Base]) fault() bool {
	if err := iter.over.Error(); err != nil {
		iter.err = err
	} else if err = iter.base.Error(); err != nil {
		iter.err = err
	}
	if iter.err != nil {
		iter.valid = false
		return true
	}
	return false
}

// floor positions it at the last key <= key.
func floor(it Iterator, key []byte) bool {
	if it.Seek(key) {
		if bytes.Equal(it.Key(), key) {
			return true
		}
		return it.Prev()
	}
	if it.Error() != nil {
		return false
	}
	return it.SeekLast()
}
