package iterator

import "bytes"

// Bounded restricts an iterator to keys in [lower, upper).
// A nil lower or upper leaves that side open.
//
// Seeking below lower lands on the first key in range; seeking at or past
// upper leaves the iterator invalid.
type Bounded[I Iterator] struct {
	inner        I
	lower, upper []byte
	valid        bool
}

var _ Iterator = (*Bounded[Iterator])(nil)

// Bound wraps inner so that it only reports keys in [lower, upper).
func Bound[I Iterator](inner I, lower, upper []byte) *Bounded[I] {
	return &Bounded[I]{inner: inner, lower: lower, upper: upper}
}

// Valid returns true if positioned at a key inside the range.
func (iter *Bounded[I]) Valid() bool {
	return iter.valid
}

// Error returns the error of the wrapped iterator.
func (iter *Bounded[I]) Error() error {
	return iter.inner.Error()
}

// Key returns the current key, or nil if invalid.
func (iter *Bounded[I]) Key() []byte {
	if !iter.valid {
		return nil
	}
	return iter.inner.Key()
}

// Val returns the current value, or nil if invalid.
func (iter *Bounded[I]) Val() []byte {
	if !iter.valid {
		return nil
	}
	return iter.inner.Val()
}

// Close closes the wrapped iterator.
func (iter *Bounded[I]) Close() {
	iter.valid = false
	iter.inner.Close()
}

// Next advances to the next key in range.
func (iter *Bounded[I]) Next() bool {
	if !iter.valid {
		return false
	}
	return iter.check(iter.inner.Next())
}

// Prev moves to the previous key in range.
func (iter *Bounded[I]) Prev() bool {
	if !iter.valid {
		return false
	}
	return iter.check(iter.inner.Prev())
}

// SeekFirst positions at the first key in range.
func (iter *Bounded[I]) SeekFirst() bool {
	if iter.lower == nil {
		return iter.check(iter.inner.SeekFirst())
	}
	return iter.check(iter.inner.Seek(iter.lower))
}

// SeekLast positions at the last key in range.
func (iter *Bounded[I]) SeekLast() bool {
	if iter.upper == nil {
		return iter.check(iter.inner.SeekLast())
	}
	if iter.inner.Seek(iter.upper) {
		return iter.check(iter.inner.Prev())
	}
	if iter.inner.Error() != nil {
		return iter.check(false)
	}
	return iter.check(iter.inner.SeekLast())
}

// Seek positions at the first key in range that is >= key.
func (iter *Bounded[I]) Seek(key []byte) bool {
	if iter.lower != nil && bytes.Compare(key, iter.lower) < 0 {
		key = iter.lower
	}
	if iter.upper != nil && bytes.Compare(key, iter.upper) >= 0 {
		return iter.check(false)
	}
	return iter.check(iter.inner.Seek(key))
}

func (iter *Bounded[I]) check(ok bool) bool {
	if ok {
		key := iter.inner.Key()
		ok = (iter.lower == nil || bytes.Compare(key, iter.lower) >= 0) &&
			(iter.upper == nil || bytes.Compare(key, iter.upper) < 0)
	}
	iter.valid = ok
	return ok
}
