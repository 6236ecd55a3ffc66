package position

import (
	"bytes"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dacapoday/cursor/keystring"
)

// SeekGE positions it at the first key >= key.
func SeekGE(it iterator.Iterator, key []byte) bool {
	return it.Seek(key)
}

// SeekGT positions it at the first key > key.
func SeekGT(it iterator.Iterator, key []byte) bool {
	if it.Seek(key) && bytes.Equal(it.Key(), key) {
		return it.Next()
	}
	return it.Valid()
}

// SeekLE positions it at the last key <= key.
func SeekLE(it iterator.Iterator, key []byte) bool {
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

// SeekLT positions it at the last key < key. A nil key means past every key.
func SeekLT(it iterator.Iterator, key []byte) bool {
	if key == nil {
		return it.SeekLast()
	}
	if it.Seek(key) {
		return it.Prev()
	}
	if it.Error() != nil {
		return false
	}
	return it.SeekLast()
}

// Start positions it at the first key in traversal order.
func Start(it iterator.Iterator, dir cursor.Direction) bool {
	if dir == cursor.Forward {
		return it.SeekFirst()
	}
	return it.SeekLast()
}

// Advance moves it one step in traversal order.
func Advance(it iterator.Iterator, dir cursor.Direction) bool {
	if dir == cursor.Forward {
		return it.Next()
	}
	return it.Prev()
}

// Relocate positions it for resuming after the entry group.
//
// It lands on the first key in traversal order that starts with group, or,
// if there is none, on the first key beyond group. exact reports the former.
// A Positioned cursor then advances past the group; an Ahead cursor returns
// the key it landed on.
func Relocate(it iterator.Iterator, dir cursor.Direction, group []byte) (exact bool) {
	var ok bool
	if dir == cursor.Forward {
		ok = SeekGE(it, group)
	} else {
		ok = SeekLT(it, keystring.PrefixEnd(group))
	}
	return ok && bytes.HasPrefix(it.Key(), group)
}

// Skip advances it past keys that start with group.
func Skip(it iterator.Iterator, dir cursor.Direction, group []byte) bool {
	for it.Valid() && bytes.HasPrefix(it.Key(), group) {
		if !Advance(it, dir) {
			return false
		}
	}
	return it.Valid()
}
