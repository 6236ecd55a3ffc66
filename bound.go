package cursor

import "github.com/dacapoday/cursor/keystring"

// EndBound limits how far a cursor travels. For a forward cursor it is an
// upper limit, for a reverse cursor a lower limit.
//
// An empty Key means no limit, whatever the direction or Inclusive say.
type EndBound struct {
	Key       []byte
	Inclusive bool
}

// Unbounded returns an EndBound that does not limit traversal.
func Unbounded() EndBound {
	return EndBound{}
}

// Bound returns an EndBound at key.
func Bound(key []byte, inclusive bool) EndBound {
	return EndBound{Key: key, Inclusive: inclusive}
}

// Unbounded reports whether the bound does not limit traversal.
func (b EndBound) Unbounded() bool {
	return len(b.Key) == 0
}

// Range maps the bound onto the encoded key range [lower, upper) of the
// index stored under prefix. A nil upper means the range is open above.
func (b EndBound) Range(prefix []byte, dir Direction) (lower, upper []byte) {
	lower = prefix
	upper = keystring.PrefixEnd(prefix)
	if b.Unbounded() {
		return
	}

	start := keystring.AppendKey(append([]byte(nil), prefix...), b.Key)
	if dir == Forward {
		if b.Inclusive {
			upper = keystring.Successor(start)
		} else {
			upper = start
		}
		return
	}
	if b.Inclusive {
		lower = start
	} else {
		lower = keystring.Successor(start)
	}
	return
}
