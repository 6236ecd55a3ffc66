package badger

import (
	"bytes"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

// txnIter is a bidirectional iterator over a read-only transaction.
// It holds one Badger iterator at a time and replaces it on a direction
// change, re-seeking from the current key.
type txnIter struct {
	txn     *badger.Txn
	it      *badger.Iterator
	reverse bool
	key     []byte
	val     []byte
	valid   bool
	err     error
}

func (i *txnIter) Valid() bool {
	return i.valid
}

func (i *txnIter) Error() error {
	return i.err
}

func (i *txnIter) Key() []byte {
	return i.key
}

func (i *txnIter) Val() []byte {
	return i.val
}

func (i *txnIter) Close() {
	i.valid = false
	if i.it != nil {
		i.it.Close()
		i.it = nil
	}
}

func (i *txnIter) Next() bool {
	if !i.valid {
		return false
	}
	if i.reverse {
		i.turn(false, i.key)
		if !i.it.Valid() || !bytes.Equal(i.it.Item().Key(), i.key) {
			return i.land()
		}
	}
	i.it.Next()
	return i.land()
}

func (i *txnIter) Prev() bool {
	if !i.valid {
		return false
	}
	if !i.reverse {
		i.turn(true, i.key)
		if !i.it.Valid() || !bytes.Equal(i.it.Item().Key(), i.key) {
			return i.land()
		}
	}
	i.it.Next()
	return i.land()
}

func (i *txnIter) SeekFirst() bool {
	i.turn(false, nil)
	return i.land()
}

func (i *txnIter) SeekLast() bool {
	i.turn(true, nil)
	return i.land()
}

func (i *txnIter) Seek(key []byte) bool {
	i.turn(false, key)
	return i.land()
}

// turn makes sure the underlying iterator runs in the wanted direction and
// seeks it to key, or rewinds it when key is nil. A reverse Badger iterator
// seeks to the last key <= key.
func (i *txnIter) turn(reverse bool, key []byte) {
	if i.it == nil || i.reverse != reverse {
		if i.it != nil {
			i.it.Close()
		}
		i.it = i.txn.NewIterator(badger.IteratorOptions{Reverse: reverse})
		i.reverse = reverse
	}
	if key == nil {
		i.it.Rewind()
	} else {
		i.it.Seek(append([]byte{}, key...))
	}
}

func (i *txnIter) land() bool {
	i.valid = false
	if !i.it.Valid() {
		return false
	}
	item := i.it.Item()
	val, err := item.ValueCopy(nil)
	if err != nil {
		i.err = errors.Wrap(err, "badger value")
		return false
	}
	if val == nil {
		val = []byte{}
	}
	i.key = item.KeyCopy(nil)
	i.val = val
	i.valid = true
	return true
}
