// Package index implements a sorted index of (key, RowID) entries and its
// save/restore cursor.
//
// Entries of an index live under a per-index prefix in the shared key space:
//
//	'I' esc(name) 00 01 | esc(key) 00 01 | rowid
//
// so every entry of a key lies in [KeyStart, KeyEnd), and entries of equal
// keys order by RowID. Index metadata is stored under 'M' 'I' esc(name) 00 01.
package index

import (
	"bytes"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/keystring"
	"github.com/pkg/errors"
	log "github.com/xuperchain/log15"
)

const (
	tagEntry = 'I'
	tagMeta  = 'M'

	flagUnique = 1 << 0
)

var empty = []byte{}

// Index is a handle to a stored sorted index. It holds no data itself;
// every operation reads or writes through the View or Writer it is given.
type Index struct {
	name   string
	unique bool
	prefix []byte
	log    log.Logger
}

func metaKey(name string) []byte {
	return keystring.AppendKey([]byte{tagMeta, tagEntry}, []byte(name))
}

func newIndex(name string, unique bool) *Index {
	return &Index{
		name:   name,
		unique: unique,
		prefix: keystring.AppendKey([]byte{tagEntry}, []byte(name)),
		log:    cursor.Logger().New("index", name),
	}
}

// Create stores the metadata of a new index.
func Create(w cursor.Writer, name string, unique bool) (*Index, error) {
	key := metaKey(name)
	_, found, err := w.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "create index %s", name)
	}
	if found {
		return nil, errors.Wrapf(cursor.ErrIndexExists, "%s", name)
	}
	var flags byte
	if unique {
		flags |= flagUnique
	}
	w.Set(key, []byte{flags})
	return newIndex(name, unique), nil
}

// Open loads the metadata of an existing index.
func Open(v cursor.View, name string) (*Index, error) {
	val, found, err := v.Get(metaKey(name))
	if err != nil {
		return nil, errors.Wrapf(err, "open index %s", name)
	}
	if !found {
		return nil, errors.Wrapf(cursor.ErrIndexNotFound, "%s", name)
	}
	if len(val) != 1 {
		return nil, errors.Wrapf(cursor.ErrCorrupt, "index %s metadata of %d bytes", name, len(val))
	}
	return newIndex(name, val[0]&flagUnique != 0), nil
}

func (ix *Index) Name() string {
	return ix.name
}

// Unique reports whether cursors return at most one entry per key.
func (ix *Index) Unique() bool {
	return ix.unique
}

// Insert adds the entry (key, id).
//
// Unless dupsAllowed, it fails with ErrDuplicateKey when key is already
// stored with another RowID. Inserting an existing entry is a no-op.
func (ix *Index) Insert(w cursor.Writer, key []byte, id cursor.RowID, dupsAllowed bool) error {
	if id.IsNull() {
		return errors.Wrapf(cursor.ErrNullRowID, "index %s insert", ix.name)
	}
	entry := keystring.Entry(ix.prefix, key, int64(id))

	if !dupsAllowed {
		start := keystring.AppendKey(append([]byte(nil), ix.prefix...), key)
		it := w.NewIterator(start, keystring.Successor(start))
		defer it.Close()
		for ok := it.SeekFirst(); ok; ok = it.Next() {
			if bytes.Equal(it.Key(), entry) {
				return nil
			}
			_, dup, err := keystring.SplitEntry(it.Key()[len(ix.prefix):])
			if err != nil {
				return errors.Wrapf(err, "index %s", ix.name)
			}
			return errors.Wrapf(cursor.ErrDuplicateKey, "index %s key %x (row %d)", ix.name, key, dup)
		}
		if err := it.Error(); err != nil {
			return errors.Wrapf(err, "index %s insert", ix.name)
		}
	}

	w.Set(entry, empty)
	return nil
}

// Remove deletes the entry (key, id). Removing a missing entry is a no-op.
func (ix *Index) Remove(w cursor.Writer, key []byte, id cursor.RowID) error {
	entry := keystring.Entry(ix.prefix, key, int64(id))
	_, found, err := w.Get(entry)
	if err != nil {
		return errors.Wrapf(err, "index %s remove", ix.name)
	}
	if found {
		w.Delete(entry)
	}
	return nil
}

// FindLoc returns the lowest RowID stored for key.
func (ix *Index) FindLoc(v cursor.View, key []byte) (cursor.RowID, bool, error) {
	start := keystring.AppendKey(append([]byte(nil), ix.prefix...), key)
	it := v.NewIterator(start, keystring.Successor(start))
	defer it.Close()

	if !it.SeekFirst() {
		return cursor.NullRowID, false, errors.Wrapf(it.Error(), "index %s find", ix.name)
	}
	id, err := keystring.RowID(it.Key()[len(start):])
	if err != nil {
		return cursor.NullRowID, false, errors.Wrapf(err, "index %s", ix.name)
	}
	return cursor.RowID(id), true, nil
}

// NumEntries counts the entries of the index.
func (ix *Index) NumEntries(v cursor.View) (n int64, err error) {
	it := v.NewIterator(ix.prefix, keystring.PrefixEnd(ix.prefix))
	defer it.Close()

	for ok := it.SeekFirst(); ok; ok = it.Next() {
		n++
	}
	err = errors.Wrapf(it.Error(), "index %s count", ix.name)
	return
}

// IsEmpty reports whether the index has no entries.
func (ix *Index) IsEmpty(v cursor.View) (bool, error) {
	it := v.NewIterator(ix.prefix, keystring.PrefixEnd(ix.prefix))
	defer it.Close()

	if it.SeekFirst() {
		return false, nil
	}
	return true, errors.Wrapf(it.Error(), "index %s", ix.name)
}
