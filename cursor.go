// Package cursor defines the types and interfaces shared by the sorted index
// and record store cursors.
//
// A cursor walks ordered data through a View. It can be suspended with Save,
// the view swapped for a newer one, and resumed with Restore. Restore
// re-derives the position from the last entry the cursor returned, so the
// traversal neither repeats nor skips entries that survived the mutation.
package cursor

import (
	"iter"

	"github.com/dacapoday/cursor/iterator"
)

// Direction is the traversal order of a cursor.
type Direction int8

const (
	Forward Direction = 1
	Reverse Direction = -1
)

func (dir Direction) String() string {
	if dir == Reverse {
		return "reverse"
	}
	return "forward"
}

// RowID identifies a record. The zero value is the null RowID; it is never
// assigned to a stored record.
type RowID int64

// NullRowID is the reserved "no record" identifier.
const NullRowID RowID = 0

// IsNull reports whether id is the null RowID.
func (id RowID) IsNull() bool {
	return id == NullRowID
}

// IndexKeyEntry is a (key, RowID) pair returned by an index cursor.
// Entries order by Key, then by ID.
type IndexKeyEntry struct {
	Key []byte
	ID  RowID
}

// Record is a stored record returned by a record cursor.
// Data is owned by the caller.
type Record struct {
	ID   RowID
	Data []byte
}

// View is a consistent read view of the ordered key space.
type View interface {
	// NewIterator returns an iterator over keys in [lower, upper).
	// A nil upper means no upper limit.
	// The caller must Close the iterator before the view is released.
	NewIterator(lower, upper []byte) iterator.Iterator

	// Get returns the value stored at key. A missing key is not an error.
	Get(key []byte) (val []byte, found bool, err error)
}

// Snapshot is a point-in-time View owned by the caller.
// It never observes changes committed after it was taken.
type Snapshot interface {
	View

	// Release frees the snapshot. Iterators created from it must be closed first.
	Release()
}

// Writer is a View that also buffers changes.
type Writer interface {
	View
	Set(key, val []byte)
	Delete(key []byte)
}

// Engine is a storage backend that provides snapshots and atomic commits.
type Engine interface {
	// Name returns the registered engine name.
	Name() string

	// Snapshot captures the current committed state.
	Snapshot() (Snapshot, error)

	// Commit applies changes atomically. Keys arrive in ascending order;
	// a nil value deletes the key.
	Commit(sortedChanges iter.Seq2[[]byte, []byte]) error

	Close() error
}

// IndexCursor is the capability set of a sorted index cursor.
type IndexCursor interface {
	SetEndPosition(bound EndBound)
	Seek(key []byte, inclusive bool) (IndexKeyEntry, bool)
	SeekStart() (IndexKeyEntry, bool)
	Next() (IndexKeyEntry, bool)
	Save()
	SaveUnpositioned()
	Restore(view View)
	Error() error
	Close()
}

// RecordCursor is the capability set of a record store cursor.
type RecordCursor interface {
	Next() (Record, bool)
	SeekExact(id RowID) (Record, bool)
	Save()
	Restore(view View) bool
	Error() error
	Close()
}
