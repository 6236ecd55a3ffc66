// Package record implements a record store keyed by RowID and its
// save/restore cursor.
//
// Records of a store live under a per-store prefix in the shared key space:
//
//	'R' esc(name) 00 01 | rowid  ->  header | payload
//
// The header byte tells whether the payload is raw or snappy compressed.
// Store metadata is kept under 'M' 'R' esc(name) 00 01.
package record

import (
	"sync"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/keystring"
	"github.com/pkg/errors"
	log "github.com/xuperchain/log15"
)

const (
	tagRecord = 'R'
	tagMeta   = 'M'

	flagStrictRestore = 1 << 0
)

// Option configures a store at Create.
type Option func(*options)

type options struct {
	compression Compression
	strict      bool
}

// WithCompression stores payloads with c.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithStrictRestore makes Cursor.Restore fail when the record the cursor
// was on no longer exists, instead of moving on to the next one.
func WithStrictRestore() Option {
	return func(o *options) { o.strict = true }
}

// Store is a handle to a stored record store. Records are read and written
// through the View or Writer given to each call. The RowID allocator is
// shared by all writers of the handle.
type Store struct {
	name   string
	prefix []byte
	opts   options
	log    log.Logger

	mu   sync.Mutex
	next int64
}

func metaKey(name string) []byte {
	return keystring.AppendKey([]byte{tagMeta, tagRecord}, []byte(name))
}

func newStore(name string, opts options) *Store {
	return &Store{
		name:   name,
		prefix: keystring.AppendKey([]byte{tagRecord}, []byte(name)),
		opts:   opts,
		log:    cursor.Logger().New("store", name),
		next:   1,
	}
}

// Create stores the metadata of a new record store.
func Create(w cursor.Writer, name string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	key := metaKey(name)
	_, found, err := w.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "create store %s", name)
	}
	if found {
		return nil, errors.Wrapf(cursor.ErrStoreExists, "%s", name)
	}
	var flags byte
	if o.strict {
		flags |= flagStrictRestore
	}
	w.Set(key, []byte{byte(o.compression), flags})
	return newStore(name, o), nil
}

// Open loads an existing record store and seeds its RowID allocator from
// the highest stored RowID.
func Open(v cursor.View, name string) (*Store, error) {
	val, found, err := v.Get(metaKey(name))
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", name)
	}
	if !found {
		return nil, errors.Wrapf(cursor.ErrStoreNotFound, "%s", name)
	}
	if len(val) != 2 || Compression(val[0]) > Snappy {
		return nil, errors.Wrapf(cursor.ErrCorrupt, "store %s metadata %x", name, val)
	}
	s := newStore(name, options{
		compression: Compression(val[0]),
		strict:      val[1]&flagStrictRestore != 0,
	})

	last, err := s.lastID(v)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", name)
	}
	s.observe(last)
	s.log.Debug("store opened", "compression", s.opts.compression, "next", s.next)
	return s, nil
}

func (s *Store) Name() string {
	return s.name
}

// Compression returns the payload compression of new writes.
func (s *Store) Compression() Compression {
	return s.opts.compression
}

func (s *Store) key(id cursor.RowID) []byte {
	return keystring.AppendRowID(append([]byte(nil), s.prefix...), int64(id))
}

func (s *Store) rowID(key []byte) (cursor.RowID, error) {
	id, err := keystring.RowID(key[len(s.prefix):])
	if err != nil {
		return cursor.NullRowID, errors.Wrapf(err, "store %s", s.name)
	}
	return cursor.RowID(id), nil
}

// lastID returns the highest RowID stored in v, or NullRowID.
func (s *Store) lastID(v cursor.View) (cursor.RowID, error) {
	it := v.NewIterator(s.prefix, keystring.PrefixEnd(s.prefix))
	defer it.Close()
	if it.SeekLast() {
		return s.rowID(it.Key())
	}
	return cursor.NullRowID, it.Error()
}

func (s *Store) allocate() cursor.RowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return cursor.RowID(id)
}

func (s *Store) observe(id cursor.RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int64(id) >= s.next {
		s.next = int64(id) + 1
	}
}

// Insert stores data under a newly allocated RowID. RowIDs increase
// strictly; ids of rolled back inserts are not reused. An id already taken
// in w, by another handle on the same store, moves the allocator past the
// highest stored RowID.
func (s *Store) Insert(w cursor.Writer, data []byte) (cursor.RowID, error) {
	for {
		id := s.allocate()
		key := s.key(id)
		_, found, err := w.Get(key)
		if err != nil {
			return cursor.NullRowID, errors.Wrapf(err, "store %s insert", s.name)
		}
		if !found {
			w.Set(key, s.opts.compression.encode(data))
			return id, nil
		}
		last, err := s.lastID(w)
		if err != nil {
			return cursor.NullRowID, errors.Wrapf(err, "store %s insert", s.name)
		}
		s.log.Debug("row id taken, reseeding", "row", id, "last", last)
		s.observe(last)
	}
}

// InsertWithID stores data under id, which must be free.
func (s *Store) InsertWithID(w cursor.Writer, id cursor.RowID, data []byte) error {
	if id.IsNull() {
		return errors.Wrapf(cursor.ErrNullRowID, "store %s insert", s.name)
	}
	key := s.key(id)
	_, found, err := w.Get(key)
	if err != nil {
		return errors.Wrapf(err, "store %s insert %d", s.name, id)
	}
	if found {
		return errors.Wrapf(cursor.ErrDuplicateKey, "store %s row %d", s.name, id)
	}
	s.observe(id)
	w.Set(key, s.opts.compression.encode(data))
	return nil
}

// Update replaces the data of record id.
func (s *Store) Update(w cursor.Writer, id cursor.RowID, data []byte) error {
	key := s.key(id)
	_, found, err := w.Get(key)
	if err != nil {
		return errors.Wrapf(err, "store %s update %d", s.name, id)
	}
	if !found {
		return errors.Wrapf(cursor.ErrRecordNotFound, "store %s row %d", s.name, id)
	}
	w.Set(key, s.opts.compression.encode(data))
	return nil
}

// Delete removes record id.
func (s *Store) Delete(w cursor.Writer, id cursor.RowID) error {
	key := s.key(id)
	_, found, err := w.Get(key)
	if err != nil {
		return errors.Wrapf(err, "store %s delete %d", s.name, id)
	}
	if !found {
		return errors.Wrapf(cursor.ErrRecordNotFound, "store %s row %d", s.name, id)
	}
	w.Delete(key)
	return nil
}

// FindRecord reads record id.
func (s *Store) FindRecord(v cursor.View, id cursor.RowID) (cursor.Record, bool, error) {
	val, found, err := v.Get(s.key(id))
	if err != nil || !found {
		return cursor.Record{}, false, errors.Wrapf(err, "store %s find %d", s.name, id)
	}
	data, err := decode(val)
	if err != nil {
		return cursor.Record{}, false, errors.Wrapf(err, "store %s row %d", s.name, id)
	}
	return cursor.Record{ID: id, Data: data}, true, nil
}

// NumRecords counts the records in v.
func (s *Store) NumRecords(v cursor.View) (n int64, err error) {
	it := v.NewIterator(s.prefix, keystring.PrefixEnd(s.prefix))
	defer it.Close()

	for ok := it.SeekFirst(); ok; ok = it.Next() {
		n++
	}
	err = errors.Wrapf(it.Error(), "store %s count", s.name)
	return
}
