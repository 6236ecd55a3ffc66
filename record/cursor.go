package record

import (
	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/internal/position"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dacapoday/cursor/keystring"
	"github.com/dacapoday/cursor/metrics"
	"github.com/pkg/errors"
)

const kind = metrics.CursorRecord

// Cursor walks the records of a store in RowID order. Not thread-safe.
//
// Once Next reports the end, the cursor stays at the end across Save and
// Restore, even if records are added behind it; only SeekExact moves it.
type Cursor struct {
	st     *Store
	dir    cursor.Direction
	it     iterator.Iterator
	pos    position.Tracker
	err    error
	closed bool
}

var _ cursor.RecordCursor = (*Cursor)(nil)

// NewCursor returns a cursor on v. Its first Next returns the first record
// in traversal order.
func (s *Store) NewCursor(v cursor.View, dir cursor.Direction) *Cursor {
	c := &Cursor{st: s, dir: dir}
	c.open(v)
	return c
}

func (c *Cursor) open(v cursor.View) {
	c.it = v.NewIterator(c.st.prefix, keystring.PrefixEnd(c.st.prefix))
}

func (c *Cursor) release() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
}

func (c *Cursor) require(op string) {
	if c.closed {
		cursor.Misuse("%s cursor: %s on a closed cursor", kind, op)
	}
	c.pos.Require(kind, op)
	metrics.CursorOps.WithLabelValues(kind, op).Inc()
}

// Next returns the record after the last one returned.
func (c *Cursor) Next() (cursor.Record, bool) {
	c.require("next")

	var ok bool
	switch c.pos.State() {
	case position.Unpositioned:
		ok = position.Start(c.it, c.dir)
	case position.Exhausted:
		return cursor.Record{}, false
	case position.Positioned:
		ok = position.Advance(c.it, c.dir)
	case position.Ahead:
		ok = c.it.Valid()
	}
	return c.land(ok)
}

// SeekExact positions the cursor on record id. If there is no such record
// the cursor is at the end.
func (c *Cursor) SeekExact(id cursor.RowID) (cursor.Record, bool) {
	c.require("seek_exact")
	c.pos.Reset()

	key := c.st.key(id)
	ok := position.SeekGE(c.it, key) && string(c.it.Key()) == string(key)
	return c.land(ok)
}

// Save suspends the cursor and releases its iterator. Saving a saved
// cursor does nothing.
func (c *Cursor) Save() {
	if c.closed {
		cursor.Misuse("%s cursor: save on a closed cursor", kind)
	}
	metrics.CursorOps.WithLabelValues(kind, "save").Inc()
	c.pos.Save()
	c.release()
}

// Restore resumes a saved cursor on v. It returns false only for a store
// with strict restore whose current record was deleted; the cursor is then
// at the end. It panics if the cursor is not saved.
func (c *Cursor) Restore(v cursor.View) bool {
	if c.closed {
		cursor.Misuse("%s cursor: restore on a closed cursor", kind)
	}
	state := c.pos.Restore(kind)
	c.open(v)

	restored := true
	outcome := metrics.OutcomeReset
	switch state {
	case position.Exhausted:
		outcome = metrics.OutcomeExhausted
	case position.Positioned, position.Ahead:
		exact := position.Relocate(c.it, c.dir, c.pos.Anchor())
		c.latch(c.it.Error())
		switch {
		case exact:
			c.pos.Land(true)
			outcome = metrics.OutcomeExact
		case c.st.opts.strict:
			c.pos.Exhaust()
			restored = false
			outcome = metrics.OutcomeVanished
		default:
			c.pos.Land(false)
			outcome = metrics.OutcomeAhead
		}
	}
	metrics.RestoreOutcomes.WithLabelValues(kind, outcome).Inc()
	c.st.log.Debug("cursor restored", "dir", c.dir, "from", state, "outcome", outcome)
	return restored
}

// Error returns the first storage or decoding error the cursor hit.
func (c *Cursor) Error() error {
	return c.err
}

// Close releases the cursor. Closing twice is a no-op.
func (c *Cursor) Close() {
	c.release()
	c.closed = true
}

func (c *Cursor) land(ok bool) (cursor.Record, bool) {
	if !ok || c.err != nil {
		c.latch(c.it.Error())
		c.pos.Exhaust()
		return cursor.Record{}, false
	}

	raw := c.it.Key()
	id, err := c.st.rowID(raw)
	if err == nil {
		var data []byte
		if data, err = decode(c.it.Val()); err == nil {
			c.pos.Returned(raw, len(raw))
			return cursor.Record{ID: id, Data: data}, true
		}
	}
	c.latch(err)
	c.pos.Exhaust()
	return cursor.Record{}, false
}

func (c *Cursor) latch(err error) {
	if err != nil && c.err == nil {
		c.err = errors.Wrapf(err, "store %s cursor", c.st.name)
	}
}
