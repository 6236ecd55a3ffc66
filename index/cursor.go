package index

import (
	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/internal/position"
	"github.com/dacapoday/cursor/iterator"
	"github.com/dacapoday/cursor/keystring"
	"github.com/dacapoday/cursor/metrics"
	"github.com/pkg/errors"
)

const kind = metrics.CursorIndex

// Cursor walks an index in one direction. It can be saved, moved to a newer
// view and restored without repeating or skipping entries that survived in
// between. Not thread-safe.
//
// The cursor holds an iterator on its view from creation until Save,
// SaveUnpositioned or Close; the view must outlive it.
type Cursor struct {
	ix     *Index
	dir    cursor.Direction
	end    cursor.EndBound
	view   cursor.View
	it     iterator.Iterator
	pos    position.Tracker
	err    error
	closed bool
}

var _ cursor.IndexCursor = (*Cursor)(nil)

// NewCursor returns an unpositioned cursor on v.
func (ix *Index) NewCursor(v cursor.View, dir cursor.Direction) *Cursor {
	c := &Cursor{ix: ix, dir: dir}
	c.open(v)
	return c
}

func (c *Cursor) open(v cursor.View) {
	lower, upper := c.end.Range(c.ix.prefix, c.dir)
	c.view = v
	c.it = v.NewIterator(lower, upper)
}

func (c *Cursor) release() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
	c.view = nil
}

func (c *Cursor) require(op string) {
	if c.closed {
		cursor.Misuse("%s cursor: %s on a closed cursor", kind, op)
	}
	c.pos.Require(kind, op)
	metrics.CursorOps.WithLabelValues(kind, op).Inc()
}

// SetEndPosition limits traversal to bound. The current position is kept:
// the next entry is the one after it, if that is within the bound.
// On a saved cursor the bound takes effect at Restore.
func (c *Cursor) SetEndPosition(bound cursor.EndBound) {
	if c.closed {
		cursor.Misuse("%s cursor: set end position on a closed cursor", kind)
	}
	metrics.CursorOps.WithLabelValues(kind, "set_end").Inc()
	c.end = cursor.EndBound{Key: append([]byte(nil), bound.Key...), Inclusive: bound.Inclusive}
	if c.pos.State() == position.Saved {
		return
	}

	view := c.view
	c.release()
	c.open(view)
	switch c.pos.State() {
	case position.Positioned, position.Ahead:
		c.relocate()
	}
}

// Seek positions the cursor on the first entry in traversal order at key
// (inclusive) or beyond it (exclusive).
func (c *Cursor) Seek(key []byte, inclusive bool) (cursor.IndexKeyEntry, bool) {
	c.require("seek")
	c.pos.Reset()

	start := keystring.AppendKey(append([]byte(nil), c.ix.prefix...), key)
	var ok bool
	switch {
	case c.dir == cursor.Forward && inclusive:
		ok = position.SeekGE(c.it, start)
	case c.dir == cursor.Forward:
		ok = position.SeekGE(c.it, keystring.Successor(start))
	case inclusive:
		ok = position.SeekLT(c.it, keystring.Successor(start))
	default:
		ok = position.SeekLT(c.it, start)
	}
	return c.land(ok)
}

// SeekStart positions the cursor on the first entry in traversal order.
func (c *Cursor) SeekStart() (cursor.IndexKeyEntry, bool) {
	c.require("seek")
	c.pos.Reset()
	return c.land(position.Start(c.it, c.dir))
}

// Next returns the entry after the last one returned. It panics on a
// cursor that was never positioned.
func (c *Cursor) Next() (cursor.IndexKeyEntry, bool) {
	c.require("next")

	var ok bool
	switch c.pos.State() {
	case position.Unpositioned:
		cursor.Misuse("%s cursor: next before seek", kind)
	case position.Exhausted:
		return cursor.IndexKeyEntry{}, false
	case position.Positioned:
		if ok = position.Advance(c.it, c.dir); ok {
			ok = position.Skip(c.it, c.dir, c.pos.Group())
		}
	case position.Ahead:
		ok = c.it.Valid()
	}
	return c.land(ok)
}

// Save suspends the cursor and releases its iterator, so the view can be
// released. Saving a saved cursor does nothing.
func (c *Cursor) Save() {
	if c.closed {
		cursor.Misuse("%s cursor: save on a closed cursor", kind)
	}
	metrics.CursorOps.WithLabelValues(kind, "save").Inc()
	c.pos.Save()
	c.release()
}

// SaveUnpositioned suspends the cursor and forgets its position. After
// Restore, Next reports the end until the cursor is seeked again.
func (c *Cursor) SaveUnpositioned() {
	if c.closed {
		cursor.Misuse("%s cursor: save on a closed cursor", kind)
	}
	metrics.CursorOps.WithLabelValues(kind, "save_unpositioned").Inc()
	c.pos.SaveUnpositioned()
	c.release()
}

// Restore resumes a saved cursor on v. The end position is re-applied.
// It panics if the cursor is not saved.
func (c *Cursor) Restore(v cursor.View) {
	if c.closed {
		cursor.Misuse("%s cursor: restore on a closed cursor", kind)
	}
	state := c.pos.Restore(kind)
	c.open(v)

	switch state {
	case position.Positioned, position.Ahead:
		c.relocate()
	case position.Exhausted:
		if c.pos.Anchor() != nil {
			c.relocate()
		}
	}
	outcome := restoreOutcome(c.pos.State())
	metrics.RestoreOutcomes.WithLabelValues(kind, outcome).Inc()
	c.ix.log.Debug("cursor restored", "dir", c.dir, "from", state, "outcome", outcome)
}

// Error returns the first storage or decoding error the cursor hit.
// A cursor with an error reports no more entries.
func (c *Cursor) Error() error {
	return c.err
}

// Close releases the cursor. Closing twice is a no-op.
func (c *Cursor) Close() {
	c.release()
	c.closed = true
}

// relocate finds the anchor on the current iterator.
func (c *Cursor) relocate() {
	exact := position.Relocate(c.it, c.dir, c.pos.Group())
	c.pos.Land(exact)
	c.latch(c.it.Error())
}

func (c *Cursor) land(ok bool) (cursor.IndexKeyEntry, bool) {
	if !ok || c.err != nil {
		c.latch(c.it.Error())
		c.pos.Exhaust()
		return cursor.IndexKeyEntry{}, false
	}

	raw := c.it.Key()
	key, id, err := keystring.SplitEntry(raw[len(c.ix.prefix):])
	if err != nil {
		c.latch(err)
		c.pos.Exhaust()
		return cursor.IndexKeyEntry{}, false
	}
	group := len(raw)
	if c.ix.unique {
		group -= keystring.RowIDLen
	}
	c.pos.Returned(raw, group)
	return cursor.IndexKeyEntry{Key: key, ID: cursor.RowID(id)}, true
}

func (c *Cursor) latch(err error) {
	if err != nil && c.err == nil {
		c.err = errors.Wrapf(err, "index %s cursor", c.ix.name)
	}
}

func restoreOutcome(state position.State) string {
	switch state {
	case position.Positioned:
		return metrics.OutcomeExact
	case position.Ahead:
		return metrics.OutcomeAhead
	case position.Exhausted:
		return metrics.OutcomeExhausted
	default:
		return metrics.OutcomeReset
	}
}
