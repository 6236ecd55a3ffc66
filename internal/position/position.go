// Package position implements the save/restore state machine shared by the
// index and record cursors, and the direction-aware positioning primitives
// they use on storage iterators.
package position

import (
	"fmt"

	"github.com/dacapoday/cursor"
)

// State is the position of a cursor.
type State uint8

const (
	// Unpositioned: no seek yet.
	Unpositioned State = iota
	// Positioned: the iterator sits on the anchor, the entry returned last.
	Positioned
	// Ahead: the anchor vanished during a save window. The iterator already
	// sits on the first candidate beyond it, or past the end.
	Ahead
	// Exhausted: traversal reported the end. Only a seek leaves this state.
	Exhausted
	// Saved: suspended until Restore.
	Saved
)

var stateNames = [...]string{"unpositioned", "positioned", "ahead", "exhausted", "saved"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// Tracker holds a cursor's state and its anchor.
//
// The anchor is the encoded key of the last entry returned. Its first group
// bytes identify the logical entry: the whole key for record and standard
// index cursors, only the key part for unique index cursors.
type Tracker struct {
	state  State
	resume State
	anchor []byte
	group  int
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Anchor returns the encoded key of the last returned entry, or nil.
func (t *Tracker) Anchor() []byte {
	if len(t.anchor) == 0 {
		return nil
	}
	return t.anchor
}

// Group returns the anchor bytes that identify the logical entry.
func (t *Tracker) Group() []byte {
	if len(t.anchor) == 0 {
		return nil
	}
	return t.anchor[:t.group]
}

// Returned records key as the last returned entry.
func (t *Tracker) Returned(key []byte, group int) {
	t.anchor = append(t.anchor[:0], key...)
	t.group = group
	t.state = Positioned
}

// Land records the outcome of relocating to the anchor.
func (t *Tracker) Land(exact bool) {
	if exact {
		t.state = Positioned
	} else {
		t.state = Ahead
	}
}

// Exhaust marks the end of traversal. The anchor is kept so a restore can
// still find entries inserted after it.
func (t *Tracker) Exhaust() {
	t.state = Exhausted
}

// Reset forgets the position, as before a fresh seek.
func (t *Tracker) Reset() {
	t.state = Unpositioned
	t.anchor = t.anchor[:0]
	t.group = 0
}

// Save suspends the cursor. Saving a saved cursor does nothing.
func (t *Tracker) Save() {
	if t.state == Saved {
		return
	}
	t.resume, t.state = t.state, Saved
}

// SaveUnpositioned suspends the cursor and drops its anchor. A cursor that
// was ever positioned resumes as Exhausted with no anchor, so traversal ends
// until the next seek. A cursor never seeked stays Unpositioned.
func (t *Tracker) SaveUnpositioned() {
	prev := t.state
	if prev == Saved {
		prev = t.resume
	}
	t.anchor = t.anchor[:0]
	t.group = 0
	t.resume, t.state = Exhausted, Saved
	if prev == Unpositioned {
		t.resume = Unpositioned
	}
}

// Restore leaves the saved state and returns the state to resume.
// It panics if the cursor is not saved.
func (t *Tracker) Restore(kind string) State {
	if t.state != Saved {
		cursor.Misuse("%s cursor: restore without save (state %s)", kind, t.state)
	}
	t.state = t.resume
	return t.state
}

// Require panics if the cursor is saved, where op is not allowed.
func (t *Tracker) Require(kind, op string) {
	if t.state == Saved {
		cursor.Misuse("%s cursor: %s on a saved cursor", kind, op)
	}
}
