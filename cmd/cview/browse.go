package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/index"
	"github.com/dacapoday/cursor/kv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <index>",
		Short: "Browse an index interactively.",
		Long: `Browse an index interactively. Every key press reads a fresh snapshot.

	j/↓    scroll down
	k/↑    scroll up
	g      jump to first
	G      jump to last
	/      seek to key
	q/Esc  quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return errors.New("browse needs a terminal")
			}
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			var ix *index.Index
			err = db.View(func(v cursor.View) (err error) {
				ix, err = index.Open(v, args[0])
				return
			})
			if err != nil {
				return err
			}
			return browse(db, ix, fd)
		},
	}
}

func browse(db *kv.DB, ix *index.Index, fd int) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	b := &browser{db: db, ix: ix, fd: fd}
	b.updateSize()
	b.first()

	fmt.Print("\033[?25l\033[2J") // hide cursor, clear screen once
	defer fmt.Print("\033[?25h\033[2J\033[H")

	reader := bufio.NewReader(os.Stdin)
	for {
		if b.updateSize() {
			b.reload()
		}
		b.render()

		c, err := reader.ReadByte()
		if err != nil {
			return nil
		}
		b.status = ""

		switch c {
		case 'q', 3, 27: // q, Ctrl+C, Esc
			if c == 27 && reader.Buffered() > 0 {
				c2, _ := reader.ReadByte()
				if c2 == '[' {
					c3, _ := reader.ReadByte()
					switch c3 {
					case 'A':
						b.up()
					case 'B':
						b.down()
					case '5':
						reader.ReadByte()
						b.pageUp()
					case '6':
						reader.ReadByte()
						b.pageDown()
					}
				}
				continue
			}
			return nil
		case 'j':
			b.down()
		case 'k':
			b.up()
		case 'g':
			b.first()
		case 'G':
			b.last()
		case '/':
			b.search(reader)
		}
	}
}

// browser shows one screen of index entries. It keeps only the entries on
// screen; every move reads them again through a cursor on a new snapshot.
type browser struct {
	db      *kv.DB
	ix      *index.Index
	fd      int
	rows    []cursor.IndexKeyEntry
	width   int
	height  int
	atStart bool // no entry before the first row
	atEnd   bool // no entry after the last row
	status  string
}

// less orders entries by key, then RowID.
func less(a, b cursor.IndexKeyEntry) bool {
	if c := bytes.Compare(a.Key, b.Key); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// updateSize checks the terminal size and returns true if it changed.
func (b *browser) updateSize() bool {
	w, h, err := term.GetSize(b.fd)
	if err != nil {
		w, h = 80, 24
	}
	if w == b.width && h == b.height {
		return false
	}
	b.width, b.height = w, h
	return true
}

func (b *browser) lines() int {
	return b.height - 4 // title + separator + separator + status
}

func (b *browser) view(fn func(cursor.View) error) {
	if err := b.db.View(fn); err != nil {
		b.status = err.Error()
	}
}

// load fills the screen with the entries from top on. A nil top starts at
// the first entry.
func (b *browser) load(top *cursor.IndexKeyEntry) {
	b.view(func(v cursor.View) error {
		c := b.ix.NewCursor(v, cursor.Forward)
		defer c.Close()

		var (
			e  cursor.IndexKeyEntry
			ok bool
		)
		if top == nil {
			e, ok = c.SeekStart()
		} else {
			e, ok = c.Seek(top.Key, true)
			for ok && less(e, *top) {
				e, ok = c.Next()
			}
		}

		rows := make([]cursor.IndexKeyEntry, 0, b.lines())
		for ok && len(rows) < b.lines() {
			rows = append(rows, e)
			e, ok = c.Next()
		}
		b.rows = rows
		b.atEnd = !ok
		if err := c.Error(); err != nil {
			return err
		}
		if len(rows) == 0 {
			b.atStart = true
			return nil
		}
		_, found := b.before(v, rows[0])
		b.atStart = !found
		return nil
	})
}

// before returns the entry preceding e.
func (b *browser) before(v cursor.View, e cursor.IndexKeyEntry) (cursor.IndexKeyEntry, bool) {
	c := b.ix.NewCursor(v, cursor.Reverse)
	defer c.Close()

	prev, ok := c.Seek(e.Key, true)
	for ok && !less(prev, e) {
		prev, ok = c.Next()
	}
	return prev, ok
}

func (b *browser) reload() {
	if len(b.rows) == 0 {
		b.load(nil)
		return
	}
	top := b.rows[0]
	b.load(&top)
}

func (b *browser) down() {
	if len(b.rows) <= 1 {
		return
	}
	// at end, allow scrolling until only 1 entry is visible
	next := b.rows[1]
	b.load(&next)
}

func (b *browser) up() {
	if b.atStart || len(b.rows) == 0 {
		return
	}
	var prev cursor.IndexKeyEntry
	var ok bool
	b.view(func(v cursor.View) error {
		prev, ok = b.before(v, b.rows[0])
		return nil
	})
	if ok {
		b.load(&prev)
	}
}

func (b *browser) pageDown() {
	for i := 0; i < b.lines()-1; i++ {
		b.down()
	}
}

func (b *browser) pageUp() {
	for i := 0; i < b.lines()-1; i++ {
		b.up()
	}
}

func (b *browser) first() {
	b.load(nil)
}

func (b *browser) last() {
	var top cursor.IndexKeyEntry
	var ok bool
	b.view(func(v cursor.View) error {
		c := b.ix.NewCursor(v, cursor.Reverse)
		defer c.Close()
		// back up to show a full screen
		e, more := c.SeekStart()
		for i := 0; more && i < b.lines(); i++ {
			top, ok = e, true
			e, more = c.Next()
		}
		return c.Error()
	})
	if ok {
		b.load(&top)
	} else {
		b.load(nil)
	}
}

func (b *browser) search(reader *bufio.Reader) {
	fmt.Print("\033[?25h") // show cursor
	fmt.Printf("\033[%d;1H\033[K/", b.height)

	var input []byte
	for {
		c, err := reader.ReadByte()
		if err != nil {
			break
		}
		if c == 27 || c == 3 { // Esc or Ctrl+C
			fmt.Print("\033[?25l")
			return
		}
		if c == 13 || c == 10 {
			break
		}
		if c == 127 || c == 8 {
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
			continue
		}
		if c >= 32 && c < 127 {
			input = append(input, c)
			fmt.Print(string(c))
		}
	}
	fmt.Print("\033[?25l")

	if len(input) == 0 {
		return
	}
	b.load(&cursor.IndexKeyEntry{Key: input, ID: cursor.NullRowID})
	if len(b.rows) > 0 {
		b.status = fmt.Sprintf("jumped to: %s", display(input, 20))
	} else {
		b.status = "not found"
		b.first()
	}
}

func (b *browser) render() {
	var s strings.Builder

	// move to top (no clear)
	s.WriteString("\033[H")

	s.WriteString("[ cview: ")
	s.WriteString(b.ix.Name())
	if b.ix.Unique() {
		s.WriteString(" (unique)")
	}
	s.WriteString(" ]\033[K\r\n")
	s.WriteString(strings.Repeat("─", b.width))
	s.WriteString("\033[K\r\n")

	keyWidth := b.width - 24
	if keyWidth < 20 {
		keyWidth = 20
	}
	for i := 0; i < b.lines(); i++ {
		if i < len(b.rows) {
			e := b.rows[i]
			s.WriteString(display(e.Key, keyWidth))
			fmt.Fprintf(&s, ": %d", e.ID)
		} else {
			s.WriteString("~")
		}
		s.WriteString("\033[K\r\n")
	}

	s.WriteString(strings.Repeat("─", b.width))
	s.WriteString("\033[K\r\n")

	pos := ""
	switch {
	case b.atStart && b.atEnd:
		pos = "[all]"
	case b.atStart:
		pos = "[top]"
	case b.atEnd:
		pos = "[end]"
	}
	if b.status != "" {
		s.WriteString(" " + b.status + " " + pos)
	} else {
		s.WriteString(" j/k:scroll g/G:jump /:seek q:quit " + pos)
	}
	s.WriteString("\033[K")

	fmt.Print(s.String())
}

// display formats bytes for display, truncating if needed.
// Printable UTF-8 is shown as text, anything else as hex.
func display(b []byte, maxLen int) string {
	if len(b) == 0 {
		return "(empty)"
	}

	if utf8.Valid(b) && isPrintable(b) {
		runes := []rune(string(b))
		if len(runes) > maxLen-3 {
			return string(runes[:maxLen-3]) + "..."
		}
		return string(runes)
	}

	hex := fmt.Sprintf("%x", b)
	if len(hex) > maxLen-3 {
		return hex[:maxLen-3] + "..."
	}
	return hex
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
