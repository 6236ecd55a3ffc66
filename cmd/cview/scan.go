package main

import (
	"fmt"
	"io"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/index"
	"github.com/dacapoday/cursor/keystring"
	"github.com/dacapoday/cursor/kv"
	"github.com/spf13/cobra"
)

// yielder swaps the snapshot under a cursor every batch steps.
type yielder struct {
	db    *kv.DB
	snap  cursor.Snapshot
	batch int
	steps int
}

func newYielder(db *kv.DB, batch int) (*yielder, error) {
	snap, err := db.Snapshot()
	if err != nil {
		return nil, err
	}
	return &yielder{db: db, snap: snap, batch: batch}, nil
}

func (y *yielder) view() cursor.View {
	return y.snap
}

// step counts one returned entry. At a batch boundary it saves c, takes a
// new snapshot and hands it to restore.
func (y *yielder) step(save func(), restore func(cursor.View)) error {
	y.steps++
	if y.batch <= 0 || y.steps%y.batch != 0 {
		return nil
	}
	save()
	y.snap.Release()
	y.snap = nil

	snap, err := y.db.Snapshot()
	if err != nil {
		return err
	}
	y.snap = snap
	restore(snap)
	return nil
}

// release frees the current snapshot. Cursors on it must be closed first.
func (y *yielder) release() {
	if y.snap != nil {
		y.snap.Release()
		y.snap = nil
	}
}

type scanOptions struct {
	from, to       string
	exclusiveStart bool
	exclusiveEnd   bool
	reverse        bool
	batch          int
	limit          int
}

func (o scanOptions) direction() cursor.Direction {
	if o.reverse {
		return cursor.Reverse
	}
	return cursor.Forward
}

func (a *app) scanCmd() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan <index>",
		Short: "Walk an index between two keys.",
		Long: "Walk an index between two keys. --to is the end position in " +
			"traversal order, so it is the lower key of a reverse scan.",
		Example: "cview scan users --from key000010 --to key000020 --exclusive-end",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			_, err = scan(db, ix, opts, cmd.OutOrStdout())
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.from, "from", "", "start key; empty starts at the first key")
	flags.StringVar(&opts.to, "to", "", "end key; empty scans to the last key")
	flags.BoolVar(&opts.exclusiveStart, "exclusive-start", false, "skip entries equal to --from")
	flags.BoolVar(&opts.exclusiveEnd, "exclusive-end", false, "stop before entries equal to --to")
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "scan in descending order")
	flags.IntVar(&opts.batch, "batch", 100, "entries per snapshot; 0 keeps one snapshot")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "stop after this many entries; 0 means no limit")
	return cmd
}

func scan(db *kv.DB, ix *index.Index, opts scanOptions, out io.Writer) (n int, err error) {
	y, err := newYielder(db, opts.batch)
	if err != nil {
		return 0, err
	}
	defer y.release()

	c := ix.NewCursor(y.view(), opts.direction())
	defer c.Close()
	if opts.to != "" {
		c.SetEndPosition(cursor.Bound(keystring.String(opts.to), !opts.exclusiveEnd))
	}

	var (
		entry cursor.IndexKeyEntry
		ok    bool
	)
	if opts.from != "" {
		entry, ok = c.Seek(keystring.String(opts.from), !opts.exclusiveStart)
	} else {
		entry, ok = c.SeekStart()
	}
	for ok {
		fmt.Fprintf(out, "%s: %d\n", display(entry.Key, 40), entry.ID)
		if n++; opts.limit > 0 && n >= opts.limit {
			break
		}
		if err = y.step(c.Save, c.Restore); err != nil {
			return
		}
		entry, ok = c.Next()
	}
	return n, c.Error()
}
