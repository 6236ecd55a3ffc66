package main

import (
	"fmt"
	"io"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/kv"
	"github.com/dacapoday/cursor/record"
	"github.com/spf13/cobra"
)

type recordsOptions struct {
	from    int64
	reverse bool
	batch   int
	limit   int
}

func (a *app) recordsCmd() *cobra.Command {
	var opts recordsOptions
	cmd := &cobra.Command{
		Use:     "records <store>",
		Short:   "Walk the records of a store in RowID order.",
		Example: "cview records users --from 42 --limit 10",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			var st *record.Store
			err = db.View(func(v cursor.View) (err error) {
				st, err = record.Open(v, args[0])
				return
			})
			if err != nil {
				return err
			}
			_, err = records(db, st, opts, cmd.OutOrStdout())
			return err
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&opts.from, "from", 0, "start at this RowID, which must exist; 0 starts at the first record")
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "walk in descending RowID order")
	flags.IntVar(&opts.batch, "batch", 100, "records per snapshot; 0 keeps one snapshot")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "stop after this many records; 0 means no limit")
	return cmd
}

func records(db *kv.DB, st *record.Store, opts recordsOptions, out io.Writer) (n int, err error) {
	y, err := newYielder(db, opts.batch)
	if err != nil {
		return 0, err
	}
	defer y.release()

	dir := cursor.Forward
	if opts.reverse {
		dir = cursor.Reverse
	}
	c := st.NewCursor(y.view(), dir)
	defer c.Close()

	var (
		rec cursor.Record
		ok  bool
	)
	if opts.from != 0 {
		rec, ok = c.SeekExact(cursor.RowID(opts.from))
	} else {
		rec, ok = c.Next()
	}

	lost := false
	restore := func(v cursor.View) {
		lost = !c.Restore(v)
	}
	for ok {
		fmt.Fprintf(out, "%d: %s\n", rec.ID, display(rec.Data, 60))
		if n++; opts.limit > 0 && n >= opts.limit {
			break
		}
		if err = y.step(c.Save, restore); err != nil {
			return
		}
		if lost {
			fmt.Fprintf(out, "record %d was deleted, stopping\n", rec.ID)
			break
		}
		rec, ok = c.Next()
	}
	return n, c.Error()
}
