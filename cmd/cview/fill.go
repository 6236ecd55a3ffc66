package main

import (
	"fmt"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/index"
	"github.com/dacapoday/cursor/keystring"
	"github.com/dacapoday/cursor/kv"
	"github.com/dacapoday/cursor/record"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type fillOptions struct {
	count     int
	dups      int
	batch     int
	unique    bool
	keyFormat string
}

func (a *app) fillCmd() *cobra.Command {
	var opts fillOptions
	cmd := &cobra.Command{
		Use:     "fill <name>",
		Short:   "Insert generated records into a store and index them.",
		Example: "cview fill users --count 1000 --dups 2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			ropts, err := a.cfg.RecordOptions()
			if err != nil {
				return err
			}
			n, err := fill(db, args[0], opts, ropts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d records into %s\n", n, args[0])
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&opts.count, "count", "n", 100, "number of keys")
	flags.IntVar(&opts.dups, "dups", 1, "records per key; must be 1 for a unique index")
	flags.IntVar(&opts.batch, "batch", 1000, "records per transaction")
	flags.BoolVar(&opts.unique, "unique", false, "create a unique index")
	flags.StringVar(&opts.keyFormat, "key-format", "key%06d", "fmt verb producing the index key from its number")
	return cmd
}

// openOrCreate returns the index and store called name, creating them if
// they do not exist yet.
func openOrCreate(db *kv.DB, name string, unique bool, ropts []record.Option) (ix *index.Index, st *record.Store, err error) {
	err = db.Update(func(tx *kv.Tx) error {
		if ix, err = index.Open(tx, name); errors.Is(err, cursor.ErrIndexNotFound) {
			ix, err = index.Create(tx, name, unique)
		}
		if err != nil {
			return err
		}
		if st, err = record.Open(tx, name); errors.Is(err, cursor.ErrStoreNotFound) {
			st, err = record.Create(tx, name, ropts...)
		}
		return err
	})
	return
}

func fill(db *kv.DB, name string, opts fillOptions, ropts []record.Option) (int, error) {
	if opts.dups < 1 || (opts.unique && opts.dups > 1) {
		return 0, errors.Errorf("invalid --dups %d", opts.dups)
	}
	if opts.batch < 1 {
		opts.batch = 1
	}
	ix, st, err := openOrCreate(db, name, opts.unique, ropts)
	if err != nil {
		return 0, err
	}

	total := opts.count * opts.dups
	n := 0
	for n < total {
		end := min(n+opts.batch, total)
		err = db.Update(func(tx *kv.Tx) error {
			for i := n; i < end; i++ {
				key := fmt.Sprintf(opts.keyFormat, i/opts.dups)
				id, err := st.Insert(tx, []byte(fmt.Sprintf("%s #%d", key, i%opts.dups)))
				if err != nil {
					return err
				}
				if err = ix.Insert(tx, keystring.String(key), id, !ix.Unique()); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return n, err
		}
		n = end
	}
	return n, nil
}
