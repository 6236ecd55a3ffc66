// cview is a command line tool for filling and walking cursor indexes and
// record stores.
//
// Usage:
//
//	cview fill users --count 1000 --dups 2     # create index and store "users"
//	cview scan users --from key000100 --to key000200 --batch 10
//	cview records users --reverse --limit 20
//	cview browse users                         # interactive mode
//
// Scans save their cursor after every batch, take a fresh snapshot and
// restore, so they keep going while other writers commit.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/config"
	"github.com/dacapoday/cursor/engine"
	_ "github.com/dacapoday/cursor/engine/badger"
	_ "github.com/dacapoday/cursor/engine/leveldb"
	_ "github.com/dacapoday/cursor/engine/memdb"
	"github.com/dacapoday/cursor/kv"
	"github.com/dacapoday/cursor/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	v           *viper.Viper
	cfgFile     string
	showMetrics bool
	cfg         *config.Config
}

// flag name -> config key
var boundFlags = map[string]string{
	"engine":    "engine",
	"path":      "path",
	"in-memory": "inMemory",
	"cache-mb":  "cacheMB",
	"log-level": "log.level",
	"log-file":  "log.file",
}

func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:               "cview <command> [arguments]",
		Short:             "cview fills and walks cursor indexes and record stores.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Example:           "cview scan users --conf cview.yaml --batch 100",
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.showMetrics {
				return nil
			}
			return dumpMetrics(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "conf", "c", "", "config file (yaml, toml or json)")
	flags.String("engine", config.DefaultEngine, "storage engine: "+strings.Join(engine.Names(), ", "))
	flags.String("path", config.DefaultPath, "data directory")
	flags.Bool("in-memory", false, "keep data in memory")
	flags.Int("cache-mb", config.DefaultCacheMB, "engine cache budget in MiB")
	flags.String("log-level", config.DefaultLogLevel, "log level: crit, error, warn, info, debug")
	flags.String("log-file", "", "also write logs to this file")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print cursor metrics on exit")
	for name, key := range boundFlags {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		a.fillCmd(),
		a.scanCmd(),
		a.recordsCmd(),
		a.browseCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	h, err := cfg.Log.StderrHandler()
	if err != nil {
		return err
	}
	cursor.SetLogHandler(h)
	metrics.Register(nil)
	a.cfg = cfg
	return nil
}

func (a *app) open() (*kv.DB, error) {
	return a.cfg.Open()
}

func dumpMetrics(cmd *cobra.Command) error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	for _, mf := range mfs {
		if !strings.HasPrefix(mf.GetName(), metrics.Namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
