// Package config loads cursor configuration from files, the environment and
// bound command line flags.
//
// Every key can be overridden from the environment with the CURSOR_ prefix,
// dots replaced by underscores: CURSOR_LOG_LEVEL=debug.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/dacapoday/cursor/engine"
	"github.com/dacapoday/cursor/kv"
	"github.com/dacapoday/cursor/record"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	log "github.com/xuperchain/log15"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "CURSOR"

// default settings
const (
	DefaultEngine      = "leveldb"
	DefaultPath        = "./data"
	DefaultCacheMB     = 64
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "logfmt"
	DefaultCompression = "none"
)

type Config struct {
	// Engine is a registered engine name: memdb, leveldb or badger.
	Engine   string `mapstructure:"engine"`
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"inMemory"`
	CacheMB  int    `mapstructure:"cacheMB"`

	Log    LogConfig    `mapstructure:"log"`
	Record RecordConfig `mapstructure:"record"`
}

type LogConfig struct {
	// Level is one of crit, error, warn, info, debug.
	Level string `mapstructure:"level"`
	// Format is logfmt or json.
	Format string `mapstructure:"format"`
	// File, when set, receives a copy of every record written to stderr.
	File string `mapstructure:"file"`
}

type RecordConfig struct {
	// Compression of new record stores: none or snappy.
	Compression   string `mapstructure:"compression"`
	StrictRestore bool   `mapstructure:"strictRestore"`
}

func Default() *Config {
	return &Config{
		Engine:  DefaultEngine,
		Path:    DefaultPath,
		CacheMB: DefaultCacheMB,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Record: RecordConfig{
			Compression: DefaultCompression,
		},
	}
}

// NewViper returns a viper instance with the defaults and environment
// overrides set up. Callers may bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("engine", def.Engine)
	v.SetDefault("path", def.Path)
	v.SetDefault("inMemory", def.InMemory)
	v.SetDefault("cacheMB", def.CacheMB)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("record.compression", def.Record.Compression)
	v.SetDefault("record.strictRestore", def.Record.StrictRestore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile, if given, into v and decodes the result.
// Unknown keys in the file are an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	}

	cfg := Default()
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Engine == "" {
		return errors.New("config: engine is required")
	}
	if c.Path == "" && !c.InMemory {
		return errors.New("config: path is required unless inMemory is set")
	}
	if c.CacheMB < 0 {
		return errors.Errorf("config: cacheMB %d is negative", c.CacheMB)
	}
	if _, err := log.LvlFromString(c.Log.Level); err != nil {
		return errors.Wrap(err, "config: log.level")
	}
	if _, err := c.Log.format(); err != nil {
		return err
	}
	if _, err := record.ParseCompression(c.Record.Compression); err != nil {
		return errors.Wrap(err, "config: record.compression")
	}
	return nil
}

// EngineOptions maps the storage settings to engine options.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Path:     c.Path,
		InMemory: c.InMemory,
		CacheMB:  c.CacheMB,
	}
}

// Open opens the configured engine and wraps it in a DB. The engine package
// must be linked in by the caller.
func (c *Config) Open() (*kv.DB, error) {
	e, err := engine.Open(c.Engine, c.EngineOptions())
	if err != nil {
		return nil, err
	}
	return kv.Open(e), nil
}

// RecordOptions returns the store options for record.Create.
func (c *Config) RecordOptions() ([]record.Option, error) {
	comp, err := record.ParseCompression(c.Record.Compression)
	if err != nil {
		return nil, err
	}
	opts := []record.Option{record.WithCompression(comp)}
	if c.Record.StrictRestore {
		opts = append(opts, record.WithStrictRestore())
	}
	return opts, nil
}

func (lc LogConfig) format() (log.Format, error) {
	switch lc.Format {
	case "", "logfmt":
		return log.LogfmtFormat(), nil
	case "json":
		return log.JsonFormat(), nil
	default:
		return nil, errors.Errorf("config: unknown log.format %q", lc.Format)
	}
}

// Handler builds a log handler writing to w, and to File when set,
// filtered at Level.
func (lc LogConfig) Handler(w io.Writer) (log.Handler, error) {
	lvl, err := log.LvlFromString(lc.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	lfmt, err := lc.format()
	if err != nil {
		return nil, err
	}

	h := log.StreamHandler(w, lfmt)
	if lc.File != "" {
		fh, err := log.FileHandler(lc.File, lfmt)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", lc.File)
		}
		h = log.MultiHandler(h, fh)
	}
	return log.LvlFilterHandler(lvl, log.SyncHandler(h)), nil
}

// StderrHandler is Handler writing to os.Stderr.
func (lc LogConfig) StderrHandler() (log.Handler, error) {
	return lc.Handler(os.Stderr)
}
