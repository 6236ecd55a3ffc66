// Package engine keeps the registry of storage engines.
//
// Engines register themselves from an init function:
//
//	func init() {
//		engine.Register(Name, Open)
//	}
//
// and are opened by name, usually from configuration:
//
//	e, err := engine.Open("leveldb", engine.Options{Path: "data"})
package engine

import (
	"sort"
	"sync"

	"github.com/dacapoday/cursor"
	"github.com/pkg/errors"
)

// Options configure an engine instance.
type Options struct {
	// Path is the data directory. Ignored by in-memory engines.
	Path string
	// InMemory keeps all data in memory when the engine supports it.
	InMemory bool
	// CacheMB is the block cache budget in MiB. Zero picks the engine default.
	CacheMB int
}

// OpenFunc creates an engine instance.
type OpenFunc func(Options) (cursor.Engine, error)

var (
	mu      sync.RWMutex
	engines = make(map[string]OpenFunc)
)

// Register makes an engine available by name. It panics if open is nil or
// the name is taken.
func Register(name string, open OpenFunc) {
	mu.Lock()
	defer mu.Unlock()

	if open == nil {
		panic("engine: Register open func is nil")
	}
	if _, dup := engines[name]; dup {
		panic("engine: Register called twice for " + name)
	}
	engines[name] = open
}

// Open opens the engine registered under name.
func Open(name string, opts Options) (cursor.Engine, error) {
	mu.RLock()
	open, ok := engines[name]
	mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(cursor.ErrUnknownEngine, "%q", name)
	}
	e, err := open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s engine", name)
	}
	cursor.Logger().Info("engine opened", "engine", name, "path", opts.Path, "inMemory", opts.InMemory)
	return e, nil
}

// Names returns the registered engine names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
