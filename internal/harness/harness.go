// Package harness runs storage conformance tests against every engine.
package harness

import (
	"testing"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/engine"
	"github.com/dacapoday/cursor/engine/badger"
	"github.com/dacapoday/cursor/engine/leveldb"
	"github.com/dacapoday/cursor/engine/memdb"
	"github.com/dacapoday/cursor/kv"
	"github.com/stretchr/testify/require"
)

// Engines lists the engines every conformance test runs on.
var Engines = []string{memdb.Name, leveldb.Name, badger.Name}

// Env is a database plus the snapshot the test currently reads from.
//
// Cursors must be saved or closed before Update, which releases the
// current snapshot.
type Env struct {
	t    testing.TB
	DB   *kv.DB
	snap cursor.Snapshot
}

// Run runs fn once per engine, each on a fresh in-memory database.
func Run(t *testing.T, fn func(t *testing.T, env *Env)) {
	for _, name := range Engines {
		t.Run(name, func(t *testing.T) {
			fn(t, New(t, name))
		})
	}
}

// New opens an in-memory database on the named engine. It is closed when
// the test ends.
func New(t testing.TB, name string) *Env {
	e, err := engine.Open(name, engine.Options{InMemory: true, CacheMB: 8})
	require.NoError(t, err)

	env := &Env{t: t, DB: kv.Open(e)}
	t.Cleanup(func() {
		env.release()
		require.NoError(t, env.DB.Close())
	})
	return env
}

// View returns the current snapshot, taking one if needed.
func (env *Env) View() cursor.View {
	if env.snap == nil {
		snap, err := env.DB.Snapshot()
		require.NoError(env.t, err)
		env.snap = snap
	}
	return env.snap
}

// Update commits fn's writes and moves the env to a new snapshot.
// The View returned before is no longer valid.
func (env *Env) Update(fn func(tx *kv.Tx)) {
	env.t.Helper()
	env.release()
	require.NoError(env.t, env.DB.Update(func(tx *kv.Tx) error {
		fn(tx)
		return nil
	}))
}

func (env *Env) release() {
	if env.snap != nil {
		env.snap.Release()
		env.snap = nil
	}
}
