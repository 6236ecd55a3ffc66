// Package metrics defines the Prometheus collectors of the cursor module.
// Collectors are created eagerly and only exported once Register is called.
package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "cursor"

	SubsystemCursor = "cursor"
	SubsystemKV     = "kv"

	LabelCursor  = "cursor"
	LabelOp      = "op"
	LabelOutcome = "outcome"
	LabelEngine  = "engine"
)

// Cursor kinds.
const (
	CursorIndex  = "index"
	CursorRecord = "record"
)

// Restore outcomes.
const (
	OutcomeExact     = "exact"
	OutcomeAhead     = "ahead"
	OutcomeExhausted = "exhausted"
	OutcomeReset     = "unpositioned"
	OutcomeVanished  = "vanished"
)

var DefBuckets = []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

var (
	CursorOps = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemCursor,
			Name:      "ops_total",
			Help:      "Total number of cursor operations.",
		},
		[]string{LabelCursor, LabelOp})
	RestoreOutcomes = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemCursor,
			Name:      "restores_total",
			Help:      "Total number of cursor restores by resulting state.",
		},
		[]string{LabelCursor, LabelOutcome})
	CommitSeconds = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemKV,
			Name:      "commit_seconds",
			Help:      "Histogram of transaction commit latency.",
			Buckets:   DefBuckets,
		},
		[]string{LabelEngine})
)

var registerOnce sync.Once

// Register exports the collectors to r, or to the default registerer when
// r is nil. Only the first call has an effect.
func Register(r prom.Registerer) {
	registerOnce.Do(func() {
		if r == nil {
			r = prom.DefaultRegisterer
		}
		r.MustRegister(CursorOps)
		r.MustRegister(RestoreOutcomes)
		r.MustRegister(CommitSeconds)
	})
}
