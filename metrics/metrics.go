// File: metrics/metrics.go
// Package metrics exposes runtime metrics via prometheus client_golang
// (spec §9 "Python-embedded... no embedded interpreter" ambient concern:
// ambient observability is carried even where the distilled spec is
// silent on it).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Replaces the teacher's hand-rolled control/metrics.go map-of-any registry
// with real prometheus collectors, registered on a private Registry rather
// than the global default so multiple graphs in tests don't collide.

package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/tizonia-go/api"
)

// Registry groups every metric this runtime exports (spec §4.2, §4.6, §4.3).
type Registry struct {
	reg *prometheus.Registry

	GraphStateDuration *prometheus.HistogramVec
	BufferPoolInUse    *prometheus.GaugeVec
	ComponentCommands  *prometheus.CounterVec
}

// New constructs and registers every collector on a fresh registry.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		GraphStateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tizonia",
			Subsystem: "graph",
			Name:      "state_duration_seconds",
			Help:      "Time spent by a graph instance in each top-level FSM state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
		BufferPoolInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tizonia",
			Subsystem: "buffer",
			Name:      "pool_in_use",
			Help:      "Buffer headers currently owned by a port or processor.",
		}, []string{"component"}),
		ComponentCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tizonia",
			Subsystem: "component",
			Name:      "commands_total",
			Help:      "SendCommand invocations, by component and command kind.",
		}, []string{"component", "command"}),
	}

	reg.MustRegister(r.GraphStateDuration, r.BufferPoolInUse, r.ComponentCommands)
	return r
}

// Gatherer exposes the underlying prometheus.Gatherer. No HTTP /metrics
// handler in this module serves it.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveCommand records one SendCommand invocation.
func (r *Registry) ObserveCommand(component string, cmd api.Command) {
	r.ComponentCommands.WithLabelValues(component, cmd.String()).Inc()
}

// SetPoolInUse records a buffer pool's current in-use count for one
// component.
func (r *Registry) SetPoolInUse(component string, stats api.BufferPoolStats) {
	r.BufferPoolInUse.WithLabelValues(component).Set(float64(stats.InUse))
}

var (
	defaultOnce sync.Once
	defaultPtr  atomic.Pointer[Registry]
)

// Default returns the process-wide Registry every package without an
// injected one reports through. cmd/tizonia installs a fresh Registry via
// SetDefault at startup; absent that call (most tests) this lazily builds
// a private one on first use.
func Default() *Registry {
	if r := defaultPtr.Load(); r != nil {
		return r
	}
	defaultOnce.Do(func() {
		if defaultPtr.Load() == nil {
			defaultPtr.Store(New())
		}
	})
	return defaultPtr.Load()
}

// SetDefault installs r as the process-wide default Registry.
func SetDefault(r *Registry) {
	defaultPtr.Store(r)
}
