// Package telemetry holds the SDK's prometheus instrumentation. Metrics
// are package-level and registered once; a host application that already
// runs a prometheus endpoint picks them up from the default registry.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FlagCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playsuper_flag_cache_hits_total",
		Help: "Flag reads served from the value cache",
	})
	FlagCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playsuper_flag_cache_misses_total",
		Help: "Flag reads that fell through to evaluation or defaults",
	})
	FlagRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playsuper_flag_refreshes_total",
			Help: "Flag document refresh cycles by result",
		},
		[]string{"result"},
	)

	EventsEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playsuper_events_enqueued_total",
		Help: "Analytics events accepted into the queue",
	})
	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playsuper_events_dropped_total",
			Help: "Analytics events removed without delivery, by reason",
		},
		[]string{"reason"},
	)
	EventsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playsuper_events_sent_total",
		Help: "Analytics events confirmed delivered",
	})
	DrainCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playsuper_drain_cycles_total",
			Help: "Event queue drain cycles by result",
		},
		[]string{"result"},
	)
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "playsuper_queue_depth",
		Help: "Analytics events currently queued",
	})
)

var registerOnce sync.Once

// Init registers the SDK metrics with the default registry. Idempotent so
// repeated SDK construction in tests does not panic.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FlagCacheHits, FlagCacheMisses, FlagRefreshes,
			EventsEnqueued, EventsDropped, EventsSent,
			DrainCycles, QueueDepth,
		)
	})
}
