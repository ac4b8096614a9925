package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CollectorMetrics holds all Prometheus metrics for the collector service.
type CollectorMetrics struct {
	RecordsTotal      *prometheus.CounterVec
	BytesTotal        prometheus.Counter
	ConfigEventsTotal prometheus.Counter
	HistoryEvictions  prometheus.Counter
	WALActive         prometheus.Gauge
	APIKeyCacheHits   prometheus.Counter
	APIKeyCacheMisses prometheus.Counter
}

// NewCollectorMetrics initializes and registers the Prometheus metrics.
func NewCollectorMetrics() *CollectorMetrics {
	return &CollectorMetrics{
		RecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "collector",
			Name:      "records_total",
			Help:      "Total number of event records by type and status.",
		}, []string{"type", "status"}), // status: accepted, error_parse, error_size, error_buffer, error_media_type, rate_limited
		BytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "collector",
			Name:      "bytes_total",
			Help:      "Total number of record bytes accepted.",
		}),
		ConfigEventsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "collector",
			Name:      "config_events_total",
			Help:      "Total number of configuration snapshot events accepted.",
		}),
		HistoryEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "collector",
			Name:      "history_evictions_total",
			Help:      "Runtime events aged out of the in-memory session history.",
		}),
		WALActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "rtc_event_log",
			Subsystem: "collector",
			Name:      "wal_active_gauge",
			Help:      "Indicates if the Write-Ahead Log is currently active (1 for active, 0 for inactive).",
		}),
		APIKeyCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc_event_log",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}
