package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/csmacd/internal/trace"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csmacd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"server", "method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csmacd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "method", "route", "status"},
	)
	stationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csmacd",
			Subsystem: "station",
			Name:      "events_total",
			Help:      "Station protocol events by kind.",
		},
		[]string{"kind"},
	)
	backoffDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "csmacd",
			Subsystem: "station",
			Name:      "backoff_seconds",
			Help:      "Backoff wait after a collision in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
	sessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "csmacd",
			Subsystem: "session",
			Name:      "completed_total",
			Help:      "Sessions that reached the join barrier.",
		},
	)
	sessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "csmacd",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Session wall duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			stationEvents,
			backoffDuration,
			sessionsTotal,
			sessionDuration,
		)
	})
}

func RecordHTTPRequest(server, method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(server, method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(server, method, route, statusLabel).Observe(duration.Seconds())
}

// RecordSession observes a finished session. elapsed comes from the session
// result, so overlapping sessions never share a start time.
func RecordSession(elapsed time.Duration) {
	RegisterMetrics()
	if elapsed < 0 {
		elapsed = 0
	}
	sessionsTotal.Inc()
	sessionDuration.Observe(elapsed.Seconds())
}

// MetricsTracer counts station events. It holds no per-session state and is
// safe to share between concurrent sessions; session-level events are skipped.
type MetricsTracer struct{}

func NewMetricsTracer() MetricsTracer {
	RegisterMetrics()
	return MetricsTracer{}
}

func (MetricsTracer) LogEvent(ev trace.Event) {
	switch ev.Kind {
	case trace.KindSessionStart, trace.KindSessionEnd:
		return
	case trace.KindBackoff:
		backoffDuration.Observe(ev.Backoff.Seconds())
	}
	stationEvents.WithLabelValues(string(ev.Kind)).Inc()
}
