package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/danmuck/csmacd/internal/testutil/testlog"
	"github.com/danmuck/csmacd/internal/trace"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("csmasim", "GET", "health", 200, 12*time.Millisecond)
	RecordSession(3 * time.Second)
}

func TestMetricsTracerCountsStationEvents(t *testing.T) {
	testlog.Start(t)
	tr := NewMetricsTracer()
	collisions := stationEvents.WithLabelValues(string(trace.KindCollision))
	backoffs := stationEvents.WithLabelValues(string(trace.KindBackoff))
	before := testutil.ToFloat64(collisions)
	beforeBackoff := testutil.ToFloat64(backoffs)
	beforeSessions := testutil.ToFloat64(sessionsTotal)

	start := time.Unix(1700000000, 0)
	tr.LogEvent(trace.Event{Kind: trace.KindSessionStart, Timestamp: start})
	tr.LogEvent(trace.Event{Kind: trace.KindCollision, StationID: "Apollo0"})
	tr.LogEvent(trace.Event{Kind: trace.KindCollision, StationID: "Apollo1"})
	tr.LogEvent(trace.Event{Kind: trace.KindBackoff, StationID: "Apollo1", Backoff: 500 * time.Millisecond})
	tr.LogEvent(trace.Event{Kind: trace.KindSessionEnd, Timestamp: start.Add(2 * time.Second)})

	if got := testutil.ToFloat64(collisions) - before; got != 2 {
		t.Fatalf("unexpected collision delta: %v", got)
	}
	if got := testutil.ToFloat64(backoffs) - beforeBackoff; got != 1 {
		t.Fatalf("unexpected backoff delta: %v", got)
	}
	if got := testutil.ToFloat64(sessionsTotal) - beforeSessions; got != 0 {
		t.Fatalf("tracer must leave session metrics to RecordSession, delta=%v", got)
	}
}

// Two sessions sharing one tracer: B starts before A ends. Durations come
// from each session's own result, so the interleaving cannot skew them.
func TestOverlappingSessionsShareTracer(t *testing.T) {
	testlog.Start(t)
	tr := NewMetricsTracer()
	before := testutil.ToFloat64(sessionsTotal)

	t0 := time.Unix(1700000000, 0)
	tr.LogEvent(trace.Event{Kind: trace.KindSessionStart, Timestamp: t0})
	tr.LogEvent(trace.Event{Kind: trace.KindSessionStart, Timestamp: t0.Add(10 * time.Second)})
	tr.LogEvent(trace.Event{Kind: trace.KindSessionEnd, Timestamp: t0.Add(5 * time.Second)})
	tr.LogEvent(trace.Event{Kind: trace.KindSessionEnd, Timestamp: t0.Add(12 * time.Second)})
	if got := testutil.ToFloat64(sessionsTotal) - before; got != 0 {
		t.Fatalf("session events must not be timed by the tracer, delta=%v", got)
	}

	var wg sync.WaitGroup
	for _, elapsed := range []time.Duration{5 * time.Second, 2 * time.Second} {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			RecordSession(d)
		}(elapsed)
	}
	wg.Wait()
	if got := testutil.ToFloat64(sessionsTotal) - before; got != 2 {
		t.Fatalf("unexpected session delta: %v", got)
	}
}
