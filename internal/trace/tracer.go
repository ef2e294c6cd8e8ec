package trace

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSessionStart Kind = "session.start"
	KindSessionEnd   Kind = "session.end"
	KindRunStart     Kind = "run.start"
	KindTransmit     Kind = "transmit"
	KindCollision    Kind = "collision"
	KindBackoff      Kind = "backoff"
	KindExhausted    Kind = "exhausted"
	KindSuccess      Kind = "success"
	KindRunEnd       Kind = "run.end"
)

// Event is one traced protocol step. StationID is empty for session-level events.
type Event struct {
	Kind      Kind
	StationID string
	Message   string
	Delivered int
	Attempt   int
	Backoff   time.Duration
	Timestamp time.Time
}

type Tracer interface {
	LogEvent(ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) LogEvent(Event) {}

// Multi fans every event out to each tracer in order.
type Multi []Tracer

func (m Multi) LogEvent(ev Event) {
	for _, t := range m {
		if t != nil {
			t.LogEvent(ev)
		}
	}
}

// Recorder keeps events in memory. Safe for concurrent stations.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{events: make([]Event, 0)}
}

func (r *Recorder) LogEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were recorded for stationID.
// An empty stationID matches every station.
func (r *Recorder) Count(stationID string, kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind != kind {
			continue
		}
		if stationID != "" && ev.StationID != stationID {
			continue
		}
		n++
	}
	return n
}
