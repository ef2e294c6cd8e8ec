package simulation

import (
	"time"

	"github.com/danmuck/csmacd/internal/station"
)

// Result is the aggregate outcome of one session, stations ordered by index.
type Result struct {
	ID        string           `json:"id" yaml:"id"`
	Stations  []station.Result `json:"stations" yaml:"stations"`
	StartedAt time.Time        `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time        `json:"ended_at" yaml:"ended_at"`
	Elapsed   time.Duration    `json:"elapsed" yaml:"elapsed"`
}

// Totals sums per-station counters.
type Totals struct {
	Stations   int `json:"stations" yaml:"stations"`
	Target     int `json:"target" yaml:"target"`
	Delivered  int `json:"delivered" yaml:"delivered"`
	Collisions int `json:"collisions" yaml:"collisions"`
	Backoffs   int `json:"backoffs" yaml:"backoffs"`
	Exhausted  int `json:"exhausted" yaml:"exhausted"`
}

func (r Result) ByID() map[string]station.Result {
	out := make(map[string]station.Result, len(r.Stations))
	for _, s := range r.Stations {
		out[s.ID] = s
	}
	return out
}

func (r Result) Station(id string) (station.Result, bool) {
	for _, s := range r.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return station.Result{}, false
}

func (r Result) Totals() Totals {
	t := Totals{Stations: len(r.Stations)}
	for _, s := range r.Stations {
		t.Target += s.Target
		t.Delivered += s.Delivered
		t.Collisions += s.Collisions
		t.Backoffs += s.Backoffs
		if s.Reason == station.ReasonMaxAttempts {
			t.Exhausted++
		}
	}
	return t
}
