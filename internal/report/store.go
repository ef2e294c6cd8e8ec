package report

import (
	"sync"
	"time"

	"github.com/danmuck/csmacd/internal/simulation"
)

// Store keeps the most recent finished sessions, oldest evicted first.
type Store struct {
	mu       sync.RWMutex
	max      int
	sessions []simulation.Result
}

// Summary is the list view of one stored session.
type Summary struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"started_at"`
	Elapsed   string            `json:"elapsed"`
	Totals    simulation.Totals `json:"totals"`
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = 1
	}
	return &Store{
		max:      max,
		sessions: make([]simulation.Result, 0, max),
	}
}

func (s *Store) Add(res simulation.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == s.max {
		copy(s.sessions, s.sessions[1:])
		s.sessions = s.sessions[:len(s.sessions)-1]
	}
	s.sessions = append(s.sessions, res)
}

func (s *Store) Latest() (simulation.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sessions) == 0 {
		return simulation.Result{}, false
	}
	return s.sessions[len(s.sessions)-1], true
}

func (s *Store) Get(id string) (simulation.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, res := range s.sessions {
		if res.ID == id {
			return res, true
		}
	}
	return simulation.Result{}, false
}

// List returns summaries newest first.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.sessions))
	for i := len(s.sessions) - 1; i >= 0; i-- {
		res := s.sessions[i]
		out = append(out, Summary{
			ID:        res.ID,
			StartedAt: res.StartedAt,
			Elapsed:   res.Elapsed.String(),
			Totals:    res.Totals(),
		})
	}
	return out
}
