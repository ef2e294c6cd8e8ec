package medium

import "sync/atomic"

// Medium is the channel state shared by every station in one session.
type Medium struct {
	busy      atomic.Bool
	lastFrame atomic.Pointer[string]
}

func New() *Medium {
	return &Medium{}
}

// IsIdle reports whether no station currently claims the channel.
func (m *Medium) IsIdle() bool {
	return !m.busy.Load()
}

// MarkBusy claims the channel and places frame on it.
func (m *Medium) MarkBusy(frame string) {
	m.busy.Store(true)
	m.lastFrame.Store(&frame)
}

func (m *Medium) MarkIdle() {
	m.busy.Store(false)
}

// CurrentFrame returns the most recently placed frame, false if none was placed yet.
func (m *Medium) CurrentFrame() (string, bool) {
	p := m.lastFrame.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
