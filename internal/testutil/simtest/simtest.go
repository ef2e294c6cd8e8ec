// Package simtest provides deterministic clocks and random sources for station tests.
package simtest

import (
	"runtime"
	"sync"
	"time"
)

// Clock never blocks: Sleep advances a virtual time and yields the goroutine.
// One Clock may be shared by every station of a session.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// OnSleep, when set, runs after the virtual time advanced.
	OnSleep func(d time.Duration)
}

func NewClock() *Clock {
	return &Clock{now: time.Unix(1700000000, 0)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	hook := c.OnSleep
	c.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	runtime.Gosched()
}

func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

// Rand replays fixed values. Floats and Ints cycle; Intn reduces modulo n.
// Empty scripts yield zero.
type Rand struct {
	Floats []float64
	Ints   []int

	fi int
	ii int
}

func (r *Rand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[r.fi%len(r.Floats)]
	r.fi++
	return v
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("simtest: Intn with non-positive n")
	}
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[r.ii%len(r.Ints)]
	r.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// MaxRand always picks the top of every range.
type MaxRand struct{}

func (MaxRand) Float64() float64 { return 0.999999 }

func (MaxRand) Intn(n int) int { return n - 1 }
