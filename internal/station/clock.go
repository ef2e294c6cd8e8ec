package station

import (
	"math/rand"
	"time"
)

// Clock is the time source a station sleeps and stamps events with.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Rand is the random source for sensing jitter and backoff slots.
// *math/rand.Rand satisfies it; one instance must not be shared across stations.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewRand returns a station-local random source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
