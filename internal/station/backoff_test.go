package station

import (
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/csmacd/internal/testutil/simtest"
	"github.com/danmuck/csmacd/internal/testutil/testlog"
)

func TestNextBackoffDelayDeterministicSlots(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	if got := NextBackoffDelay(cfg, 1, &simtest.Rand{}); got != cfg.InterframeGap {
		t.Fatalf("zero slots got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, &simtest.Rand{Ints: []int{5}}); got != cfg.InterframeGap+5*cfg.SlotTime {
		t.Fatalf("five slots got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, simtest.MaxRand{}); got != BackoffBound(cfg, 3) {
		t.Fatalf("max slots got=%v want=%v", got, BackoffBound(cfg, 3))
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != cfg.InterframeGap {
		t.Fatalf("nil rng got=%v", got)
	}
}

func TestBackoffBoundGrowsWithAttempt(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	if got := BackoffBound(cfg, 1); got != cfg.InterframeGap+2*cfg.SlotTime {
		t.Fatalf("attempt1 bound got=%v", got)
	}
	if got := BackoffBound(cfg, 10); got != cfg.InterframeGap+1024*cfg.SlotTime {
		t.Fatalf("attempt10 bound got=%v", got)
	}
	prev := time.Duration(0)
	for attempt := 0; attempt <= 64; attempt++ {
		bound := BackoffBound(cfg, attempt)
		if bound < prev {
			t.Fatalf("bound shrank at attempt=%d: %v < %v", attempt, bound, prev)
		}
		prev = bound
	}
}

func TestNextBackoffDelayWithinBound(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(42))
	for attempt := 1; attempt <= cfg.MaxAttemptCount+1; attempt++ {
		for i := 0; i < 200; i++ {
			d := NextBackoffDelay(cfg, attempt, rng)
			if d < cfg.InterframeGap || d > BackoffBound(cfg, attempt) {
				t.Fatalf("attempt=%d delay %v outside [%v, %v]", attempt, d, cfg.InterframeGap, BackoffBound(cfg, attempt))
			}
			if (d-cfg.InterframeGap)%cfg.SlotTime != 0 {
				t.Fatalf("attempt=%d delay %v is not a whole slot count", attempt, d)
			}
		}
	}
}

func TestBackoffWindowIsCapped(t *testing.T) {
	testlog.Start(t)
	if backoffWindow(1000) != 1<<maxBackoffExponent {
		t.Fatalf("window not capped")
	}
	if backoffWindow(-3) != 1 {
		t.Fatalf("negative attempt should clamp to window 1")
	}
}
