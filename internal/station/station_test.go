package station

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/csmacd/internal/medium"
	"github.com/danmuck/csmacd/internal/testutil/simtest"
	"github.com/danmuck/csmacd/internal/testutil/testlog"
	"github.com/danmuck/csmacd/internal/trace"
)

// jammedMedium always reads idle and always shows a foreign frame.
type jammedMedium struct {
	busyCalls int
	idleCalls int
}

func (m *jammedMedium) IsIdle() bool                 { return true }
func (m *jammedMedium) MarkBusy(string)              { m.busyCalls++ }
func (m *jammedMedium) MarkIdle()                    { m.idleCalls++ }
func (m *jammedMedium) CurrentFrame() (string, bool) { return "noise", true }

func testOptions(clock Clock, rng Rand, tr trace.Tracer) Options {
	return Options{
		Config: Config{
			InterframeGap:   10 * time.Millisecond,
			SlotTime:        time.Millisecond,
			SenseJitter:     100 * time.Millisecond,
			MaxAttemptCount: 4,
		},
		Clock:  clock,
		Rand:   rng,
		Tracer: tr,
	}
}

func TestFrameUsesTemplate(t *testing.T) {
	testlog.Start(t)
	s := New("Apollo0", 0, 1, medium.New(), Options{})
	if got := s.frame(); got != "Station Apollo0. Frame 0.\n" {
		t.Fatalf("unexpected frame: %q", got)
	}
	if s.String() != "Station(Apollo0)" {
		t.Fatalf("unexpected string: %q", s.String())
	}
}

func TestSingleStationDeliversWithoutCollision(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	rec := trace.NewRecorder()
	s := New("Apollo0", 0, 3, m, testOptions(simtest.NewClock(), &simtest.Rand{}, rec))

	res := s.Run()
	if res.Delivered != 3 || res.Target != 3 {
		t.Fatalf("unexpected delivery: %+v", res)
	}
	if res.Reason != ReasonQuotaReached {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
	if res.Collisions != 0 || res.Backoffs != 0 || res.Attempt != 1 || res.Transmits != 3 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if !m.IsIdle() {
		t.Fatalf("medium should be released after success")
	}
	if frame, _ := m.CurrentFrame(); frame != "Station Apollo0. Frame 2.\n" {
		t.Fatalf("unexpected last frame: %q", frame)
	}
	for kind, want := range map[trace.Kind]int{
		trace.KindRunStart:  1,
		trace.KindTransmit:  3,
		trace.KindSuccess:   3,
		trace.KindCollision: 0,
		trace.KindRunEnd:    1,
	} {
		if got := rec.Count("Apollo0", kind); got != want {
			t.Fatalf("kind=%s got=%d want=%d", kind, got, want)
		}
	}
	if s.state != StateTerminated {
		t.Fatalf("unexpected final state: %s", s.state)
	}
}

func TestZeroTargetTerminatesImmediately(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	res := New("Apollo9", 9, 0, m, testOptions(simtest.NewClock(), &simtest.Rand{}, nil)).Run()
	if res.Reason != ReasonQuotaReached || res.Transmits != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, ok := m.CurrentFrame(); ok {
		t.Fatalf("station with no quota must not transmit")
	}
}

func TestOverlappingTransmitsAreDetected(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	a := New("Apollo0", 0, 1, m, testOptions(simtest.NewClock(), &simtest.Rand{}, nil))
	b := New("Apollo1", 1, 2, m, testOptions(simtest.NewClock(), &simtest.Rand{}, nil))

	fa := a.transmit()
	fb := b.transmit()
	if !a.collided(fa) {
		t.Fatalf("earlier writer must see the overlap")
	}
	if b.collided(fb) {
		t.Fatalf("last writer keeps its frame")
	}

	c := New("Apollo2", 2, 3, m, testOptions(simtest.NewClock(), &simtest.Rand{}, nil))
	c.transmit()
	if !a.collided(fa) || !b.collided(fb) {
		t.Fatalf("both overlapped writers must report a collision")
	}
}

func TestUncontendedTransmitDeliversExactlyOne(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	s := New("Apollo0", 0, 5, m, testOptions(simtest.NewClock(), &simtest.Rand{}, nil))
	s.attempt = 3

	frame := s.transmit()
	if m.IsIdle() {
		t.Fatalf("medium should be busy during transmission")
	}
	if s.collided(frame) {
		t.Fatalf("unexpected collision")
	}
	s.succeed()
	if s.delivered != 1 {
		t.Fatalf("unexpected delivered=%d", s.delivered)
	}
	if s.attempt != 1 {
		t.Fatalf("attempt should reset, got %d", s.attempt)
	}
	if !m.IsIdle() {
		t.Fatalf("success must release the medium")
	}
}

func TestJammedMediumExhaustsAttempts(t *testing.T) {
	testlog.Start(t)
	m := &jammedMedium{}
	rec := trace.NewRecorder()
	opts := testOptions(simtest.NewClock(), &simtest.Rand{Ints: []int{1}}, rec)
	res := New("Apollo1", 1, 2, m, opts).Run()

	max := opts.Config.MaxAttemptCount
	if res.Reason != ReasonMaxAttempts {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
	if res.Delivered != 0 {
		t.Fatalf("exhausted frame must not be delivered: %+v", res)
	}
	if res.Attempt != max+1 {
		t.Fatalf("attempt got=%d want=%d", res.Attempt, max+1)
	}
	if res.Collisions != max+1 || res.Backoffs != max || res.Transmits != max+1 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if m.idleCalls != 0 {
		t.Fatalf("exhausted station must not release the medium")
	}
	if rec.Count("Apollo1", trace.KindExhausted) != 1 {
		t.Fatalf("expected one exhaustion event")
	}
	for _, ev := range rec.Events() {
		if ev.Attempt > max+1 {
			t.Fatalf("attempt %d exceeded bound", ev.Attempt)
		}
	}
}

func TestBackoffSleepsMatchAttempts(t *testing.T) {
	testlog.Start(t)
	clock := simtest.NewClock()
	opts := testOptions(clock, simtest.MaxRand{}, nil)
	New("Apollo0", 0, 1, &jammedMedium{}, opts).Run()

	cfg := opts.Config.WithDefaults()
	backoffs := make([]time.Duration, 0)
	for _, d := range clock.Sleeps() {
		if d != cfg.InterframeGap {
			backoffs = append(backoffs, d)
		}
	}
	if len(backoffs) != cfg.MaxAttemptCount {
		t.Fatalf("unexpected backoff sleeps: %v", backoffs)
	}
	for i, d := range backoffs {
		if want := BackoffBound(cfg, i+1); d != want {
			t.Fatalf("backoff %d got=%v want=%v", i+1, d, want)
		}
	}
}

// A collision leaves the medium busy; the station only resumes after some
// other station releases it.
func TestCollidingStationNeverReleasesMedium(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	clock := simtest.NewClock()
	opts := testOptions(clock, &simtest.Rand{Floats: []float64{0.5}, Ints: []int{1}}, nil)
	gap := opts.Config.InterframeGap
	senseSleep := gap + opts.Config.SenseJitter/2

	intruded := false
	busyWhileSensing := false
	clock.OnSleep = func(d time.Duration) {
		switch {
		case d == gap && !intruded:
			intruded = true
			m.MarkBusy("Station Intruder. Frame 0.\n")
		case d == senseSleep:
			busyWhileSensing = !m.IsIdle()
			m.MarkIdle()
		}
	}

	res := New("Apollo0", 0, 1, m, opts).Run()
	if !busyWhileSensing {
		t.Fatalf("medium should still be busy when the colliding station re-senses")
	}
	if res.Delivered != 1 || res.Collisions != 1 || res.Attempt != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExhaustedStationLeavesMediumBusy(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	clock := simtest.NewClock()
	opts := testOptions(clock, &simtest.Rand{Floats: []float64{0.5}, Ints: []int{1}}, nil)
	gap := opts.Config.InterframeGap
	clock.OnSleep = func(d time.Duration) {
		switch d {
		case gap:
			m.MarkBusy("noise")
		case gap + opts.Config.SenseJitter/2:
			m.MarkIdle()
		}
	}

	res := New("Apollo0", 0, 1, m, opts).Run()
	if res.Reason != ReasonMaxAttempts {
		t.Fatalf("unexpected reason: %s", res.Reason)
	}
	if m.IsIdle() {
		t.Fatalf("exhausted station must leave the medium busy")
	}
}

func TestSensingSleepsWithJitter(t *testing.T) {
	testlog.Start(t)
	m := medium.New()
	m.MarkBusy("foreign")
	clock := simtest.NewClock()
	opts := testOptions(clock, &simtest.Rand{Floats: []float64{0.25}}, nil)
	polls := 0
	clock.OnSleep = func(d time.Duration) {
		polls++
		if polls == 3 {
			m.MarkIdle()
		}
	}
	s := New("Apollo0", 0, 1, m, opts)
	s.sense()

	want := opts.Config.InterframeGap + opts.Config.SenseJitter/4
	sleeps := clock.Sleeps()
	if len(sleeps) != 3 {
		t.Fatalf("unexpected poll count: %v", sleeps)
	}
	for _, d := range sleeps {
		if d != want {
			t.Fatalf("sense sleep got=%v want=%v", d, want)
		}
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	testlog.Start(t)
	cfg := Config{}.WithDefaults()
	if cfg != DefaultConfig() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SlotTime != 9600*time.Nanosecond || cfg.MaxAttemptCount != 15 || cfg.InterframeGap != 500*time.Millisecond {
		t.Fatalf("unexpected default constants: %+v", cfg)
	}

	kept := Config{InterframeGap: time.Millisecond, MaxAttemptCount: 3}.WithDefaults()
	if kept.SlotTime != 0 || kept.SenseJitter != 0 {
		t.Fatalf("zero slot time and sense jitter must be kept: %+v", kept)
	}
	if kept.FrameTemplate != DefaultConfig().FrameTemplate {
		t.Fatalf("empty template should default: %q", kept.FrameTemplate)
	}
	if err := kept.Validate(); err != nil {
		t.Fatalf("zero slot and jitter should validate: %v", err)
	}

	cases := []struct {
		mutate func(*Config)
		want   error
	}{
		{func(c *Config) { c.InterframeGap = -1 }, ErrInvalidInterframeGap},
		{func(c *Config) { c.SlotTime = -1 }, ErrInvalidSlotTime},
		{func(c *Config) { c.SenseJitter = -1 }, ErrInvalidSenseJitter},
		{func(c *Config) { c.MaxAttemptCount = -1 }, ErrInvalidMaxAttempts},
		{func(c *Config) { c.FrameTemplate = "frame" }, ErrInvalidFrameTemplate},
	}
	for i, tc := range cases {
		c := DefaultConfig()
		tc.mutate(&c)
		if err := c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d got=%v want=%v", i, err, tc.want)
		}
	}
}

// Real goroutines and wall-clock holds: word-level atomics on the medium
// must still let overlapping transmissions see each other.
func TestConcurrentTransmitsCollideOnRealClock(t *testing.T) {
	testlog.Start(t)
	const rounds = 10
	for round := 0; round < rounds; round++ {
		m := medium.New()
		opts := Options{Config: Config{InterframeGap: 20 * time.Millisecond, MaxAttemptCount: 4}, Clock: SystemClock{}}
		stations := []*Station{
			New("Apollo0", 0, 1, m, opts),
			New("Apollo1", 1, 2, m, opts),
		}

		start := make(chan struct{})
		collided := make([]bool, len(stations))
		frames := make([]string, len(stations))
		var wg sync.WaitGroup
		for i, s := range stations {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				frames[i] = s.transmit()
				collided[i] = s.collided(frames[i])
			}()
		}
		close(start)
		wg.Wait()

		if collided[0] == collided[1] {
			t.Fatalf("round %d: exactly one overlapped writer should collide, got %v", round, collided)
		}
		survivor := frames[0]
		if collided[0] {
			survivor = frames[1]
		}
		if got, _ := m.CurrentFrame(); got != survivor {
			t.Fatalf("round %d: medium holds %q, want last writer %q", round, got, survivor)
		}
		if m.IsIdle() {
			t.Fatalf("round %d: medium should stay busy until a success releases it", round)
		}
	}
}
