package station

import (
	"fmt"
	"time"

	"github.com/danmuck/csmacd/internal/trace"
	"github.com/rs/zerolog/log"
)

// Medium is the channel view a station needs. *medium.Medium implements it.
type Medium interface {
	IsIdle() bool
	MarkBusy(frame string)
	MarkIdle()
	CurrentFrame() (string, bool)
}

type State string

const (
	StateSensing      State = "sensing"
	StateTransmitting State = "transmitting"
	StateVerifying    State = "verifying"
	StateBackingOff   State = "backing_off"
	StateTerminated   State = "terminated"
)

// Reason tells why a station stopped.
type Reason string

const (
	ReasonQuotaReached Reason = "quota-reached"
	ReasonMaxAttempts  Reason = "max-attempts-exceeded"
)

// Options carries the injected dependencies of a station. Zero fields get defaults.
type Options struct {
	Config Config
	Clock  Clock
	Rand   Rand
	Tracer trace.Tracer
}

// Result is the final bookkeeping of a terminated station.
type Result struct {
	ID          string        `json:"id" yaml:"id"`
	Index       int           `json:"index" yaml:"index"`
	Target      int           `json:"target" yaml:"target"`
	Delivered   int           `json:"delivered" yaml:"delivered"`
	Reason      Reason        `json:"reason" yaml:"reason"`
	Attempt     int           `json:"attempt" yaml:"attempt"`
	Transmits   int           `json:"transmits" yaml:"transmits"`
	Collisions  int           `json:"collisions" yaml:"collisions"`
	Backoffs    int           `json:"backoffs" yaml:"backoffs"`
	BackoffTime time.Duration `json:"backoff_time" yaml:"backoff_time"`
}

// Station is one contending participant. Run owns every mutable field; the
// accessors are only meaningful once Run has returned.
type Station struct {
	id     string
	index  int
	target int

	cfg    Config
	medium Medium
	clock  Clock
	rng    Rand
	tracer trace.Tracer

	state       State
	delivered   int
	attempt     int
	transmits   int
	collisions  int
	backoffs    int
	backoffTime time.Duration
	reason      Reason
}

func New(id string, index, target int, m Medium, opts Options) *Station {
	cfg := opts.Config.WithDefaults()
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(time.Now().UnixNano() + int64(index))
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop{}
	}
	return &Station{
		id:      id,
		index:   index,
		target:  target,
		cfg:     cfg,
		medium:  m,
		clock:   clock,
		rng:     rng,
		tracer:  tracer,
		state:   StateSensing,
		attempt: 1,
	}
}

func (s *Station) ID() string { return s.id }

func (s *Station) String() string { return fmt.Sprintf("Station(%s)", s.id) }

// Run drives the station until its quota is delivered or its attempts are exhausted.
func (s *Station) Run() Result {
	s.emit(trace.KindRunStart, "Running started")
	for s.delivered < s.target {
		s.sense()
		frame := s.transmit()
		if !s.collided(frame) {
			s.succeed()
			continue
		}

		s.collisions++
		s.emit(trace.KindCollision, fmt.Sprintf("Collision detected. Attempt %d", s.attempt))
		if s.attempt > s.cfg.MaxAttemptCount {
			s.reason = ReasonMaxAttempts
			s.emit(trace.KindExhausted, "Max unsuccessful attempt count reached. Stop.")
			break
		}
		s.backoff()
	}
	if s.reason == "" {
		s.reason = ReasonQuotaReached
	}
	s.state = StateTerminated
	s.emit(trace.KindRunEnd, "Running ended")
	log.Debug().Msgf("station.Run done station=%q reason=%s delivered=%d/%d collisions=%d",
		s.id, s.reason, s.delivered, s.target, s.collisions)
	return s.Result()
}

func (s *Station) Result() Result {
	return Result{
		ID:          s.id,
		Index:       s.index,
		Target:      s.target,
		Delivered:   s.delivered,
		Reason:      s.reason,
		Attempt:     s.attempt,
		Transmits:   s.transmits,
		Collisions:  s.collisions,
		Backoffs:    s.backoffs,
		BackoffTime: s.backoffTime,
	}
}

// sense polls the carrier until it reads idle.
func (s *Station) sense() {
	s.state = StateSensing
	for !s.medium.IsIdle() {
		jitter := time.Duration(s.rng.Float64() * float64(s.cfg.SenseJitter))
		s.clock.Sleep(s.cfg.InterframeGap + jitter)
	}
}

// transmit places the next frame and holds the channel for one interframe gap.
func (s *Station) transmit() string {
	s.state = StateTransmitting
	s.transmits++
	s.emit(trace.KindTransmit, fmt.Sprintf("Starting transmission. Attempt %d", s.attempt))
	frame := s.frame()
	s.medium.MarkBusy(frame)
	s.clock.Sleep(s.cfg.InterframeGap)
	return frame
}

// collided reports whether another station overwrote frame during the hold.
func (s *Station) collided(frame string) bool {
	s.state = StateVerifying
	current, _ := s.medium.CurrentFrame()
	return current != frame
}

func (s *Station) succeed() {
	s.delivered++
	s.attempt = 1
	s.medium.MarkIdle()
	s.emit(trace.KindSuccess, "Transmission successful")
}

// backoff waits a randomized period and moves to the next attempt. The medium
// stays marked busy.
func (s *Station) backoff() {
	s.state = StateBackingOff
	d := NextBackoffDelay(s.cfg, s.attempt, s.rng)
	s.backoffs++
	s.backoffTime += d
	s.emitBackoff(d)
	s.clock.Sleep(d)
	s.attempt++
}

func (s *Station) frame() string {
	return fmt.Sprintf(s.cfg.FrameTemplate, s.id, s.delivered)
}

func (s *Station) emit(kind trace.Kind, msg string) {
	s.tracer.LogEvent(trace.Event{
		Kind:      kind,
		StationID: s.id,
		Message:   msg,
		Delivered: s.delivered,
		Attempt:   s.attempt,
		Timestamp: s.clock.Now(),
	})
}

func (s *Station) emitBackoff(d time.Duration) {
	s.tracer.LogEvent(trace.Event{
		Kind:      trace.KindBackoff,
		StationID: s.id,
		Message:   fmt.Sprintf("Waiting for backoff period: %s. Attempt %d", d, s.attempt),
		Delivered: s.delivered,
		Attempt:   s.attempt,
		Backoff:   d,
		Timestamp: s.clock.Now(),
	})
}
