package simulation

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/danmuck/csmacd/internal/medium"
	"github.com/danmuck/csmacd/internal/station"
	"github.com/danmuck/csmacd/internal/trace"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var (
	ErrInvalidStationCount = errors.New("simulation: station count must be at least 1")
	ErrInvalidConfig       = errors.New("simulation: invalid station config")
)

const DefaultStationPrefix = "Apollo"

// Config configures every session a Runner starts.
type Config struct {
	Station       station.Config
	StationPrefix string
	// Seed derives per-station random sources; zero seeds from the wall clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Station:       station.DefaultConfig(),
		StationPrefix: DefaultStationPrefix,
	}
}

// Options carries the runner's injected dependencies. Zero fields get defaults.
type Options struct {
	Config Config
	Clock  station.Clock
	Tracer trace.Tracer
	// NewRand builds the random source of station index; each call must
	// return an unshared instance.
	NewRand func(index int) station.Rand
}

type Runner struct {
	cfg     Config
	clock   station.Clock
	tracer  trace.Tracer
	newRand func(index int) station.Rand
	seq     atomic.Uint64
}

func NewRunner(opts Options) *Runner {
	cfg := opts.Config
	cfg.Station = cfg.Station.WithDefaults()
	if strings.TrimSpace(cfg.StationPrefix) == "" {
		cfg.StationPrefix = DefaultStationPrefix
	}
	clock := opts.Clock
	if clock == nil {
		clock = station.SystemClock{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop{}
	}
	r := &Runner{
		cfg:     cfg,
		clock:   clock,
		tracer:  tracer,
		newRand: opts.NewRand,
	}
	if r.newRand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		r.newRand = func(index int) station.Rand {
			return station.NewRand(seed + int64(index))
		}
	}
	return r
}

func (r *Runner) Config() Config {
	return r.cfg
}

// StationID names station index.
func (r *Runner) StationID(index int) string {
	return fmt.Sprintf("%s%d", r.cfg.StationPrefix, index)
}

// Run plays one session of stationCount stations on a fresh medium.
func (r *Runner) Run(stationCount int) (Result, error) {
	return r.RunOn(medium.New(), stationCount)
}

// RunOn plays one session on m. Station i must deliver i+1 frames. It blocks
// until every station has terminated.
func (r *Runner) RunOn(m *medium.Medium, stationCount int) (Result, error) {
	if stationCount < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidStationCount, stationCount)
	}
	if err := r.cfg.Station.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	id := fmt.Sprintf("session-%d", r.seq.Add(1))
	stations := make([]*station.Station, stationCount)
	for i := range stations {
		stations[i] = station.New(r.StationID(i), i, i+1, m, station.Options{
			Config: r.cfg.Station,
			Clock:  r.clock,
			Rand:   r.newRand(i),
			Tracer: r.tracer,
		})
	}

	started := r.clock.Now()
	log.Info().Msgf("simulation.Runner.Run start session=%s stations=%d", id, stationCount)
	r.tracer.LogEvent(trace.Event{Kind: trace.KindSessionStart, Message: "Starting session", Timestamp: started})

	results := make([]station.Result, stationCount)
	var wg conc.WaitGroup
	for i, s := range stations {
		wg.Go(func() {
			results[i] = s.Run()
		})
	}
	wg.Wait()

	ended := r.clock.Now()
	r.tracer.LogEvent(trace.Event{Kind: trace.KindSessionEnd, Message: "Session ended", Timestamp: ended})

	res := Result{
		ID:        id,
		Stations:  results,
		StartedAt: started,
		EndedAt:   ended,
		Elapsed:   ended.Sub(started),
	}
	totals := res.Totals()
	log.Info().Msgf(
		"simulation.Runner.Run done session=%s delivered=%d/%d collisions=%d exhausted=%d elapsed=%s",
		id,
		totals.Delivered,
		totals.Target,
		totals.Collisions,
		totals.Exhausted,
		res.Elapsed,
	)
	return res, nil
}
