package station

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInterframeGap = errors.New("station: interframe gap must be positive")
	ErrInvalidSlotTime      = errors.New("station: slot time must not be negative")
	ErrInvalidSenseJitter   = errors.New("station: sense jitter must not be negative")
	ErrInvalidMaxAttempts   = errors.New("station: max attempt count must be positive")
	ErrInvalidFrameTemplate = errors.New("station: frame template must contain two verbs")
)

// Config holds the timing constants shared by every station in a session.
type Config struct {
	InterframeGap   time.Duration
	SlotTime        time.Duration
	SenseJitter     time.Duration
	MaxAttemptCount int
	FrameTemplate   string
}

func DefaultConfig() Config {
	return Config{
		InterframeGap:   500 * time.Millisecond,
		SlotTime:        9600 * time.Nanosecond,
		SenseJitter:     time.Second,
		MaxAttemptCount: 15,
		FrameTemplate:   "Station %s. Frame %d.\n",
	}
}

// WithDefaults returns DefaultConfig for the zero Config. Otherwise it only
// fills fields whose zero value is invalid; a zero SlotTime or SenseJitter is
// a real setting and is kept.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.InterframeGap == 0 {
		c.InterframeGap = d.InterframeGap
	}
	if c.MaxAttemptCount == 0 {
		c.MaxAttemptCount = d.MaxAttemptCount
	}
	if strings.TrimSpace(c.FrameTemplate) == "" {
		c.FrameTemplate = d.FrameTemplate
	}
	return c
}

func (c Config) Validate() error {
	if c.InterframeGap <= 0 {
		return ErrInvalidInterframeGap
	}
	if c.SlotTime < 0 {
		return ErrInvalidSlotTime
	}
	if c.SenseJitter < 0 {
		return ErrInvalidSenseJitter
	}
	if c.MaxAttemptCount <= 0 {
		return ErrInvalidMaxAttempts
	}
	if strings.Count(c.FrameTemplate, "%") < 2 {
		return ErrInvalidFrameTemplate
	}
	return nil
}
