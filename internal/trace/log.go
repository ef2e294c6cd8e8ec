package trace

import (
	"github.com/rs/zerolog"
)

// LogTracer writes one structured line per event.
type LogTracer struct {
	logger zerolog.Logger
}

func NewLogTracer(logger zerolog.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func (t *LogTracer) LogEvent(ev Event) {
	var e *zerolog.Event
	switch ev.Kind {
	case KindExhausted:
		e = t.logger.Warn()
	case KindCollision, KindBackoff, KindTransmit:
		e = t.logger.Debug()
	default:
		e = t.logger.Info()
	}
	if ev.StationID != "" {
		e = e.Str("station", ev.StationID).Int("delivered", ev.Delivered)
	}
	if ev.Attempt > 0 {
		e = e.Int("attempt", ev.Attempt)
	}
	if ev.Backoff > 0 {
		e = e.Dur("backoff", ev.Backoff)
	}
	e.Str("kind", string(ev.Kind)).
		Float64("timestamp", float64(ev.Timestamp.UnixNano())/1e9).
		Msg(ev.Message)
}
