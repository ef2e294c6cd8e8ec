package station

import "time"

// maxBackoffExponent caps 2^attempt so large attempt limits cannot overflow int.
const maxBackoffExponent = 30

// NextBackoffDelay returns the wait after a collision on attempt N (1-based):
// interframe gap plus a uniform whole number of slots in [0, 2^N].
func NextBackoffDelay(cfg Config, attempt int, rng Rand) time.Duration {
	slots := 0
	if rng != nil {
		slots = rng.Intn(backoffWindow(attempt) + 1)
	}
	return cfg.InterframeGap + time.Duration(slots)*cfg.SlotTime
}

// BackoffBound is the largest delay NextBackoffDelay can return for attempt N.
func BackoffBound(cfg Config, attempt int) time.Duration {
	return cfg.InterframeGap + time.Duration(backoffWindow(attempt))*cfg.SlotTime
}

func backoffWindow(attempt int) int {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffExponent {
		attempt = maxBackoffExponent
	}
	return 1 << attempt
}
