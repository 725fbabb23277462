package scanner

import "time"

// throttle lets an event through at most once per interval.
type throttle struct {
	every time.Duration
	last  time.Time
}

func newThrottle(every time.Duration, start time.Time) throttle {
	if every == 0 {
		every = DefaultProgressInterval
	}
	return throttle{every: every, last: start}
}

func (t *throttle) ready(now time.Time) bool {
	if t.every < 0 || now.Sub(t.last) < t.every {
		return false
	}
	t.last = now
	return true
}
