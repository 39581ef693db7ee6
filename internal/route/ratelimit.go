package route

import "time"

// tokenBucket is the global packets-per-second budget. It starts empty and
// refills continuously at rate tokens/second, capped at one emit
// interval's worth (but never below one token), so a cold start or an
// idle stretch cannot bank a burst that busts the per-second bound.
//
// The bucket is used by the emitter task only and needs no locking.
type tokenBucket struct {
	tokens float64
	cap    float64
	rate   float64 // tokens per second
	last   time.Time
}

func newTokenBucket(rate float64, interval time.Duration) *tokenBucket {
	c := rate * interval.Seconds()
	if c > rate {
		c = rate
	}
	if c < 1 {
		c = 1
	}
	return &tokenBucket{cap: c, rate: rate}
}

// take consumes one token if available, refilling for elapsed time first.
func (b *tokenBucket) take(now time.Time) bool {
	if !b.last.IsZero() {
		b.tokens += now.Sub(b.last).Seconds() * b.rate
		if b.tokens > b.cap {
			b.tokens = b.cap
		}
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
