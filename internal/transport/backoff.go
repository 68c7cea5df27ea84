package transport

import (
	"math/rand"
	"time"
)

// Backoff produces exponentially growing reconnect delays with random jitter,
// capped at a maximum. Not safe for concurrent use.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	current  time.Duration
	attempts int
}

// NewBackoff constructs a backoff schedule. Out-of-range parameters fall back
// to sane values rather than failing.
func NewBackoff(base, max time.Duration, multiplier, jitter float64) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	if multiplier < 1 {
		multiplier = 2
	}
	if jitter < 0 || jitter >= 1 {
		jitter = 0
	}

	return &Backoff{
		base:       base,
		max:        max,
		multiplier: multiplier,
		jitter:     jitter,
		current:    base,
	}
}

// Next returns the delay to wait before the upcoming attempt and advances the
// schedule. Jitter spreads the result over current*(1±jitter).
func (b *Backoff) Next() time.Duration {
	b.attempts++

	delay := min(b.current, b.max)
	if b.jitter > 0 {
		spread := 1 - b.jitter + rand.Float64()*2*b.jitter
		delay = time.Duration(float64(delay) * spread)
	}

	b.current = time.Duration(float64(b.current) * b.multiplier)
	if b.current > b.max {
		b.current = b.max
	}

	return delay
}

// Reset restores the schedule to the base delay and clears the attempt count.
func (b *Backoff) Reset() {
	b.current = b.base
	b.attempts = 0
}

// Attempts reports how many delays were handed out since the last reset.
func (b *Backoff) Attempts() int {
	return b.attempts
}
