// Package countdown computes the time left until the wedding and republishes
// it once per second while someone is watching.
package countdown

import (
	"context"
	"time"
)

// Breakdown is the floor of the remaining duration split into calendar units.
// Once the target has passed every unit is zero and Done is set.
type Breakdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Done    bool  `json:"done"`
}

const day = 24 * time.Hour

// Remaining returns the breakdown between now and target, clamped to zero.
func Remaining(target, now time.Time) Breakdown {
	d := target.Sub(now)
	if d <= 0 {
		return Breakdown{Done: true}
	}
	d = d.Truncate(time.Second)
	return Breakdown{
		Days:    int64(d / day),
		Hours:   int64(d % day / time.Hour),
		Minutes: int64(d % time.Hour / time.Minute),
		Seconds: int64(d % time.Minute / time.Second),
	}
}

// Timer recomputes the breakdown for a fixed target on a fixed cadence.
type Timer struct {
	target   time.Time
	interval time.Duration
	now      func() time.Time
}

// NewTimer creates a timer ticking every second.
func NewTimer(target time.Time) *Timer {
	return &Timer{
		target:   target,
		interval: time.Second,
		now:      time.Now,
	}
}

// Target returns the instant the timer counts down to.
func (t *Timer) Target() time.Time {
	return t.target
}

// Now returns the current breakdown.
func (t *Timer) Now() Breakdown {
	return Remaining(t.target, t.now())
}

// Run publishes the current breakdown immediately and then on every tick
// until ctx is done. The returned channel is closed when Run stops, and the
// underlying ticker is released.
func (t *Timer) Run(ctx context.Context) <-chan Breakdown {
	out := make(chan Breakdown, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		out <- t.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- t.Now():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
