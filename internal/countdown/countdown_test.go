package countdown

import (
	"context"
	"testing"
	"time"
)

func TestRemaining(t *testing.T) {
	target := time.Date(2026, time.May, 2, 16, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want Breakdown
	}{
		{
			name: "days ahead",
			now:  target.Add(-(3*day + 4*time.Hour + 5*time.Minute + 6*time.Second)),
			want: Breakdown{Days: 3, Hours: 4, Minutes: 5, Seconds: 6},
		},
		{
			name: "sub second floors",
			now:  target.Add(-1500 * time.Millisecond),
			want: Breakdown{Seconds: 1},
		},
		{
			name: "exactly at target",
			now:  target,
			want: Breakdown{Done: true},
		},
		{
			name: "past target clamps",
			now:  target.Add(48 * time.Hour),
			want: Breakdown{Done: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(target, tt.now); got != tt.want {
				t.Fatalf("Remaining = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTimerRunStopsOnCancel(t *testing.T) {
	target := time.Date(2026, time.May, 2, 16, 0, 0, 0, time.UTC)
	now := target.Add(-10 * time.Second)
	timer := &Timer{
		target:   target,
		interval: time.Millisecond,
		now:      func() time.Time { return now },
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticks := timer.Run(ctx)

	first := <-ticks
	if first.Seconds != 10 {
		t.Fatalf("first tick = %+v, want 10 seconds", first)
	}
	<-ticks
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timer did not stop after cancel")
		}
	}
}
