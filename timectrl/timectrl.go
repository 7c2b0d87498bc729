// Package timectrl provides logical simulation time. A run over a simulated
// interval is computed synchronously: nothing here sleeps unless a caller
// explicitly asks for real-time replay.
package timectrl

import (
	"context"
	"fmt"
	"time"
)

// Mode describes how a timeline is replayed.
type Mode int

const (
	// Accelerated replays events as fast as the loop can run. This is the
	// only mode the simulation core uses: a multi-second simulated run
	// completes in bounded wall-clock time regardless of its duration.
	Accelerated Mode = iota
	// RealTime paces replay by the gaps between event timestamps. Useful
	// for demos from the CLI, never for the engine itself.
	RealTime
)

// Timeline deals out deterministic logical event timestamps spanning the
// simulated interval [0, Duration) at Rate events per simulated second.
type Timeline struct {
	Duration time.Duration
	Rate     float64
}

// NewTimeline validates and constructs a timeline.
func NewTimeline(duration time.Duration, rate float64) (*Timeline, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("timeline duration must be positive, got %s", duration)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("timeline rate must be positive, got %v", rate)
	}
	return &Timeline{Duration: duration, Rate: rate}, nil
}

// EventCount returns the number of events the timeline generates. A valid
// timeline always generates at least one event, even when duration*rate
// rounds below one.
func (tl *Timeline) EventCount() int {
	n := int(tl.Duration.Seconds() * tl.Rate)
	if n < 1 {
		n = 1
	}
	return n
}

// Times returns the logical offsets of every event, evenly spaced across
// [0, Duration). The spacing is deterministic so seeded runs replay the
// same schedule.
func (tl *Timeline) Times() []time.Duration {
	n := tl.EventCount()
	interval := tl.Duration / time.Duration(n)
	times := make([]time.Duration, n)
	for i := 0; i < n; i++ {
		times[i] = time.Duration(i) * interval
	}
	return times
}

// Replay invokes fn for every event offset. In Accelerated mode it runs the
// whole schedule immediately; in RealTime mode it sleeps out the gap before
// each event. Replay stops early when ctx is cancelled.
func Replay(ctx context.Context, times []time.Duration, mode Mode, fn func(i int, at time.Duration)) error {
	prev := time.Duration(0)
	for i, at := range times {
		if mode == RealTime {
			select {
			case <-time.After(at - prev):
			case <-ctx.Done():
				return ctx.Err()
			}
			prev = at
		} else if err := ctx.Err(); err != nil {
			return err
		}
		fn(i, at)
	}
	return nil
}
