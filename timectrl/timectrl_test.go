package timectrl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimelineValidation(t *testing.T) {
	if _, err := NewTimeline(0, 1); err == nil {
		t.Error("zero duration accepted")
	}
	if _, err := NewTimeline(time.Second, 0); err == nil {
		t.Error("zero rate accepted")
	}
	if _, err := NewTimeline(-time.Second, 1); err == nil {
		t.Error("negative duration accepted")
	}
	if _, err := NewTimeline(time.Second, 1); err != nil {
		t.Errorf("valid timeline rejected: %v", err)
	}
}

func TestEventCount(t *testing.T) {
	for _, tc := range []struct {
		duration time.Duration
		rate     float64
		want     int
	}{
		{duration: 10 * time.Second, rate: 2, want: 20},
		{duration: 5 * time.Second, rate: 0.5, want: 2},
		{duration: time.Second, rate: 0.1, want: 1},
		{duration: 500 * time.Millisecond, rate: 1, want: 1},
	} {
		tl, err := NewTimeline(tc.duration, tc.rate)
		if err != nil {
			t.Fatalf("NewTimeline(%v, %v): %v", tc.duration, tc.rate, err)
		}
		if got := tl.EventCount(); got != tc.want {
			t.Errorf("EventCount(%v, %v) = %d, want %d", tc.duration, tc.rate, got, tc.want)
		}
	}
}

func TestTimesSpanInterval(t *testing.T) {
	tl, err := NewTimeline(10*time.Second, 2)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	times := tl.Times()
	if len(times) != 20 {
		t.Fatalf("len(times) = %d, want 20", len(times))
	}
	if times[0] != 0 {
		t.Errorf("first event at %v, want 0", times[0])
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not strictly increasing at %d: %v <= %v", i, times[i], times[i-1])
		}
		if times[i] >= tl.Duration {
			t.Fatalf("event %d at %v, beyond duration %v", i, times[i], tl.Duration)
		}
	}
}

func TestTimesDeterministic(t *testing.T) {
	tl, err := NewTimeline(7*time.Second, 3)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	a, b := tl.Times(), tl.Times()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("schedule diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestReplayAcceleratedDoesNotSleep(t *testing.T) {
	tl, err := NewTimeline(time.Hour, 0.01)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}

	var calls int
	started := time.Now()
	err = Replay(context.Background(), tl.Times(), Accelerated, func(i int, at time.Duration) {
		if i != calls {
			t.Fatalf("event index %d out of order, want %d", i, calls)
		}
		calls++
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if calls != tl.EventCount() {
		t.Errorf("fn called %d times, want %d", calls, tl.EventCount())
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Errorf("accelerated replay of an hour took %v", elapsed)
	}
}

func TestReplayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	err := Replay(ctx, []time.Duration{0, time.Second}, Accelerated, func(int, time.Duration) { calls++ })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times after cancellation, want 0", calls)
	}
}
