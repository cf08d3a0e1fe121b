package timer

import (
	"errors"
	"testing"
	"time"
)

// fakeClock returns a controllable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTimer_NoCheckpoint(t *testing.T) {
	tm := New()

	if _, ok := tm.Checkpoint(); ok {
		t.Fatal("exp no checkpoint on a fresh timer")
	}

	if _, err := tm.Elapsed(); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("exp err %v; got: %v", ErrNoCheckpoint, err)
	}

	if _, err := tm.ElapsedAndMark(); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("exp err %v; got: %v", ErrNoCheckpoint, err)
	}
}

func TestTimer_Elapsed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tm := New(WithClock(clock.Now))

	if got := tm.Start(); !got.Equal(clock.now) {
		t.Errorf("exp start %v; got: %v", clock.now, got)
	}

	tm.Mark()
	clock.advance(3 * time.Second)

	elapsed, err := tm.Elapsed()
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if elapsed != 3*time.Second {
		t.Errorf("exp 3s elapsed; got: %v", elapsed)
	}

	// Elapsed must not move the checkpoint.
	clock.advance(time.Second)
	elapsed, _ = tm.Elapsed()
	if elapsed != 4*time.Second {
		t.Errorf("exp 4s elapsed; got: %v", elapsed)
	}

	if got := tm.TotalElapsed(); got != 4*time.Second {
		t.Errorf("exp 4s total; got: %v", got)
	}
}

func TestTimer_ElapsedAndMark(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tm := New(WithClock(clock.Now), WithCheckpoint(clock.now))

	clock.advance(2 * time.Second)

	elapsed, err := tm.ElapsedAndMark()
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if elapsed != 2*time.Second {
		t.Errorf("exp 2s elapsed; got: %v", elapsed)
	}

	checkpoint, ok := tm.Checkpoint()
	if !ok || !checkpoint.Equal(clock.now) {
		t.Errorf("exp checkpoint moved to %v; got: %v (set=%t)", clock.now, checkpoint, ok)
	}

	elapsed, _ = tm.Elapsed()
	if elapsed != 0 {
		t.Errorf("exp 0 elapsed after mark; got: %v", elapsed)
	}
}

func TestTimer_WithStartAndSetCheckpoint(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start.Add(time.Minute)}
	tm := New(WithClock(clock.Now), WithStart(start))

	if got := tm.TotalElapsed(); got != time.Minute {
		t.Errorf("exp 1m total; got: %v", got)
	}

	tm.SetCheckpoint(start.Add(30 * time.Second))
	elapsed, err := tm.Elapsed()
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if elapsed != 30*time.Second {
		t.Errorf("exp 30s elapsed; got: %v", elapsed)
	}
}
