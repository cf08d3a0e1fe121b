package timer

import (
	"errors"
	"sync"
	"time"
)

// ErrNoCheckpoint is returned when elapsed time is requested
// before any checkpoint has been set.
var ErrNoCheckpoint = errors.New("no checkpoint has been set")

// Option defines optional settings for a Timer.
type Option func(*options)

type options struct {
	clock      func() time.Time
	start      *time.Time
	checkpoint *time.Time
}

// WithClock replaces time.Now as the timer's time source.
func WithClock(clock func() time.Time) Option {
	return func(opts *options) {
		opts.clock = clock
	}
}

// WithStart sets the timer's start instant. Defaults to now.
func WithStart(start time.Time) Option {
	return func(opts *options) {
		opts.start = &start
	}
}

// WithCheckpoint sets an initial checkpoint.
func WithCheckpoint(checkpoint time.Time) Option {
	return func(opts *options) {
		opts.checkpoint = &checkpoint
	}
}

// Timer tracks a start instant and a mutable checkpoint.
// It is safe for concurrent use.
type Timer struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	checkpoint time.Time
	hasCheck   bool
}

// New creates a Timer started now unless overridden via options.
func New(optFns ...Option) *Timer {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.clock == nil {
		opts.clock = time.Now
	}

	t := &Timer{now: opts.clock}

	if opts.start != nil {
		t.start = *opts.start
	} else {
		t.start = t.now()
	}

	if opts.checkpoint != nil {
		t.checkpoint = *opts.checkpoint
		t.hasCheck = true
	}

	return t
}

// Start returns the instant the timer was started.
func (t *Timer) Start() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.start
}

// Checkpoint returns the current checkpoint and whether one is set.
func (t *Timer) Checkpoint() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.checkpoint, t.hasCheck
}

// SetCheckpoint moves the checkpoint to the given instant.
func (t *Timer) SetCheckpoint(checkpoint time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkpoint = checkpoint
	t.hasCheck = true
}

// Mark moves the checkpoint to now.
func (t *Timer) Mark() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkpoint = t.now()
	t.hasCheck = true
}

// TotalElapsed returns the time elapsed since the timer's start.
func (t *Timer) TotalElapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.now().Sub(t.start)
}

// Elapsed returns the time elapsed since the last checkpoint.
func (t *Timer) Elapsed() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasCheck {
		return 0, ErrNoCheckpoint
	}

	return t.now().Sub(t.checkpoint), nil
}

// ElapsedAndMark returns the time elapsed since the last checkpoint
// and moves the checkpoint to now in one step.
func (t *Timer) ElapsedAndMark() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasCheck {
		return 0, ErrNoCheckpoint
	}

	now := t.now()
	elapsed := now.Sub(t.checkpoint)
	t.checkpoint = now

	return elapsed, nil
}
