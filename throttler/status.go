package throttler

import (
	"fmt"
	"slices"
)

// Status is the lifecycle state of a Throttler.
type Status int

const (
	StatusInitialized Status = iota
	StatusRunning
	StatusWaiting
	StatusPaused
	StatusStopped
	StatusEnding
	StatusEnded
)

var statusNames = [...]string{
	StatusInitialized: "initialized",
	StatusRunning:     "running",
	StatusWaiting:     "waiting",
	StatusPaused:      "paused",
	StatusStopped:     "stopped",
	StatusEnding:      "ending",
	StatusEnded:       "ended",
}

// transitions lists the statuses reachable from each status.
// Self-transitions are legal everywhere except from StatusEnded.
var transitions = map[Status][]Status{
	StatusInitialized: {StatusInitialized, StatusRunning, StatusStopped},
	StatusRunning:     {StatusRunning, StatusWaiting, StatusPaused, StatusStopped},
	StatusWaiting:     {StatusWaiting, StatusRunning, StatusPaused, StatusStopped},
	StatusPaused:      {StatusPaused, StatusRunning, StatusWaiting, StatusStopped},
	StatusStopped:     {StatusStopped, StatusEnding},
	StatusEnding:      {StatusEnding, StatusEnded},
	StatusEnded:       {},
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusInitialized && s <= StatusEnded
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Active reports whether requests may be submitted in this status.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusWaiting || s == StatusPaused
}

// Shutdown reports whether shutdown has already been requested.
func (s Status) Shutdown() bool {
	return s == StatusStopped || s == StatusEnding || s == StatusEnded
}

// ParseStatus returns the Status with the given name.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return Status(s), nil
		}
	}

	return 0, fmt.Errorf("parsing %q: %w", name, ErrInvalidStatus)
}
