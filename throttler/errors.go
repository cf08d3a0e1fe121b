package throttler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New for bad constructor arguments.
	ErrInvalidConfig = errors.New("invalid throttler config")
	// ErrInvalidStatus is the sentinel wrapped by [StatusError].
	ErrInvalidStatus = errors.New("invalid throttler status")
	// ErrInvalidTransition is the sentinel wrapped by [TransitionError].
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrFullQueue is the sentinel wrapped by [FullQueueError].
	ErrFullQueue = errors.New("request queue is full")
	// ErrAbandoned finishes requests that were still queued when the
	// throttler shut down without draining.
	ErrAbandoned = errors.New("request abandoned by throttler shutdown")
)

// StatusError is returned when an operation is illegal in the
// throttler's current status.
type StatusError struct {
	Op     string
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v (current status: %s)", e.Op, e.Err, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when a status change is not permitted.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v (%s ---> %s)", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// FullQueueError is the backpressure rejection for a submission
// made while the queue is at capacity.
type FullQueueError struct {
	Capacity int
}

func (e *FullQueueError) Error() string {
	return fmt.Sprintf("%v (queue size: %d)", ErrFullQueue, e.Capacity)
}

func (e *FullQueueError) Unwrap() error {
	return ErrFullQueue
}

// PrepareError carries a transport failure raised while preparing a request.
type PrepareError struct {
	Err error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("preparing request: %v", e.Err)
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

// SendError carries a transport failure raised while sending a request.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sending request: %v", e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
