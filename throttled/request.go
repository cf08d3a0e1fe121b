package throttled

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Forever makes Response and Failure block until the request is finished.
const Forever time.Duration = -1

var (
	// ErrAlreadyFinished is returned when a finished Request is completed again.
	ErrAlreadyFinished = errors.New("throttled request already finished")
	// ErrNilFailure is returned by SetFailure when given a nil error.
	ErrNilFailure = errors.New("failure must not be nil")
)

// result holds either a response or a failure, never both.
type result[R any] struct {
	resp R
	err  error
}

// Request is the completion handle for a single throttled request.
// P is the prepared request type, R the response type.
type Request[P, R any] struct {
	id       uuid.UUID
	prepared P

	mu   sync.Mutex
	done chan struct{}
	res  result[R]
}

// New returns an unfinished Request wrapping the prepared request.
func New[P, R any](prepared P) *Request[P, R] {
	return &Request[P, R]{
		id:       uuid.New(),
		prepared: prepared,
		done:     make(chan struct{}),
	}
}

// ID uniquely identifies the request for logging and tracing.
func (r *Request[P, R]) ID() uuid.UUID { return r.id }

// Prepared returns the wrapped prepared request.
func (r *Request[P, R]) Prepared() P { return r.prepared }

// Done returns a channel that is closed once the request is finished.
func (r *Request[P, R]) Done() <-chan struct{} { return r.done }

// Finished reports whether a response or failure has been recorded.
func (r *Request[P, R]) Finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// SetResponse finishes the request with a response.
func (r *Request[P, R]) SetResponse(resp R) error {
	return r.complete(result[R]{resp: resp})
}

// SetFailure finishes the request with a failure.
func (r *Request[P, R]) SetFailure(err error) error {
	if err == nil {
		return ErrNilFailure
	}

	return r.complete(result[R]{err: err})
}

// complete records res and wakes every waiter. Only the first call wins.
func (r *Request[P, R]) complete(res result[R]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Finished() {
		return ErrAlreadyFinished
	}

	r.res = res
	close(r.done)

	return nil
}

// Response waits up to timeout for the request to finish. A zero timeout
// polls and Forever blocks. If the request failed, the failure is returned
// as the error. ok is false when the timeout elapsed first.
func (r *Request[P, R]) Response(timeout time.Duration) (resp R, ok bool, err error) {
	if !r.wait(timeout) {
		return resp, false, nil
	}

	if r.res.err != nil {
		return resp, true, r.res.err
	}

	return r.res.resp, true, nil
}

// Failure waits up to timeout like Response, but returns the recorded
// failure as a value. It returns nil when the request succeeded or
// the timeout elapsed; ok distinguishes the two.
func (r *Request[P, R]) Failure(timeout time.Duration) (failure error, ok bool) {
	if !r.wait(timeout) {
		return nil, false
	}

	return r.res.err, true
}

// Wait blocks until the request is finished or ctx ends.
func (r *Request[P, R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-r.done:
		return r.res.resp, r.res.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// wait reports whether the request finished within timeout.
func (r *Request[P, R]) wait(timeout time.Duration) bool {
	switch {
	case timeout < 0:
		<-r.done
		return true
	case timeout == 0:
		return r.Finished()
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-r.done:
		return true
	case <-t.C:
		return r.Finished()
	}
}

func (r *Request[P, R]) String() string {
	if !r.Finished() {
		return fmt.Sprintf("[ThrottledRequest %s <finished=false>]", r.id)
	}
	if r.res.err != nil {
		return fmt.Sprintf("[ThrottledRequest %s <finished=true, failure=%v>]", r.id, r.res.err)
	}

	return fmt.Sprintf("[ThrottledRequest %s <finished=true, response=%v>]", r.id, r.res.resp)
}
