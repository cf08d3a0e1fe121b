package throttler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/reqthrottle/throttled"
	"github.com/adamwoolhether/reqthrottle/timer"
)

const tracerName = "github.com/adamwoolhether/reqthrottle/throttler"

// Throttler dispatches submitted requests to its Transport one at a time,
// leaving at least Delay between the start of consecutive sends.
type Throttler[Req, Prep, Resp any] struct {
	name      string
	delay     time.Duration
	transport Transport[Req, Prep, Resp]
	logger    *slog.Logger
	tracer    trace.Tracer
	timer     *timer.Timer
	queue     *queue[*throttled.Request[Prep, Resp]]

	// mu guards status and the counters.
	mu        sync.Mutex
	cond      *sync.Cond
	status    Status
	successes int
	failures  int
	abandoned int

	ctx       context.Context
	abort     chan struct{}
	abortOnce sync.Once
	ended     chan struct{}
}

// New creates a Throttler in StatusInitialized. Without a delay option
// requests are dispatched back to back.
func New[Req, Prep, Resp any](name string, transport Transport[Req, Prep, Resp], optFns ...Option) (*Throttler[Req, Prep, Resp], error) {
	if name == "" {
		return nil, fmt.Errorf("name must not be empty: %w", ErrInvalidConfig)
	}
	if transport == nil {
		return nil, fmt.Errorf("transport must not be nil: %w", ErrInvalidConfig)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying throttler option: %w", err)
		}
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.tracerProvider == nil {
		opts.tracerProvider = noop.NewTracerProvider()
	}

	t := &Throttler[Req, Prep, Resp]{
		name:      name,
		delay:     opts.resolveDelay(),
		transport: transport,
		logger:    opts.logger.With("throttler", name),
		tracer:    opts.tracerProvider.Tracer(tracerName),
		timer:     timer.New(),
		queue:     newQueue[*throttled.Request[Prep, Resp]](opts.maxQueueSize),
		status:    StatusInitialized,
		ctx:       context.Background(),
		abort:     make(chan struct{}),
		ended:     make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)

	return t, nil
}

func (t *Throttler[Req, Prep, Resp]) Name() string { return t.name }

func (t *Throttler[Req, Prep, Resp]) Delay() time.Duration { return t.delay }

// Status returns the current lifecycle status.
func (t *Throttler[Req, Prep, Resp]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.status
}

// Successes returns the number of requests that received a response.
func (t *Throttler[Req, Prep, Resp]) Successes() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.successes
}

// Failures returns the number of requests that failed to prepare,
// were rejected by the queue, or failed to send.
func (t *Throttler[Req, Prep, Resp]) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.failures
}

// Abandoned returns the number of queued requests dropped by a
// shutdown without drain.
func (t *Throttler[Req, Prep, Resp]) Abandoned() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.abandoned
}

// QueueLen returns the number of requests waiting to be dispatched.
func (t *Throttler[Req, Prep, Resp]) QueueLen() int {
	return t.queue.len()
}

func (t *Throttler[Req, Prep, Resp]) String() string {
	return fmt.Sprintf("[Throttler <%s, %v, %s>]", t.name, t.delay, t.Status())
}

// Start launches the dispatch worker. ctx is passed to every Send.
func (t *Throttler[Req, Prep, Resp]) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusInitialized {
		return &StatusError{Op: "start", Status: t.status, Err: ErrInvalidStatus}
	}
	if err := t.setStatusLocked(StatusRunning); err != nil {
		return err
	}

	t.ctx = ctx
	t.logger.Info("starting throttler", "delay", t.delay.String())
	go t.run()

	return nil
}

// Pause stops dispatching until Unpause. Submissions are still accepted.
func (t *Throttler[Req, Prep, Resp]) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusRunning && t.status != StatusWaiting {
		return &StatusError{Op: "pause", Status: t.status, Err: ErrInvalidStatus}
	}

	return t.setStatusLocked(StatusPaused)
}

// Unpause resumes dispatching after Pause.
func (t *Throttler[Req, Prep, Resp]) Unpause() error {
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()

	if err := t.unpause(); err != nil {
		return err
	}
	t.queue.notEmpty.Broadcast()

	return nil
}

func (t *Throttler[Req, Prep, Resp]) unpause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusPaused {
		return &StatusError{Op: "unpause", Status: t.status, Err: ErrInvalidStatus}
	}

	return t.setStatusLocked(StatusRunning)
}

// Shutdown asks the worker to stop and returns without waiting for it.
// With drain, requests already queued are still dispatched; without,
// they are finished with ErrAbandoned and never sent.
func (t *Throttler[Req, Prep, Resp]) Shutdown(drain bool) error {
	prev, err := t.stop(drain)
	if err != nil {
		return err
	}

	t.logger.Info("shutting down throttler", "drain", drain)

	if !drain {
		t.abortOnce.Do(func() { close(t.abort) })
	}
	if prev == StatusInitialized {
		t.end()
	}

	return nil
}

// stop records the drain flag and moves to StatusStopped in one step
// under the queue mutex, so the worker never observes one without the other.
func (t *Throttler[Req, Prep, Resp]) stop(drain bool) (Status, error) {
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()

	t.mu.Lock()
	prev := t.status
	if prev.Shutdown() {
		t.mu.Unlock()
		return prev, &StatusError{Op: "shutdown", Status: prev, Err: ErrInvalidStatus}
	}
	t.queue.drain = drain
	err := t.setStatusLocked(StatusStopped)
	t.mu.Unlock()

	if err != nil {
		return prev, err
	}
	t.queue.notEmpty.Broadcast()

	return prev, nil
}

// WaitForEnd blocks until the throttler reaches StatusEnded or ctx ends.
func (t *Throttler[Req, Prep, Resp]) WaitForEnd(ctx context.Context) error {
	select {
	case <-t.ended:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the throttler, calls fn, and shuts the throttler down with
// drain on every exit path. It does not wait for the queue to empty.
func (t *Throttler[Req, Prep, Resp]) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := t.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if serr := t.Shutdown(true); serr != nil && !errors.Is(serr, ErrInvalidStatus) {
			err = errors.Join(err, serr)
		}
	}()

	return fn(ctx)
}

// Submit prepares req and enqueues it for dispatch. It never blocks.
// Preparation and backpressure failures are recorded on the returned
// handle; only lifecycle errors are returned directly.
func (t *Throttler[Req, Prep, Resp]) Submit(ctx context.Context, req Req) (*throttled.Request[Prep, Resp], error) {
	if s := t.Status(); !s.Active() {
		return nil, &StatusError{Op: "submit", Status: s, Err: ErrInvalidStatus}
	}

	prep, err := t.transport.Prepare(ctx, req)
	if err != nil {
		var zero Prep
		r := throttled.New[Prep, Resp](zero)
		t.fail(r, &PrepareError{Err: err})
		t.logger.Warn("unable to prepare request", "id", r.ID(), "error", err)
		return r, nil
	}

	r := throttled.New[Prep, Resp](prep)
	if err := t.queue.push(r); err != nil {
		if errors.Is(err, ErrAbandoned) {
			t.abandon(r)
		} else {
			t.fail(r, err)
		}
		t.logger.Warn("unable to enqueue request", "id", r.ID(), "error", err)
		return r, nil
	}
	t.logger.Debug("request enqueued", "id", r.ID())

	return r, nil
}

// SubmitMany submits each request in order. On a lifecycle error it
// returns the handles created so far along with the error.
func (t *Throttler[Req, Prep, Resp]) SubmitMany(ctx context.Context, reqs []Req) ([]*throttled.Request[Prep, Resp], error) {
	handles := make([]*throttled.Request[Prep, Resp], 0, len(reqs))
	for _, req := range reqs {
		r, err := t.Submit(ctx, req)
		if err != nil {
			return handles, err
		}
		handles = append(handles, r)
	}

	return handles, nil
}

// setStatusLocked moves to next and wakes status waiters. t.mu must be held.
func (t *Throttler[Req, Prep, Resp]) setStatusLocked(next Status) error {
	if !next.Valid() {
		return &StatusError{Op: "set status", Status: next, Err: ErrInvalidStatus}
	}
	if !t.status.CanTransition(next) {
		return &TransitionError{From: t.status, To: next}
	}

	if t.status != next {
		t.logger.Debug("status changing", "from", t.status.String(), "to", next.String())
	}
	t.status = next
	t.cond.Broadcast()

	return nil
}

func (t *Throttler[Req, Prep, Resp]) setStatus(next Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.setStatusLocked(next)
}

// fail finishes r with err and counts it as a failure. The counter moves
// first so that anyone observing the finished handle also sees the count.
func (t *Throttler[Req, Prep, Resp]) fail(r *throttled.Request[Prep, Resp], err error) {
	t.count(&t.failures, 1)
	if serr := r.SetFailure(err); serr != nil {
		t.count(&t.failures, -1)
		t.logger.Error("recording failure", "id", r.ID(), "error", serr)
	}
}

func (t *Throttler[Req, Prep, Resp]) succeed(r *throttled.Request[Prep, Resp], resp Resp) {
	t.count(&t.successes, 1)
	if err := r.SetResponse(resp); err != nil {
		t.count(&t.successes, -1)
		t.logger.Error("recording response", "id", r.ID(), "error", err)
	}
}

// abandon finishes r with ErrAbandoned and counts it apart from failures.
func (t *Throttler[Req, Prep, Resp]) abandon(r *throttled.Request[Prep, Resp]) bool {
	t.count(&t.abandoned, 1)
	if err := r.SetFailure(ErrAbandoned); err != nil {
		t.count(&t.abandoned, -1)
		return false
	}
	return true
}

func (t *Throttler[Req, Prep, Resp]) count(counter *int, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	*counter += delta
}
