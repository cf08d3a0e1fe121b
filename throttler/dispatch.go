package throttler

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/reqthrottle/throttled"
	"github.com/adamwoolhether/reqthrottle/timer"
)

// run is the single dispatch worker.
func (t *Throttler[Req, Prep, Resp]) run() {
	t.logger.Info("starting main loop")
	defer t.end()

	for {
		t.waitWhilePaused()

		if !t.aborted() {
			t.throttle()
		}

		r, ok := t.queue.pop(t.decide)
		if !ok {
			break
		}

		// Spacing is measured between dispatch starts, so the checkpoint is
		// taken here rather than after the sleep.
		t.timer.Mark()
		t.send(r)
	}

	t.logger.Info("exited main loop")
}

func (t *Throttler[Req, Prep, Resp]) waitWhilePaused() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusPaused {
		return
	}

	t.logger.Info("pausing")
	for t.status == StatusPaused {
		t.cond.Wait()
	}
	t.logger.Info("unpaused")
}

func (t *Throttler[Req, Prep, Resp]) aborted() bool {
	select {
	case <-t.abort:
		return true
	default:
		return false
	}
}

// throttle sleeps for whatever is left of the delay since the last
// dispatch. A shutdown without drain cuts the sleep short.
func (t *Throttler[Req, Prep, Resp]) throttle() {
	elapsed, err := t.timer.Elapsed()
	if errors.Is(err, timer.ErrNoCheckpoint) {
		return
	}

	remaining := t.delay - elapsed
	if remaining <= 0 {
		return
	}

	t.logger.Debug("start sleeping", "remaining", remaining.String())

	sleep := time.NewTimer(remaining)
	defer sleep.Stop()

	select {
	case <-sleep.C:
	case <-t.abort:
	}
}

// decide evaluates whether the worker may take the queue head.
// It runs under the queue mutex.
func (t *Throttler[Req, Prep, Resp]) decide(pending int, drain bool) decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == StatusStopped {
		_ = t.setStatusLocked(StatusEnding)
		if !drain {
			return decideTerminate
		}
	}

	if t.status == StatusEnding {
		if pending == 0 {
			return decideTerminate
		}
		return decideProceed
	}

	if t.status == StatusPaused {
		return decideWait
	}

	if pending == 0 {
		if t.status != StatusWaiting {
			t.logger.Info("waiting for new requests")
		}
		_ = t.setStatusLocked(StatusWaiting)
		return decideWait
	}

	_ = t.setStatusLocked(StatusRunning)

	return decideProceed
}

// send hands r to the transport. It holds no lock while the transport runs.
func (t *Throttler[Req, Prep, Resp]) send(r *throttled.Request[Prep, Resp]) {
	ctx, span := t.tracer.Start(t.ctx, "throttler.send",
		trace.WithAttributes(
			attribute.String("throttler.name", t.name),
			attribute.String("throttler.request_id", r.ID().String()),
		),
	)
	defer span.End()

	t.logger.Debug("sending request", "id", r.ID())

	resp, err := t.transport.Send(ctx, r.Prepared())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		t.fail(r, &SendError{Err: err})
		t.logger.Warn("unable to send request", "id", r.ID(), "error", err)
		return
	}

	t.succeed(r, resp)
	t.logger.Debug("request sent", "id", r.ID())
}

// end closes the queue, finishes anything left in it with ErrAbandoned
// and moves to StatusEnded.
func (t *Throttler[Req, Prep, Resp]) end() {
	var abandoned int
	for _, r := range t.queue.close() {
		if t.abandon(r) {
			abandoned++
		}
	}
	if abandoned > 0 {
		t.logger.Warn("abandoned queued requests", "count", abandoned)
	}

	t.mu.Lock()
	if t.status == StatusStopped {
		_ = t.setStatusLocked(StatusEnding)
	}
	if err := t.setStatusLocked(StatusEnded); err != nil {
		t.logger.Error("ending throttler", "error", err)
	}
	t.mu.Unlock()

	close(t.ended)
	t.logger.Info("throttler ended")
}
