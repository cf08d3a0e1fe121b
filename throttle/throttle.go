package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/adamwoolhether/reqthrottle/throttled"
	"github.com/adamwoolhether/reqthrottle/throttler"
)

type dispatcher = throttler.Throttler[*http.Request, *http.Request, *http.Response]

// RoundTripper is an http.RoundTripper that queues outbound calls on a
// throttler, releasing them to the next RoundTripper one at a time at
// the configured rate.
type RoundTripper struct {
	t     *dispatcher
	limit rate.Limit
	logFn func() *slog.Logger
}

// NewRoundTripper returns a started RoundTripper allowing limit requests
// per second. logFn lazily resolves the logger at request time, making
// option ordering irrelevant. A nil-returning logFn disables logging.
// Additional throttler options, such as a queue bound, may be supplied.
// Call Close to stop the underlying worker.
func NewRoundTripper(limit rate.Limit, logFn func() *slog.Logger, next http.RoundTripper, opts ...throttler.Option) (*RoundTripper, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit[%v] %w", limit, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	transport := throttler.TransportFuncs[*http.Request, *http.Request, *http.Response]{
		PrepareFunc: func(_ context.Context, r *http.Request) (*http.Request, error) {
			if r == nil || r.URL == nil {
				return nil, errors.New("request and its URL must not be nil")
			}
			return r, nil
		},
		SendFunc: func(_ context.Context, r *http.Request) (*http.Response, error) {
			return next.RoundTrip(r)
		},
	}

	base := []throttler.Option{throttler.WithLimit(limit), throttler.WithLogger(discardLogger)}
	t, err := throttler.New[*http.Request, *http.Request, *http.Response]("roundtripper", transport, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("configuring throttler: %w", err)
	}
	if err := t.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("starting throttler: %w", err)
	}

	return &RoundTripper{t: t, limit: limit, logFn: logFn}, nil
}

// RoundTrip queues r and waits for its turn. If r's context ends while
// waiting, RoundTrip returns early; the queued request is still released
// later but fails fast on its cancelled context.
func (rt *RoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	h, err := rt.t.Submit(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	var waited time.Duration
	logger := rt.logFn()
	if logger != nil && rt.t.QueueLen() > 0 {
		logger.Info("throttle queue busy", "rate", float64(rt.limit), "queued", rt.t.QueueLen(), "path", r.URL.Path)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", float64(rt.limit))
		}()
	}

	start := time.Now()

	resp, err := h.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			go closeLate(h)
			return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, ctxErr)
		}

		var sendErr *throttler.SendError
		if errors.As(err, &sendErr) {
			return nil, sendErr.Err
		}

		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	return resp, nil
}

// Close stops accepting requests, lets queued ones drain and waits for
// the worker to finish or ctx to end.
func (rt *RoundTripper) Close(ctx context.Context) error {
	if err := rt.t.Shutdown(true); err != nil {
		return fmt.Errorf("shutting down throttle: %w", err)
	}

	return rt.t.WaitForEnd(ctx)
}

// closeLate releases the body of a response that arrives after its
// caller stopped waiting.
func closeLate(h *throttled.Request[*http.Request, *http.Response]) {
	resp, err := h.Wait(context.Background())
	if err == nil && resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
