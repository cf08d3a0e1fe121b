package throttler

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Option defines optional settings for a Throttler.
//
// WithDelay sets the fixed spacing between dispatches.
// WithRequestsOverTime derives the delay as window / count.
// WithLimit derives the delay from a rate.Limit.
// WithMaxQueueSize caps the number of pending requests.
type Option func(*options) error

type options struct {
	delay          *time.Duration
	derived        *time.Duration
	maxQueueSize   int
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
}

func WithDelay(d time.Duration) Option {
	return func(opts *options) error {
		if d < 0 {
			return fmt.Errorf("delay[%v] must not be negative: %w", d, ErrInvalidConfig)
		}
		opts.delay = &d
		return nil
	}
}

// WithRequestsOverTime allows count requests per window. An explicit
// WithDelay takes precedence regardless of option order.
func WithRequestsOverTime(count int, window time.Duration) Option {
	return func(opts *options) error {
		if count <= 0 || window < 0 {
			return fmt.Errorf("count[%d] must be positive and window[%v] not negative: %w", count, window, ErrInvalidConfig)
		}
		d := window / time.Duration(count)
		opts.derived = &d
		return nil
	}
}

// WithLimit allows limit requests per second. rate.Inf disables throttling.
// An explicit WithDelay takes precedence.
func WithLimit(limit rate.Limit) Option {
	return func(opts *options) error {
		if limit <= 0 {
			return fmt.Errorf("limit[%v] must be positive: %w", limit, ErrInvalidConfig)
		}
		var d time.Duration
		if limit != rate.Inf {
			secs := float64(time.Second) / float64(limit)
			if secs >= math.MaxInt64 {
				return fmt.Errorf("limit[%v] yields a delay beyond %v: %w", limit, time.Duration(math.MaxInt64), ErrInvalidConfig)
			}
			d = time.Duration(secs)
		}
		opts.derived = &d
		return nil
	}
}

// WithMaxQueueSize caps the queue at n pending requests. Zero means unbounded.
func WithMaxQueueSize(n int) Option {
	return func(opts *options) error {
		if n < 0 {
			return fmt.Errorf("max queue size[%d] must not be negative: %w", n, ErrInvalidConfig)
		}
		opts.maxQueueSize = n
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		opts.logger = logger
		return nil
	}
}

// WithTracerProvider enables a span around every dispatched send.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(opts *options) error {
		opts.tracerProvider = tp
		return nil
	}
}

// resolveDelay picks the explicit delay over the derived one, defaulting to zero.
func (o *options) resolveDelay() time.Duration {
	switch {
	case o.delay != nil:
		return *o.delay
	case o.derived != nil:
		return *o.derived
	default:
		return 0
	}
}
