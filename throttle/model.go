package throttle

import (
	"errors"
	"io"
	"log/slog"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("throttle waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// discardLogger silences the underlying throttler; RoundTripper logs
// through its own lazily resolved logger instead.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
