// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound HTTP requests by dispatching them through a
// [throttler.Throttler].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		10, // requests per second
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//		throttler.WithMaxQueueSize(100),
//	)
//	defer rt.Close(ctx)
//	httpClient := &http.Client{Transport: rt}
//
// Requests are released in FIFO order with at least 1/limit between the
// start of consecutive round trips. A full queue fails the round trip
// immediately rather than blocking; a request whose context ends while
// queued returns early.
package throttle
