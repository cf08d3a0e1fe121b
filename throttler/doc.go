// Package throttler implements a client-side rate-limiting dispatcher.
//
// Callers submit requests faster than the destination should receive them;
// a single worker releases them to a [Transport] in FIFO order, leaving at
// least the configured delay between the start of consecutive sends. Each
// submission returns a [throttled.Request] through which the caller observes
// the eventual response or failure.
//
// # Lifecycle
//
// A [Throttler] moves through the statuses
//
//	initialized -> running <-> waiting <-> paused -> stopped -> ending -> ended
//
// [Throttler.Start] launches the worker, [Throttler.Pause] and
// [Throttler.Unpause] suspend and resume dispatching, and
// [Throttler.Shutdown] asks the worker to finish. With drain the worker
// keeps dispatching what is already queued; without it the queued requests
// are finished with [ErrAbandoned] and never sent.
//
// # Locking
//
// Status and counters sit behind one mutex, the queue behind another. The
// worker's dequeue decision, Shutdown and Unpause need both at once: they
// take the queue mutex first and the status mutex inside it. No path takes
// them in the other order.
//
// # Backpressure
//
// With [WithMaxQueueSize] the queue is bounded. Submitting to a full queue
// never blocks: the returned handle is finished with a [*FullQueueError].
//
//	t, err := throttler.New("api", transport,
//		throttler.WithRequestsOverTime(10, time.Second),
//		throttler.WithMaxQueueSize(100),
//	)
//	err = t.Run(ctx, func(ctx context.Context) error {
//		r, err := t.Submit(ctx, req)
//		...
//	})
package throttler
