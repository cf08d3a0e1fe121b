// Package throttled provides [Request], the one-shot completion handle
// returned for every request submitted to a throttler.
//
// A Request is finished exactly once, either with a response via
// [Request.SetResponse] or with a failure via [Request.SetFailure].
// Any number of goroutines may wait on it concurrently:
//
//	resp, ok, err := r.Response(throttled.Forever) // block until finished
//	resp, ok, err  = r.Response(0)                 // poll
//	resp, err      = r.Wait(ctx)                   // bounded by ctx
package throttled
