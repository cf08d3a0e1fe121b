// Package timer measures elapsed time from a fixed start instant and
// from a movable checkpoint.
//
// A [Timer] is created without a checkpoint unless [WithCheckpoint] is
// supplied; [Timer.Elapsed] fails with [ErrNoCheckpoint] until one is set
// via [Timer.SetCheckpoint] or [Timer.Mark].
//
//	t := timer.New()
//	t.Mark()
//	// ... work ...
//	d, err := t.Elapsed()
package timer
