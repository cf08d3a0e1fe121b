package throttler

import "context"

// Transport is the collaborator that turns submitted requests into responses.
// Prepare runs on the submitting goroutine; Send runs on the dispatch worker.
type Transport[Req, Prep, Resp any] interface {
	Prepare(ctx context.Context, req Req) (Prep, error)
	Send(ctx context.Context, prep Prep) (Resp, error)
}

// TransportFuncs adapts a pair of functions to the Transport interface.
type TransportFuncs[Req, Prep, Resp any] struct {
	PrepareFunc func(ctx context.Context, req Req) (Prep, error)
	SendFunc    func(ctx context.Context, prep Prep) (Resp, error)
}

func (f TransportFuncs[Req, Prep, Resp]) Prepare(ctx context.Context, req Req) (Prep, error) {
	return f.PrepareFunc(ctx, req)
}

func (f TransportFuncs[Req, Prep, Resp]) Send(ctx context.Context, prep Prep) (Resp, error) {
	return f.SendFunc(ctx, prep)
}
