package workerpool

import (
	"context"

	"github.com/vnykmshr/asyncflow/pkg/streaming/stream"
)

// Handler adapts fn into an asynchronous stream handler: each value is
// submitted to p and the returned token settles when fn finishes with it.
//
// Emission is not held up by fn, only by queue space. Producers that want
// one value in flight at a time await the token, for example with
// stream.FromSliceAwaiting.
func Handler[T any](p *Pool, fn func(ctx context.Context, value T) error) stream.AsyncNextFunc[T] {
	return HandlerContext(context.Background(), p, fn)
}

// HandlerContext is Handler with a context that bounds queuing and is
// passed to fn.
func HandlerContext[T any](ctx context.Context, p *Pool, fn func(ctx context.Context, value T) error) stream.AsyncNextFunc[T] {
	return func(value T) *stream.Pending {
		return p.Submit(ctx, TaskFunc(func(ctx context.Context) error {
			return fn(ctx, value)
		}))
	}
}
