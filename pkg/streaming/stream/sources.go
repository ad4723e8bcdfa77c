package stream

import (
	"context"
	"sync"

	"github.com/vnykmshr/asyncflow/pkg/promise"
	"go.uber.org/zap"
)

// Of emits values synchronously and completes.
func Of[T any](values ...T) *Stream[T] {
	return FromSlice(values)
}

// FromSlice emits every element of slice synchronously during Subscribe
// and completes. It stops early once the subscriber is stopped.
func FromSlice[T any](slice []T) *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		for _, v := range slice {
			if sub.Stopped() {
				return nil, nil
			}
			if _, err := sub.Next(v); err != nil {
				return nil, err
			}
		}
		return nil, sub.Complete()
	})
}

// FromChannel emits values received from ch on a separate goroutine and
// completes when ch is closed. Releasing the subscription stops the
// goroutine; ch itself is never closed by the stream.
func FromChannel[T any](ch <-chan T) *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		done := make(chan struct{})
		var once sync.Once

		go func() {
			for {
				if sub.Stopped() {
					return
				}
				select {
				case <-done:
					return
				case v, ok := <-ch:
					if !ok {
						if err := sub.Complete(); err != nil {
							logger().Debug("complete handler failed", zap.Error(err))
						}
						return
					}
					if _, err := sub.Next(v); err != nil {
						logger().Debug("channel source stopped by handler failure", zap.Error(err))
						return
					}
				}
			}
		}()

		return TeardownFunc(func() { once.Do(func() { close(done) }) }), nil
	})
}

// FromPromise emits the promise's value and completes, or errors with its
// rejection. An already settled promise emits during Subscribe.
func FromPromise[T any](p *promise.Promise[T]) *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		if v, err, ok := p.Result(); ok {
			return nil, emitSettled(sub, v, err)
		}
		p.Then(func(v T, err error) {
			if ferr := emitSettled(sub, v, err); ferr != nil {
				logger().Debug("promise source handler failed", zap.Error(ferr))
			}
		})
		return nil, nil
	})
}

func emitSettled[T any](sub *Subscriber[T], v T, err error) error {
	if err != nil {
		return sub.Error(err)
	}
	if _, err := sub.Next(v); err != nil {
		return err
	}
	return sub.Complete()
}

// Empty completes immediately.
func Empty[T any]() *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		return nil, sub.Complete()
	})
}

// Throw errors immediately with err.
func Throw[T any](err error) *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		return nil, sub.Error(err)
	})
}

// Never neither emits nor terminates.
func Never[T any]() *Stream[T] {
	return New[T](nil)
}

// EmitAwaiting pushes values one at a time, waiting for each handler's
// pending token before emitting the next. It returns the first handler
// failure or rejection, or ctx.Err(). It does not complete sub.
func EmitAwaiting[T any](ctx context.Context, sub *Subscriber[T], values []T) error {
	for _, v := range values {
		if sub.Stopped() {
			return nil
		}
		p, err := sub.Next(v)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		if _, err := p.Await(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FromSliceAwaiting emits slice on a separate goroutine, waiting for each
// pending token before the next value. A rejected token errors the stream.
// Releasing the subscription cancels the wait.
func FromSliceAwaiting[T any](slice []T) *Stream[T] {
	return New(func(sub *Subscriber[T]) (Teardown, error) {
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			defer cancel()
			err := EmitAwaiting(ctx, sub, slice)
			switch {
			case sub.Stopped():
			case err != nil:
				err = sub.Error(err)
			default:
				err = sub.Complete()
			}
			if err != nil {
				logger().Debug("awaiting source terminated with failure", zap.Error(err))
			}
		}()

		return TeardownFunc(cancel), nil
	})
}
