package promise

import (
	"context"
	"sync"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"golang.org/x/sync/errgroup"
)

// Void is the payload of a promise that only signals completion.
type Void = struct{}

// Factory constructs a completion promise from an executor. It is the type
// consumers pass to APIs that need to create their own promises.
type Factory func(executor func(resolve func(Void), reject func(error))) *Promise[Void]

// Default is the ambient Factory used when neither the caller nor the global
// configuration supplies one. It may be set to nil to forbid implicit
// promise construction.
var Default Factory = New[Void]

// Promise is a value that settles exactly once, either fulfilled with a T or
// rejected with an error.
type Promise[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// New creates a promise and runs executor synchronously. The first call to
// resolve or reject settles the promise; later calls are ignored. A panic in
// the executor rejects the promise with a *PanicError.
func New[T any](executor func(resolve func(T), reject func(error))) *Promise[T] {
	p := newPending[T]()

	resolve := func(v T) { p.settle(v, nil) }
	reject := func(err error) {
		var zero T
		p.settle(zero, err)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				reject(gferrors.NewPanicError(r))
			}
		}()
		executor(resolve, reject)
	}()

	return p
}

// Resolved returns a promise already fulfilled with v.
func Resolved[T any](v T) *Promise[T] {
	p := newPending[T]()
	p.settle(v, nil)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected[T any](err error) *Promise[T] {
	p := newPending[T]()
	var zero T
	p.settle(zero, err)
	return p
}

// Go runs fn on a new goroutine and returns a promise for its result.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Promise[T] {
	p := newPending[T]()
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				p.settle(zero, gferrors.NewPanicError(r))
				return
			}
			p.settle(v, err)
		}()
		v, err = fn(ctx)
	}()
	return p
}

// All waits for every promise and returns their values in order. The first
// rejection cancels the wait and is returned.
func All[T any](ctx context.Context, promises ...*Promise[T]) ([]T, error) {
	results := make([]T, len(promises))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range promises {
		i, p := i, p
		g.Go(func() error {
			v, err := p.Await(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newPending[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

func (p *Promise[T]) settle(v T, err error) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}
	p.settled = true
	p.value = v
	p.err = err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Done returns a channel that is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has been fulfilled or rejected.
func (p *Promise[T]) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Result returns the outcome without blocking. ok is false while pending.
func (p *Promise[T]) Result() (value T, err error, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err, p.settled
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to run with the outcome. It runs immediately on the
// calling goroutine when the promise has already settled, otherwise on the
// goroutine that settles it.
func (p *Promise[T]) Then(fn func(T, error)) {
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()
	fn(v, err)
}
