package stream

import (
	"context"
	"sync/atomic"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
)

// SubscribeFunc is a producer. It receives the Subscriber for one
// subscription, may emit to it synchronously or later, and returns the
// teardown to run when the subscription is released.
type SubscribeFunc[T any] func(sub *Subscriber[T]) (Teardown, error)

// Operator derives a stream of R from a stream of T. Call wires sink into
// a subscription to source and returns the teardown for that wiring.
type Operator[T, R any] interface {
	Call(sink *Subscriber[R], source *Stream[T]) (Teardown, error)
}

// OperatorFunc adapts a function to Operator.
type OperatorFunc[T, R any] func(sink *Subscriber[R], source *Stream[T]) (Teardown, error)

// Call calls f.
func (f OperatorFunc[T, R]) Call(sink *Subscriber[R], source *Stream[T]) (Teardown, error) {
	return f(sink, source)
}

// lifted hides the source element type of a derived stream.
type lifted[R any] interface {
	call(sink *Subscriber[R]) (Teardown, error)
}

type liftedOperator[T, R any] struct {
	source   *Stream[T]
	operator Operator[T, R]
}

func (l liftedOperator[T, R]) call(sink *Subscriber[R]) (Teardown, error) {
	return l.operator.Call(sink, l.source)
}

// Stream is a push-based producer of values over time. Nothing happens
// until Subscribe is called; every subscription runs the producer anew.
type Stream[T any] struct {
	subscribe SubscribeFunc[T]
	lifted    lifted[T]
}

// New creates a Stream from a producer. A nil producer never emits.
func New[T any](subscribe SubscribeFunc[T]) *Stream[T] {
	return &Stream[T]{subscribe: subscribe}
}

// Lift creates a derived stream that applies op to source on subscription.
func Lift[T, R any](source *Stream[T], op Operator[T, R]) *Stream[R] {
	return &Stream[R]{lifted: liftedOperator[T, R]{source: source, operator: op}}
}

// Lift is the same-type form of the package-level Lift.
func (s *Stream[T]) Lift(op Operator[T, T]) *Stream[T] {
	return Lift(s, op)
}

// Subscribe wires target to the producer and returns the subscription
// handle.
//
// Failures that happen while Subscribe is still running, whether a handler
// failing on a value emitted synchronously or the producer itself returning
// an error, are returned here and leave the subscription released. A
// producer error is also delivered to the error handler first; if that
// handler fails, its failure is returned instead. Failures of handlers
// invoked after Subscribe has returned are reported to the call that
// emitted the value instead.
func (s *Stream[T]) Subscribe(target Target[T]) (*Subscriber[T], error) {
	sink := ToSubscriber(target)

	td, err := s.run(sink)
	if td != nil {
		sink.Add(td)
	}
	if err != nil {
		// The error handler's own failure replaces the producer's error.
		if herr := sink.Error(err); herr != nil {
			err = herr
		}
		sink.window.record(err)
	}

	if setupErr := sink.window.close().Err(); setupErr != nil {
		sink.Release()
		return sink, setupErr
	}
	if err != nil {
		return sink, err
	}
	return sink, nil
}

// SubscribeFuncs subscribes with loose synchronous handlers.
func (s *Stream[T]) SubscribeFuncs(next NextFunc[T], onError ErrorFunc, onComplete CompleteFunc) (*Subscriber[T], error) {
	return s.Subscribe(NewSubscriberFuncs(next, onError, onComplete))
}

// SubscribeAsync subscribes with an asynchronous value handler.
func (s *Stream[T]) SubscribeAsync(next AsyncNextFunc[T], onError ErrorFunc, onComplete CompleteFunc) (*Subscriber[T], error) {
	return s.Subscribe(NewAsyncSubscriberFuncs(next, onError, onComplete))
}

func (s *Stream[T]) run(sink *Subscriber[T]) (td Teardown, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gferrors.NewPanicError(r)
		}
	}()

	if s.lifted != nil {
		return s.lifted.call(sink)
	}
	if s.subscribe == nil {
		return nil, nil
	}
	return s.subscribe(sink)
}

// ForEach consumes the stream with next and returns a promise that is
// fulfilled when the stream completes and rejected when it errors or next
// fails. factory may be nil, in which case the configured default and then
// promise.Default are used; ErrNoPromiseFactory is returned if none is set.
func (s *Stream[T]) ForEach(next NextFunc[T], factory promise.Factory) (*Pending, error) {
	newPromise, err := resolvePromiseFactory(factory)
	if err != nil {
		return nil, err
	}
	p, _ := s.forEach(next, newPromise)
	return p, nil
}

// ForEachContext runs ForEach and waits for the result. When ctx is done
// first the subscription is released and ctx.Err() is returned.
func (s *Stream[T]) ForEachContext(ctx context.Context, next NextFunc[T]) error {
	newPromise, err := resolvePromiseFactory(nil)
	if err != nil {
		return err
	}
	p, handle := s.forEach(next, newPromise)

	_, err = p.Await(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
		if sub := handle.Load(); sub != nil {
			sub.Release()
		}
	}
	return err
}

func (s *Stream[T]) forEach(next NextFunc[T], newPromise promise.Factory) (*Pending, *atomic.Pointer[Subscriber[T]]) {
	handle := &atomic.Pointer[Subscriber[T]]{}

	p := newPromise(func(resolve func(promise.Void), reject func(error)) {
		sub, err := s.Subscribe(Observer[T]{
			Next: func(value T) error {
				if sub := handle.Load(); sub != nil {
					// Emitted after Subscribe returned: nothing unwinds for us.
					if err := try(func() error { return next(value) }); err != nil {
						reject(err)
						sub.Release()
					}
					return nil
				}
				err := try(func() error { return next(value) })
				if err != nil {
					reject(err)
				}
				return err
			},
			Error: func(err error) error {
				reject(err)
				return nil
			},
			Complete: func() error {
				resolve(promise.Void{})
				return nil
			},
		})
		if err != nil {
			reject(err)
			return
		}
		handle.Store(sub)
	})
	return p, handle
}
