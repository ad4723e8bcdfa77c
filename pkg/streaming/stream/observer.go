package stream

import "github.com/vnykmshr/asyncflow/pkg/promise"

// Pending is the token an asynchronous handler returns while its work is
// still in flight. A nil *Pending means the handler finished on return.
type Pending = promise.Promise[promise.Void]

// NextFunc handles one value synchronously. Returning an error (or
// panicking) fails the subscription.
type NextFunc[T any] func(value T) error

// AsyncNextFunc handles one value and may return a pending token for work
// that finishes later.
type AsyncNextFunc[T any] func(value T) *Pending

// ErrorFunc handles the terminal error of a stream.
type ErrorFunc func(err error) error

// CompleteFunc handles normal termination of a stream.
type CompleteFunc func() error

// Observer is a partial observer: every handler is optional. NextAsync takes
// precedence over Next when both are set.
type Observer[T any] struct {
	Next      NextFunc[T]
	NextAsync AsyncNextFunc[T]
	Error     ErrorFunc
	Complete  CompleteFunc

	// Link is the observer's own release hook. Releasing the subscriber
	// releases Link and releasing Link releases the subscriber.
	Link *Subscription
}

// Target is anything Stream.Subscribe accepts: a *Subscriber, an Observer,
// a NextFunc, an AsyncNextFunc, or an Interop wrapper.
type Target[T any] interface {
	toSubscriber() *Subscriber[T]
}

// SubscriberProvider is implemented by foreign types that can hand out a
// Subscriber of their own.
type SubscriberProvider[T any] interface {
	AsSubscriber() *Subscriber[T]
}

// Interop wraps a SubscriberProvider so it can be passed to Subscribe.
func Interop[T any](p SubscriberProvider[T]) Target[T] {
	return interop[T]{provider: p}
}

type interop[T any] struct {
	provider SubscriberProvider[T]
}

func (i interop[T]) toSubscriber() *Subscriber[T] {
	if i.provider != nil {
		if s := i.provider.AsSubscriber(); s != nil {
			return s
		}
	}
	return NewSubscriber[T]()
}

func (o Observer[T]) toSubscriber() *Subscriber[T] {
	return NewSubscriberObserver(o)
}

func (f NextFunc[T]) toSubscriber() *Subscriber[T] {
	return NewSubscriberFuncs(f, nil, nil)
}

func (f AsyncNextFunc[T]) toSubscriber() *Subscriber[T] {
	return NewAsyncSubscriberFuncs(f, nil, nil)
}

// ToSubscriber normalizes target into a Subscriber. An existing Subscriber
// is returned unchanged, nil yields an empty sink, and handler shapes are
// wrapped in a new Subscriber.
func ToSubscriber[T any](target Target[T]) *Subscriber[T] {
	if target == nil {
		return NewSubscriber[T]()
	}
	return target.toSubscriber()
}
