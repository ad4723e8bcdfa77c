package stream

import (
	"sync/atomic"
)

// Forwarder describes how an operator's upstream subscriber reacts to the
// source. Error and Complete default to forwarding to sink unchanged.
type Forwarder[T, R any] struct {
	Next     func(sink *Subscriber[R], value T) (*Pending, error)
	Error    func(sink *Subscriber[R], err error) error
	Complete func(sink *Subscriber[R]) error
}

// NewForwardingSubscriber returns the subscriber an operator hands to its
// source. Releasing sink releases it. It has no setup window of its own:
// handler failures are classified by sink.
func NewForwardingSubscriber[T, R any](sink *Subscriber[R], f Forwarder[T, R]) *Subscriber[T] {
	inner := newSubscriber[T](forwardDestination[T, R]{sink: sink, f: f}, nil)
	sink.Add(inner)
	return inner
}

type forwardDestination[T, R any] struct {
	sink *Subscriber[R]
	f    Forwarder[T, R]
}

func (d forwardDestination[T, R]) next(value T) (*Pending, error) {
	if d.f.Next == nil {
		return nil, nil
	}
	return d.f.Next(d.sink, value)
}

func (d forwardDestination[T, R]) error(err error) error {
	if d.f.Error != nil {
		return d.f.Error(d.sink, err)
	}
	return d.sink.Error(err)
}

func (d forwardDestination[T, R]) complete() error {
	if d.f.Complete != nil {
		return d.f.Complete(d.sink)
	}
	return d.sink.Complete()
}

// subscribeForwarding is the common body of the operators below.
func subscribeForwarding[T, R any](sink *Subscriber[R], source *Stream[T], f Forwarder[T, R]) (Teardown, error) {
	inner := NewForwardingSubscriber(sink, f)
	if _, err := source.Subscribe(inner); err != nil {
		return inner, err
	}
	return inner, nil
}

// MapTo transforms every value with mapper. A panicking mapper errors the
// stream.
func MapTo[T, R any](s *Stream[T], mapper func(T) R) *Stream[R] {
	return Lift(s, OperatorFunc[T, R](func(sink *Subscriber[R], source *Stream[T]) (Teardown, error) {
		return subscribeForwarding(sink, source, Forwarder[T, R]{
			Next: func(sink *Subscriber[R], value T) (*Pending, error) {
				var out R
				if err := try(func() error {
					out = mapper(value)
					return nil
				}); err != nil {
					return nil, sink.Error(err)
				}
				return sink.Next(out)
			},
		})
	}))
}

// Map transforms every value with mapper, keeping the element type.
func (s *Stream[T]) Map(mapper func(T) T) *Stream[T] {
	return MapTo(s, mapper)
}

// Filter forwards only values matching predicate.
func (s *Stream[T]) Filter(predicate func(T) bool) *Stream[T] {
	return s.Lift(OperatorFunc[T, T](func(sink *Subscriber[T], source *Stream[T]) (Teardown, error) {
		return subscribeForwarding(sink, source, Forwarder[T, T]{
			Next: func(sink *Subscriber[T], value T) (*Pending, error) {
				var keep bool
				if err := try(func() error {
					keep = predicate(value)
					return nil
				}); err != nil {
					return nil, sink.Error(err)
				}
				if !keep {
					return nil, nil
				}
				return sink.Next(value)
			},
		})
	}))
}

// Take forwards the first n values and then completes, releasing the
// source. n <= 0 completes without subscribing to the source.
func (s *Stream[T]) Take(n int64) *Stream[T] {
	return s.Lift(OperatorFunc[T, T](func(sink *Subscriber[T], source *Stream[T]) (Teardown, error) {
		if n <= 0 {
			return nil, sink.Complete()
		}

		var seen atomic.Int64
		return subscribeForwarding(sink, source, Forwarder[T, T]{
			Next: func(sink *Subscriber[T], value T) (*Pending, error) {
				count := seen.Add(1)
				if count > n {
					return nil, nil
				}
				p, err := sink.Next(value)
				if count == n {
					if cerr := sink.Complete(); err == nil {
						err = cerr
					}
				}
				return p, err
			},
		})
	}))
}

// Tap calls action for every value before forwarding it unchanged.
func (s *Stream[T]) Tap(action func(T)) *Stream[T] {
	return s.Map(func(v T) T {
		action(v)
		return v
	})
}
