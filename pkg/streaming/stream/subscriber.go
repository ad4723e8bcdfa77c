package stream

import (
	"sync"

	"go.uber.org/zap"
)

// destination is where a Subscriber forwards signals.
type destination[T any] interface {
	next(value T) (*Pending, error)
	error(err error) error
	complete() error
}

// Subscriber is the active end of a subscription. Producers push values
// with Next and terminate with Error or Complete; once terminated or
// released, all three are no-ops.
//
// Producers must not call Next, Error and Complete concurrently on the same
// Subscriber. Calls from a different goroutine than the one that subscribed
// are fine.
type Subscriber[T any] struct {
	*Subscription

	mu      sync.Mutex
	stopped bool
	dest    destination[T]
	window  *setupWindow
}

func newSubscriber[T any](dest destination[T], window *setupWindow) *Subscriber[T] {
	s := &Subscriber[T]{
		Subscription: &Subscription{},
		dest:         dest,
		window:       window,
	}
	s.Subscription.Add(TeardownFunc(s.detach))
	return s
}

// NewSubscriber returns an empty sink: values and completion are dropped
// and Error hands the error back to its caller.
func NewSubscriber[T any]() *Subscriber[T] {
	return newSubscriber[T](emptyDestination[T]{}, nil)
}

// NewSubscriberFrom returns a Subscriber that forwards to dest. The two
// share termination state: values reach dest unchanged and releasing either
// one releases both.
func NewSubscriberFrom[T any](dest *Subscriber[T]) *Subscriber[T] {
	if dest == nil {
		return NewSubscriber[T]()
	}
	s := newSubscriber[T](subscriberDestination[T]{dest: dest}, dest.window)
	dest.Add(s)
	s.Add(dest)
	return s
}

// NewSubscriberFuncs builds a Subscriber from loose handlers. With no
// handlers at all it is equivalent to NewSubscriber.
func NewSubscriberFuncs[T any](next NextFunc[T], onError ErrorFunc, onComplete CompleteFunc) *Subscriber[T] {
	if next == nil && onError == nil && onComplete == nil {
		return NewSubscriber[T]()
	}
	return NewSubscriberObserver(Observer[T]{Next: next, Error: onError, Complete: onComplete})
}

// NewAsyncSubscriberFuncs is NewSubscriberFuncs for an asynchronous value handler.
func NewAsyncSubscriberFuncs[T any](next AsyncNextFunc[T], onError ErrorFunc, onComplete CompleteFunc) *Subscriber[T] {
	if next == nil && onError == nil && onComplete == nil {
		return NewSubscriber[T]()
	}
	return NewSubscriberObserver(Observer[T]{NextAsync: next, Error: onError, Complete: onComplete})
}

// NewSubscriberObserver builds a Subscriber from a partial observer. The
// handlers are invoked through a safe wrapper and the setup window is armed,
// so a handler failure during the first Subscribe call is returned by it.
func NewSubscriberObserver[T any](o Observer[T]) *Subscriber[T] {
	safe := newSafeSubscriber(o)
	s := newSubscriber[T](safe, newSetupWindow())
	safe.parent = s

	if o.Link != nil {
		s.Add(o.Link)
		o.Link.Add(s)
	}
	return s
}

// Next pushes value to the destination. It returns the handler's pending
// token, if any, and the handler's failure when it fails after setup.
func (s *Subscriber[T]) Next(value T) (*Pending, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, nil
	}
	dest := s.dest
	s.mu.Unlock()

	return dest.next(value)
}

// Error terminates the subscription with err. It returns err itself when
// no error handler is registered, or the handler's own failure.
func (s *Subscriber[T]) Error(err error) error {
	dest, ok := s.stop()
	if !ok {
		return nil
	}
	defer s.Release()
	return dest.error(err)
}

// Complete terminates the subscription normally.
func (s *Subscriber[T]) Complete() error {
	dest, ok := s.stop()
	if !ok {
		return nil
	}
	defer s.Release()
	return dest.complete()
}

// Stopped reports whether the subscriber has terminated or been released.
// Producers check it before each emission.
func (s *Subscriber[T]) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Subscriber[T]) stop() (destination[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, false
	}
	s.stopped = true
	return s.dest, true
}

func (s *Subscriber[T]) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.dest = emptyDestination[T]{}
}

func (s *Subscriber[T]) toSubscriber() *Subscriber[T] {
	if s == nil {
		return NewSubscriber[T]()
	}
	return s
}

type emptyDestination[T any] struct{}

func (emptyDestination[T]) next(T) (*Pending, error) { return nil, nil }

func (emptyDestination[T]) error(err error) error {
	logger().Warn("unhandled stream error", zap.Error(err))
	return err
}

func (emptyDestination[T]) complete() error { return nil }

type subscriberDestination[T any] struct {
	dest *Subscriber[T]
}

func (d subscriberDestination[T]) next(value T) (*Pending, error) { return d.dest.Next(value) }
func (d subscriberDestination[T]) error(err error) error          { return d.dest.Error(err) }
func (d subscriberDestination[T]) complete() error                { return d.dest.Complete() }

// setupWindow is open while the synchronous part of the first Subscribe
// call runs. Handler failures inside it are recorded and returned from
// Subscribe instead of from the emitting call.
type setupWindow struct {
	mu   sync.Mutex
	open bool
	err  error
}

// setupOutcome is what closing a window reports back to Subscribe.
type setupOutcome struct {
	err error
}

func (o setupOutcome) Err() error { return o.err }

func newSetupWindow() *setupWindow {
	return &setupWindow{open: true}
}

func (w *setupWindow) isOpen() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// record stores err if the window is still open. The first error wins.
// It reports false when the window has already closed.
func (w *setupWindow) record(err error) bool {
	if w == nil || err == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return false
	}
	if w.err == nil {
		w.err = err
	}
	return true
}

func (w *setupWindow) close() setupOutcome {
	if w == nil {
		return setupOutcome{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	out := setupOutcome{err: w.err}
	w.open = false
	w.err = nil
	return out
}
