package stream

import (
	"sync/atomic"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
	"go.uber.org/zap"
)

// safeSubscriber invokes user handlers on behalf of its parent Subscriber.
// It captures handler failures, returned errors and panics alike, and
// decides whether they surface from Subscribe or from the emitting call.
type safeSubscriber[T any] struct {
	parent *Subscriber[T]

	invoke     func(T) (*Pending, error)
	onError    ErrorFunc
	onComplete CompleteFunc

	stopped atomic.Bool
}

func newSafeSubscriber[T any](o Observer[T]) *safeSubscriber[T] {
	s := &safeSubscriber[T]{
		onError:    o.Error,
		onComplete: o.Complete,
	}

	switch {
	case o.NextAsync != nil:
		next := o.NextAsync
		s.invoke = func(v T) (p *Pending, err error) {
			err = try(func() error {
				p = next(v)
				return nil
			})
			return p, err
		}
	case o.Next != nil:
		next := o.Next
		s.invoke = func(v T) (*Pending, error) {
			return nil, try(func() error { return next(v) })
		}
	}
	return s
}

func (s *safeSubscriber[T]) next(value T) (*Pending, error) {
	if s.stopped.Load() || s.invoke == nil {
		return nil, nil
	}

	window := s.parent.window
	if !window.isOpen() {
		p, err := s.invoke(value)
		if err != nil {
			logger().Debug("value handler failed", zap.Error(err))
			s.release()
			return nil, err
		}
		return p, nil
	}

	p, err := s.invoke(value)
	if err != nil {
		if !window.record(err) {
			// Subscribe returned while the handler ran.
			s.release()
			return nil, err
		}
		logger().Debug("value handler failed during setup", zap.Error(err))
		s.release()
		return nil, nil
	}
	if p == nil {
		p = promise.Resolved(promise.Void{})
	}
	return p, nil
}

func (s *safeSubscriber[T]) error(err error) error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	defer s.release()

	if s.onError == nil {
		logger().Warn("unhandled stream error", zap.Error(err))
		s.parent.window.record(err)
		return err
	}
	if herr := try(func() error { return s.onError(err) }); herr != nil {
		s.parent.window.record(herr)
		return herr
	}
	return nil
}

func (s *safeSubscriber[T]) complete() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	defer s.release()

	if s.onComplete == nil {
		return nil
	}
	if herr := try(s.onComplete); herr != nil {
		s.parent.window.record(herr)
		return herr
	}
	return nil
}

func (s *safeSubscriber[T]) release() {
	s.stopped.Store(true)
	s.parent.Release()
}

// try runs fn and converts a panic into a *PanicError.
func try(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gferrors.NewPanicError(r)
		}
	}()
	return fn()
}
