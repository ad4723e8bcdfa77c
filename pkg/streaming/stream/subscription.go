package stream

import (
	"fmt"
	"strings"
	"sync"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
	"go.uber.org/zap"
)

// Teardown is a cleanup action run when a subscription is released.
type Teardown interface {
	Release()
}

// TeardownFunc adapts a plain function to Teardown.
type TeardownFunc func()

// Release calls f.
func (f TeardownFunc) Release() {
	if f != nil {
		f()
	}
}

// ReleaseError is raised by Subscription.Release when one or more teardowns
// panicked. Every teardown still runs before it is raised.
type ReleaseError struct {
	Panics []*gferrors.PanicError
}

func (e *ReleaseError) Error() string {
	parts := make([]string, 0, len(e.Panics))
	for _, p := range e.Panics {
		parts = append(parts, fmt.Sprint(p.Value))
	}
	return fmt.Sprintf("%d teardown(s) panicked during release: %s", len(e.Panics), strings.Join(parts, "; "))
}

// Subscription is a composite releasable resource. Teardowns added to it run
// once, in reverse order of addition, when it is released. Subscriptions nest:
// a *Subscription is itself a Teardown.
type Subscription struct {
	mu        sync.Mutex
	closed    bool
	teardowns []Teardown
}

// NewSubscription returns an open subscription with the given teardowns attached.
func NewSubscription(teardowns ...Teardown) *Subscription {
	s := &Subscription{}
	for _, td := range teardowns {
		s.Add(td)
	}
	return s
}

// Add attaches td. If the subscription is already released td runs
// immediately. Adding a subscription to itself is a no-op.
func (s *Subscription) Add(td Teardown) {
	if td == nil {
		return
	}
	if other, ok := td.(*Subscription); ok && other == s {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		td.Release()
		return
	}
	s.teardowns = append(s.teardowns, td)
	s.mu.Unlock()
}

// Remove detaches td without running it. Only comparable teardowns
// (pointers, not funcs) can be removed.
func (s *Subscription) Remove(td Teardown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.teardowns {
		if sameTeardown(t, td) {
			s.teardowns = append(s.teardowns[:i], s.teardowns[i+1:]...)
			return
		}
	}
}

// Closed reports whether Release has been called.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Release runs every attached teardown exactly once. Later calls are no-ops.
// Panicking teardowns do not stop the others; they are collected and
// re-raised as a *ReleaseError afterwards.
func (s *Subscription) Release() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	teardowns := s.teardowns
	s.teardowns = nil
	s.mu.Unlock()

	var panics []*gferrors.PanicError
	for i := len(teardowns) - 1; i >= 0; i-- {
		panics = append(panics, runTeardown(teardowns[i])...)
	}

	if len(panics) > 0 {
		relErr := &ReleaseError{Panics: panics}
		logger().Error("teardown panicked during release",
			zap.Int("panics", len(panics)), zap.Error(relErr))
		panic(relErr)
	}
}

// runTeardown flattens nested release failures so the outermost
// ReleaseError lists every panic once.
func runTeardown(td Teardown) (panics []*gferrors.PanicError) {
	defer func() {
		if r := recover(); r != nil {
			if nested, ok := r.(*ReleaseError); ok {
				panics = nested.Panics
				return
			}
			panics = []*gferrors.PanicError{gferrors.NewPanicError(r)}
		}
	}()
	td.Release()
	return nil
}

func sameTeardown(a, b Teardown) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// AwaitTeardown returns a Teardown for a teardown that is not known yet.
// The resolved teardown is released once both the promise has settled and
// the returned Teardown has been released, in whichever order that happens.
// A rejected promise has nothing to release.
func AwaitTeardown(p *promise.Promise[Teardown]) Teardown {
	var (
		mu       sync.Mutex
		released bool
		resolved Teardown
	)

	p.Then(func(td Teardown, err error) {
		if err != nil || td == nil {
			return
		}
		mu.Lock()
		if !released {
			resolved = td
			mu.Unlock()
			return
		}
		mu.Unlock()
		td.Release()
	})

	return TeardownFunc(func() {
		mu.Lock()
		if released {
			mu.Unlock()
			return
		}
		released = true
		td := resolved
		resolved = nil
		mu.Unlock()
		if td != nil {
			td.Release()
		}
	})
}
