package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder captures the signals a subscriber receives, in order. Its
// handler methods match the stream handler signatures.
type Recorder[T any] struct {
	mu     sync.Mutex
	events []string
	values []T
	err    error

	// FailOn, when set, makes Next fail for values it returns an error for.
	FailOn func(T) error
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Next records value and returns FailOn's verdict.
func (r *Recorder[T]) Next(value T) error {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf("next:%v", value))
	r.values = append(r.values, value)
	failOn := r.FailOn
	r.mu.Unlock()

	if failOn != nil {
		return failOn(value)
	}
	return nil
}

// Error records err.
func (r *Recorder[T]) Error(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("error:%v", err))
	r.err = err
	return nil
}

// Complete records completion.
func (r *Recorder[T]) Complete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "complete")
	return nil
}

// Events returns a copy of all recorded signals.
func (r *Recorder[T]) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Values returns a copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// Err returns the recorded error, if any.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Terminated reports whether an error or completion was recorded.
func (r *Recorder[T]) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == "complete" || strings.HasPrefix(e, "error:") {
			return true
		}
	}
	return false
}
