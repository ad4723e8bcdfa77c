package stream

import (
	"time"

	"github.com/vnykmshr/asyncflow/pkg/metrics"
)

// Instrument returns a stream that records subscription, emission and
// handler metrics for s under name. A nil registry uses
// metrics.DefaultRegistry.
//
// Handler failures during setup are only told apart from items when the
// instrumented stream is subscribed to directly; behind another operator
// they are counted as items.
func Instrument[T any](s *Stream[T], name string, registry *metrics.Registry) *Stream[T] {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}

	return s.Lift(OperatorFunc[T, T](func(sink *Subscriber[T], source *Stream[T]) (Teardown, error) {
		registry.StreamSubscriptions.WithLabelValues(name).Inc()
		active := registry.StreamActiveSubscriptions.WithLabelValues(name)
		active.Inc()
		sink.Add(TeardownFunc(active.Dec))

		td, err := subscribeForwarding(sink, source, Forwarder[T, T]{
			Next: func(sink *Subscriber[T], value T) (*Pending, error) {
				start := time.Now()
				inSetup := sink.window.isOpen()
				p, err := sink.Next(value)
				if err != nil {
					registry.StreamErrors.WithLabelValues(name, "handler").Inc()
					return p, err
				}
				// During setup a handler failure is recorded for Subscribe
				// and the emitting call sees no token and no error.
				if inSetup && p == nil && sink.Stopped() {
					registry.StreamErrors.WithLabelValues(name, "handler").Inc()
					return p, nil
				}
				registry.StreamItems.WithLabelValues(name).Inc()
				if p != nil && !p.Settled() {
					pending := registry.HandlersPending.WithLabelValues(name)
					pending.Inc()
					p.Then(func(struct{}, error) {
						pending.Dec()
						registry.HandlerDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
					})
				}
				return p, nil
			},
			Error: func(sink *Subscriber[T], err error) error {
				registry.StreamErrors.WithLabelValues(name, "stream").Inc()
				return sink.Error(err)
			},
			Complete: func(sink *Subscriber[T]) error {
				registry.StreamCompletions.WithLabelValues(name).Inc()
				return sink.Complete()
			},
		})
		if err != nil {
			registry.StreamSetupErrors.WithLabelValues(name).Inc()
		}
		return td, err
	}))
}
