// Package metrics provides Prometheus instrumentation for asyncflow streams.
//
// # Quick Start
//
// Wrap a stream with stream.Instrument and expose the registry:
//
//	registry := metrics.NewRegistry(prometheus.DefaultRegisterer)
//	orders := stream.Instrument(source, "orders", registry)
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	reg := prometheus.NewRegistry()
//	registry := metrics.Config{
//		Enabled:   true,
//		Registry:  reg,
//		Namespace: "myapp",
//		Labels:    prometheus.Labels{"service": "billing"},
//	}.Build()
//
// # Available Metrics
//
//   - asyncflow_stream_subscriptions_total: Total number of subscriptions opened
//   - asyncflow_stream_active_subscriptions: Number of subscriptions not yet released
//   - asyncflow_stream_setup_errors_total: Subscriptions that failed while subscribing
//   - asyncflow_stream_items_total: Values delivered to subscribers
//   - asyncflow_stream_errors_total: Stream and handler errors, by kind
//   - asyncflow_stream_completions_total: Subscriptions that completed normally
//   - asyncflow_handler_pending: Asynchronous handler tokens not yet settled
//   - asyncflow_handler_duration_seconds: Time until a handler's token settled
//   - asyncflow_source_events_total: Events received by cron and Redis sources
//
// # Labels
//
//   - stream_name: name passed to stream.Instrument
//   - kind: "stream" for errors signalled by the producer, "handler" for
//     handler failures reported back to the producer
//   - source_type: "cron" or "redis"
//   - source_name: name from the source configuration
package metrics
