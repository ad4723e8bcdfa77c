// Package metrics provides Prometheus instrumentation for asyncflow streams.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for asyncflow components.
type Registry struct {
	// Subscription Metrics
	StreamSubscriptions       *prometheus.CounterVec
	StreamActiveSubscriptions *prometheus.GaugeVec
	StreamSetupErrors         *prometheus.CounterVec

	// Emission Metrics
	StreamItems       *prometheus.CounterVec
	StreamErrors      *prometheus.CounterVec
	StreamCompletions *prometheus.CounterVec

	// Asynchronous Handler Metrics
	HandlersPending *prometheus.GaugeVec
	HandlerDuration *prometheus.HistogramVec

	// Source Metrics
	SourceEvents *prometheus.CounterVec

	// Worker Pool Metrics
	WorkerPoolWorkers      *prometheus.GaugeVec
	WorkerPoolActive       *prometheus.GaugeVec
	WorkerPoolQueued       *prometheus.GaugeVec
	WorkerPoolTasks        *prometheus.CounterVec
	WorkerPoolTaskDuration *prometheus.HistogramVec

	// Writer Sink Metrics
	WriterBytes   *prometheus.CounterVec
	WriterFlushes *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by asyncflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels of config. A nil config.Registry means prometheus.DefaultRegisterer.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(config.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(config.Labels, reg)
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	factory := promauto.With(reg)

	return &Registry{
		StreamSubscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "subscriptions_total",
				Help:      "Total number of subscriptions opened",
			},
			[]string{"stream_name"},
		),

		StreamActiveSubscriptions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "active_subscriptions",
				Help:      "Number of subscriptions not yet released",
			},
			[]string{"stream_name"},
		),

		StreamSetupErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "setup_errors_total",
				Help:      "Total number of subscriptions that failed while subscribing",
			},
			[]string{"stream_name"},
		),

		StreamItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "items_total",
				Help:      "Total number of values delivered to subscribers",
			},
			[]string{"stream_name"},
		),

		StreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "errors_total",
				Help:      "Total number of stream and handler errors",
			},
			[]string{"stream_name", "kind"},
		),

		StreamCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "completions_total",
				Help:      "Total number of subscriptions that completed normally",
			},
			[]string{"stream_name"},
		),

		HandlersPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "handler",
				Name:      "pending",
				Help:      "Number of asynchronous handler tokens not yet settled",
			},
			[]string{"stream_name"},
		),

		HandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "handler",
				Name:      "duration_seconds",
				Help:      "Time from emission until the handler's pending token settled",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stream_name"},
		),

		SourceEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "source",
				Name:      "events_total",
				Help:      "Total number of events received by external sources",
			},
			[]string{"source_type", "source_name"},
		),

		WorkerPoolWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "workers",
				Help:      "Number of workers in the pool",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of workers currently executing a task",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of tasks waiting for a worker",
			},
			[]string{"pool_name"},
		),

		WorkerPoolTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "tasks_total",
				Help:      "Total number of tasks executed, by outcome",
			},
			[]string{"pool_name", "status"},
		),

		WorkerPoolTaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workerpool",
				Name:      "task_duration_seconds",
				Help:      "Task execution time",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		WriterBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "bytes_total",
				Help:      "Total number of bytes flushed to the underlying writer",
			},
			[]string{"writer_name"},
		),

		WriterFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "flushes_total",
				Help:      "Total number of flushes, by outcome",
			},
			[]string{"writer_name", "status"},
		),
	}
}
