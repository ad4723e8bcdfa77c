package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_basicUsage demonstrates basic metrics configuration.
func Example_basicUsage() {
	// Create a separate registry for this example
	registry := NewRegistry(prometheus.NewRegistry())

	registry.StreamSubscriptions.WithLabelValues("orders").Inc()
	registry.StreamItems.WithLabelValues("orders").Add(3)
	registry.StreamCompletions.WithLabelValues("orders").Inc()

	fmt.Println(testutil.ToFloat64(registry.StreamItems.WithLabelValues("orders")))
	// Output: 3
}

// Example_customRegistry demonstrates namespaces and constant labels.
func Example_customRegistry() {
	reg := prometheus.NewRegistry()

	registry := Config{
		Enabled:   true,
		Registry:  reg,
		Namespace: "billing",
		Labels:    prometheus.Labels{"service": "invoices"},
	}.Build()

	registry.StreamErrors.WithLabelValues("payments", "handler").Inc()

	families, _ := reg.Gather()
	for _, mf := range families {
		fmt.Println(mf.GetName(), mf.GetMetric()[0].GetLabel()[1].GetValue())
	}
	// Output: billing_stream_errors_total invoices
}
