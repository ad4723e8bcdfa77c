/*
Package asyncflow provides push-based streams for Go with asynchronous
handlers, setup-time error propagation and pluggable completion tokens.

Streaming (pkg/streaming):
  - stream: Subscribers, subscriptions, operators and ForEach
  - sources: Cron schedules and Redis pub/sub as streams
  - writer: Buffered asynchronous writing as a stream sink

Task Execution (pkg/scheduling):
  - workerpool: Pool-backed asynchronous handlers

Supporting packages:
  - promise: Completion tokens returned by asynchronous handlers
  - metrics: Prometheus instrumentation
  - common/errors, common/validation: Error types and configuration checks

Example usage:

	import (
		"github.com/vnykmshr/asyncflow/pkg/scheduling/workerpool"
		"github.com/vnykmshr/asyncflow/pkg/streaming/stream"
	)

	pool, _ := workerpool.New(5, 100) // 5 workers, queue 100

	_, err := stream.FromSlice(orders).Subscribe(stream.Observer[Order]{
		NextAsync: workerpool.Handler(pool, saveOrder),
		Error:     logFailure,
	})
	if err != nil {
		// a handler failed while the source was still running
	}
*/
package asyncflow
