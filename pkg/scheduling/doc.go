/*
Package scheduling provides task execution primitives that back
asynchronous stream handlers.

  - workerpool: fixed worker pool whose submissions return pending tokens

Worker Pool:

The worker pool provides controlled concurrent execution:

	pool, _ := workerpool.New(4, 100) // 4 workers, queue size 100
	defer func() { <-pool.Shutdown() }()

	token := pool.Submit(ctx, workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	}))
	_, err := token.Await(ctx)

A pool also serves directly as a stream handler:

	s.Subscribe(stream.Observer[Order]{
		NextAsync: workerpool.Handler(pool, processOrder),
	})

The pool is safe for concurrent use and honors context cancellation while
a task waits for queue space.
*/
package scheduling
