/*
Package workerpool runs tasks on a fixed set of goroutines and reports each
task's outcome through a pending token.

A worker pool bounds how much work runs at once. Submit never waits for the
task itself, only for queue space, and returns a *promise.Promise that settles
when the task finishes:

	pool, err := workerpool.New(4, 100) // 4 workers, queue size 100
	if err != nil {
		return err
	}
	defer pool.Shutdown()

	token := pool.Submit(ctx, workerpool.TaskFunc(func(ctx context.Context) error {
		return process(ctx)
	}))
	if _, err := token.Await(ctx); err != nil {
		log.Printf("task failed: %v", err)
	}

Stream Handlers:

Tokens are exactly what asynchronous stream handlers return, so a pool can
serve as the execution layer of a subscription:

	sub, err := events.SubscribeAsync(
		workerpool.Handler(pool, func(ctx context.Context, e Event) error {
			return store(ctx, e)
		}),
		onError, onComplete,
	)

Values are handed to the pool as they arrive. A producer that wants at most
one value in flight awaits each token (stream.EmitAwaiting,
stream.FromSliceAwaiting).

Configuration:

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		Name:        "ingest",
		WorkerCount: 8,
		QueueSize:   256,
		TaskTimeout: 30 * time.Second,
		Logger:      logger,
		Registry:    metrics.DefaultRegistry,
		OnTaskComplete: func(r workerpool.Result) {
			if r.Error != nil {
				logger.Warn("task failed", zap.Error(r.Error))
			}
		},
	})

Panics inside tasks are recovered and reject the token with a
*errors.PanicError. Submitting to a pool that has been shut down rejects the
token with errors.ErrClosed.

Shutdown:

Shutdown stops accepting tasks, lets the workers drain the queue and closes
the returned channel once they have exited. ShutdownContext waits with a
deadline.
*/
package workerpool
