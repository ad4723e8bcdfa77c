/*
Package stream provides push-based streams whose value handlers may finish
their work asynchronously.

A Stream wraps a producer. Subscribing runs the producer with a Subscriber,
and the producer pushes values with Next and terminates with Error or
Complete. Handlers can be plain functions or return a *Pending token from
the promise package when their work completes later.

Basic Usage:

	s := stream.New(func(sub *stream.Subscriber[int]) (stream.Teardown, error) {
		for _, v := range []int{1, 2, 3} {
			if sub.Stopped() {
				return nil, nil
			}
			if _, err := sub.Next(v); err != nil {
				return nil, err
			}
		}
		return nil, sub.Complete()
	})

	sub, err := s.SubscribeFuncs(
		func(v int) error { fmt.Println(v); return nil },
		func(err error) error { log.Print(err); return nil },
		func() error { fmt.Println("done"); return nil },
	)
	defer sub.Release()

Asynchronous Handlers:

An AsyncNextFunc returns a pending token. The subscriber hands that token
back to the producer from Next; the producer decides whether to await it
before emitting again. Nothing in this package waits on it:

	s.SubscribeAsync(func(v int) *stream.Pending {
		return promise.Go(ctx, func(ctx context.Context) (promise.Void, error) {
			return promise.Void{}, store(ctx, v)
		})
	}, nil, nil)

EmitAwaiting and FromSliceAwaiting are producers that do await each token.

Subscribe Targets:

Subscribe accepts a Target: an existing *Subscriber (used as is), an
Observer with optional handlers, a NextFunc, an AsyncNextFunc, or
Interop(provider) for foreign types exposing AsSubscriber. ToSubscriber
performs the same normalization.

Error Handling:

Handlers fail by returning an error or by panicking; panics are captured as
*errors.PanicError. Where a failure surfaces depends on when it happens:

  - While Subscribe is still running (the producer emitted synchronously),
    the failure is returned by Subscribe and the subscription is released.
  - After Subscribe returned (timers, goroutines, resolved promises), the
    failure is returned to the producer from the Next, Error or Complete
    call that triggered it, and the subscription is released.
  - An Error signal with no error handler registered is returned from Error.

Error and Complete are delivered at most once, and never after release.

Consuming With Promises:

ForEach returns a promise fulfilled on completion and rejected on error or
when the value handler fails:

	p, err := stream.FromSlice(items).ForEach(process, nil)
	if err != nil {
		return err // no promise factory configured
	}
	_, err = p.Await(ctx)

ForEachContext does the same and waits, releasing the subscription when ctx
is done.

Operators:

Lift derives a stream through an Operator. Map, MapTo, Filter, Take and Tap
are provided; NewForwardingSubscriber is the building block for others.

Resource Management:

Subscribe returns the Subscriber, which is also the subscription handle.
Release runs the producer's teardown and detaches the handlers. Teardowns
are composed with Subscription.Add and run in reverse order.

Thread Safety:

Subscriber state is safe for use from several goroutines, but a producer
must not call Next, Error and Complete on one subscriber concurrently.
*/
package stream
