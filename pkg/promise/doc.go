/*
Package promise provides the pending token used by asynchronous stream handlers.

A Promise has three states: pending, fulfilled and rejected. It leaves the
pending state exactly once and its outcome never changes afterwards.

Basic usage:

	p := promise.New(func(resolve func(int), reject func(error)) {
		go func() {
			v, err := fetch()
			if err != nil {
				reject(err)
				return
			}
			resolve(v)
		}()
	})

	v, err := p.Await(ctx)

A Promise[Void] carries no payload and stands in for a handler that finished
its work later rather than on return. Factory is the constructor signature
used by stream.ForEach; Default is the ambient factory.

Helpers:

  - Resolved / Rejected: already-settled promises
  - Go: run a function on its own goroutine
  - All: wait for several promises, failing fast on the first rejection
*/
package promise
