/*
Package writer provides a buffered, background-flushing io.Writer wrapper
that doubles as an asynchronous stream sink.

Every Write returns a pending token that settles once the written bytes have
reached the underlying writer, so writes never block on I/O while callers
that care about durability can still wait for it:

	w, err := writer.New(file, writer.Config{
		BufferSize:    64 * 1024,
		FlushInterval: time.Second,
		MaxRetries:    3,
		RetryDelay:    100 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	token := w.WriteString("hello\n")
	if _, err := token.Await(ctx); err != nil {
		log.Printf("write failed: %v", err)
	}

Flushing:

The buffer is flushed when it reaches BufferSize, every FlushInterval, on
Flush and on Close. A failed write is retried MaxRetries times; when it still
fails, every token of that flush is rejected with an *errors.OperationError.

Stream Sinks:

Handler and Lines adapt a Writer into asynchronous value handlers. Sink also
flushes when the stream completes, so a successful completion means the
output was written:

	_, err := events.Subscribe(writer.Sink(w, Event.String))

Writes after Close are rejected with errors.ErrClosed.
*/
package writer
