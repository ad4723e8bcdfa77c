/*
Package streaming groups the asyncflow streaming packages.

  - stream: push-based streams with asynchronous handlers, subscriptions and operators
  - sources: producers backed by external systems (cron schedules, Redis pub/sub)
  - writer: buffered asynchronous writer usable as a stream sink

Basic usage:

	sub, err := stream.FromSlice([]string{"a", "b"}).
		Map(strings.ToUpper).
		SubscribeFuncs(func(s string) error {
			fmt.Println(s)
			return nil
		}, nil, nil)

Writing a stream to a file:

	w, _ := writer.New(file, writer.DefaultConfig())
	defer w.Close()

	_, err := lines.Subscribe(writer.Sink(w, strings.TrimSpace))
*/
package streaming
