package workerpool_test

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vnykmshr/asyncflow/pkg/scheduling/workerpool"
	"github.com/vnykmshr/asyncflow/pkg/streaming/stream"
)

func ExamplePool_Submit() {
	pool, err := workerpool.New(2, 10)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer func() { <-pool.Shutdown() }()

	token := pool.Submit(context.Background(), workerpool.TaskFunc(func(ctx context.Context) error {
		fmt.Println("working")
		return nil
	}))

	_, err = token.Await(context.Background())
	fmt.Println("settled:", err)

	// Output:
	// working
	// settled: <nil>
}

func ExampleHandler() {
	pool, err := workerpool.New(4, 16)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	var total atomic.Int64
	_, err = stream.Of(1, 2, 3, 4).SubscribeAsync(
		workerpool.Handler(pool, func(_ context.Context, n int) error {
			total.Add(int64(n * n))
			return nil
		}),
		nil, nil,
	)
	if err != nil {
		fmt.Println("error:", err)
	}

	<-pool.Shutdown()
	fmt.Println("sum of squares:", total.Load())

	// Output:
	// sum of squares: 30
}
