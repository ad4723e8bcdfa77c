package sources_test

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/asyncflow/pkg/metrics"
	"github.com/vnykmshr/asyncflow/pkg/streaming/sources"
)

type fastSchedule time.Duration

func (f fastSchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(f)) }

func ExampleCron() {
	ticks, err := sources.Cron(sources.CronConfig{
		Name:     "heartbeat",
		Schedule: fastSchedule(time.Millisecond),
		Limit:    3,
		Registry: metrics.NewRegistry(prometheus.NewRegistry()),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	done := make(chan struct{})
	n := 0
	_, err = ticks.SubscribeFuncs(
		func(time.Time) error {
			n++
			fmt.Println("tick", n)
			return nil
		},
		nil,
		func() error {
			close(done)
			return nil
		},
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	<-done
	fmt.Println("done")

	// Output:
	// tick 1
	// tick 2
	// tick 3
	// done
}
