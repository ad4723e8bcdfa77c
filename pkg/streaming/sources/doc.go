/*
Package sources provides streams backed by external event producers.

Cron emits the tick time on a cron schedule:

	ticks, err := sources.Cron(sources.CronConfig{
		Name:       "hourly-report",
		Expression: "@hourly",
	})
	if err != nil {
		return err
	}
	sub, err := ticks.SubscribeFuncs(func(t time.Time) error {
		return buildReport(t)
	}, nil, nil)
	defer sub.Release()

Redis emits the messages published on one or more pub/sub channels:

	msgs, err := sources.Redis(sources.RedisConfig{
		Client:   client,
		Channels: []string{"orders"},
	})

Both are cold: every subscription starts its own cron scheduler or Redis
subscription, and releasing the subscription stops it. Values are emitted
from background goroutines after Subscribe has returned, so handler failures
surface in the source's logs and end the subscription.
*/
package sources
