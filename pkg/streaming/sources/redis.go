package sources

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/common/validation"
	"github.com/vnykmshr/asyncflow/pkg/metrics"
	"github.com/vnykmshr/asyncflow/pkg/streaming/stream"
)

// Message is one pub/sub message received from Redis.
type Message struct {
	Channel string
	Pattern string
	Payload string
}

// RedisConfig configures a Redis pub/sub stream.
type RedisConfig struct {
	// Client is the Redis client to subscribe with.
	Client redis.UniversalClient

	// Channels are the channels, or patterns when Pattern is set, to listen on.
	Channels []string

	// Pattern subscribes with PSUBSCRIBE instead of SUBSCRIBE.
	Pattern bool

	// Name identifies the source in logs and metrics (default: first channel).
	Name string

	// SubscribeTimeout bounds waiting for the subscription to be confirmed.
	SubscribeTimeout time.Duration

	// Logger receives source diagnostics (default: no-op).
	Logger *zap.Logger

	// Registry receives source metrics (default: metrics.DefaultRegistry).
	Registry *metrics.Registry
}

// DefaultRedisConfig returns a configuration with every optional field set.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		SubscribeTimeout: 5 * time.Second,
		Logger:           zap.NewNop(),
		Registry:         metrics.DefaultRegistry,
	}
}

// Validate checks the configuration.
func (c RedisConfig) Validate() error {
	if c.Client == nil {
		return validation.NotNil("redis", "Client", nil)
	}
	if len(c.Channels) == 0 {
		return gferrors.NewValidationError("redis", "Channels", c.Channels, "at least one channel is required")
	}
	for _, ch := range c.Channels {
		if err := validation.NotEmpty("redis", "Channels", ch); err != nil {
			return err
		}
	}
	return validation.NonNegative("redis", "SubscribeTimeout", c.SubscribeTimeout)
}

func (c RedisConfig) withDefaults() RedisConfig {
	d := DefaultRedisConfig()
	if c.Name == "" {
		c.Name = c.Channels[0]
	}
	if c.SubscribeTimeout == 0 {
		c.SubscribeTimeout = d.SubscribeTimeout
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Registry == nil {
		c.Registry = d.Registry
	}
	return c
}

// Redis returns a stream of the messages published on the configured
// channels. Subscribe blocks until Redis confirms the subscription and
// fails if it cannot. Messages are emitted from a receive goroutine; a
// connection failure errors the stream and releasing the subscription
// unsubscribes.
func Redis(config RedisConfig) (*stream.Stream[Message], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	log := config.Logger.With(zap.String("source", "redis"), zap.String("name", config.Name))
	events := config.Registry.SourceEvents.WithLabelValues("redis", config.Name)

	return stream.New(func(sub *stream.Subscriber[Message]) (stream.Teardown, error) {
		ctx, cancel := context.WithCancel(context.Background())

		var ps *redis.PubSub
		if config.Pattern {
			ps = config.Client.PSubscribe(ctx, config.Channels...)
		} else {
			ps = config.Client.Subscribe(ctx, config.Channels...)
		}

		confirmCtx, confirmCancel := context.WithTimeout(ctx, config.SubscribeTimeout)
		_, err := ps.Receive(confirmCtx)
		confirmCancel()
		if err != nil {
			cancel()
			_ = ps.Close()
			return nil, gferrors.NewOperationError("redis", "subscribe", err).
				WithContext("name=" + config.Name)
		}
		log.Debug("redis source subscribed", zap.Strings("channels", config.Channels))

		go func() {
			for {
				msg, err := ps.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) || sub.Stopped() {
						return
					}
					log.Warn("redis receive failed", zap.Error(err))
					if herr := sub.Error(gferrors.NewOperationError("redis", "receive", err)); herr != nil {
						log.Debug("error handler failed", zap.Error(herr))
					}
					return
				}
				if sub.Stopped() {
					return
				}

				events.Inc()
				if _, err := sub.Next(Message{Channel: msg.Channel, Pattern: msg.Pattern, Payload: msg.Payload}); err != nil {
					log.Debug("message handler failed, unsubscribing", zap.Error(err))
					return
				}
			}
		}()

		return stream.TeardownFunc(func() {
			cancel()
			if err := ps.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				log.Debug("closing pubsub failed", zap.Error(err))
			}
		}), nil
	}), nil
}

// Publish returns a value handler that publishes every value to channel.
// A failed publish fails the handler and so ends the subscription.
func Publish(client redis.UniversalClient, channel string) stream.NextFunc[string] {
	return func(value string) error {
		if err := client.Publish(context.Background(), channel, value).Err(); err != nil {
			return gferrors.NewOperationError("redis", "publish", err).WithContext("channel=" + channel)
		}
		return nil
	}
}
