package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/config"
	"github.com/dengueguard/monitor/metrics"
)

// RedisBus publishes events to a redis channel and relays everything received on
// that channel into the local hub, so dashboards connected to any instance see
// events raised by every instance.
type RedisBus struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

var _ Publisher = &RedisBus{}

func NewRedisBus(client *redis.Client, channel string, hub *Hub, logger *zap.SugaredLogger, m *metrics.Metrics) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
		metrics: m,
	}
}

// NewPublisher returns the local hub, or a redis backed bus when a redis url is configured
func NewPublisher(cfg *config.Config, hub *Hub, logger *zap.SugaredLogger, m *metrics.Metrics, lifecycle fx.Lifecycle) (Publisher, error) {
	if cfg.RedisURL == "" {
		logger.Infow("publishing events to local dashboards only")
		return hub, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis url: %w", err)
	}

	bus := NewRedisBus(redis.NewClient(opts), cfg.RedisChannel, hub, logger, m)
	lifecycle.Append(fx.Hook{
		OnStart: bus.Start,
		OnStop:  bus.Stop,
	})

	return bus, nil
}

func (b *RedisBus) Publish(ctx context.Context, name string, payload any) error {
	event, err := NewEvent(name, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("unable to marshal %s event: %w", name, err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("unable to publish %s event: %w", name, err)
	}

	b.metrics.EventsPublished.WithLabelValues(name).Inc()
	return nil
}

// Start subscribes to the channel and starts relaying events into the hub
func (b *RedisBus) Start(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("unable to connect to redis: %w", err)
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("unable to subscribe to %s: %w", b.channel, err)
	}
	b.pubsub = pubsub

	b.wg.Add(1)
	go b.relay(pubsub.Channel())

	b.logger.Infow("relaying events through redis", "channel", b.channel)
	return nil
}

func (b *RedisBus) relay(messages <-chan *redis.Message) {
	defer b.wg.Done()

	for msg := range messages {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.Warnw("ignoring malformed event", "channel", msg.Channel, "error", err)
			continue
		}
		b.hub.Broadcast(event)
	}
}

func (b *RedisBus) Stop(ctx context.Context) error {
	var err error
	if b.pubsub != nil {
		err = b.pubsub.Close()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if closeErr := b.client.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
