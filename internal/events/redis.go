package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/matchbox/internal/config"
)

// NewRedisClient initializes a Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisClient(cfg *config.Config) *redis.Client {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return redis.NewClient(opts)
}

// RedisBus relays events through a Redis channel so that every process
// subscribed to the same channel fans them out to its local listeners.
// Events are JSON encoded. There is no replay: listeners only see events
// published while they are subscribed.
type RedisBus[T any] struct {
	client  *redis.Client
	channel string
	local   *LocalBus[T]
	pubsub  *redis.PubSub
	log     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisBus subscribes to channel and starts relaying. It returns once
// Redis has confirmed the subscription.
func NewRedisBus[T any](ctx context.Context, client *redis.Client, channel string, log *slog.Logger, opts ...Option) (*RedisBus[T], error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	relayCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus[T]{
		client:  client,
		channel: channel,
		local:   NewLocalBus[T](log, opts...),
		pubsub:  pubsub,
		log:     log,
		cancel:  cancel,
	}

	b.wg.Add(1)
	go b.relay(relayCtx)
	return b, nil
}

func (b *RedisBus[T]) relay(ctx context.Context) {
	defer b.wg.Done()
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event T
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Error("failed to decode event", "channel", msg.Channel, "err", err)
				continue
			}
			_ = b.local.Publish(ctx, event)
		}
	}
}

func (b *RedisBus[T]) Publish(ctx context.Context, event T) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	return b.local.Subscribe(ctx)
}

func (b *RedisBus[T]) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()
	_ = b.local.Close()
	return err
}
