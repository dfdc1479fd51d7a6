package libraries

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultEventChannel is the Redis channel shared by every instance.
const DefaultEventChannel = "chat_events"

// EventBus delivers chat events to every connected websocket client.
type EventBus interface {
	Publish(ctx context.Context, msg WebSocketMessage) error
}

// LocalBus broadcasts to the hub of this process only.
type LocalBus struct {
	hub *Hub
}

func NewLocalBus(hub *Hub) *LocalBus {
	return &LocalBus{hub: hub}
}

func (b *LocalBus) Publish(_ context.Context, msg WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	b.hub.BroadcastMessage(data)
	return nil
}

// RedisBus publishes events on a Redis channel and forwards everything it
// receives on that channel to the local hub, so clients connected to any
// instance see the same events.
type RedisBus struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBus(client *redis.Client, channel string, hub *Hub) *RedisBus {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &RedisBus{client: client, channel: channel, hub: hub}
}

// NewRedisClient parses redisURL and checks the server answers.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func (b *RedisBus) Publish(ctx context.Context, msg WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Start subscribes to the channel and forwards messages to the hub until
// ctx is cancelled. It returns once the subscription is confirmed.
func (b *RedisBus) Start(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					log.Printf("redis subscription to %s closed", b.channel)
					return
				}
				b.hub.BroadcastMessage([]byte(msg.Payload))
			}
		}
	}()
	return nil
}
