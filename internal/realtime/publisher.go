package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Event names broadcast to connected clients
const (
	EventPostCreated = "postCreated"
	EventPostDeleted = "postDeleted"
	EventUpdatePost  = "updatePost"
)

const eventsChannel = "events:posts"

// Publisher emits a post event towards connected clients. Emission is
// fire-and-forget and best-effort.
type Publisher interface {
	Publish(ctx context.Context, event string) error
}

// HubPublisher broadcasts directly to a local hub. Used when no redis is
// configured (single instance).
type HubPublisher struct {
	hub *Hub
}

// NewHubPublisher creates a new HubPublisher
func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// Publish broadcasts the event to the local hub
func (p *HubPublisher) Publish(ctx context.Context, event string) error {
	p.hub.Broadcast(event)
	return nil
}

// RedisPublisher bridges events through a redis channel so every instance's hub
// sees them
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a new RedisPublisher
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends the event name to the shared channel
func (p *RedisPublisher) Publish(ctx context.Context, event string) error {
	if p.rdb == nil {
		return nil
	}
	return p.rdb.Publish(ctx, eventsChannel, event).Err()
}

// StartSubscriber forwards every event from the shared channel to onEvent until
// the context is cancelled
func (p *RedisPublisher) StartSubscriber(ctx context.Context, onEvent func(event string)) error {
	if p.rdb == nil {
		return nil
	}
	sub := p.rdb.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onEvent(msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// StartWiring connects a RedisPublisher's subscription side to the hub
func (h *Hub) StartWiring(ctx context.Context, p *RedisPublisher) error {
	return p.StartSubscriber(ctx, h.Broadcast)
}
