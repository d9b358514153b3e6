// Package realtime fans bookmark sync events out over per-user Redis
// pub/sub channels. Delivery is best effort: no persistence, no replay,
// no ordering guarantee across sessions.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/logger"
)

// ChannelName returns the pub/sub channel carrying one user's events.
// User-scoped naming is what prevents cross-user leakage; the broker never
// mixes channels.
func ChannelName(userID string) string {
	return "bookmarks:" + userID
}

// Broker publishes and subscribes sync events through Redis.
type Broker struct {
	client *redis.Client
	logger logger.Logger
}

func NewBroker(client *redis.Client, log logger.Logger) *Broker {
	return &Broker{client: client, logger: log}
}

// Publish sends one event on the originating user's channel.
func (b *Broker) Publish(ctx context.Context, ev domain.SyncEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("refusing to publish: %w", err)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal sync event: %w", err)
	}
	if err := b.client.Publish(ctx, ChannelName(ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}
	return nil
}

// Subscribe opens a subscription to one user's channel. The returned
// subscription delivers decoded events until Close is called or ctx ends.
func (b *Broker) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, ChannelName(userID))

	// Force the SUBSCRIBE round trip so a dead broker fails here,
	// not silently in the receive loop.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelName(userID), err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan domain.SyncEvent, 16),
		logger: b.logger,
	}
	go sub.receive(ctx)
	return sub, nil
}

// Subscription is one live, user-scoped event feed.
type Subscription struct {
	pubsub *redis.PubSub
	events chan domain.SyncEvent
	logger logger.Logger
}

// Events delivers decoded sync events. The channel is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan domain.SyncEvent {
	return s.events
}

// Close releases the underlying pub/sub connection.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

func (s *Subscription) receive(ctx context.Context) {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := domain.DecodeSyncEvent([]byte(msg.Payload))
			if err != nil {
				s.logger.Warn("dropping malformed sync event",
					logger.String("channel", msg.Channel),
					logger.Error(err))
				continue
			}
			select {
			case s.events <- ev:
			default:
				// A stalled consumer loses events rather than blocking
				// the receive loop; the list endpoint is the source of
				// truth anyway.
				s.logger.Warn("dropping sync event for slow subscriber",
					logger.String("channel", msg.Channel))
			}
		}
	}
}
