package redis

import (
	"context"
	"fmt"

	"parley-chat/internal/events"

	"github.com/redis/go-redis/v9"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher sends encoded events with PUBLISH. Delivery is at-most-once:
// nodes that are not subscribed at that moment never see the event.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
