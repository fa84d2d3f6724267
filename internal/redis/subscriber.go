package redis

import (
	"context"
	"fmt"

	"parley-chat/internal/events"

	"github.com/redis/go-redis/v9"
)

var _ events.Subscriber = (*Subscriber)(nil)

// Subscriber feeds pattern subscriptions to a handler, one message at a time.
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe pattern-subscribes to patterns and calls handler for every message.
// It returns nil once ctx is cancelled and an error if the subscription is
// refused or the connection fails.
func (s *Subscriber) Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error {
	sub := s.client.PSubscribe(ctx, patterns...)
	defer sub.Close()

	// wait for the confirmation so a refused subscription fails fast
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("psubscribe %v: %w", patterns, err)
	}

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		handler(msg.Channel, []byte(msg.Payload))
	}
}
