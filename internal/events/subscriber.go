//go:generate go run go.uber.org/mock/mockgen -source=subscriber.go -destination=../mocks/mock_events.go -package=mocks
package events

import "context"

type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
