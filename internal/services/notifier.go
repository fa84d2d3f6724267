//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
package services

import "parley-chat/internal/domain/message"

// MessageNotifier announces stored messages to realtime subscribers.
// Implementations must not block the caller.
type MessageNotifier interface {
	MessageCreated(msg message.Message, excludeConnectionID string)
}
