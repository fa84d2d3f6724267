//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../mocks/mock_repository.go -package=mocks
package repository

import (
	"context"

	"parley-chat/internal/domain/chat"
	"parley-chat/internal/domain/message"
	"parley-chat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// ListUsersExcept pages through every user other than excludeID, newest first.
	ListUsersExcept(ctx context.Context, excludeID int64, page, limit int) ([]user.User, int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

type ChatRepository interface {
	// FindPrivateChat returns the private chat both users participate in, or ErrNotFound.
	FindPrivateChat(ctx context.Context, userA, userB int64) (chat.Details, error)
	// CreateWithParticipants inserts the chat and its participant rows in one transaction.
	// A concurrent duplicate private chat yields ErrAlreadyExists.
	CreateWithParticipants(ctx context.Context, c *chat.Chat, userIDs []int64) error
	GetDetails(ctx context.Context, chatID int64) (chat.Details, error)
	ListForUser(ctx context.Context, userID int64, isPrivate bool) ([]chat.Details, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
	Exists(ctx context.Context, chatID int64) (bool, error)
}

type MessageRepository interface {
	// Append touches the chat and inserts msg in one transaction, then fills ID,
	// CreatedAt and Author. An unknown chat yields ErrNotFound.
	Append(ctx context.Context, msg *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Message, error)
	ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]message.Message, error)
}
