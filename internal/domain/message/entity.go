package message

import (
	"time"

	"parley-chat/internal/domain/user"
)

// Message represents the chat_messages table
type Message struct {
	ID        int64
	ChatID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time

	// Relationships
	Author *user.Public
}

// Page is one page of a newest-first message listing. HasMore is computed
// without counting the whole chat.
type Page struct {
	Items    []Message
	Page     int
	PageSize int
	HasMore  bool
}
