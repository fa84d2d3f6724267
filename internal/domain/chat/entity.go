package chat

import (
	"database/sql"
	"fmt"
	"time"

	"parley-chat/internal/domain/message"
	"parley-chat/internal/domain/user"
)

// Chat represents the chats table
type Chat struct {
	ID             int64
	IsPrivate      bool
	Title          sql.NullString
	CreatedBy      int64
	PrivatePairKey sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Participant represents the chat_participants table
type Participant struct {
	ChatID    int64
	UserID    int64
	CreatedAt time.Time

	// Relationships
	User user.Public
}

// Details is a chat loaded with its most recent message and full participant list.
// LastMessage is nil for a chat without messages.
type Details struct {
	Chat
	LastMessage  *message.Message
	Participants []Participant
}

func (d Details) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(d.Participants))
	for _, p := range d.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// PairKey is the dedup key of the private chat between a and b, independent of order.
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
