package httpdto

import (
	"time"

	"parley-chat/internal/domain/chat"
)

// CreateChatRequest is used for POST /chats
type CreateChatRequest struct {
	UserID int64  `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

// CreateGroupRequest is used for POST /chats/groups
type CreateGroupRequest struct {
	Title   string  `json:"title"`
	UserIDs []int64 `json:"user_ids"`
}

type ParticipantDTO struct {
	UserID   int64   `json:"user_id"`
	JoinedAt string  `json:"joined_at"`
	User     UserDTO `json:"user"`
}

type ChatDTO struct {
	ID           int64            `json:"id"`
	IsPrivate    bool             `json:"is_private"`
	Title        *string          `json:"title"`
	CreatedBy    int64            `json:"created_by"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
	LastMessage  *MessageDTO      `json:"last_message"`
	Participants []ParticipantDTO `json:"participants"`
}

type ListChatsResponse struct {
	Chats []ChatDTO `json:"chats"`
}

func FromChatDetails(d chat.Details) ChatDTO {
	dto := ChatDTO{
		ID:           d.ID,
		IsPrivate:    d.IsPrivate,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    d.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Participants: make([]ParticipantDTO, len(d.Participants)),
	}
	if d.Title.Valid {
		title := d.Title.String
		dto.Title = &title
	}
	if d.LastMessage != nil {
		last := FromMessage(*d.LastMessage)
		dto.LastMessage = &last
	}
	for i, p := range d.Participants {
		dto.Participants[i] = ParticipantDTO{
			UserID:   p.UserID,
			JoinedAt: p.CreatedAt.UTC().Format(time.RFC3339),
			User:     FromPublicUser(p.User),
		}
	}
	return dto
}

func FromChatDetailsSlice(chats []chat.Details) []ChatDTO {
	dtos := make([]ChatDTO, len(chats))
	for i, d := range chats {
		dtos[i] = FromChatDetails(d)
	}
	return dtos
}
