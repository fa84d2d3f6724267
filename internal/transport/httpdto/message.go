package httpdto

import (
	"time"

	"parley-chat/internal/domain/message"
)

// SendMessageRequest is used for POST /chats/:id/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ListMessagesRequest holds query parameters for GET /chats/:id/messages
type ListMessagesRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type MessageDTO struct {
	ID        int64    `json:"id"`
	ChatID    int64    `json:"chat_id"`
	UserID    int64    `json:"user_id"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	User      *UserDTO `json:"user,omitempty"`
}

type MessagePageResponse struct {
	Messages []MessageDTO `json:"messages"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	HasMore  bool         `json:"has_more"`
	NextPage *int         `json:"next_page"`
}

func FromMessage(m message.Message) MessageDTO {
	dto := MessageDTO{
		ID:        m.ID,
		ChatID:    m.ChatID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if m.Author != nil {
		author := FromPublicUser(*m.Author)
		dto.User = &author
	}
	return dto
}

func FromMessageSlice(messages []message.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = FromMessage(m)
	}
	return dtos
}

func FromMessagePage(p message.Page) MessagePageResponse {
	resp := MessagePageResponse{
		Messages: FromMessageSlice(p.Items),
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.HasMore,
	}
	if p.HasMore {
		next := p.Page + 1
		resp.NextPage = &next
	}
	return resp
}
