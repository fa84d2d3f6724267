package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"parley-chat/internal/domain/message"
	"parley-chat/internal/proxy"
	"parley-chat/internal/repository"
	parley_errors "parley-chat/pkg/errors"
)

const (
	DefaultMessagePageSize = 15
	MaxMessagePageSize     = 100

	// maxMessageOffset keeps OFFSET inside a Postgres integer.
	maxMessageOffset = math.MaxInt32
)

type MessageService struct {
	messageRepo     repository.MessageRepository
	access          *proxy.AccessControl
	notifier        MessageNotifier
	defaultPageSize int
	maxPageSize     int
}

func NewMessageService(messageRepo repository.MessageRepository, access *proxy.AccessControl, notifier MessageNotifier) *MessageService {
	return &MessageService{
		messageRepo:     messageRepo,
		access:          access,
		notifier:        notifier,
		defaultPageSize: DefaultMessagePageSize,
		maxPageSize:     MaxMessagePageSize,
	}
}

// WithPageSizes overrides the default and maximum page size. Non-positive values are ignored.
func (s *MessageService) WithPageSizes(defaultSize, maxSize int) *MessageService {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// ListMessagesInput selects one page of a chat. PageSize 0 means the default size.
type ListMessagesInput struct {
	ChatID   int64 `json:"chat_id" validate:"required,gt=0"`
	Page     int   `json:"page" validate:"required,min=1"`
	PageSize int   `json:"page_size" validate:"min=0"`
}

type AppendMessageInput struct {
	ChatID              int64  `json:"chat_id" validate:"required,gt=0"`
	Content             string `json:"content" validate:"required,max=5000"`
	ExcludeConnectionID string `json:"-"`
}

// List returns one page of messages, newest first. HasMore is derived from
// fetching one extra row, so no total count is computed.
func (s *MessageService) List(ctx context.Context, viewerID int64, in ListMessagesInput) (message.Page, error) {
	if err := validateInput(in); err != nil {
		return message.Page{}, err
	}
	pageSize := in.PageSize
	if pageSize == 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	if in.Page-1 > maxMessageOffset/pageSize {
		return message.Page{}, parley_errors.NewValidationError("page", "is too large")
	}

	if err := s.access.CanViewChat(ctx, viewerID, in.ChatID); err != nil {
		return message.Page{}, err
	}

	items, err := s.messageRepo.ListByChat(ctx, in.ChatID, pageSize+1, (in.Page-1)*pageSize)
	if err != nil {
		return message.Page{}, fmt.Errorf("list messages: %w", err)
	}

	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
	}
	return message.Page{
		Items:    items,
		Page:     in.Page,
		PageSize: pageSize,
		HasMore:  hasMore,
	}, nil
}

// Append stores a message from authorID, touches the chat, then notifies the
// other subscribers of the chat. Notification never fails the call.
func (s *MessageService) Append(ctx context.Context, authorID int64, in AppendMessageInput) (message.Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
	if err := validateInput(in); err != nil {
		return message.Message{}, err
	}

	if err := s.access.CanPostMessage(ctx, authorID, in.ChatID); err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return message.Message{}, parley_errors.NewValidationError("chat_id", "does not exist")
		}
		return message.Message{}, err
	}

	msg := message.Message{
		ChatID:  in.ChatID,
		UserID:  authorID,
		Content: in.Content,
	}
	if err := s.messageRepo.Append(ctx, &msg); err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return message.Message{}, parley_errors.NewValidationError("chat_id", "does not exist")
		}
		return message.Message{}, fmt.Errorf("append message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageCreated(msg, in.ExcludeConnectionID)
	}
	return msg, nil
}
