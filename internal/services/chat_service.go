package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"parley-chat/internal/domain/chat"
	"parley-chat/internal/proxy"
	"parley-chat/internal/repository"
	parley_errors "parley-chat/pkg/errors"
	"parley-chat/pkg/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	access   *proxy.AccessControl
	logger   *logger.Logger
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, access *proxy.AccessControl, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, access: access, logger: log}
}

// ListChatsOptions filters a chat listing. Private defaults to true.
type ListChatsOptions struct {
	Private *bool
}

func (o ListChatsOptions) private() bool {
	if o.Private == nil {
		return true
	}
	return *o.Private
}

// ChatAttributes are applied only when a chat is created.
type ChatAttributes struct {
	Title string
}

type CreateGroupInput struct {
	Title          string  `json:"title" validate:"required,max=255"`
	ParticipantIDs []int64 `json:"user_ids" validate:"min=2,dive,gt=0"`
}

// List returns the viewer's chats that have at least one message, most recently active first.
func (s *ChatService) List(ctx context.Context, userID int64, opts ListChatsOptions) ([]chat.Details, error) {
	chats, err := s.chatRepo.ListForUser(ctx, userID, opts.private())
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// CreateOrGet returns the private chat between creatorID and otherID, creating it
// with both participants when none exists. Attributes only apply to a new chat.
func (s *ChatService) CreateOrGet(ctx context.Context, creatorID, otherID int64, attrs ChatAttributes) (chat.Details, error) {
	if creatorID == otherID {
		return chat.Details{}, fmt.Errorf("cannot start a chat with yourself: %w", parley_errors.ErrInvalidOperation)
	}

	existing, err := s.chatRepo.FindPrivateChat(ctx, creatorID, otherID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, parley_errors.ErrNotFound) {
		return chat.Details{}, fmt.Errorf("find private chat: %w", err)
	}

	exists, err := s.userRepo.Exists(ctx, otherID)
	if err != nil {
		return chat.Details{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return chat.Details{}, fmt.Errorf("user %d: %w", otherID, parley_errors.ErrNotFound)
	}

	c := chat.Chat{
		IsPrivate:      true,
		Title:          nullString(attrs.Title),
		CreatedBy:      creatorID,
		PrivatePairKey: sql.NullString{String: chat.PairKey(creatorID, otherID), Valid: true},
	}
	err = s.chatRepo.CreateWithParticipants(ctx, &c, []int64{creatorID, otherID})
	if errors.Is(err, parley_errors.ErrAlreadyExists) {
		// lost the race against a concurrent create; the other chat wins
		s.logger.WithContext(ctx).Info("private chat created concurrently, reusing",
			zap.Int64("creator_id", creatorID), zap.Int64("other_id", otherID))
		existing, err := s.chatRepo.FindPrivateChat(ctx, creatorID, otherID)
		if err != nil {
			return chat.Details{}, fmt.Errorf("find private chat after conflict: %w", err)
		}
		return existing, nil
	}
	if err != nil {
		return chat.Details{}, err
	}

	created, err := s.chatRepo.GetDetails(ctx, c.ID)
	if err != nil {
		return chat.Details{}, fmt.Errorf("load chat: %w", err)
	}
	return created, nil
}

// CreateGroup creates a non-private chat holding the creator and every listed user.
func (s *ChatService) CreateGroup(ctx context.Context, creatorID int64, in CreateGroupInput) (chat.Details, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ParticipantIDs = lo.Without(lo.Uniq(in.ParticipantIDs), creatorID)
	if err := validateInput(in); err != nil {
		return chat.Details{}, err
	}

	found, err := s.userRepo.CountExisting(ctx, in.ParticipantIDs)
	if err != nil {
		return chat.Details{}, fmt.Errorf("check users: %w", err)
	}
	if found != len(in.ParticipantIDs) {
		return chat.Details{}, fmt.Errorf("group participants: %w", parley_errors.ErrNotFound)
	}

	c := chat.Chat{
		IsPrivate: false,
		Title:     nullString(in.Title),
		CreatedBy: creatorID,
	}
	if err := s.chatRepo.CreateWithParticipants(ctx, &c, append([]int64{creatorID}, in.ParticipantIDs...)); err != nil {
		return chat.Details{}, err
	}
	return s.chatRepo.GetDetails(ctx, c.ID)
}

// Show loads one chat for a participant.
func (s *ChatService) Show(ctx context.Context, viewerID, chatID int64) (chat.Details, error) {
	if err := s.access.CanViewChat(ctx, viewerID, chatID); err != nil {
		return chat.Details{}, err
	}
	return s.chatRepo.GetDetails(ctx, chatID)
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
