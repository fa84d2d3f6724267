package proxy

import (
	"context"

	"parley-chat/internal/repository"
	parley_errors "parley-chat/pkg/errors"
)

// AccessControl decides whether a user may act on a chat. Membership is read
// on every call; nothing is cached.
type AccessControl struct {
	chatRepo repository.ChatRepository
}

func NewAccessControl(chatRepo repository.ChatRepository) *AccessControl {
	return &AccessControl{chatRepo: chatRepo}
}

func (a *AccessControl) CanViewChat(ctx context.Context, userID, chatID int64) error {
	return a.ensureParticipant(ctx, chatID, userID)
}

func (a *AccessControl) CanPostMessage(ctx context.Context, userID, chatID int64) error {
	return a.ensureParticipant(ctx, chatID, userID)
}

// CanSubscribe reports membership without distinguishing a missing chat from a foreign one.
func (a *AccessControl) CanSubscribe(ctx context.Context, userID, chatID int64) (bool, error) {
	if a.chatRepo == nil || userID <= 0 || chatID <= 0 {
		return false, nil
	}
	return a.chatRepo.IsParticipant(ctx, chatID, userID)
}

// ensureParticipant returns ErrNotFound for an unknown chat and ErrForbidden for a non-member.
func (a *AccessControl) ensureParticipant(ctx context.Context, chatID, userID int64) error {
	if a.chatRepo == nil {
		return parley_errors.ErrForbidden
	}
	ok, err := a.chatRepo.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	exists, err := a.chatRepo.Exists(ctx, chatID)
	if err != nil {
		return err
	}
	if !exists {
		return parley_errors.ErrNotFound
	}
	return parley_errors.ErrForbidden
}
