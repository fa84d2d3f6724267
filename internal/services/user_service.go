package services

import (
	"context"

	"parley-chat/internal/domain/user"
	"parley-chat/internal/repository"
)

const (
	defaultUserPageLimit = 20
	maxUserPageLimit     = 100
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// List returns every user except the viewer, newest first.
func (s *UserService) List(ctx context.Context, viewerID int64, page, limit int) ([]user.User, int64, error) {
	page, limit = UserPageBounds(page, limit)
	return s.repo.ListUsersExcept(ctx, viewerID, page, limit)
}

// UserPageBounds applies the default and maximum user page sizes.
func UserPageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultUserPageLimit
	}
	if limit > maxUserPageLimit {
		limit = maxUserPageLimit
	}
	return page, limit
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (user.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
