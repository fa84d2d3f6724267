package services

import (
	"context"
	"testing"

	"parley-chat/config"
	"parley-chat/internal/domain/user"
	"parley-chat/internal/mocks"
	parley_errors "parley-chat/pkg/errors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	return NewAuthService(repo, &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 60}), repo
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should hash the password and issue a token", func(t *testing.T) {
		req := require.New(t)
		svc, repo := newAuthService(t)
		repo.EXPECT().GetUserByEmail(ctx, "ann@example.com").Return(user.User{}, parley_errors.ErrNotFound)
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			req.NotEqual("password123", u.PasswordHash)
			u.ID = 3
			return nil
		})

		res, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: " ann@example.com ", Password: "password123"})

		req.NoError(err)
		req.Equal(int64(3), res.User.ID)
		claims, err := svc.ParseAccessToken(res.AccessToken)
		req.NoError(err)
		req.Equal(int64(3), claims.UserID)
	})

	t.Run("should report field errors before touching storage", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, err := svc.Register(ctx, RegisterInput{Email: "nope", Password: "short"})

		require.ErrorIs(t, err, parley_errors.ErrValidation)
		fields := parley_errors.FieldErrors(err)
		require.Contains(t, fields, "name")
		require.Contains(t, fields, "email")
		require.Contains(t, fields, "password")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := hashPassword("password123")
	require.NoError(t, err)

	t.Run("should reject a wrong password", func(t *testing.T) {
		svc, repo := newAuthService(t)
		repo.EXPECT().GetUserByEmail(ctx, "ann@example.com").Return(user.User{ID: 3, PasswordHash: hash}, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-password"})

		require.ErrorIs(t, err, parley_errors.ErrUnauthorized)
	})

	t.Run("should issue a token for valid credentials", func(t *testing.T) {
		svc, repo := newAuthService(t)
		repo.EXPECT().GetUserByEmail(ctx, "ann@example.com").Return(user.User{ID: 3, PasswordHash: hash}, nil)

		res, err := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "password123"})

		require.NoError(t, err)
		require.NotEmpty(t, res.AccessToken)
	})
}

func TestAuthService_ParseAccessTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthService(t)
	other := NewAuthService(nil, &config.Config{JWTSecret: "other", JWTExpiryMin: 60})
	token, _, err := other.newAccessToken(1)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)

	require.ErrorIs(t, err, parley_errors.ErrUnauthorized)
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, 422, HTTPStatus(parley_errors.NewValidationError("content", "is required")))
	require.Equal(t, 422, HTTPStatus(parley_errors.ErrInvalidOperation))
	require.Equal(t, 403, HTTPStatus(parley_errors.ErrForbidden))
	require.Equal(t, 404, HTTPStatus(parley_errors.ErrNotFound))
	require.Equal(t, 500, HTTPStatus(context.Canceled))
}
