package services

import (
	"context"
	"testing"

	"parley-chat/internal/domain/user"
	"parley-chat/internal/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserService_ListExcludesViewerWithDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo)

	repo.EXPECT().ListUsersExcept(gomock.Any(), int64(7), 1, defaultUserPageLimit).
		Return([]user.User{{ID: 8}}, int64(1), nil)

	users, total, err := svc.List(context.Background(), 7, 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(1), total)
}

func TestUserPageBounds(t *testing.T) {
	cases := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, 20},
		{"kept", 3, 50, 3, 50},
		{"clamped", 2, 500, 2, 100},
		{"negative", -1, -5, 1, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := UserPageBounds(tc.page, tc.limit)
			require.Equal(t, tc.wantPage, page)
			require.Equal(t, tc.wantLimit, limit)
		})
	}
}
