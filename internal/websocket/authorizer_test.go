package websocket

import (
	"context"
	"testing"

	"parley-chat/internal/mocks"
	"parley-chat/internal/proxy"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChannelAuthorizer_CanSubscribe(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	authorizer := NewChannelAuthorizer(proxy.NewAccessControl(repo))

	repo.EXPECT().IsParticipant(ctx, int64(7), int64(1)).Return(true, nil)
	repo.EXPECT().IsParticipant(ctx, int64(7), int64(3)).Return(false, nil)

	ok, err := authorizer.CanSubscribe(ctx, 1, 7)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = authorizer.CanSubscribe(ctx, 3, 7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChannelAuthorizer_AuthorizeChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("should check membership of chat channels on every request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		authorizer := NewChannelAuthorizer(proxy.NewAccessControl(repo))
		gomock.InOrder(
			repo.EXPECT().IsParticipant(ctx, int64(7), int64(1)).Return(true, nil),
			repo.EXPECT().IsParticipant(ctx, int64(7), int64(1)).Return(false, nil),
		)

		ok, err := authorizer.AuthorizeChannel(ctx, 1, "chat.7")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = authorizer.AuthorizeChannel(ctx, 1, "chat.7")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("should deny anything that is not a chat channel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		authorizer := NewChannelAuthorizer(proxy.NewAccessControl(repo))

		for _, channel := range []string{"", "chat.", "chat.abc", "chat.-1", "private-chat.7", "user.1"} {
			ok, err := authorizer.AuthorizeChannel(ctx, 1, channel)
			require.NoError(t, err, channel)
			require.False(t, ok, channel)
		}
	})
}
