package services

import (
	"context"
	"database/sql"
	"testing"

	"parley-chat/internal/domain/chat"
	"parley-chat/internal/domain/message"
	"parley-chat/internal/mocks"
	"parley-chat/internal/proxy"
	parley_errors "parley-chat/pkg/errors"
	"parley-chat/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type chatFixture struct {
	chats *mocks.MockChatRepository
	users *mocks.MockUserRepository
	svc   *ChatService
}

func newChatFixture(t *testing.T) chatFixture {
	ctrl := gomock.NewController(t)
	chats := mocks.NewMockChatRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	return chatFixture{
		chats: chats,
		users: users,
		svc:   NewChatService(chats, users, proxy.NewAccessControl(chats), logger.NewNop()),
	}
}

func privateChat(id, a, b int64) chat.Details {
	return chat.Details{
		Chat: chat.Chat{ID: id, IsPrivate: true, CreatedBy: a, PrivatePairKey: sql.NullString{String: chat.PairKey(a, b), Valid: true}},
		Participants: []chat.Participant{
			{ChatID: id, UserID: a},
			{ChatID: id, UserID: b},
		},
	}
}

func TestChatService_CreateOrGet(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject a chat with yourself without touching storage", func(t *testing.T) {
		f := newChatFixture(t)

		_, err := f.svc.CreateOrGet(ctx, 5, 5, ChatAttributes{})

		require.ErrorIs(t, err, parley_errors.ErrInvalidOperation)
	})

	t.Run("should return the existing chat with no side effects", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		existing := privateChat(10, 1, 2)
		existing.LastMessage = &message.Message{ID: 3, ChatID: 10, UserID: 2, Content: "hey"}
		f.chats.EXPECT().FindPrivateChat(ctx, int64(1), int64(2)).Return(existing, nil)

		got, err := f.svc.CreateOrGet(ctx, 1, 2, ChatAttributes{Title: "ignored"})

		req.NoError(err)
		req.Equal(int64(10), got.ID)
		req.Equal("hey", got.LastMessage.Content)
	})

	t.Run("should create a private chat with both participants", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.chats.EXPECT().FindPrivateChat(ctx, int64(2), int64(1)).Return(chat.Details{}, parley_errors.ErrNotFound)
		f.users.EXPECT().Exists(ctx, int64(1)).Return(true, nil)
		f.chats.EXPECT().
			CreateWithParticipants(ctx, gomock.Any(), []int64{2, 1}).
			DoAndReturn(func(_ context.Context, c *chat.Chat, _ []int64) error {
				req.True(c.IsPrivate)
				req.Equal(int64(2), c.CreatedBy)
				req.Equal("1:2", c.PrivatePairKey.String)
				req.Equal("Weekend", c.Title.String)
				c.ID = 11
				return nil
			})
		f.chats.EXPECT().GetDetails(ctx, int64(11)).Return(privateChat(11, 2, 1), nil)

		got, err := f.svc.CreateOrGet(ctx, 2, 1, ChatAttributes{Title: " Weekend "})

		req.NoError(err)
		req.Equal(int64(11), got.ID)
		req.Nil(got.LastMessage)
		req.ElementsMatch([]int64{1, 2}, got.ParticipantIDs())
	})

	t.Run("should return the winner when a concurrent create conflicts", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		gomock.InOrder(
			f.chats.EXPECT().FindPrivateChat(ctx, int64(1), int64(2)).Return(chat.Details{}, parley_errors.ErrNotFound),
			f.chats.EXPECT().FindPrivateChat(ctx, int64(1), int64(2)).Return(privateChat(12, 2, 1), nil),
		)
		f.users.EXPECT().Exists(ctx, int64(2)).Return(true, nil)
		f.chats.EXPECT().CreateWithParticipants(ctx, gomock.Any(), gomock.Any()).Return(parley_errors.ErrAlreadyExists)

		got, err := f.svc.CreateOrGet(ctx, 1, 2, ChatAttributes{})

		req.NoError(err)
		req.Equal(int64(12), got.ID)
	})

	t.Run("should fail when the other user does not exist", func(t *testing.T) {
		f := newChatFixture(t)
		f.chats.EXPECT().FindPrivateChat(ctx, int64(1), int64(404)).Return(chat.Details{}, parley_errors.ErrNotFound)
		f.users.EXPECT().Exists(ctx, int64(404)).Return(false, nil)

		_, err := f.svc.CreateOrGet(ctx, 1, 404, ChatAttributes{})

		require.ErrorIs(t, err, parley_errors.ErrNotFound)
	})
}

func TestChatService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("should default to private chats", func(t *testing.T) {
		f := newChatFixture(t)
		f.chats.EXPECT().ListForUser(ctx, int64(1), true).Return([]chat.Details{privateChat(1, 1, 2)}, nil)

		got, err := f.svc.List(ctx, 1, ListChatsOptions{})

		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("should honour an explicit group filter", func(t *testing.T) {
		f := newChatFixture(t)
		private := false
		f.chats.EXPECT().ListForUser(ctx, int64(1), false).Return([]chat.Details{}, nil)

		got, err := f.svc.List(ctx, 1, ListChatsOptions{Private: &private})

		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestChatService_Show(t *testing.T) {
	ctx := context.Background()

	t.Run("should load the chat for a participant", func(t *testing.T) {
		f := newChatFixture(t)
		f.chats.EXPECT().IsParticipant(ctx, int64(4), int64(1)).Return(true, nil)
		f.chats.EXPECT().GetDetails(ctx, int64(4)).Return(privateChat(4, 1, 2), nil)

		got, err := f.svc.Show(ctx, 1, 4)

		require.NoError(t, err)
		require.Equal(t, int64(4), got.ID)
	})

	t.Run("should forbid a non participant", func(t *testing.T) {
		f := newChatFixture(t)
		f.chats.EXPECT().IsParticipant(ctx, int64(4), int64(9)).Return(false, nil)
		f.chats.EXPECT().Exists(ctx, int64(4)).Return(true, nil)

		_, err := f.svc.Show(ctx, 9, 4)

		require.ErrorIs(t, err, parley_errors.ErrForbidden)
	})
}

func TestChatService_CreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a group with the creator and distinct members", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.users.EXPECT().CountExisting(ctx, []int64{2, 3}).Return(2, nil)
		f.chats.EXPECT().
			CreateWithParticipants(ctx, gomock.Any(), []int64{1, 2, 3}).
			DoAndReturn(func(_ context.Context, c *chat.Chat, _ []int64) error {
				req.False(c.IsPrivate)
				req.False(c.PrivatePairKey.Valid)
				c.ID = 20
				return nil
			})
		f.chats.EXPECT().GetDetails(ctx, int64(20)).Return(chat.Details{Chat: chat.Chat{ID: 20}}, nil)

		got, err := f.svc.CreateGroup(ctx, 1, CreateGroupInput{Title: "Team", ParticipantIDs: []int64{2, 3, 2, 1}})

		req.NoError(err)
		req.Equal(int64(20), got.ID)
	})

	t.Run("should require two other members", func(t *testing.T) {
		f := newChatFixture(t)

		_, err := f.svc.CreateGroup(ctx, 1, CreateGroupInput{Title: "Solo", ParticipantIDs: []int64{1, 2}})

		require.ErrorIs(t, err, parley_errors.ErrValidation)
		require.Contains(t, parley_errors.FieldErrors(err), "user_ids")
	})
}
