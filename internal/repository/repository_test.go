package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"parley-chat/internal/domain/chat"
	"parley-chat/internal/domain/message"
	"parley-chat/internal/domain/user"
	"parley-chat/pkg/database"
	parley_errors "parley-chat/pkg/errors"

	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, repo UserRepository, name string) user.User {
	t.Helper()
	u := user.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), &u))
	return u
}

func createPrivateChat(t *testing.T, repo ChatRepository, a, b int64) chat.Chat {
	t.Helper()
	c := chat.Chat{
		IsPrivate:      true,
		CreatedBy:      a,
		PrivatePairKey: sql.NullString{String: chat.PairKey(a, b), Valid: true},
	}
	require.NoError(t, repo.CreateWithParticipants(context.Background(), &c, []int64{a, b}))
	return c
}

func appendMessage(t *testing.T, repo MessageRepository, chatID, userID int64, content string) message.Message {
	t.Helper()
	m := message.Message{ChatID: chatID, UserID: userID, Content: content}
	require.NoError(t, repo.Append(context.Background(), &m))
	return m
}

func TestUserRepository_EmailIsCaseInsensitiveUnique(t *testing.T) {
	db := requireDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	req := require.New(t)

	u := createUser(t, repo, "alice")

	dup := user.User{Name: "other", Email: "ALICE@example.com", PasswordHash: "x"}
	req.ErrorIs(repo.Create(ctx, &dup), parley_errors.ErrAlreadyExists)

	found, err := repo.GetUserByEmail(ctx, "Alice@Example.com")
	req.NoError(err)
	req.Equal(u.ID, found.ID)

	_, err = repo.GetUserByID(ctx, u.ID+100)
	req.ErrorIs(err, parley_errors.ErrNotFound)
}

func TestChatRepository_FindPrivateChatMatchesBothUsers(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	c := createUser(t, users, "c")
	ab := createPrivateChat(t, chats, a.ID, b.ID)
	createPrivateChat(t, chats, a.ID, c.ID)

	found, err := chats.FindPrivateChat(ctx, b.ID, a.ID)
	req.NoError(err)
	req.Equal(ab.ID, found.ID)
	req.Nil(found.LastMessage)
	req.ElementsMatch([]int64{a.ID, b.ID}, found.ParticipantIDs())

	_, err = chats.FindPrivateChat(ctx, b.ID, c.ID)
	req.ErrorIs(err, parley_errors.ErrNotFound)
}

func TestChatRepository_DuplicatePrivatePairIsRejected(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	createPrivateChat(t, chats, a.ID, b.ID)

	dup := chat.Chat{
		IsPrivate:      true,
		CreatedBy:      b.ID,
		PrivatePairKey: sql.NullString{String: chat.PairKey(b.ID, a.ID), Valid: true},
	}
	err := chats.CreateWithParticipants(context.Background(), &dup, []int64{b.ID, a.ID})
	req.ErrorIs(err, parley_errors.ErrAlreadyExists)

	var count int
	req.NoError(db.QueryRow(`SELECT COUNT(*) FROM chats`).Scan(&count))
	req.Equal(1, count)
}

func TestChatRepository_ConcurrentCreatesLeaveOneChat(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := chat.Chat{
				IsPrivate:      true,
				CreatedBy:      a.ID,
				PrivatePairKey: sql.NullString{String: chat.PairKey(a.ID, b.ID), Valid: true},
			}
			err := chats.CreateWithParticipants(context.Background(), &c, []int64{a.ID, b.ID})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			if !errors.Is(err, parley_errors.ErrAlreadyExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	req.Equal(1, created)
}

func TestChatRepository_ListForUserOrdersByLatestMessage(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	c := createUser(t, users, "c")
	ab := createPrivateChat(t, chats, a.ID, b.ID)
	ac := createPrivateChat(t, chats, a.ID, c.ID)
	bc := createPrivateChat(t, chats, b.ID, c.ID)

	appendMessage(t, messages, ab.ID, a.ID, "first")
	appendMessage(t, messages, bc.ID, b.ID, "not for a")
	last := appendMessage(t, messages, ac.ID, c.ID, "second")

	list, err := chats.ListForUser(ctx, a.ID, true)
	req.NoError(err)
	req.Len(list, 2)
	req.Equal(ac.ID, list[0].ID)
	req.Equal(ab.ID, list[1].ID)
	req.NotNil(list[0].LastMessage)
	req.Equal(last.ID, list[0].LastMessage.ID)
	req.Equal("c", list[0].LastMessage.Author.Name)
	req.ElementsMatch([]int64{a.ID, c.ID}, list[0].ParticipantIDs())

	appendMessage(t, messages, ab.ID, b.ID, "bump")
	list, err = chats.ListForUser(ctx, a.ID, true)
	req.NoError(err)
	req.Equal(ab.ID, list[0].ID)

	groups, err := chats.ListForUser(ctx, a.ID, false)
	req.NoError(err)
	req.Empty(groups)
}

func TestChatRepository_ListSkipsChatsWithoutMessages(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	createPrivateChat(t, chats, a.ID, b.ID)

	list, err := chats.ListForUser(context.Background(), a.ID, true)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMessageRepository_AppendTouchesChat(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	ab := createPrivateChat(t, chats, a.ID, b.ID)

	m := appendMessage(t, messages, ab.ID, a.ID, "hi")
	req.NotZero(m.ID)
	req.Equal("a", m.Author.Name)

	d, err := chats.GetDetails(ctx, ab.ID)
	req.NoError(err)
	req.True(d.UpdatedAt.Equal(m.CreatedAt))
	req.Equal(m.ID, d.LastMessage.ID)

	missing := message.Message{ChatID: ab.ID + 100, UserID: a.ID, Content: "hi"}
	req.ErrorIs(messages.Append(ctx, &missing), parley_errors.ErrNotFound)
}

func TestMessageRepository_AppendNeverMovesChatBackwards(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	ab := createPrivateChat(t, chats, a.ID, b.ID)

	var ahead time.Time
	req.NoError(db.QueryRowContext(ctx, `
        UPDATE chats SET updated_at = clock_timestamp() + interval '1 hour' WHERE id = $1 RETURNING updated_at
    `, ab.ID).Scan(&ahead))

	m := appendMessage(t, messages, ab.ID, a.ID, "late")

	d, err := chats.GetDetails(ctx, ab.ID)
	req.NoError(err)
	req.False(d.UpdatedAt.Before(ahead))
	req.True(d.UpdatedAt.Equal(m.CreatedAt))
}

func TestMessageRepository_ConcurrentAppendsKeepIdAndTimeOrder(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	ab := createPrivateChat(t, chats, a.ID, b.ID)

	const senders = 16
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := message.Message{ChatID: ab.ID, UserID: a.ID, Content: fmt.Sprintf("m%d", i)}
			errs <- messages.Append(ctx, &m)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	list, err := messages.ListByChat(ctx, ab.ID, senders, 0)
	req.NoError(err)
	req.Len(list, senders)
	for i := 1; i < len(list); i++ {
		req.Greater(list[i-1].ID, list[i].ID, "newest first must also be highest id first")
		req.False(list[i-1].CreatedAt.Before(list[i].CreatedAt))
	}

	d, err := chats.GetDetails(ctx, ab.ID)
	req.NoError(err)
	req.Equal(list[0].ID, d.LastMessage.ID)
	req.True(d.UpdatedAt.Equal(list[0].CreatedAt))
}

func TestMessageRepository_ListByChatNewestFirst(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	ab := createPrivateChat(t, chats, a.ID, b.ID)

	var ids []int64
	for i := 1; i <= 3; i++ {
		ids = append(ids, appendMessage(t, messages, ab.ID, a.ID, fmt.Sprintf("m%d", i)).ID)
	}

	page, err := messages.ListByChat(ctx, ab.ID, 3, 0)
	req.NoError(err)
	req.Len(page, 3)
	req.Equal([]int64{ids[2], ids[1]}, []int64{page[0].ID, page[1].ID})

	rest, err := messages.ListByChat(ctx, ab.ID, 3, 2)
	req.NoError(err)
	req.Len(rest, 1)
	req.Equal(ids[0], rest[0].ID)
}

func TestChatRepository_IsParticipant(t *testing.T) {
	db := requireDB(t)
	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	ctx := context.Background()
	req := require.New(t)

	a := createUser(t, users, "a")
	b := createUser(t, users, "b")
	c := createUser(t, users, "c")
	ab := createPrivateChat(t, chats, a.ID, b.ID)

	ok, err := chats.IsParticipant(ctx, ab.ID, a.ID)
	req.NoError(err)
	req.True(ok)

	ok, err = chats.IsParticipant(ctx, ab.ID, c.ID)
	req.NoError(err)
	req.False(ok)
}

func TestSeedDevelopment_IsReadableAndIdempotent(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	req := require.New(t)

	cfg := database.DefaultSeedConfig()
	first, err := database.SeedDevelopment(ctx, db, cfg)
	req.NoError(err)
	second, err := database.SeedDevelopment(ctx, db, cfg)
	req.NoError(err)
	req.Equal(first.ChatID, second.ChatID)
	req.Equal(0, second.Messages)

	chats, err := NewChatRepository(db).ListForUser(ctx, first.Users[0].ID, true)
	req.NoError(err)
	req.Len(chats, 1)
	req.NotNil(chats[0].LastMessage)
	req.Equal(cfg.Messages[len(cfg.Messages)-1], chats[0].LastMessage.Content)
	req.Len(chats[0].Participants, 2)

	page, err := NewMessageRepository(db).ListByChat(ctx, first.ChatID, 10, 0)
	req.NoError(err)
	req.Len(page, len(cfg.Messages))
}
