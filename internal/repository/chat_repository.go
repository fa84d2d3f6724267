package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parley-chat/internal/domain/chat"
	"parley-chat/internal/domain/message"
	"parley-chat/internal/domain/user"
	parley_errors "parley-chat/pkg/errors"

	"github.com/samber/lo"
)

type chatRepository struct {
	db DBTX
}

func NewChatRepository(db DBTX) ChatRepository {
	return &chatRepository{db: db}
}

// chatWithLastMessage selects a chat and its newest message with author. The
// %s placeholder is the join kind: "JOIN" keeps only chats with messages.
const chatWithLastMessage = `
    SELECT c.id, c.is_private, c.title, c.created_by, c.private_pair_key, c.created_at, c.updated_at,
           m.id, m.user_id, m.content, m.created_at, u.name, u.email
    FROM chats c
    %s LATERAL (
        SELECT id, user_id, content, created_at
        FROM chat_messages
        WHERE chat_id = c.id
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    ) m ON TRUE
    LEFT JOIN users u ON u.id = m.user_id
`

func scanChatWithLastMessage(row rowScanner) (chat.Details, error) {
	var (
		d           chat.Details
		msgID       sql.NullInt64
		msgUserID   sql.NullInt64
		msgContent  sql.NullString
		msgCreated  sql.NullTime
		authorName  sql.NullString
		authorEmail sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.IsPrivate, &d.Title, &d.CreatedBy, &d.PrivatePairKey, &d.CreatedAt, &d.UpdatedAt,
		&msgID, &msgUserID, &msgContent, &msgCreated, &authorName, &authorEmail,
	)
	if err != nil {
		return chat.Details{}, err
	}
	if msgID.Valid {
		d.LastMessage = &message.Message{
			ID:        msgID.Int64,
			ChatID:    d.ID,
			UserID:    msgUserID.Int64,
			Content:   msgContent.String,
			CreatedAt: msgCreated.Time,
			Author: &user.Public{
				ID:    msgUserID.Int64,
				Name:  authorName.String,
				Email: authorEmail.String,
			},
		}
	}
	return d, nil
}

func (r *chatRepository) FindPrivateChat(ctx context.Context, userA, userB int64) (chat.Details, error) {
	var chatID int64
	err := r.db.QueryRowContext(ctx, `
        SELECT c.id
        FROM chats c
        WHERE c.is_private
          AND EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = $1)
          AND EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = $2)
        ORDER BY c.id
        LIMIT 1
    `, userA, userB).Scan(&chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chat.Details{}, parley_errors.ErrNotFound
		}
		return chat.Details{}, err
	}
	return r.GetDetails(ctx, chatID)
}

func (r *chatRepository) CreateWithParticipants(ctx context.Context, c *chat.Chat, userIDs []int64) error {
	userIDs = lo.Uniq(userIDs)
	err := WithTx(ctx, r.db, func(tx DBTX) error {
		err := tx.QueryRowContext(ctx, `
            INSERT INTO chats (is_private, title, created_by, private_pair_key)
            VALUES ($1, $2, $3, $4)
            RETURNING id, created_at, updated_at
        `, c.IsPrivate, c.Title, c.CreatedBy, c.PrivatePairKey).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return err
		}
		for _, userID := range userIDs {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO chat_participants (chat_id, user_id, created_at)
                VALUES ($1, $2, $3)
            `, c.ID, userID, c.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return parley_errors.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return parley_errors.ErrNotFound
	default:
		return fmt.Errorf("create chat: %w", err)
	}
}

func (r *chatRepository) GetDetails(ctx context.Context, chatID int64) (chat.Details, error) {
	d, err := scanChatWithLastMessage(r.db.QueryRowContext(ctx,
		fmt.Sprintf(chatWithLastMessage, "LEFT JOIN")+` WHERE c.id = $1`, chatID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chat.Details{}, parley_errors.ErrNotFound
		}
		return chat.Details{}, err
	}

	participants, err := r.participantsByChat(ctx, []int64{d.ID})
	if err != nil {
		return chat.Details{}, err
	}
	d.Participants = participants[d.ID]
	return d, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID int64, isPrivate bool) ([]chat.Details, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(chatWithLastMessage, "JOIN")+`
        WHERE c.is_private = $2
          AND EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_id = c.id AND p.user_id = $1)
        ORDER BY c.updated_at DESC, c.id DESC
    `, userID, isPrivate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []chat.Details
	for rows.Next() {
		d, err := scanChatWithLastMessage(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return []chat.Details{}, nil
	}

	participants, err := r.participantsByChat(ctx, lo.Map(chats, func(d chat.Details, _ int) int64 { return d.ID }))
	if err != nil {
		return nil, err
	}
	for i := range chats {
		chats[i].Participants = participants[chats[i].ID]
	}
	return chats, nil
}

func (r *chatRepository) participantsByChat(ctx context.Context, chatIDs []int64) (map[int64][]chat.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT p.chat_id, p.user_id, p.created_at, u.name, u.email
        FROM chat_participants p
        JOIN users u ON u.id = p.user_id
        WHERE p.chat_id = ANY($1)
        ORDER BY p.chat_id, p.created_at, p.user_id
    `, chatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []chat.Participant
	for rows.Next() {
		var p chat.Participant
		if err := rows.Scan(&p.ChatID, &p.UserID, &p.CreatedAt, &p.User.Name, &p.User.Email); err != nil {
			return nil, err
		}
		p.User.ID = p.UserID
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.GroupBy(participants, func(p chat.Participant) int64 { return p.ChatID }), nil
}

func (r *chatRepository) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = $1 AND user_id = $2)
    `, chatID, userID).Scan(&exists)
	return exists, err
}

func (r *chatRepository) Exists(ctx context.Context, chatID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM chats WHERE id = $1)`, chatID).Scan(&exists)
	return exists, err
}
