package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parley-chat/internal/domain/message"
	"parley-chat/internal/domain/user"
	parley_errors "parley-chat/pkg/errors"
)

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

const messageWithAuthor = `
    SELECT m.id, m.chat_id, m.user_id, m.content, m.created_at, u.name, u.email
    FROM chat_messages m
    JOIN users u ON u.id = m.user_id
`

func scanMessage(row rowScanner) (message.Message, error) {
	var (
		m      message.Message
		author user.Public
	)
	if err := row.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Content, &m.CreatedAt, &author.Name, &author.Email); err != nil {
		return message.Message{}, err
	}
	author.ID = m.UserID
	m.Author = &author
	return m, nil
}

func (r *messageRepository) Append(ctx context.Context, m *message.Message) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		// clock_timestamp, not now(): a send that waited on the row lock must
		// still stamp later than the one it waited for.
		var touchedAt time.Time
		err := tx.QueryRowContext(ctx, `
            UPDATE chats SET updated_at = GREATEST(updated_at, clock_timestamp())
            WHERE id = $1
            RETURNING updated_at
        `, m.ChatID).Scan(&touchedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return parley_errors.ErrNotFound
			}
			return err
		}

		err = tx.QueryRowContext(ctx, `
            INSERT INTO chat_messages (chat_id, user_id, content, created_at)
            VALUES ($1, $2, $3, $4)
            RETURNING id
        `, m.ChatID, m.UserID, m.Content, touchedAt).Scan(&m.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return parley_errors.ErrNotFound
			}
			return err
		}

		stored, err := scanMessage(tx.QueryRowContext(ctx, messageWithAuthor+` WHERE m.id = $1`, m.ID))
		if err != nil {
			return err
		}
		*m = stored
		return nil
	})
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (message.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, messageWithAuthor+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Message{}, parley_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, messageWithAuthor+`
        WHERE m.chat_id = $1
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2 OFFSET $3
    `, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]message.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
