package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SeedUser is a development account created by SeedDevelopment.
type SeedUser struct {
	ID    int64
	Name  string
	Email string
}

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password string
	Users    []SeedUser
	Messages []string
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Password: "password123",
		Users: []SeedUser{
			{Name: "Alice", Email: "alice@parley.test"},
			{Name: "Bob", Email: "bob@parley.test"},
			{Name: "Carol", Email: "carol@parley.test"},
		},
		Messages: []string{"Hi Bob!", "Hey Alice, how are you?", "Great, thanks."},
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users    []SeedUser
	ChatID   int64
	Messages int
}

// SeedDevelopment creates the configured users, a private chat between the
// first two and a short conversation in it. Running it twice changes nothing.
func SeedDevelopment(ctx context.Context, db *sql.DB, cfg SeedConfig) (SeedResult, error) {
	if len(cfg.Users) < 2 {
		return SeedResult{}, errors.New("seeding needs at least two users")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return SeedResult{}, fmt.Errorf("hash seed password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var result SeedResult
	for _, u := range cfg.Users {
		u.Email = strings.ToLower(u.Email)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (name, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT ((lower(email))) DO NOTHING`, u.Name, u.Email, string(hash)); err != nil {
			return SeedResult{}, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE lower(email) = $1`, u.Email).Scan(&u.ID); err != nil {
			return SeedResult{}, fmt.Errorf("load user %s: %w", u.Email, err)
		}
		result.Users = append(result.Users, u)
	}

	first, second := result.Users[0].ID, result.Users[1].ID
	pairKey := fmt.Sprintf("%d:%d", min(first, second), max(first, second))

	err = tx.QueryRowContext(ctx, `
		INSERT INTO chats (is_private, created_by, private_pair_key)
		VALUES (TRUE, $1, $2)
		ON CONFLICT (private_pair_key) WHERE private_pair_key IS NOT NULL DO NOTHING
		RETURNING id`, first, pairKey).Scan(&result.ChatID)
	if errors.Is(err, sql.ErrNoRows) {
		// already seeded
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM chats WHERE private_pair_key = $1`, pairKey).Scan(&result.ChatID); err != nil {
			return SeedResult{}, fmt.Errorf("load seeded chat: %w", err)
		}
		return result, tx.Commit()
	}
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed chat: %w", err)
	}

	for _, userID := range []int64{first, second} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)`, result.ChatID, userID); err != nil {
			return SeedResult{}, fmt.Errorf("seed participant: %w", err)
		}
	}

	authors := []int64{first, second}
	for i, content := range cfg.Messages {
		if _, err := tx.ExecContext(ctx, `
			WITH touched AS (
				UPDATE chats SET updated_at = clock_timestamp() WHERE id = $1 RETURNING updated_at
			)
			INSERT INTO chat_messages (chat_id, user_id, content, created_at)
			SELECT $1, $2, $3, updated_at FROM touched`, result.ChatID, authors[i%2], content); err != nil {
			return SeedResult{}, fmt.Errorf("seed message: %w", err)
		}
		result.Messages++
	}

	return result, tx.Commit()
}
