package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"parley-chat/internal/domain/user"
	parley_errors "parley-chat/pkg/errors"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `, u.Name, strings.TrimSpace(u.Email), u.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return parley_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, parley_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, parley_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepository) ListUsersExcept(ctx context.Context, excludeID int64, page, limit int) ([]user.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id <> $1`, excludeID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id <> $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, excludeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]user.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *userRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ANY($1)`, ids).Scan(&count)
	return count, err
}
