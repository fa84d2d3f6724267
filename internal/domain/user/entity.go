package user

import (
	"time"
)

// User represents the users table
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the part of a user that other users may see.
type Public struct {
	ID    int64
	Name  string
	Email string
}

func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email}
}
