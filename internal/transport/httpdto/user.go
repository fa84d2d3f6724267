package httpdto

import (
	"time"

	"parley-chat/internal/domain/user"
)

// ListUsersRequest holds query parameters for listing users
type ListUsersRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// ListUsersResponse is returned when listing users
type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FromUser converts a domain user to UserDTO
func FromUser(u user.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// FromPublicUser converts the visible part of a user to UserDTO
func FromPublicUser(u user.Public) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

// FromUserSlice converts a slice of domain users to UserDTO slice
func FromUserSlice(users []user.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = FromUser(u)
	}
	return dtos
}
