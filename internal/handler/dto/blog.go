// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/renderlab/renderlab/internal/model"
)

// ErrorResponse is the shared error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RevalidateRequest asks for a path's cached page to be refreshed.
type RevalidateRequest struct {
	Path   string `json:"path"`
	Secret string `json:"secret,omitempty"`
}

// RevalidateResponse acknowledges a successful revalidation.
type RevalidateResponse struct {
	Revalidated bool   `json:"revalidated"`
	Path        string `json:"path"`
	Now         int64  `json:"now"` // Unix milliseconds
}

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is a user without credential material.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse converts a user model to its API shape.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
