package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renderlab/renderlab/internal/auth"
	"github.com/renderlab/renderlab/internal/handler/dto"
	"github.com/renderlab/renderlab/internal/metrics"
	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/repository"
)

const minPasswordLength = 8

// UserStore persists new user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
}

// RegisterHandler handles user registration.
type RegisterHandler struct {
	store   UserStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRegisterHandler creates a new RegisterHandler.
func NewRegisterHandler(store UserStore, logger *slog.Logger, recorder metrics.Recorder) *RegisterHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RegisterHandler{
		store:   store,
		logger:  logger,
		metrics: recorder,
	}
}

// Register handles POST /api/users.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Name, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusUnprocessableEntity, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
			return
		}
		h.logger.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.metrics.IncUserRegistered()
	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}
