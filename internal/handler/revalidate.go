package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/renderlab/renderlab/internal/auth"
	"github.com/renderlab/renderlab/internal/handler/dto"
)

// Revalidator drops and rebuilds cached pages for a path.
type Revalidator interface {
	RevalidatePath(ctx context.Context, path string) error
}

// RevalidateHandler handles on-demand cache revalidation requests.
type RevalidateHandler struct {
	svc    Revalidator
	secret string
	logger *slog.Logger
}

// NewRevalidateHandler creates a new RevalidateHandler.
// An empty secret disables the secret check.
func NewRevalidateHandler(svc Revalidator, secret string, logger *slog.Logger) *RevalidateHandler {
	return &RevalidateHandler{
		svc:    svc,
		secret: secret,
		logger: logger,
	}
}

// Revalidate handles POST /api/revalidate.
func (h *RevalidateHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	var req dto.RevalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "Path is required")
		return
	}

	if h.secret != "" && !auth.SecretsEqual(req.Secret, h.secret) {
		writeError(w, http.StatusUnauthorized, "INVALID_SECRET", "Invalid revalidation secret")
		return
	}

	if err := h.svc.RevalidatePath(r.Context(), req.Path); err != nil {
		h.logger.Error("revalidation failed", "path", req.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("revalidation requested", "path", req.Path)

	writeJSON(w, http.StatusOK, dto.RevalidateResponse{
		Revalidated: true,
		Path:        req.Path,
		Now:         time.Now().UnixMilli(),
	})
}
