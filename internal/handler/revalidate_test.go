package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubRevalidator struct {
	paths []string
	err   error
}

func (s *stubRevalidator) RevalidatePath(ctx context.Context, path string) error {
	s.paths = append(s.paths, path)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postRevalidate(t *testing.T, h *RevalidateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Revalidate(rec, req)
	return rec
}

func TestRevalidate_Success(t *testing.T) {
	svc := &stubRevalidator{}
	h := NewRevalidateHandler(svc, "", discardLogger())

	rec := postRevalidate(t, h, `{"path": "/isr/posts"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response struct {
		Revalidated bool   `json:"revalidated"`
		Path        string `json:"path"`
		Now         int64  `json:"now"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !response.Revalidated {
		t.Error("expected revalidated true")
	}
	if response.Path != "/isr/posts" {
		t.Errorf("path = %q, want /isr/posts", response.Path)
	}
	if response.Now == 0 {
		t.Error("expected now timestamp")
	}
	if len(svc.paths) != 1 || svc.paths[0] != "/isr/posts" {
		t.Errorf("service called with %v", svc.paths)
	}
}

func TestRevalidate_MissingPath(t *testing.T) {
	svc := &stubRevalidator{}
	h := NewRevalidateHandler(svc, "", discardLogger())

	rec := postRevalidate(t, h, `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(svc.paths) != 0 {
		t.Error("service should not be called without a path")
	}
}

func TestRevalidate_InvalidJSON(t *testing.T) {
	h := NewRevalidateHandler(&stubRevalidator{}, "", discardLogger())

	rec := postRevalidate(t, h, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRevalidate_Secret(t *testing.T) {
	svc := &stubRevalidator{}
	h := NewRevalidateHandler(svc, "letmein", discardLogger())

	rec := postRevalidate(t, h, `{"path": "/isr/posts", "secret": "wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %d", rec.Code)
	}

	rec = postRevalidate(t, h, `{"path": "/isr/posts"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing secret, got %d", rec.Code)
	}

	rec = postRevalidate(t, h, `{"path": "/isr/posts", "secret": "letmein"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for correct secret, got %d", rec.Code)
	}
}

func TestRevalidate_InternalError(t *testing.T) {
	svc := &stubRevalidator{err: errors.New("redis down")}
	h := NewRevalidateHandler(svc, "", discardLogger())

	rec := postRevalidate(t, h, `{"path": "/isr/posts"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "redis down") {
		t.Error("internal error details must not leak to the client")
	}
}
