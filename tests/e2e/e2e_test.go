//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// The e2e suite runs against a live server that has been seeded:
//
//	go run ./cmd/seed
//	go run ./cmd/api
//	go test -tags e2e ./tests/e2e
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("RENDERLAB_BASE_URL", "http://localhost:8080")
}

func get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body for %s: %v", path, err)
	}
	return resp, string(body)
}

func postJSON(t *testing.T, path string, payload any, out any) int {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(baseURL()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response for %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestE2ESmoke(t *testing.T) {
	for _, path := range []string{"/", "/comparison", "/ssg/posts", "/isr/posts", "/ssr/posts"} {
		resp, body := get(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d, want 200", path, resp.StatusCode)
		}
		if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			t.Errorf("GET %s: Content-Type %q", path, resp.Header.Get("Content-Type"))
		}
		if body == "" {
			t.Errorf("GET %s: empty body", path)
		}
	}
}

func TestE2EStrategyHeaders(t *testing.T) {
	tests := []struct {
		path         string
		wantStrategy string
	}{
		{"/ssg/posts", "ssg"},
		{"/isr/posts", "isr"},
		{"/ssr/posts", "ssr"},
	}

	for _, tt := range tests {
		resp, _ := get(t, tt.path)
		if got := resp.Header.Get("X-Render-Strategy"); got != tt.wantStrategy {
			t.Errorf("%s: X-Render-Strategy = %q, want %q", tt.path, got, tt.wantStrategy)
		}
	}

	// The snapshot is warm after startup, so the static group always hits.
	resp, _ := get(t, "/ssg/posts")
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("/ssg/posts: X-Cache = %q, want HIT", got)
	}

	resp, _ = get(t, "/ssr/posts")
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("/ssr/posts: Cache-Control = %q, want no-store", got)
	}
	if got := resp.Header.Get("X-Cache"); got != "" {
		t.Errorf("/ssr/posts: X-Cache = %q, want absent", got)
	}
}

func TestE2ERevalidatedCacheWarmsUp(t *testing.T) {
	// First request may miss or hit depending on prior traffic; the one
	// right after must be served from cache.
	get(t, "/isr/posts")
	resp, _ := get(t, "/isr/posts")

	if got := resp.Header.Get("X-Cache"); got != "HIT" && got != "STALE" {
		t.Errorf("second /isr/posts: X-Cache = %q, want HIT or STALE", got)
	}
}

func TestE2ERevalidateEndpoint(t *testing.T) {
	if os.Getenv("REVALIDATE_SECRET") != "" {
		t.Skip("server requires a revalidation secret")
	}

	var resp struct {
		Revalidated bool   `json:"revalidated"`
		Path        string `json:"path"`
	}
	status := postJSON(t, "/api/revalidate", map[string]string{"path": "/isr/posts"}, &resp)
	if status != http.StatusOK {
		t.Fatalf("revalidate status = %d, want 200", status)
	}
	if !resp.Revalidated || resp.Path != "/isr/posts" {
		t.Errorf("revalidate response = %+v", resp)
	}

	// The dropped page must repopulate as a miss on the next request.
	pageResp, _ := get(t, "/isr/posts")
	if got := pageResp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("post-revalidation /isr/posts: X-Cache = %q, want MISS", got)
	}

	status = postJSON(t, "/api/revalidate", map[string]string{}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("revalidate without path: status = %d, want 400", status)
	}
}

func TestE2ENotFound(t *testing.T) {
	resp, body := get(t, "/ssg/posts/no-such-post")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("404 Content-Type = %q, want text/html", resp.Header.Get("Content-Type"))
	}
	if body == "" {
		t.Error("404 body is empty")
	}
}

func TestE2ERegistration(t *testing.T) {
	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	payload := map[string]string{
		"name":     "E2E Tester",
		"email":    email,
		"password": "correct-horse",
	}

	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	status := postJSON(t, "/api/users", payload, &created)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}
	if created.ID == "" || created.Email != email {
		t.Errorf("register response = %+v", created)
	}

	status = postJSON(t, "/api/users", payload, nil)
	if status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}
}

func TestE2EHealth(t *testing.T) {
	resp, _ := get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp.StatusCode)
	}

	resp, body := get(t, "/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/readyz status = %d, want 200: %s", resp.StatusCode, body)
	}
}
