package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Fareedsea/todo-chatbot/internal/config"
)

func TestHealthz(t *testing.T) {
	r := NewRouter(config.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireIdentity(t *testing.T) {
	var seen string
	handler := RequireIdentity("X-User-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Subject(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "alice")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with header: status = %d, want 200", rec.Code)
	}
	if seen != "alice" {
		t.Errorf("subject = %q, want alice", seen)
	}
}
