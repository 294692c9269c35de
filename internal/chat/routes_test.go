package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Fareedsea/todo-chatbot/internal/llm"
	"github.com/Fareedsea/todo-chatbot/internal/server"
)

func newTestRouter(t *testing.T, responses ...*llm.CompletionResponse) (chi.Router, *engineFixture) {
	t.Helper()
	fx := newEngineFixture(t, responses...)

	r := chi.NewRouter()
	r.Use(server.RequireIdentity("X-User-ID"))
	RegisterRoutes(r, fx.engine)
	return r, fx
}

func postChat(r chi.Router, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatRequiresIdentity(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := postChat(r, "", `{"message":"hello"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestChatRejectsBadBodies(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"empty message", `{"message":""}`},
		{"whitespace message", `{"message":"   "}`},
		{"oversized message", fmt.Sprintf(`{"message":%q}`, strings.Repeat("x", 1001))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(r, "alice", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatHappyPath(t *testing.T) {
	r, _ := newTestRouter(t, &llm.CompletionResponse{Content: "Hi! How can I help with your tasks?"})

	rec := postChat(r, "alice", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ConversationID == "" {
		t.Error("missing conversation id")
	}
	if result.Reply == "" {
		t.Error("missing reply")
	}
}

func TestChatForeignConversationIs404(t *testing.T) {
	r, _ := newTestRouter(t, &llm.CompletionResponse{Content: "hi"})

	rec := postChat(r, "alice", `{"message":"hello"}`)
	var result TurnResult
	json.NewDecoder(rec.Body).Decode(&result)

	rec = postChat(r, "bob", fmt.Sprintf(`{"message":"hello","conversation_id":%q}`, result.ConversationID))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChatUpstreamUnavailableIs503(t *testing.T) {
	r, fx := newTestRouter(t)
	fx.provider.err = fmt.Errorf("%w: connection refused", llm.ErrUnavailable)

	rec := postChat(r, "alice", `{"message":"hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestListMessages(t *testing.T) {
	r, _ := newTestRouter(t, &llm.CompletionResponse{Content: "hi there"})

	rec := postChat(r, "alice", `{"message":"hello"}`)
	var result TurnResult
	json.NewDecoder(rec.Body).Decode(&result)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations/"+result.ConversationID+"/messages", nil)
	req.Header.Set("X-User-ID", "alice")
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d", rec2.Code)
	}
	var body struct {
		Messages []Turn `json:"messages"`
	}
	if err := json.NewDecoder(rec2.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(body.Messages))
	}

	// Foreign access is indistinguishable from absence.
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations/"+result.ConversationID+"/messages", nil)
	req.Header.Set("X-User-ID", "bob")
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusNotFound {
		t.Errorf("foreign read status = %d, want 404", rec3.Code)
	}
}

func TestListConversationsRoute(t *testing.T) {
	r, _ := newTestRouter(t, &llm.CompletionResponse{Content: "hi"})

	postChat(r, "alice", `{"message":"hello"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Conversations) != 1 {
		t.Errorf("expected 1 conversation, got %d", len(body.Conversations))
	}
}
