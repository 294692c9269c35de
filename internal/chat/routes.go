package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Fareedsea/todo-chatbot/internal/llm"
	"github.com/Fareedsea/todo-chatbot/internal/server"
)

const maxMessageLen = 1000

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// RegisterRoutes mounts the chat API on the router. All routes assume the
// identity middleware already ran.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/api/chat", handleChat(engine))
	r.Get("/api/chat/conversations", handleListConversations(engine))
	r.Get("/api/chat/conversations/{id}/messages", handleListMessages(engine))
	r.Get("/api/chat/ws", handleWebSocket(engine))
}

func handleChat(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" || len(req.Message) > maxMessageLen {
			writeError(w, http.StatusBadRequest, "message must be 1-1000 characters")
			return
		}

		subject := server.Subject(r.Context())
		result, err := engine.HandleTurn(r.Context(), subject, req.ConversationID, req.Message)
		if err != nil {
			writeTurnError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleListConversations(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversations, err := engine.History().ListConversations(r.Context(), server.Subject(r.Context()))
		if err != nil {
			log.Printf("listing conversations: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if conversations == nil {
			conversations = []*Conversation{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
	}
}

func handleListMessages(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID := chi.URLParam(r, "id")
		conv, turns, err := engine.History().Load(r.Context(), convID, server.Subject(r.Context()), maxHistoryPage)
		if err != nil {
			log.Printf("loading conversation %s: %v", convID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if conv == nil {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		if turns == nil {
			turns = []*Turn{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"conversation": conv,
			"messages":     turns,
		})
	}
}

// maxHistoryPage bounds the read-only message listing, which may show more
// than the model's context window does.
const maxHistoryPage = 200

// writeTurnError maps engine failures onto HTTP statuses. Internal detail
// stays in the log.
func writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, llm.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "the assistant is temporarily unavailable, please try again shortly")
	default:
		log.Printf("handling turn: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
