package chat

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Fareedsea/todo-chatbot/internal/llm"
	"github.com/Fareedsea/todo-chatbot/internal/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The identity header is the trust boundary, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type wsOutbound struct {
	Type           string           `json:"type"` // "reply" or "error"
	ConversationID string           `json:"conversation_id,omitempty"`
	Content        string           `json:"content"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
}

// handleWebSocket runs the same turn pipeline as POST /api/chat over a
// persistent connection, one frame per turn.
func handleWebSocket(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := server.Subject(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("websocket read: %v", err)
				}
				return
			}

			in.Message = strings.TrimSpace(in.Message)
			if in.Message == "" || len(in.Message) > maxMessageLen {
				if err := conn.WriteJSON(wsOutbound{Type: "error", Content: "message must be 1-1000 characters"}); err != nil {
					return
				}
				continue
			}

			result, err := engine.HandleTurn(r.Context(), subject, in.ConversationID, in.Message)
			if err != nil {
				if err := conn.WriteJSON(wsOutbound{Type: "error", Content: turnErrorMessage(err)}); err != nil {
					return
				}
				continue
			}

			out := wsOutbound{
				Type:           "reply",
				ConversationID: result.ConversationID,
				Content:        result.Reply,
				ToolCalls:      result.ToolCalls,
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}
}

func turnErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		return "conversation not found"
	case errors.Is(err, llm.ErrUnavailable):
		return "the assistant is temporarily unavailable, please try again shortly"
	default:
		log.Printf("handling turn: %v", err)
		return "something went wrong, please try again"
	}
}
