// Package chat holds the conversation engine: durable history, the
// derived confirmation state machine, and the agent loop that drives the
// reasoning model through tool calls.
package chat

import (
	"encoding/json"
	"time"
)

// Message roles persisted in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread owned by a single subject.
type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolCallRecord is one tool call attached to an assistant turn. Proposed
// records were announced but not executed: they carry the structured
// pending-confirmation state for destructive actions, so confirmation is
// always derivable from history alone.
type ToolCallRecord struct {
	Tool      string          `json:"tool"`
	Arguments map[string]any  `json:"arguments"`
	Result    json.RawMessage `json:"result,omitempty"`
	Success   bool            `json:"success"`
	Proposed  bool            `json:"proposed,omitempty"`
}

// Turn is one immutable message in a conversation.
type Turn struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	Seq            int              `json:"-"`
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TurnResult is what one handled turn returns to the transport layer.
type TurnResult struct {
	ConversationID string           `json:"conversation_id"`
	Reply          string           `json:"response"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
}
