package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fareedsea/todo-chatbot/internal/db"
)

// History persists conversations and turns. Ownership is enforced here:
// a conversation that is absent and one owned by someone else are
// indistinguishable to the caller.
type History struct {
	db *db.DB

	// Per-conversation locks serialize concurrent turns against the same
	// thread within this process. Cross-instance races are out of scope.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHistory creates a history adapter over the given database.
func NewHistory(database *db.DB) *History {
	return &History{db: database, locks: map[string]*sync.Mutex{}}
}

// LockConversation acquires the per-conversation mutex and returns the
// unlock function.
func (h *History) LockConversation(id string) func() {
	h.mu.Lock()
	l, ok := h.locks[id]
	if !ok {
		l = &sync.Mutex{}
		h.locks[id] = l
	}
	h.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateConversation starts a new thread for the owner.
func (h *History) CreateConversation(ctx context.Context, ownerID string) (*Conversation, error) {
	now := time.Now().UTC()
	c := &Conversation{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO conversations (id, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return c, nil
}

// ListConversations returns the owner's threads, most recently active
// first.
func (h *History) ListConversations(ctx context.Context, ownerID string) ([]*Conversation, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, owner_id, created_at, updated_at FROM conversations
		 WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Load returns the conversation and its most recent limit turns in
// chronological order. Absent or foreign conversations both return
// (nil, nil, nil).
func (h *History) Load(ctx context.Context, convID, ownerID string, limit int) (*Conversation, []*Turn, error) {
	var c Conversation
	err := h.db.QueryRowContext(ctx,
		`SELECT id, owner_id, created_at, updated_at FROM conversations
		 WHERE id = ? AND owner_id = ?`, convID, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading conversation: %w", err)
	}

	// Take the newest limit rows, then flip them back to chronological.
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, conversation_id, seq, role, content, tool_calls, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY seq DESC LIMIT ?`, convID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("loading turns: %w", err)
	}
	defer rows.Close()

	var turns []*Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return &c, turns, nil
}

// AppendExchange writes the user turn and the assistant turn in a single
// transaction and bumps the conversation's updated_at. Either both turns
// land or neither does.
func (h *History) AppendExchange(ctx context.Context, convID string, userTurn, assistantTurn *Turn) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning append: %w", err)
	}
	defer tx.Rollback()

	var lastSeq sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM messages WHERE conversation_id = ?`, convID).Scan(&lastSeq)
	if err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}
	seq := int(lastSeq.Int64)

	now := time.Now().UTC()
	for _, turn := range []*Turn{userTurn, assistantTurn} {
		seq++
		turn.ID = uuid.New().String()
		turn.ConversationID = convID
		turn.Seq = seq
		turn.CreatedAt = now

		toolCalls := "[]"
		if len(turn.ToolCalls) > 0 {
			raw, err := json.Marshal(turn.ToolCalls)
			if err != nil {
				return fmt.Errorf("encoding tool calls: %w", err)
			}
			toolCalls = string(raw)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, seq, role, content, tool_calls, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			turn.ID, convID, turn.Seq, turn.Role, turn.Content, toolCalls, turn.CreatedAt)
		if err != nil {
			return fmt.Errorf("appending %s turn: %w", turn.Role, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, convID)
	if err != nil {
		return fmt.Errorf("bumping conversation: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTurn(row rowScanner) (*Turn, error) {
	var t Turn
	var toolCalls string
	if err := row.Scan(&t.ID, &t.ConversationID, &t.Seq, &t.Role, &t.Content, &toolCalls, &t.CreatedAt); err != nil {
		return nil, err
	}
	if toolCalls != "" && toolCalls != "[]" {
		if err := json.Unmarshal([]byte(toolCalls), &t.ToolCalls); err != nil {
			return nil, fmt.Errorf("decoding tool calls: %w", err)
		}
	}
	return &t, nil
}
