// Package audit keeps an append-only record of every tool invocation the
// dispatcher executes. Records are written out-of-band of the chat flow
// and only ever read back through the query API.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Fareedsea/todo-chatbot/internal/db"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

// Invocation is one recorded tool call.
type Invocation struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"-"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Success   bool            `json:"success"`
	ErrorCode string          `json:"error_code,omitempty"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Query filters an invocation listing. Zero values mean "no filter".
type Query struct {
	SubjectID string
	Tool      string
	Since     time.Time
	Limit     int
}

// Store persists invocation records in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates an audit store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record implements tools.Recorder. Audit failures are logged, never
// propagated: a broken audit trail must not fail the user's turn.
func (s *Store) Record(ctx context.Context, subjectID, tool string, args map[string]any, res tools.Result) {
	argsJSON, err := json.Marshal(scrubOwner(args))
	if err != nil {
		argsJSON = []byte("{}")
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		resultJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_invocations (id, subject_id, tool, arguments, success, error_code, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), subjectID, tool, string(argsJSON),
		boolToInt(res.Success), res.ErrorCode(), string(resultJSON), time.Now().UTC())
	if err != nil {
		log.Printf("recording invocation of %s: %v", tool, err)
	}
}

// List returns invocations matching the query, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]*Invocation, error) {
	query := `SELECT id, subject_id, tool, arguments, success, error_code, result, created_at
	          FROM tool_invocations WHERE 1=1`
	var args []any
	if q.SubjectID != "" {
		query += ` AND subject_id = ?`
		args = append(args, q.SubjectID)
	}
	if q.Tool != "" {
		query += ` AND tool = ?`
		args = append(args, q.Tool)
	}
	if !q.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UTC())
	}
	query += ` ORDER BY created_at DESC, id`
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invocations: %w", err)
	}
	defer rows.Close()

	var out []*Invocation
	for rows.Next() {
		var inv Invocation
		var success int
		var argsStr, resultStr string
		if err := rows.Scan(&inv.ID, &inv.SubjectID, &inv.Tool, &argsStr,
			&success, &inv.ErrorCode, &resultStr, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Success = success != 0
		inv.Arguments = json.RawMessage(argsStr)
		inv.Result = json.RawMessage(resultStr)
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// scrubOwner drops the injected identity from the stored argument set; the
// subject is recorded in its own column.
func scrubOwner(args map[string]any) map[string]any {
	if _, ok := args[tools.OwnerKey]; !ok {
		return args
	}
	clean := make(map[string]any, len(args))
	for k, v := range args {
		if k == tools.OwnerKey {
			continue
		}
		clean[k] = v
	}
	return clean
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
