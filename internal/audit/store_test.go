package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Fareedsea/todo-chatbot/internal/db"
	"github.com/Fareedsea/todo-chatbot/internal/server"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Record(ctx, "alice", "add_task",
		map[string]any{"title": "buy milk", tools.OwnerKey: "alice"},
		tools.Ok(map[string]any{"id": "t1"}))
	store.Record(ctx, "alice", "delete_task",
		map[string]any{"task_id": "t1"},
		tools.Fail(tools.CodeNotFound, "that task doesn't exist"))
	store.Record(ctx, "bob", "list_tasks", map[string]any{}, tools.Ok(nil))

	invs, err := store.List(ctx, Query{SubjectID: "alice"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(invs) != 2 {
		t.Fatalf("expected 2 invocations for alice, got %d", len(invs))
	}
	// Newest first.
	if invs[0].Tool != "delete_task" || invs[1].Tool != "add_task" {
		t.Errorf("unexpected order: %s, %s", invs[0].Tool, invs[1].Tool)
	}
	if invs[0].ErrorCode != tools.CodeNotFound {
		t.Errorf("error_code = %q", invs[0].ErrorCode)
	}

	// The injected owner key is scrubbed from stored arguments.
	var args map[string]any
	if err := json.Unmarshal(invs[1].Arguments, &args); err != nil {
		t.Fatalf("unmarshal arguments: %v", err)
	}
	if _, ok := args[tools.OwnerKey]; ok {
		t.Error("owner key leaked into stored arguments")
	}
}

func TestListFiltersByTool(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Record(ctx, "alice", "add_task", map[string]any{}, tools.Ok(nil))
	store.Record(ctx, "alice", "list_tasks", map[string]any{}, tools.Ok(nil))

	invs, err := store.List(ctx, Query{SubjectID: "alice", Tool: "add_task"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(invs) != 1 || invs[0].Tool != "add_task" {
		t.Fatalf("expected only add_task, got %+v", invs)
	}
}

func TestRoutesScopeToCaller(t *testing.T) {
	store := newTestStore(t)
	store.Record(context.Background(), "alice", "add_task", map[string]any{}, tools.Ok(nil))
	store.Record(context.Background(), "bob", "add_task", map[string]any{}, tools.Ok(nil))

	r := chi.NewRouter()
	r.Use(server.RequireIdentity("X-User-ID"))
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/invocations", nil)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Invocations []Invocation `json:"invocations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Invocations) != 1 {
		t.Errorf("expected 1 invocation for alice, got %d", len(body.Invocations))
	}
}
