package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Fareedsea/todo-chatbot/internal/db"
	"github.com/Fareedsea/todo-chatbot/internal/task"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

func newTestDispatcher(t *testing.T) (*tools.Dispatcher, *task.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := task.NewStore(database)
	registry := tools.NewRegistry()
	if err := tools.RegisterTaskTools(registry, store); err != nil {
		t.Fatalf("RegisterTaskTools: %v", err)
	}
	return tools.NewDispatcher(registry, nil), store
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is not text: %T", result.Content[0])
	}
	return text.Text
}

func TestNewServerRequiresSubject(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	if _, err := NewServer(dispatcher, "", "test"); err == nil {
		t.Fatal("expected an error for empty subject")
	}
}

func TestToolHandlerDispatchesForFixedSubject(t *testing.T) {
	dispatcher, store := newTestDispatcher(t)
	handler := toolHandler(dispatcher, tools.ToolAddTask, "alice")

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"title": "buy milk"}

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}
	if !strings.Contains(textContent(t, result), "buy milk") {
		t.Errorf("result text = %q", textContent(t, result))
	}

	tasks, _ := store.List(context.Background(), "alice", task.ListFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected one task for the fixed subject, got %d", len(tasks))
	}
}

func TestToolHandlerReportsEnvelopeErrors(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	handler := toolHandler(dispatcher, tools.ToolDeleteTask, "alice")

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"task_id": "missing"}

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for a missing task")
	}
}

func TestToolDefinitionsOmitOwnerKey(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)

	for _, contract := range dispatcher.Registry().List() {
		def := toolDefinition(contract)
		if _, ok := def.InputSchema.Properties[tools.OwnerKey]; ok {
			t.Errorf("tool %s exposes the reserved owner key", contract.Name)
		}
	}
}
