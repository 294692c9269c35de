package tools

import (
	"context"
	"errors"
	"log"

	"github.com/Fareedsea/todo-chatbot/internal/task"
)

// Task tool names.
const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolUpdateTask   = "update_task"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
)

// RegisterTaskTools registers the five task tools over the given store.
func RegisterTaskTools(r *Registry, store *task.Store) error {
	contracts := []*Contract{
		{
			Name:        ToolAddTask,
			Description: "Add a new task to the user's list.",
			Input: map[string]FieldSpec{
				"title": {Type: TypeString, Description: "Task title", Required: true, MinLen: 1, MaxLen: 500},
			},
			Output: map[string]FieldSpec{
				"id":    {Type: TypeString},
				"title": {Type: TypeString},
			},
			Handler: addTask(store),
		},
		{
			Name:        ToolListTasks,
			Description: "List the user's tasks, optionally filtered by status.",
			Input: map[string]FieldSpec{
				"status": {Type: TypeString, Description: "Filter: all, pending, or completed", Enum: []string{"all", "pending", "completed"}},
			},
			Handler: listTasks(store),
		},
		{
			Name:        ToolUpdateTask,
			Description: "Change the title of an existing task.",
			Input: map[string]FieldSpec{
				"task_id": {Type: TypeString, Description: "ID of the task to update", Required: true, MinLen: 1},
				"title":   {Type: TypeString, Description: "New task title", Required: true, MinLen: 1, MaxLen: 500},
			},
			Destructive: true,
			Handler:     updateTask(store),
		},
		{
			Name:        ToolCompleteTask,
			Description: "Mark a task as completed.",
			Input: map[string]FieldSpec{
				"task_id": {Type: TypeString, Description: "ID of the task to complete", Required: true, MinLen: 1},
			},
			Destructive: true,
			Handler:     completeTask(store),
		},
		{
			Name:        ToolDeleteTask,
			Description: "Delete a task from the user's list.",
			Input: map[string]FieldSpec{
				"task_id": {Type: TypeString, Description: "ID of the task to delete", Required: true, MinLen: 1},
			},
			Destructive: true,
			Handler:     deleteTask(store),
		},
	}

	for _, c := range contracts {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func addTask(store *task.Store) Handler {
	return func(ctx context.Context, args Args) Result {
		t, err := store.Create(ctx, args.String(OwnerKey), args.String("title"))
		if err != nil {
			return storeFailure("add_task", err)
		}
		return Ok(t)
	}
}

func listTasks(store *task.Store) Handler {
	return func(ctx context.Context, args Args) Result {
		var filter task.ListFilter
		switch args.String("status") {
		case "pending":
			completed := false
			filter.Completed = &completed
		case "completed":
			completed := true
			filter.Completed = &completed
		}

		items, err := store.List(ctx, args.String(OwnerKey), filter)
		if err != nil {
			return storeFailure("list_tasks", err)
		}
		if items == nil {
			items = []*task.Task{}
		}
		return Ok(map[string]any{"tasks": items, "count": len(items)})
	}
}

func updateTask(store *task.Store) Handler {
	return func(ctx context.Context, args Args) Result {
		t, err := store.Update(ctx, args.String("task_id"), args.String(OwnerKey), args.String("title"))
		if err != nil {
			return storeFailure("update_task", err)
		}
		return Ok(t)
	}
}

func completeTask(store *task.Store) Handler {
	return func(ctx context.Context, args Args) Result {
		t, err := store.Complete(ctx, args.String("task_id"), args.String(OwnerKey))
		if err != nil {
			return storeFailure("complete_task", err)
		}
		return Ok(t)
	}
}

func deleteTask(store *task.Store) Handler {
	return func(ctx context.Context, args Args) Result {
		t, err := store.Delete(ctx, args.String("task_id"), args.String(OwnerKey))
		if err != nil {
			return storeFailure("delete_task", err)
		}
		return Ok(t)
	}
}

// storeFailure maps store errors to the envelope. Not-found is disclosed
// generically; everything else is logged in full and surfaced without
// internal detail.
func storeFailure(tool string, err error) Result {
	if errors.Is(err, task.ErrNotFound) {
		return Fail(CodeNotFound, "that task doesn't exist")
	}
	log.Printf("%s failed: %v", tool, err)
	return Fail(CodeExecutionError, "the operation failed unexpectedly")
}
