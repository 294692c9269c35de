package chat

import (
	"encoding/json"
	"fmt"

	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

// systemPrompt steers the model: every task operation goes through a
// tool, destructive actions wait for explicit assent, and errors are
// translated for the user rather than echoed.
const systemPrompt = `You are a friendly task-list assistant. You help the user manage their to-do list and nothing else.

Rules:
- Always use the provided tools to read or change tasks. Never invent task data or pretend an operation happened.
- After a tool succeeds, confirm what happened in one short, friendly sentence.
- If a request is ambiguous (for example, which task the user means), ask a short clarifying question instead of guessing.
- Before completing, updating, or deleting a task, state exactly what you are about to do and ask the user to reply 'yes' to confirm or 'no' to cancel. Do not perform the action until they confirm.
- If a tool reports an error, explain it in plain language and suggest what the user can try next. Never show error codes or internal details.
- If the user asks about anything other than their task list, politely say that you can only help with tasks.`

// pendingReminder is appended to the system prompt when a destructive
// action is still awaiting assent and the user's reply didn't answer it.
const pendingReminder = `

A previous action is still waiting for confirmation: %s. The user's last message did not answer it. Briefly address their message if you can, then ask again for a clear 'yes' or 'no' before doing anything destructive.`

// friendlyReply produces the deterministic user-facing sentence for a
// tool outcome. Used on the direct confirm-dispatch path and as a
// fallback when the model returns no text after executing tools.
func friendlyReply(tool string, res tools.Result) string {
	if !res.Success {
		switch res.ErrorCode() {
		case tools.CodeNotFound:
			return "I couldn't find that task. It may have already been removed - try listing your tasks to see what's there."
		case tools.CodeValidationError:
			return "I couldn't do that with the details I had. Could you rephrase what you'd like to change?"
		default:
			return "Something went wrong with that operation. Please try again in a moment."
		}
	}

	switch tool {
	case tools.ToolAddTask:
		return fmt.Sprintf("Done! I've added %s to your list.", resultTitle(res, "the task"))
	case tools.ToolListTasks:
		return "Here are your tasks."
	case tools.ToolUpdateTask:
		return fmt.Sprintf("Done! The task is now called %s.", resultTitle(res, "what you asked"))
	case tools.ToolCompleteTask:
		return fmt.Sprintf("Nice work! I've marked %s as completed.", resultTitle(res, "the task"))
	case tools.ToolDeleteTask:
		return fmt.Sprintf("Done! I've deleted %s.", resultTitle(res, "the task"))
	default:
		return "Done!"
	}
}

// describeAction renders a proposed destructive call for the confirmation
// question and the pending reminder.
func describeAction(rec *ToolCallRecord) string {
	switch rec.Tool {
	case tools.ToolDeleteTask:
		return fmt.Sprintf("delete task %v", rec.Arguments["task_id"])
	case tools.ToolCompleteTask:
		return fmt.Sprintf("mark task %v as completed", rec.Arguments["task_id"])
	case tools.ToolUpdateTask:
		return fmt.Sprintf("rename task %v to %q", rec.Arguments["task_id"], rec.Arguments["title"])
	default:
		return rec.Tool
	}
}

// resultTitle pulls the task title out of a success payload for the
// friendly reply, quoted, with a fallback phrase.
func resultTitle(res tools.Result, fallback string) string {
	raw, err := json.Marshal(res.Data)
	if err != nil {
		return fallback
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Title == "" {
		return fallback
	}
	return fmt.Sprintf("%q", payload.Title)
}
