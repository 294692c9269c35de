package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Fareedsea/todo-chatbot/internal/config"
	"github.com/Fareedsea/todo-chatbot/internal/llm"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

// ErrConversationNotFound covers both absent conversations and ones owned
// by another subject; callers must not be able to tell the difference.
var ErrConversationNotFound = errors.New("conversation not found")

// Engine orchestrates one chat turn end to end: reconstruct context from
// storage, drive the model through bounded tool rounds, gate destructive
// actions behind confirmation, persist the exchange. It holds no per-
// conversation state between calls.
type Engine struct {
	provider   llm.Provider
	dispatcher *tools.Dispatcher
	history    *History
	cfg        config.ChatConfig
}

// NewEngine wires the engine from its collaborators.
func NewEngine(provider llm.Provider, dispatcher *tools.Dispatcher, history *History, cfg config.ChatConfig) *Engine {
	return &Engine{
		provider:   provider,
		dispatcher: dispatcher,
		history:    history,
		cfg:        cfg,
	}
}

// History exposes the engine's history adapter for read-only routes.
func (e *Engine) History() *History {
	return e.history
}

// HandleTurn processes one user message and returns the reply plus the
// tool calls recorded for the turn.
func (e *Engine) HandleTurn(ctx context.Context, subjectID, conversationID, userText string) (*TurnResult, error) {
	conv, turns, err := e.resolveConversation(ctx, subjectID, conversationID)
	if err != nil {
		return nil, err
	}

	unlock := e.history.LockConversation(conv.ID)
	defer unlock()

	// Reload under the lock when continuing an existing thread, so two
	// racing requests cannot both act on the same pending confirmation.
	if conversationID != "" {
		conv, turns, err = e.resolveConversation(ctx, subjectID, conversationID)
		if err != nil {
			return nil, err
		}
	}

	reply, records, err := e.produceReply(ctx, subjectID, turns, userText)
	if err != nil {
		return nil, err
	}

	userTurn := &Turn{Role: RoleUser, Content: userText}
	assistantTurn := &Turn{Role: RoleAssistant, Content: reply, ToolCalls: records}
	if err := e.history.AppendExchange(ctx, conv.ID, userTurn, assistantTurn); err != nil {
		return nil, fmt.Errorf("persisting turn: %w", err)
	}

	return &TurnResult{
		ConversationID: conv.ID,
		Reply:          reply,
		ToolCalls:      records,
	}, nil
}

func (e *Engine) resolveConversation(ctx context.Context, subjectID, conversationID string) (*Conversation, []*Turn, error) {
	if conversationID == "" {
		conv, err := e.history.CreateConversation(ctx, subjectID)
		return conv, nil, err
	}
	conv, turns, err := e.history.Load(ctx, conversationID, subjectID, e.cfg.HistoryLimit)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, ErrConversationNotFound
	}
	return conv, turns, nil
}

// produceReply runs the confirmation gate and, when needed, the model
// loop. It returns the assistant's reply text and the tool-call records
// for the assistant turn.
func (e *Engine) produceReply(ctx context.Context, subjectID string, turns []*Turn, userText string) (string, []ToolCallRecord, error) {
	pending := PendingAction(turns)
	if pending != nil {
		switch Classify(userText) {
		case Affirm:
			rec := e.execute(ctx, subjectID, pending.Tool, pending.Arguments)
			return friendlyReply(pending.Tool, resultOf(rec)), []ToolCallRecord{rec}, nil
		case Reject:
			return fmt.Sprintf("Okay, I won't %s. Anything else?", describeAction(pending)), nil, nil
		}
		// Unrelated: fall through to the model with a reminder to re-ask.
	}

	reply, records, err := e.modelLoop(ctx, subjectID, turns, userText, pending)
	if err != nil {
		return "", nil, err
	}

	// An unanswered confirmation stays pending: re-attach the proposed
	// record so the derived state survives this exchange.
	if pending != nil && !hasProposed(records) {
		records = append(records, *pending)
	}
	return reply, records, nil
}

func hasProposed(records []ToolCallRecord) bool {
	for _, rec := range records {
		if rec.Proposed {
			return true
		}
	}
	return false
}

// modelLoop drives the reasoning call through bounded tool rounds.
// Non-destructive calls execute immediately and their results go back to
// the model; the first destructive call stops the loop with a proposed
// record awaiting user assent.
func (e *Engine) modelLoop(ctx context.Context, subjectID string, turns []*Turn, userText string, pending *ToolCallRecord) (string, []ToolCallRecord, error) {
	system := systemPrompt
	if pending != nil {
		system += fmt.Sprintf(pendingReminder, describeAction(pending))
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	for _, turn := range turns {
		role := llm.RoleUser
		if turn.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userText})

	specs := e.dispatcher.Registry().Specs()
	var records []ToolCallRecord

	for round := 0; round < e.cfg.MaxToolRounds; round++ {
		resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
			Messages: messages,
			Tools:    specs,
		})
		if err != nil {
			return "", nil, err
		}

		if len(resp.ToolCalls) == 0 {
			reply := resp.Content
			if reply == "" {
				reply = e.fallbackReply(records)
			}
			return reply, records, nil
		}

		assistantMsg := llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		messages = append(messages, assistantMsg)

		for _, call := range resp.ToolCalls {
			args, err := decodeArguments(call.Arguments)
			if err != nil {
				rec := ToolCallRecord{Tool: call.Name, Arguments: map[string]any{}}
				setResult(&rec, tools.Fail(tools.CodeValidationError, "malformed tool arguments"))
				records = append(records, rec)
				messages = append(messages, toolMessage(call.ID, rec))
				continue
			}

			if contract := e.dispatcher.Registry().Lookup(call.Name); contract != nil && contract.Destructive {
				proposed := ToolCallRecord{Tool: call.Name, Arguments: args, Proposed: true}
				records = append(records, proposed)
				reply := fmt.Sprintf("I'm about to %s. Reply 'yes' to confirm or 'no' to cancel.",
					describeAction(&proposed))
				return reply, records, nil
			}

			rec := e.execute(ctx, subjectID, call.Name, args)
			records = append(records, rec)
			messages = append(messages, toolMessage(call.ID, rec))
		}
	}

	// Round cap reached with the model still asking for tools.
	return e.fallbackReply(records), records, nil
}

// execute dispatches one tool call and captures the envelope in a record.
func (e *Engine) execute(ctx context.Context, subjectID, tool string, args map[string]any) ToolCallRecord {
	rec := ToolCallRecord{Tool: tool, Arguments: args}
	setResult(&rec, e.dispatcher.Invoke(ctx, tool, args, subjectID))
	return rec
}

// fallbackReply synthesizes a reply when the model produced no text.
func (e *Engine) fallbackReply(records []ToolCallRecord) string {
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].Proposed {
			return friendlyReply(records[i].Tool, resultOf(records[i]))
		}
	}
	return "Sorry, I couldn't finish that. Could you try rephrasing?"
}

func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// setResult stores the envelope verbatim on the record. The structured
// result is persisted as-is, never paraphrased before storage.
func setResult(rec *ToolCallRecord, res tools.Result) {
	rec.Success = res.Success
	raw, err := json.Marshal(res)
	if err != nil {
		log.Printf("encoding result for %s: %v", rec.Tool, err)
		raw = []byte(`{"success":false}`)
	}
	rec.Result = raw
}

// resultOf decodes the stored envelope back out of a record.
func resultOf(rec ToolCallRecord) tools.Result {
	var res tools.Result
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return tools.Fail(tools.CodeExecutionError, "the operation failed unexpectedly")
	}
	return res
}

// toolMessage feeds an executed tool result back to the model.
func toolMessage(callID string, rec ToolCallRecord) llm.Message {
	return llm.Message{
		Role:       llm.RoleTool,
		Content:    string(rec.Result),
		ToolCallID: callID,
	}
}
