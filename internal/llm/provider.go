package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks a provider failure that survived the retry policy.
// Callers surface it as a transient "try again shortly" condition.
var ErrUnavailable = errors.New("model provider unavailable")

// Provider defines the interface for reasoning-model providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
