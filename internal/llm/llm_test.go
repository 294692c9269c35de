package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// fakeProvider returns scripted outcomes in order.
type fakeProvider struct {
	calls int
	errs  []error
	resp  *CompletionResponse
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &CompletionResponse{Content: "ok"}, nil
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: 503}
	fake := &fakeProvider{errs: []error{transient, transient, nil}}

	p := NewRetryingProvider(fake, RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})
	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected ok, got %q", resp.Content)
	}
	if fake.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", fake.calls)
	}
}

func TestRetryExhaustionWrapsErrUnavailable(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: 429}
	fake := &fakeProvider{errs: []error{transient, transient, transient}}

	p := NewRetryingProvider(fake, RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})
	_, err := p.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if fake.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", fake.calls)
	}
}

func TestRetryDoesNotRetryTerminalErrors(t *testing.T) {
	terminal := &openai.APIError{HTTPStatusCode: 401}
	fake := &fakeProvider{errs: []error{terminal}}

	p := NewRetryingProvider(fake, RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})
	_, err := p.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("terminal error should not be marked unavailable")
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", fake.calls)
	}
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	fake := &fakeProvider{}
	p := NewRetryingProvider(fake, RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, CompletionRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("expected 0 attempts on canceled context, got %d", fake.calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	fake := &fakeProvider{}
	p := NewRateLimitedProvider(fake, 60)

	for i := 0; i < 3; i++ {
		if _, err := p.Complete(context.Background(), CompletionRequest{}); err != nil {
			t.Fatalf("Complete[%d]: %v", i, err)
		}
	}
	if fake.calls != 3 {
		t.Errorf("expected 3 calls, got %d", fake.calls)
	}
}
