// Package llmtest provides llm.Provider doubles for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
)

// MockProvider is a testify mock of llm.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return m.Called().String(0)
}

func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.CompletionResponse), args.Error(1)
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

// Reply is one scripted completion.
type Reply struct {
	Text string
	Err  error
}

// Script answers calls in order and records every request.
// Calls beyond the script fail.
type Script struct {
	mu       sync.Mutex
	replies  []Reply
	requests []llm.CompletionRequest
	name     string
}

// NewScript returns a provider that replays replies in order.
func NewScript(replies ...Reply) *Script {
	return &Script{replies: replies, name: "script"}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) *Script {
	replies := make([]Reply, len(texts))
	for i, t := range texts {
		replies[i] = Reply{Text: t}
	}
	return NewScript(replies...)
}

func (s *Script) Name() string { return s.name }

func (s *Script) IsAvailable(context.Context) bool { return true }

func (s *Script) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(s.requests)
	s.requests = append(s.requests, req)
	if n >= len(s.replies) {
		return nil, fmt.Errorf("llmtest: unexpected call %d", n+1)
	}
	r := s.replies[n]
	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.CompletionResponse{Text: r.Text, Model: req.Model, TokensUsed: len(r.Text) / 4}, nil
}

// Requests returns a copy of the recorded requests.
func (s *Script) Requests() []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.CompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns the number of Complete calls made.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Echo answers every call with a fixed function of the request.
type Echo func(req llm.CompletionRequest) (string, error)

func (Echo) Name() string { return "echo" }

func (Echo) IsAvailable(context.Context) bool { return true }

func (f Echo) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := f(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Text: text, Model: req.Model}, nil
}
