package model

import (
	"context"
	"fmt"
	"sync"
)

// ChatMessage is one role-tagged turn passed to a backend.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request captures the normalized backend input produced by the engine.
type Request struct {
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	MaxTokens    int64         `json:"max_tokens,omitempty"`
	// AgentID identifies the agent the call is made for; providers may use
	// it for per-agent model selection, adapters here only echo it in logs.
	AgentID string `json:"agent_id,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed backend answer.
type Response struct {
	Text     string      `json:"text"`
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Usage    *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a backend implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Backend is the minimal interface required to drive generation. Chat blocks
// until the provider answers or ctx is done; failures are returned as
// *core.BackendError.
type Backend interface {
	Chat(ctx context.Context, req Request) (Response, error)

	// Info returns information about the backend implementation.
	Info() Info
}

// MockBackend is a lightweight in-memory Backend useful for tests & examples.
// It is safe for concurrent use so dispatcher tests can fan out over it.
type MockBackend struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
	requests  []Request
}

// NewMockBackend constructs a MockBackend.
func NewMockBackend(name, provider string) *MockBackend {
	return &MockBackend{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input message.
func (m *MockBackend) AddResponse(message, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[message] = response
}

// SetError forces every subsequent Chat call to fail with err. Pass nil to
// restore normal behavior.
func (m *MockBackend) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Chat invocations made so far.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or false if none were made.
func (m *MockBackend) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// Chat implements Backend; answers with the canned completion for the last
// message, or a deterministic echo when none is registered.
func (m *MockBackend) Chat(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	err := m.err
	var last string
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Content
	}
	text, ok := m.responses[last]
	m.mu.Unlock()

	if err != nil {
		return Response{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Response{}, ctxErr
	}
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", last)
	}
	return Response{Text: text, Provider: m.info.Provider, Model: m.info.Name}, nil
}

// Info implements Backend.
func (m *MockBackend) Info() Info { return m.info }
