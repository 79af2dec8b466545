package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
)

// ExecutorOptions configures an Executor instance.
type ExecutorOptions struct {
	// HistoryLimit bounds how many recent turns accompany the message.
	HistoryLimit int
	// SnippetLimit caps the knowledge snippets retrieved per call.
	SnippetLimit int
	// SnippetMaxChars truncates each snippet to a fixed character budget.
	SnippetMaxChars int
	// MaxTokens bounds the backend completion.
	MaxTokens int64
	Logger    logging.Logger
}

// Executor runs a single agent call: registry lookup, knowledge grounding,
// backend invocation. It persists nothing; persistence belongs to the
// controller.
type Executor struct {
	registry  core.AgentRegistry
	knowledge core.KnowledgeIndex
	backend   model.Backend
	opts      ExecutorOptions
}

// NewExecutor creates an Executor. knowledge may be nil, in which case
// responses are ungrounded.
func NewExecutor(registry core.AgentRegistry, knowledge core.KnowledgeIndex, backend model.Backend, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		HistoryLimit:    10,
		SnippetLimit:    5,
		SnippetMaxChars: 1000,
		MaxTokens:       2048,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{registry: registry, knowledge: knowledge, backend: backend, opts: opts}
}

// Execute runs one agent for one message. It fails with AgentNotFoundError
// for unregistered ids and with the backend's error otherwise; in both cases
// the returned result carries the agent identity so callers can convert the
// error into data.
func (e *Executor) Execute(ctx context.Context, agentID, message string, history []core.Message) (core.ExecutionResult, error) {
	desc, ok := e.registry.Get(agentID)
	if !ok {
		return core.ExecutionResult{AgentID: agentID}, &core.AgentNotFoundError{ID: agentID}
	}

	result := core.ExecutionResult{AgentID: desc.ID, AgentName: desc.Name}

	snippets := e.searchKnowledge(ctx, desc.ID, message)
	result.KnowledgeUsed = len(snippets)

	resp, err := e.backend.Chat(ctx, model.Request{
		SystemPrompt: buildSystemPrompt(desc.SystemPrompt, snippets, e.opts.SnippetMaxChars),
		Messages:     e.buildMessages(message, history),
		MaxTokens:    e.opts.MaxTokens,
		AgentID:      desc.ID,
	})
	if err != nil {
		return result, fmt.Errorf("agent %s: %w", desc.ID, err)
	}

	result.Response = resp.Text
	result.Provider = resp.Provider
	result.Model = resp.Model
	return result, nil
}

// searchKnowledge retrieves grounding snippets. Lookup failures are logged
// and ignored: grounding is best effort, the answer still gets produced.
func (e *Executor) searchKnowledge(ctx context.Context, agentID, query string) []core.Snippet {
	if e.knowledge == nil {
		return nil
	}
	snippets, err := e.knowledge.Search(ctx, agentID, query, e.opts.SnippetLimit)
	if err != nil {
		e.opts.Logger.Warn("knowledge lookup failed", "agent", agentID, "error", err)
		return nil
	}
	return snippets
}

// buildSystemPrompt appends the snippets as a clearly delimited context block
// to the agent's base prompt.
func buildSystemPrompt(base string, snippets []core.Snippet, maxChars int) string {
	if len(snippets) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n--- Relevant knowledge ---\n")
	for _, sn := range snippets {
		if sn.Title != "" {
			fmt.Fprintf(&b, "### %s\n", sn.Title)
		}
		b.WriteString(truncate(sn.Content, maxChars))
		b.WriteString("\n\n")
	}
	b.WriteString("--- End of knowledge ---")
	return b.String()
}

// buildMessages assembles the bounded history window plus the message.
func (e *Executor) buildMessages(message string, history []core.Message) []model.ChatMessage {
	window := history
	if e.opts.HistoryLimit > 0 && len(window) > e.opts.HistoryLimit {
		window = window[len(window)-e.opts.HistoryLimit:]
	}
	messages := make([]model.ChatMessage, 0, len(window)+1)
	for _, m := range window {
		role := "user"
		if m.Role == core.RoleAssistant || m.Role == core.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, model.ChatMessage{Role: role, Content: m.Content})
	}
	return append(messages, model.ChatMessage{Role: "user", Content: message})
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
