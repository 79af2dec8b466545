package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
)

const routingSystemPrompt = `You are a routing assistant. Given a user message and the list of
available specialist agents, decide which agent is best suited to answer.
If the message spans multiple specializations, name the best agent as primary
and the others as secondary. If no specialist applies, use null as the
primary agent.

Respond with a single JSON object and nothing else:
{"primary_agent": "<agent id or null>", "secondary_agents": ["<agent id>", ...], "reasoning": "<one sentence>", "is_multi_agent": <true|false>}`

// RouterOptions configures a Router instance.
type RouterOptions struct {
	// HistoryLimit bounds how many recent turns accompany the message.
	HistoryLimit int
	// MaxTokens bounds the backend completion for the routing call.
	MaxTokens int64
	Logger    logging.Logger
}

// Router is the model-assisted routing strategy. It asks the backend for a
// structured decision and degrades to the keyword scorer on any backend,
// parse or validation failure. Decide never returns an error: routing always
// produces a usable decision.
type Router struct {
	backend      model.Backend
	registry     core.AgentRegistry
	scorer       *KeywordScorer
	historyLimit int
	maxTokens    int64
	logger       logging.Logger
}

// NewRouter creates a Router over the given backend, registry and fallback scorer.
func NewRouter(backend model.Backend, registry core.AgentRegistry, scorer *KeywordScorer, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{
		HistoryLimit: 10,
		MaxTokens:    512,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		backend:      backend,
		registry:     registry,
		scorer:       scorer,
		historyLimit: opts.HistoryLimit,
		maxTokens:    opts.MaxTokens,
		logger:       opts.Logger,
	}
}

// Decide routes one message. The returned decision carries Strategy and
// FallbackReason so callers can observe, but never need to handle, a
// degradation.
func (r *Router) Decide(ctx context.Context, message string, history []core.Message) core.RoutingDecision {
	if r.backend == nil {
		return r.fallback(message, "no routing backend configured")
	}

	resp, err := r.backend.Chat(ctx, model.Request{
		SystemPrompt: r.buildPrompt(),
		Messages:     r.buildMessages(message, history),
		MaxTokens:    r.maxTokens,
	})
	if err != nil {
		return r.fallback(message, fmt.Sprintf("routing backend failed: %v", err))
	}

	payload, err := parseRoutePayload(resp.Text)
	if err != nil {
		return r.fallback(message, err.Error())
	}

	return r.translate(message, payload)
}

// fallback degrades to the keyword scorer, recording why.
func (r *Router) fallback(message, reason string) core.RoutingDecision {
	r.logger.Debug("routing degraded to keyword scorer", "reason", reason)
	decision := r.scorer.Route(message)
	decision.FallbackReason = reason
	return decision
}

// translate converts a validated payload into a decision, checking agent ids
// against the registry. An unknown primary rejects the whole payload; unknown
// or duplicate secondaries are dropped.
func (r *Router) translate(message string, payload routePayload) core.RoutingDecision {
	primary := ""
	if payload.PrimaryAgent != nil {
		primary = *payload.PrimaryAgent
	}
	if primary == core.OrchestratorID {
		primary = ""
	}
	if primary != "" {
		if _, ok := r.registry.Get(primary); !ok {
			return r.fallback(message, fmt.Sprintf("router named unknown agent %q", primary))
		}
	}

	seen := map[string]bool{primary: true}
	var secondary []string
	for _, id := range payload.SecondaryAgents {
		if id == "" || id == core.OrchestratorID || seen[id] {
			continue
		}
		if _, ok := r.registry.Get(id); !ok {
			continue
		}
		seen[id] = true
		secondary = append(secondary, id)
	}

	// The model path reports no calibrated confidence; an affirmative
	// choice counts as full confidence, no choice as none.
	confidence := 0.0
	if primary != "" {
		confidence = 1.0
	}

	return core.RoutingDecision{
		PrimaryAgent:    primary,
		SecondaryAgents: secondary,
		Confidence:      confidence,
		Reasoning:       payload.Reasoning,
		MultiAgent:      payload.IsMultiAgent && len(secondary) > 0,
		Strategy:        core.StrategyModel,
	}
}

// buildPrompt enumerates the routable specialists under the routing instructions.
func (r *Router) buildPrompt() string {
	var b strings.Builder
	b.WriteString(routingSystemPrompt)
	b.WriteString("\n\nAvailable agents:\n")
	for _, desc := range r.registry.List() {
		if desc.ID == core.OrchestratorID {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", desc.ID, desc.Name, desc.Specialization)
	}
	return b.String()
}

// buildMessages assembles the bounded history window plus the message.
func (r *Router) buildMessages(message string, history []core.Message) []model.ChatMessage {
	window := history
	if r.historyLimit > 0 && len(window) > r.historyLimit {
		window = window[len(window)-r.historyLimit:]
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
