package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/dispatch"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
	"github.com/lumohq/switchboard/routing"
)

// Response types consumed by UIs; the field is always set consistently with
// the branch taken and must stay stable.
const (
	ResponseTypeOrchestrator = "orchestrator"
	ResponseTypeSingleAgent  = "single-agent"
	ResponseTypeMultiAgent   = "multi-agent"
)

// titleMaxChars bounds conversation titles derived from the first message.
const titleMaxChars = 50

const defaultGeneralPrompt = `You are a helpful assistant coordinating a team of specialists.
The current message needs no specialist, so answer it yourself: be concise,
friendly and direct.`

// Options configures a Controller instance.
type Options struct {
	// Scorer provides the keyword fallback tables. Defaults to the
	// built-in specialist tables.
	Scorer *routing.KeywordScorer
	// HistoryLimit bounds the recent-history window handed to routing and
	// execution.
	HistoryLimit int
	// MaxParallelAgents bounds dispatcher fan-out. 0 means unbounded.
	MaxParallelAgents int
	// AgentTimeout bounds each per-agent backend call during dispatch.
	AgentTimeout time.Duration
	// MaxTokens bounds agent and synthesis completions.
	MaxTokens int64
	// CallBudget caps backend calls per request. 0 means unlimited; the
	// count is logged either way.
	CallBudget int
	// GeneralSystemPrompt is used when no specialist applies.
	GeneralSystemPrompt string
	// SynthesisSystemPrompt overrides the merge instructions.
	SynthesisSystemPrompt string
	Logger                logging.Logger
}

// Controller is the orchestration entry point. It owns no global state;
// everything is injected at construction.
type Controller struct {
	registry  core.AgentRegistry
	store     core.ConversationStore
	knowledge core.KnowledgeIndex
	backend   model.Backend
	opts      Options
}

// Request is one orchestration request. ConversationID may be empty; a
// conversation is then created lazily, titled from the message.
type Request struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// Response is the user-facing payload. Type is one of the ResponseType
// constants; AgentResponses is populated for multi-agent answers only.
type Response struct {
	Type           string                 `json:"type"`
	Content        string                 `json:"content"`
	Agent          string                 `json:"agent,omitempty"`
	AgentResponses []core.ExecutionResult `json:"agentResponses,omitempty"`
	Routing        core.RoutingDecision   `json:"routing"`
}

// Result wraps the response with the conversation it belongs to.
type Result struct {
	ConversationID string   `json:"conversationId"`
	Response       Response `json:"response"`
	AgentsUsed     []string `json:"agentsUsed"`
}

// NewController creates a Controller over the given collaborators. knowledge
// may be nil for ungrounded setups.
func NewController(registry core.AgentRegistry, store core.ConversationStore, knowledge core.KnowledgeIndex, backend model.Backend, optFns ...func(o *Options)) *Controller {
	opts := Options{
		Scorer:              routing.DefaultTable(),
		HistoryLimit:        10,
		MaxTokens:           2048,
		GeneralSystemPrompt: defaultGeneralPrompt,
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Controller{
		registry:  registry,
		store:     store,
		knowledge: knowledge,
		backend:   backend,
		opts:      opts,
	}
}

// Orchestrate handles one message end to end: conversation resolution, user
// turn persistence, routing, dispatch or direct answer, synthesis and
// persistence of the outgoing turns. It fails only on an empty message;
// every other condition degrades into a response.
func (c *Controller) Orchestrate(ctx context.Context, req Request) (*Result, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, core.ErrEmptyMessage
	}

	log := c.opts.Logger
	requestID := uuid.NewString()

	convID, history := c.prepare(ctx, req.ConversationID, req.UserID, message)

	meter := core.NewCallMeter(c.opts.CallBudget)
	backend := &meteredBackend{inner: c.backend, meter: meter}
	router := c.buildRouter(backend)

	decision := router.Decide(ctx, message, history)
	log.Debug("routing decided",
		"request_id", requestID,
		"primary", decision.PrimaryAgent,
		"secondary", decision.SecondaryAgents,
		"strategy", string(decision.Strategy),
		"fallback_reason", decision.FallbackReason,
	)

	var resp Response
	var agentsUsed []string

	switch {
	case decision.PrimaryAgent == "":
		resp, agentsUsed = c.runGeneral(ctx, backend, convID, message, history, decision)
	case decision.MultiAgent && len(decision.SecondaryAgents) > 0:
		resp, agentsUsed = c.runMulti(ctx, backend, convID, message, history, decision)
	default:
		resp, agentsUsed = c.runSingle(ctx, backend, convID, message, history, decision)
	}

	log.Info("request completed",
		"request_id", requestID,
		"conversation_id", convID,
		"type", resp.Type,
		"agents", agentsUsed,
		"backend_calls", meter.Count(),
	)

	return &Result{ConversationID: convID, Response: resp, AgentsUsed: agentsUsed}, nil
}

// RouteOnly exposes the routing decision without executing any agent.
func (c *Controller) RouteOnly(ctx context.Context, message string) (core.RoutingDecision, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return core.RoutingDecision{}, core.ErrEmptyMessage
	}
	router := c.buildRouter(c.backend)
	return router.Decide(ctx, message, nil), nil
}

// ChatDirect forces a single-agent dispatch, bypassing routing. Unknown
// agent ids are surfaced to the caller.
func (c *Controller) ChatDirect(ctx context.Context, agentID, message, conversationID, userID string) (*Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, core.ErrEmptyMessage
	}
	if _, ok := c.registry.Get(agentID); !ok {
		return nil, &core.AgentNotFoundError{ID: agentID}
	}

	convID, history := c.prepare(ctx, conversationID, userID, message)

	meter := core.NewCallMeter(c.opts.CallBudget)
	backend := &meteredBackend{inner: c.backend, meter: meter}

	decision := core.RoutingDecision{
		PrimaryAgent: agentID,
		Confidence:   1,
		Reasoning:    "direct chat requested",
		Strategy:     core.StrategyDirect,
	}
	resp, agentsUsed := c.runSingle(ctx, backend, convID, message, history, decision)

	return &Result{ConversationID: convID, Response: resp, AgentsUsed: agentsUsed}, nil
}

// prepare resolves the conversation, reads the recent history window and
// persists the incoming user turn. The user turn is stored before routing so
// a crash mid-routing still leaves it recorded. Store failures are logged,
// never fatal.
func (c *Controller) prepare(ctx context.Context, conversationID, userID, message string) (string, []core.Message) {
	log := c.opts.Logger

	convID := conversationID
	if convID == "" {
		id, err := c.store.Create(ctx, userID, conversationTitle(message), nil)
		if err != nil {
			log.Warn("conversation create failed", "error", err)
		} else {
			convID = id
		}
	}

	var history []core.Message
	if convID != "" {
		h, err := c.store.RecentMessages(ctx, convID, c.opts.HistoryLimit)
		if err != nil {
			log.Warn("history read failed", "conversation_id", convID, "error", err)
		} else {
			history = h
		}
	}

	c.append(ctx, convID, core.Message{Role: core.RoleUser, Content: message})

	return convID, history
}

// runGeneral answers with the orchestrator itself: no specialist, no
// knowledge lookup.
func (c *Controller) runGeneral(ctx context.Context, backend model.Backend, convID, message string, history []core.Message, decision core.RoutingDecision) (Response, []string) {
	content := dispatch.ApologyResponse
	resp, err := backend.Chat(ctx, model.Request{
		SystemPrompt: c.opts.GeneralSystemPrompt,
		Messages:     chatHistory(message, history, c.opts.HistoryLimit),
		MaxTokens:    c.opts.MaxTokens,
	})
	if err != nil {
		c.opts.Logger.Warn("general answer failed", "error", err)
	} else {
		content = resp.Text
	}

	c.append(ctx, convID, core.Message{
		Role:     core.RoleAssistant,
		Content:  content,
		AgentID:  core.OrchestratorID,
		Metadata: map[string]any{"routing": decision},
	})

	return Response{
		Type:    ResponseTypeOrchestrator,
		Content: content,
		Agent:   core.OrchestratorID,
		Routing: decision,
	}, []string{core.OrchestratorID}
}

// runSingle executes the primary agent alone. A failed execution degrades to
// the apology answer instead of erroring the request.
func (c *Controller) runSingle(ctx context.Context, backend model.Backend, convID, message string, history []core.Message, decision core.RoutingDecision) (Response, []string) {
	executor := c.buildExecutor(backend)

	res, err := executor.Execute(ctx, decision.PrimaryAgent, message, history)
	if err != nil {
		c.opts.Logger.Warn("agent execution failed", "agent", decision.PrimaryAgent, "error", err)
		res.Err = err.Error()
	}

	content := res.Response
	if !res.Succeeded() {
		content = dispatch.ApologyResponse
	}

	c.append(ctx, convID, core.Message{
		Role:    core.RoleAssistant,
		Content: content,
		AgentID: decision.PrimaryAgent,
		Metadata: map[string]any{
			"routing":        decision,
			"provider":       res.Provider,
			"model":          res.Model,
			"knowledge_used": res.KnowledgeUsed,
		},
	})

	return Response{
		Type:    ResponseTypeSingleAgent,
		Content: content,
		Agent:   decision.PrimaryAgent,
		Routing: decision,
	}, []string{decision.PrimaryAgent}
}

// runMulti fans out to the full agent set and synthesizes the results. One
// message is persisted per successful agent, then one assistant message with
// the synthesized content.
func (c *Controller) runMulti(ctx context.Context, backend model.Backend, convID, message string, history []core.Message, decision core.RoutingDecision) (Response, []string) {
	agents := decision.Agents()
	dispatcher := c.buildDispatcher(backend)
	synthesizer := c.buildSynthesizer(backend)

	results := dispatcher.Dispatch(ctx, agents, message, history)
	synth := synthesizer.Synthesize(ctx, message, results)

	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		c.append(ctx, convID, core.Message{
			Role:    core.RoleAgent,
			Content: r.Response,
			AgentID: r.AgentID,
			Metadata: map[string]any{
				"provider":       r.Provider,
				"model":          r.Model,
				"knowledge_used": r.KnowledgeUsed,
			},
		})
	}

	c.append(ctx, convID, core.Message{
		Role:    core.RoleAssistant,
		Content: synth.Content,
		AgentID: core.OrchestratorID,
		Metadata: map[string]any{
			"synthesized":      true,
			"agents":           synth.ContributingAgents,
			"routing":          decision,
			"synthesis_status": synth.Outcome.Status.String(),
			"synthesis_reason": synth.Outcome.Reason,
		},
	})

	return Response{
		Type:           ResponseTypeMultiAgent,
		Content:        synth.Content,
		AgentResponses: results,
		Routing:        decision,
	}, agents
}

// append persists one message, logging instead of failing on store errors.
func (c *Controller) append(ctx context.Context, convID string, msg core.Message) {
	if convID == "" {
		return
	}
	if err := c.store.AppendMessage(ctx, convID, msg); err != nil {
		c.opts.Logger.Warn("message persist failed",
			"conversation_id", convID,
			"role", msg.Role,
			"error", err,
		)
	}
}

func (c *Controller) buildRouter(backend model.Backend) *routing.Router {
	return routing.NewRouter(backend, c.registry, c.opts.Scorer, func(o *routing.RouterOptions) {
		o.HistoryLimit = c.opts.HistoryLimit
		o.Logger = c.opts.Logger
	})
}

func (c *Controller) buildExecutor(backend model.Backend) *dispatch.Executor {
	return dispatch.NewExecutor(c.registry, c.knowledge, backend, func(o *dispatch.ExecutorOptions) {
		o.HistoryLimit = c.opts.HistoryLimit
		o.MaxTokens = c.opts.MaxTokens
		o.Logger = c.opts.Logger
	})
}

func (c *Controller) buildDispatcher(backend model.Backend) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(c.buildExecutor(backend), func(o *dispatch.DispatcherOptions) {
		o.MaxParallel = c.opts.MaxParallelAgents
		o.AgentTimeout = c.opts.AgentTimeout
		o.Logger = c.opts.Logger
	})
}

func (c *Controller) buildSynthesizer(backend model.Backend) *dispatch.Synthesizer {
	return dispatch.NewSynthesizer(backend, func(o *dispatch.SynthesizerOptions) {
		if c.opts.SynthesisSystemPrompt != "" {
			o.SystemPrompt = c.opts.SynthesisSystemPrompt
		}
		o.MaxTokens = c.opts.MaxTokens
		o.Logger = c.opts.Logger
	})
}

// chatHistory maps the bounded history window plus the message into backend
// chat turns.
func chatHistory(message string, history []core.Message, limit int) []model.ChatMessage {
	window := history
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
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

// conversationTitle derives a title from the first message.
func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxChars {
		return message
	}
	return string(runes[:titleMaxChars])
}

// meteredBackend decorates a backend with the per-request call meter.
type meteredBackend struct {
	inner model.Backend
	meter *core.CallMeter
}

func (b *meteredBackend) Chat(ctx context.Context, req model.Request) (model.Response, error) {
	if err := b.meter.Increment(); err != nil {
		return model.Response{}, &core.BackendError{Provider: b.inner.Info().Provider, Err: err}
	}
	return b.inner.Chat(ctx, req)
}

func (b *meteredBackend) Info() model.Info { return b.inner.Info() }
