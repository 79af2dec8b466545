// Package switchboard provides a high-level façade over the orchestration
// controller and its collaborators (agent registry, conversation store,
// knowledge index & logging) enabling rapid construction of agent-routing
// systems. Most applications interact with this package by:
//  1. Creating a Switchboard via New() (optionally overriding default in-memory services)
//  2. Registering one or more specialist agents and their keyword tables
//  3. Calling Orchestrate (routed), ChatDirect (forced agent) or RouteOnly (introspection)
//
// The façade delegates to orchestrator.Controller while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable conversation
// store, a real backend and a structured logger.
package switchboard

import (
	"context"

	"github.com/lumohq/switchboard/conversation"
	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/knowledge"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
	"github.com/lumohq/switchboard/orchestrator"
	"github.com/lumohq/switchboard/registry"
	"github.com/lumohq/switchboard/routing"
)

// Options configures the Switchboard instance.
type Options struct {
	// Backend is the generative backend shared by routing, execution and
	// synthesis. Defaults to a deterministic mock, useful for tests only.
	Backend model.Backend

	// Stores (default to in-memory implementations if not provided).
	Registry          *registry.InMemory
	ConversationStore core.ConversationStore
	KnowledgeIndex    core.KnowledgeIndex

	// Scorer holds the keyword fallback tables. Defaults to an empty
	// scorer; register phrases alongside agents.
	Scorer *routing.KeywordScorer

	// Controller tuning, forwarded to orchestrator.Options.
	ControllerOptions []func(o *orchestrator.Options)

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Switchboard is the high-level façade aggregating the controller and services.
type Switchboard struct {
	opts       Options
	registry   *registry.InMemory
	scorer     *routing.KeywordScorer
	knowledge  core.KnowledgeIndex
	controller *orchestrator.Controller
}

// New creates a new Switchboard instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Switchboard {
	opts := Options{
		Backend:           model.NewMockBackend("mock", "mock"),
		Registry:          registry.NewInMemory(),
		ConversationStore: conversation.NewInMemoryStore(),
		KnowledgeIndex:    knowledge.NewInMemory(),
		Scorer:            routing.NewKeywordScorer(),
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	ctrlOpts := append([]func(o *orchestrator.Options){
		func(o *orchestrator.Options) {
			o.Scorer = opts.Scorer
			o.Logger = opts.Logger
		},
	}, opts.ControllerOptions...)

	controller := orchestrator.NewController(
		opts.Registry,
		opts.ConversationStore,
		opts.KnowledgeIndex,
		opts.Backend,
		ctrlOpts...,
	)

	return &Switchboard{
		opts:       opts,
		registry:   opts.Registry,
		scorer:     opts.Scorer,
		knowledge:  opts.KnowledgeIndex,
		controller: controller,
	}
}

// RegisterAgent adds a specialist with its keyword phrases.
func (s *Switchboard) RegisterAgent(desc core.AgentDescriptor, phrases ...string) error {
	if err := s.registry.Register(desc); err != nil {
		return err
	}
	if len(phrases) > 0 {
		s.scorer.Register(desc.ID, phrases...)
	}
	return nil
}

// AddKnowledge ingests a grounding document into an agent's collection when
// the default in-memory index is in use.
func (s *Switchboard) AddKnowledge(agentID, title, content string) {
	if idx, ok := s.knowledge.(*knowledge.InMemory); ok {
		idx.Add(agentID, title, content)
	}
}

// Controller exposes the underlying controller for transports.
func (s *Switchboard) Controller() *orchestrator.Controller { return s.controller }

// Registry exposes the agent catalog.
func (s *Switchboard) Registry() core.AgentRegistry { return s.registry }

// Orchestrate routes and answers one message.
func (s *Switchboard) Orchestrate(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	return s.controller.Orchestrate(ctx, req)
}

// RouteOnly returns the routing decision without executing any agent.
func (s *Switchboard) RouteOnly(ctx context.Context, message string) (core.RoutingDecision, error) {
	return s.controller.RouteOnly(ctx, message)
}

// ChatDirect forces a single-agent dispatch, bypassing routing.
func (s *Switchboard) ChatDirect(ctx context.Context, agentID, message, conversationID, userID string) (*orchestrator.Result, error) {
	return s.controller.ChatDirect(ctx, agentID, message, conversationID, userID)
}
