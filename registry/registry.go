// Package registry provides the default in-process AgentRegistry. The
// catalog is write-once at setup time and read-only afterwards, matching the
// engine's shared-resource contract.
package registry

import (
	"fmt"
	"sync"

	"github.com/lumohq/switchboard/core"
)

// InMemory is a process-local AgentRegistry. It preserves registration order,
// which the engine uses as the deterministic tie-break during routing. Safe
// for concurrent reads.
type InMemory struct {
	mu     sync.RWMutex
	order  []string
	agents map[string]core.AgentDescriptor
}

// NewInMemory constructs an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{agents: make(map[string]core.AgentDescriptor)}
}

// Register adds a specialist. The reserved orchestrator id and duplicate ids
// are rejected.
func (r *InMemory) Register(desc core.AgentDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("agent id must not be empty")
	}
	if desc.ID == core.OrchestratorID {
		return fmt.Errorf("agent id %q is reserved", core.OrchestratorID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[desc.ID]; exists {
		return fmt.Errorf("agent %q already registered", desc.ID)
	}
	r.order = append(r.order, desc.ID)
	r.agents[desc.ID] = desc
	return nil
}

// List returns all descriptors in registration order.
func (r *InMemory) List() []core.AgentDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AgentDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Get returns the descriptor for an id, if registered.
func (r *InMemory) Get(id string) (core.AgentDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.agents[id]
	return desc, ok
}

// DefaultSpecialists returns the built-in specialist set matching the default
// keyword tables.
func DefaultSpecialists() []core.AgentDescriptor {
	return []core.AgentDescriptor{
		{
			ID:             "automation",
			Name:           "Automation Specialist",
			Specialization: "Workflow automation, Zapier, webhooks and GoHighLevel integrations",
			SystemPrompt:   "You are an automation specialist. You help users design and debug workflow automations, webhooks, Zapier zaps and GoHighLevel pipelines. Be concrete and step by step.",
		},
		{
			ID:             "trading",
			Name:           "Trading Analyst",
			Specialization: "Technical analysis of crypto and stock markets (RSI, MACD, chart patterns)",
			SystemPrompt:   "You are a trading analyst. You explain technical indicators and market structure. You never give financial advice; you describe what the data shows.",
		},
		{
			ID:             "marketing",
			Name:           "Marketing Strategist",
			Specialization: "Ad campaigns, funnels, audience targeting and performance marketing",
			SystemPrompt:   "You are a marketing strategist. You help users plan, run and evaluate campaigns across paid and organic channels.",
		},
		{
			ID:             "content",
			Name:           "Content Creator",
			Specialization: "Copywriting, blog posts, video scripts and content calendars",
			SystemPrompt:   "You are a content creator. You draft and improve written and scripted content in the user's voice.",
		},
		{
			ID:             "crm",
			Name:           "CRM Consultant",
			Specialization: "Lead nurturing, sales pipelines and contact management",
			SystemPrompt:   "You are a CRM consultant. You help users structure pipelines, follow-up sequences and contact data.",
		},
	}
}
