package core

// OrchestratorID is the reserved agent id used for responses produced by the
// orchestrator itself (general chat, synthesized answers). It is never a
// routable specialist and is excluded from routing prompts.
const OrchestratorID = "orchestrator"

// AgentDescriptor describes a registered specialist. Descriptors are owned by
// the registry and treated as immutable by the engine.
type AgentDescriptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	SystemPrompt   string `json:"system_prompt"`
}

// AgentRegistry exposes the read-only specialist catalog. List returns
// descriptors in registration order; the engine relies on that order for
// deterministic tie-breaking.
type AgentRegistry interface {
	List() []AgentDescriptor
	Get(id string) (AgentDescriptor, bool)
}
