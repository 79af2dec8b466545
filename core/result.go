package core

// ExecutionResult is the outcome of one agent invocation. Response and Err
// are mutually exclusive: exactly one of them is non-empty.
type ExecutionResult struct {
	AgentID       string `json:"agent_id"`
	AgentName     string `json:"agent_name,omitempty"`
	Response      string `json:"response,omitempty"`
	Err           string `json:"error,omitempty"`
	KnowledgeUsed int    `json:"knowledge_used"`
	Provider      string `json:"provider,omitempty"`
	Model         string `json:"model,omitempty"`
}

// Succeeded reports whether the invocation produced a response.
func (r ExecutionResult) Succeeded() bool { return r.Err == "" }

// DisplayName returns the agent name, falling back to the id.
func (r ExecutionResult) DisplayName() string {
	if r.AgentName != "" {
		return r.AgentName
	}
	return r.AgentID
}

// SynthesizedResponse is the merged answer produced from a set of execution
// results. Content is non-empty whenever at least one result succeeded.
type SynthesizedResponse struct {
	Content            string   `json:"content"`
	ContributingAgents []string `json:"contributing_agents"`
	Outcome            Outcome  `json:"outcome"`
}
