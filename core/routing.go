package core

// RoutingStrategy identifies which strategy produced a RoutingDecision.
type RoutingStrategy string

const (
	// StrategyModel marks decisions produced by the generative router.
	StrategyModel RoutingStrategy = "model"
	// StrategyKeyword marks decisions produced by the keyword scorer,
	// either directly or as a fallback of the generative router.
	StrategyKeyword RoutingStrategy = "keyword"
	// StrategyDirect marks synthetic decisions created for forced
	// single-agent chat, bypassing routing entirely.
	StrategyDirect RoutingStrategy = "direct"
)

// RoutingDecision is the outcome of routing one message. PrimaryAgent is
// empty when no specialist matched and the orchestrator should answer
// directly. SecondaryAgents are ordered by rank. Confidence is always in
// [0,1]. Callers never need to branch on Strategy for correctness; it exists
// so that tests and operators can see which path fired and why.
type RoutingDecision struct {
	PrimaryAgent    string          `json:"primary_agent"`
	SecondaryAgents []string        `json:"secondary_agents"`
	Confidence      float64         `json:"confidence"`
	Reasoning       string          `json:"reasoning"`
	MultiAgent      bool            `json:"is_multi_agent"`
	Strategy        RoutingStrategy `json:"strategy"`
	FallbackReason  string          `json:"fallback_reason,omitempty"`
}

// Agents returns the deduplicated primary+secondary agent set in rank order.
// Empty when the decision has no primary.
func (d RoutingDecision) Agents() []string {
	if d.PrimaryAgent == "" {
		return nil
	}
	seen := map[string]bool{d.PrimaryAgent: true}
	agents := []string{d.PrimaryAgent}
	for _, id := range d.SecondaryAgents {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		agents = append(agents, id)
	}
	return agents
}
