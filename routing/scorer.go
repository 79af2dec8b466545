package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumohq/switchboard/core"
)

// Routing tunables preserved from the original tables. Neither value is
// derived; both await product guidance before becoming configurable.
const (
	// secondaryScoreRatio is the fraction of the primary's score a
	// candidate must reach to be kept as a secondary agent.
	secondaryScoreRatio = 0.5
	// confidenceDivisor normalizes the primary score into [0,1].
	confidenceDivisor = 5.0
	// maxSecondaryAgents bounds the secondary list.
	maxSecondaryAgents = 2
)

// AgentScore is one agent's keyword score for a message.
type AgentScore struct {
	AgentID string
	Score   float64
}

// KeywordScorer scores messages against static per-agent phrase tables.
// A phrase contributes its word count once if it occurs case-insensitively
// anywhere in the message; repeats add nothing. The scorer is pure: identical
// input always yields an identical decision.
//
// Not safe for concurrent registration; register all tables before routing.
type KeywordScorer struct {
	order []string
	table map[string][]string
}

// NewKeywordScorer constructs an empty scorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{table: make(map[string][]string)}
}

// Register adds (or extends) the phrase table for an agent. Registration
// order is the tie-break for equal scores.
func (s *KeywordScorer) Register(agentID string, phrases ...string) {
	if _, ok := s.table[agentID]; !ok {
		s.order = append(s.order, agentID)
	}
	s.table[agentID] = append(s.table[agentID], phrases...)
}

// Scores returns every registered agent's score for the message, sorted by
// score descending with ties broken by registration order.
func (s *KeywordScorer) Scores(message string) []AgentScore {
	lower := strings.ToLower(message)
	scores := make([]AgentScore, 0, len(s.order))
	for _, id := range s.order {
		var score float64
		for _, phrase := range s.table[id] {
			if phrase == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(phrase)) {
				score += float64(len(strings.Fields(phrase)))
			}
		}
		scores = append(scores, AgentScore{AgentID: id, Score: score})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// Route translates the ranked scores into a routing decision. An empty or
// fully unmatched message yields no primary and zero confidence.
func (s *KeywordScorer) Route(message string) core.RoutingDecision {
	ranked := s.Scores(message)
	if len(ranked) == 0 || ranked[0].Score <= 0 {
		return core.RoutingDecision{
			Reasoning: "no keyword matches",
			Strategy:  core.StrategyKeyword,
		}
	}

	primary := ranked[0]
	var secondary []string
	for _, cand := range ranked[1:] {
		if len(secondary) >= maxSecondaryAgents {
			break
		}
		if cand.Score <= 0 || !meetsSecondaryThreshold(cand.Score, primary.Score) {
			continue
		}
		secondary = append(secondary, cand.AgentID)
	}

	confidence := primary.Score / confidenceDivisor
	if confidence > 1 {
		confidence = 1
	}

	return core.RoutingDecision{
		PrimaryAgent:    primary.AgentID,
		SecondaryAgents: secondary,
		Confidence:      confidence,
		Reasoning:       fmt.Sprintf("keyword scoring: %s scored %.1f", primary.AgentID, primary.Score),
		MultiAgent:      len(secondary) > 0,
		Strategy:        core.StrategyKeyword,
	}
}

// meetsSecondaryThreshold reports whether a candidate score qualifies as a
// secondary against the primary score. The boundary is inclusive.
func meetsSecondaryThreshold(score, primary float64) bool {
	return score >= primary*secondaryScoreRatio
}
