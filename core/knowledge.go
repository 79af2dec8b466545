package core

import "context"

// Snippet is a short excerpt grounding an agent's response in previously
// ingested content.
type Snippet struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// KnowledgeIndex retrieves snippets relevant to a query from an agent's
// knowledge collection. Read-only from the engine's perspective.
type KnowledgeIndex interface {
	Search(ctx context.Context, agentID, query string, limit int) ([]Snippet, error)
}
