// Package knowledge provides the default in-process KnowledgeIndex.
package knowledge

import (
	"context"
	"strings"
	"sync"

	"github.com/lumohq/switchboard/core"
)

// document is the internal representation stored per agent collection.
type document struct {
	Title   string
	Content string
}

// InMemory is a naive process-local KnowledgeIndex keeping one document list
// per agent.
//
// Concurrency: protected by RWMutex.
// Search: linear scan with case-insensitive substring matching over title and
// content, returning documents in insertion order up to the limit. Suitable
// for tests and small setups; swap for a vector index for production
// retrieval.
type InMemory struct {
	mu   sync.RWMutex
	docs map[string][]document
}

// NewInMemory creates an empty index.
func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string][]document)}
}

// Add appends a document to an agent's collection.
func (k *InMemory) Add(agentID, title, content string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.docs[agentID] = append(k.docs[agentID], document{Title: title, Content: content})
}

// Search implements core.KnowledgeIndex. A document matches when any word of
// the query occurs in its title or content; an empty query matches everything.
func (k *InMemory) Search(ctx context.Context, agentID, query string, limit int) ([]core.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	words := strings.Fields(strings.ToLower(query))
	results := make([]core.Snippet, 0, limit)
	for _, doc := range k.docs[agentID] {
		if limit > 0 && len(results) >= limit {
			break
		}
		if matches(doc, words) {
			results = append(results, core.Snippet{Title: doc.Title, Content: doc.Content})
		}
	}
	return results, nil
}

func matches(doc document, words []string) bool {
	if len(words) == 0 {
		return true
	}
	haystack := strings.ToLower(doc.Title + " " + doc.Content)
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
