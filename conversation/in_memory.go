// Package conversation provides ConversationStore implementations. The
// in-memory store here is volatile and best suited for tests or ephemeral
// demo servers; the sqlite subpackage persists across restarts.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumohq/switchboard/core"
)

// InMemoryStore is a volatile ConversationStore keeping conversations in a
// process-local map. It is safe for concurrent access. Returned conversations
// and messages are cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// Create implements core.ConversationStore.
func (s *InMemoryStore) Create(ctx context.Context, userID, title string, participantIDs []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	s.conversations[id] = &core.Conversation{
		ID:             id,
		UserID:         userID,
		Title:          title,
		ParticipantIDs: append([]string(nil), participantIDs...),
		Created:        now,
		Updated:        now,
	}
	return id, nil
}

// AppendMessage implements core.ConversationStore. Appending to an unknown id
// creates the conversation lazily, mirroring first-message creation.
func (s *InMemoryStore) AppendMessage(ctx context.Context, conversationID string, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if conversationID == "" {
		return fmt.Errorf("conversation id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		now := time.Now()
		conv = &core.Conversation{ID: conversationID, Created: now, Updated: now}
		s.conversations[conversationID] = conv
	}

	stored := msg.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	conv.Messages = append(conv.Messages, stored)
	conv.Updated = time.Now()
	return nil
}

// RecentMessages implements core.ConversationStore; it returns the last
// `limit` messages in chronological order.
func (s *InMemoryStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, nil
	}

	msgs := conv.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out, nil
}

// Get implements core.ConversationStore, returning a deep copy.
func (s *InMemoryStore) Get(ctx context.Context, conversationID string) (*core.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %q not found", conversationID)
	}

	clone := &core.Conversation{
		ID:             conv.ID,
		UserID:         conv.UserID,
		Title:          conv.Title,
		ParticipantIDs: append([]string(nil), conv.ParticipantIDs...),
		Messages:       make([]core.Message, len(conv.Messages)),
		Created:        conv.Created,
		Updated:        conv.Updated,
	}
	for i, m := range conv.Messages {
		clone.Messages[i] = m.Clone()
	}
	return clone, nil
}
