package core

import (
	"context"
	"time"
)

// Message roles. Agent messages carry the individual specialist turns of a
// multi-agent dispatch; the assistant role carries the answer shown to the
// user (synthesized or single-agent).
const (
	RoleUser      = "user"
	RoleAgent     = "agent"
	RoleAssistant = "assistant"
)

// Message is one append-only turn of a conversation.
type Message struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	AgentID   string         `json:"agent_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy of the message with an independent metadata map.
func (m Message) Clone() Message {
	clone := m
	if m.Metadata != nil {
		clone.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// Conversation is an ordered, append-only message sequence between a user
// and one or more agents.
type Conversation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	ParticipantIDs []string  `json:"participant_ids"`
	Messages       []Message `json:"messages"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`
}

// ConversationStore persists conversations. The engine only ever appends;
// mutation concurrency is the store's concern. AppendMessage is at-least-once:
// a retried append may duplicate, which callers tolerate.
type ConversationStore interface {
	Create(ctx context.Context, userID, title string, participantIDs []string) (string, error)
	AppendMessage(ctx context.Context, conversationID string, msg Message) error
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)
	Get(ctx context.Context, conversationID string) (*Conversation, error)
}
