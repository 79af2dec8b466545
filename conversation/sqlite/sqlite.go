// Package sqlite implements a durable ConversationStore on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumohq/switchboard/core"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements core.ConversationStore using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and runs migrations.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			participant_ids TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			agent_id TEXT,
			metadata TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Create implements core.ConversationStore.
func (s *Store) Create(ctx context.Context, userID, title string, participantIDs []string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, user_id, title, participant_ids) VALUES (?, ?, ?, ?)`,
		id, userID, title, strings.Join(participantIDs, ","),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// AppendMessage implements core.ConversationStore. A stub conversation row is
// created for unknown ids so a first-message append succeeds; the contract is
// at-least-once, retries may duplicate.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg core.Message) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id must not be empty")
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (conversation_id) VALUES (?)`,
		conversationID,
	); err != nil {
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}

	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var metadata any
	if len(msg.Metadata) > 0 {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, conversation_id, role, content, agent_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, conversationID, msg.Role, msg.Content, nullable(msg.AgentID), metadata, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE conversation_id = ?`,
		conversationID,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// RecentMessages implements core.ConversationStore; it returns the last
// `limit` messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, conversationID string, limit int) ([]core.Message, error) {
	query := `SELECT message_id, role, content, agent_id, metadata, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq DESC`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// scanned newest-first, reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Get implements core.ConversationStore.
func (s *Store) Get(ctx context.Context, conversationID string) (*core.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, user_id, title, participant_ids, created_at, updated_at
		 FROM conversations WHERE conversation_id = ?`,
		conversationID,
	)

	var conv core.Conversation
	var participants string
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &participants, &conv.Created, &conv.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation %q not found", conversationID)
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	if participants != "" {
		conv.ParticipantIDs = strings.Split(participants, ",")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, role, content, agent_id, metadata, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	conv.Messages, err = scanMessages(rows)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func scanMessages(rows *sql.Rows) ([]core.Message, error) {
	var msgs []core.Message
	for rows.Next() {
		var m core.Message
		var agentID, metadata sql.NullString
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &agentID, &metadata, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.AgentID = agentID.String
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
