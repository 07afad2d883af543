package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avsrecruit/talentsearch/internal/db"
)

// Session is one assistant conversation.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// StoredMessage is one persisted conversation turn.
type StoredMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists assistant conversations.
type SessionStore struct {
	db *db.DB
}

// NewSessionStore creates a session store backed by the given database.
func NewSessionStore(database *db.DB) *SessionStore {
	return &SessionStore{db: database}
}

// Create starts a new session.
func (s *SessionStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.New().String(), StartedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, started_at) VALUES (?, ?)`,
		sess.ID, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating chat session: %w", err)
	}
	return sess, nil
}

// Append stores one message in a session.
func (s *SessionStore) Append(ctx context.Context, sessionID string, role Role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, string(role), content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending chat message: %w", err)
	}
	return nil
}

// Messages returns the messages of a session in conversation order.
func (s *SessionStore) Messages(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []StoredMessage
	for rows.Next() {
		var (
			m    StoredMessage
			role string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Role = Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Sessions lists all sessions, newest first.
func (s *SessionStore) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at FROM chat_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning chat session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
