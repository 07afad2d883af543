package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avsrecruit/talentsearch/internal/db"
)

// DefaultActor is recorded when no actor is given. The server runs
// single-operator; multi-user attribution would come with auth.
const DefaultActor = "recruiter"

// Store provides append and query operations for audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new audit entry. If entry.ID is empty a UUID is
// generated; if entry.Actor is empty the default actor is recorded.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Actor == "" {
		entry.Actor = DefaultActor
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, actor, action, detail)
		VALUES (?, ?, ?, ?)`,
		entry.ID, entry.Actor, string(entry.Action), entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// Record satisfies the recorder interface used by the HTTP handlers.
// Audit writes never fail a user-facing request; a failed insert is
// logged and dropped.
func (s *Store) Record(ctx context.Context, action, detail string) {
	if err := s.Log(ctx, Entry{Action: Action(action), Detail: detail}); err != nil {
		log.Printf("audit: dropping %s entry: %v", action, err)
	}
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, actor, action, detail
		FROM audit_entries WHERE id = ?`, id)
	return scanInto(row)
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	Actor  string
	Action Action
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Query returns audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Actor != "" {
		clauses = append(clauses, "actor = ?")
		args = append(args, filter.Actor)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, actor, action, detail FROM audit_entries"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all audit entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_entries WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e      Entry
		action string
	)

	// The driver hands DATETIME columns back as time.Time.
	if err := sc.Scan(&e.ID, &e.Timestamp, &e.Actor, &action, &e.Detail); err != nil {
		return nil, err
	}
	e.Action = Action(action)

	return &e, nil
}
