package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// Schema creates the audit table. Migrate applies it; it is exported for
// operators who manage migrations elsewhere.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	category      TEXT NOT NULL,
	timestamp     TIMESTAMPTZ NOT NULL,
	evaluation_id TEXT NOT NULL DEFAULT '',
	client_id     TEXT NOT NULL DEFAULT '',
	action        TEXT NOT NULL,
	decision      TEXT NOT NULL DEFAULT '',
	reason        TEXT NOT NULL DEFAULT '',
	stage         TEXT NOT NULL DEFAULT '',
	details       TEXT[] NOT NULL DEFAULT '{}',
	request_id    TEXT NOT NULL DEFAULT '',
	actor_id      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_client_idx ON audit_events (client_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC);
`

const selectColumns = `
	SELECT category, timestamp, evaluation_id, client_id, action,
		   decision, reason, stage, details, request_id, actor_id
	FROM audit_events
`

// Store implements audit.Store and audit.Lister on PostgreSQL. Appends join
// a transaction carried in the context when there is one.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.execer(ctx).ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("apply audit schema: %w", err)
		}
		return nil
	})
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an event. The category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()
	details := event.Details
	if details == nil {
		details = []string{}
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, evaluation_id, client_id, action,
			decision, reason, stage, details, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		event.EvaluationID,
		event.ClientID,
		event.Action,
		event.Decision,
		event.Reason,
		event.Stage,
		pq.Array(details),
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByClient returns a client's events, oldest first.
func (s *Store) ListByClient(ctx context.Context, clientID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`WHERE client_id = $1 ORDER BY timestamp ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Latest returns the client's most recent decision.
func (s *Store) Latest(ctx context.Context, clientID string) (audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+`WHERE client_id = $1 AND action IN ($2, $3) ORDER BY timestamp DESC LIMIT 1`,
		clientID, string(audit.EventEvaluationAccepted), string(audit.EventEvaluationRejected))
	if err != nil {
		return audit.Event{}, fmt.Errorf("query latest decision: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return audit.Event{}, err
	}
	if len(events) == 0 {
		return audit.Event{}, sentinel.ErrNotFound
	}
	return events[0], nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			details  pq.StringArray
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.EvaluationID,
			&event.ClientID,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.Stage,
			&details,
			&event.RequestID,
			&event.ActorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if len(details) > 0 {
			event.Details = []string(details)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
