// Package repository implements SQL persistence for archived security events.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// PostgreSQLEventRepository implements SecurityEvent persistence for
// PostgreSQL using native UUID types.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// Create appends a security event to the archive. Handles nil details as
// database NULL. The events table is append-only; there is no update path.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.SecurityEvent) error {
	var detailsJSON []byte
	var err error

	if event.Details != nil {
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal event details")
		}
	}

	query := `INSERT INTO security_events (id, event_type, client_id, source_ip, request_id, details, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = p.db.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.Type),
		event.ClientID,
		event.SourceIP,
		event.RequestID,
		detailsJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create security event")
	}

	return nil
}

// List retrieves archived events ordered by ID descending (newest first,
// since UUIDv7 sorts by creation time) with offset/limit pagination.
// Returns an empty slice when no events match.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityEvent, error) {
	query := `SELECT id, event_type, client_id, source_ip, request_id, details, signature, created_at
			  FROM security_events
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.SecurityEvent, 0)
	for rows.Next() {
		var event auditDomain.SecurityEvent
		var detailsJSON []byte
		var eventType string

		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.ClientID,
			&event.SourceIP,
			&event.RequestID,
			&detailsJSON,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan security event")
		}

		event.Type = auditDomain.EventType(eventType)

		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal event details")
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate security events")
	}

	return events, nil
}

// NewPostgreSQLEventRepository creates a new PostgreSQL SecurityEvent repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}
