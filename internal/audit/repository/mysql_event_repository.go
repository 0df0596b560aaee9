package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	auditDomain "github.com/parsivoice/pasban/internal/audit/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// MySQLEventRepository implements SecurityEvent persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLEventRepository struct {
	db *sql.DB
}

// Create appends a security event to the archive using BINARY(16) for the ID.
// Handles nil details as database NULL.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.SecurityEvent) error {
	var detailsJSON []byte
	var err error

	if event.Details != nil {
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal event details")
		}
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	query := `INSERT INTO security_events (id, event_type, client_id, source_ip, request_id, details, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = m.db.ExecContext(
		ctx,
		query,
		id,
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
// UUIDs are stored as BINARY(16) and must be unmarshaled.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityEvent, error) {
	query := `SELECT id, event_type, client_id, source_ip, request_id, details, signature, created_at
			  FROM security_events
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.SecurityEvent, 0)
	for rows.Next() {
		var event auditDomain.SecurityEvent
		var id []byte
		var detailsJSON []byte
		var eventType string

		err := rows.Scan(
			&id,
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

		eventID, err := uuid.FromBytes(id)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal event id")
		}
		event.ID = eventID
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

// NewMySQLEventRepository creates a new MySQL SecurityEvent repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}
