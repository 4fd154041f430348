package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// LogAudit appends an audit entry and sets its ID.
func (r *Repository) LogAudit(ctx context.Context, entry *entities.AuditEntry) error {
	details, err := encodeJSON(entry.Details, len(entry.Details) > 0)
	if err != nil {
		return fmt.Errorf("marshaling details: %w", err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = timeNow().UTC()
	}

	query := `INSERT INTO audit_log (action, review_id, details, created_at) VALUES (?, ?, ?, ?)`
	result, err := r.q(ctx).ExecContext(ctx, query,
		string(entry.Action),
		nullString(entry.ReviewID),
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return mapError(err, "audit entry")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading audit entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListAudit returns entries for a review, or all entries when reviewID is empty, newest first.
func (r *Repository) ListAudit(ctx context.Context, reviewID string, limit int) ([]entities.AuditEntry, error) {
	query := `SELECT id, action, review_id, details, created_at FROM audit_log`
	var args []any
	if reviewID != "" {
		query += " WHERE review_id = ?"
		args = append(args, reviewID)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	if limit > 0 {
		entries = make([]entities.AuditEntry, 0, limit)
	}

	for rows.Next() {
		var (
			entry    entities.AuditEntry
			action   string
			reviewID sql.NullString
			details  sql.NullString
		)
		if err := rows.Scan(&entry.ID, &action, &reviewID, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.Action = entities.AuditAction(action)
		entry.ReviewID = reviewID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
