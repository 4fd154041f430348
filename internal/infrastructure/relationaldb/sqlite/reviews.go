package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

const reviewColumns = `id, startup_id, field, old_value, new_value, source_url, confidence,
	observed_at, status, created_at, reviewed_at, reviewed_by, notes`

// SaveReview inserts a new review record.
func (r *Repository) SaveReview(ctx context.Context, record *entities.ReviewRecord) error {
	oldValue, err := json.Marshal(record.OldValue)
	if err != nil {
		return fmt.Errorf("marshaling old value: %w", err)
	}
	newValue, err := json.Marshal(record.NewValue)
	if err != nil {
		return fmt.Errorf("marshaling new value: %w", err)
	}

	query := `
		INSERT INTO review_records (` + reviewColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.q(ctx).ExecContext(ctx, query,
		record.ID,
		record.StartupID,
		string(record.Field),
		string(oldValue),
		string(newValue),
		nullString(record.SourceURL),
		string(record.Confidence),
		record.ObservedAt,
		string(record.Status),
		record.CreatedAt,
		nullTime(record.ReviewedAt),
		nullString(record.ReviewedBy),
		nullString(record.Notes),
	)
	if err != nil {
		return mapError(err, "review "+record.ID)
	}
	return nil
}

// UpdateReviewDecision persists a decided record.
// The update only matches a record that is still pending.
func (r *Repository) UpdateReviewDecision(ctx context.Context, record *entities.ReviewRecord) error {
	query := `
		UPDATE review_records
		SET status = ?, reviewed_at = ?, reviewed_by = ?, notes = ?
		WHERE id = ? AND status = 'pending'
	`
	result, err := r.q(ctx).ExecContext(ctx, query,
		string(record.Status),
		nullTime(record.ReviewedAt),
		nullString(record.ReviewedBy),
		nullString(record.Notes),
		record.ID,
	)
	if err != nil {
		return mapError(err, "review "+record.ID)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	current, err := r.FindReview(ctx, record.ID)
	if err != nil {
		return err
	}
	return entities.Conflictf("review %s is already %s", record.ID, current.Status)
}

// FindReview returns a record by ID.
func (r *Repository) FindReview(ctx context.Context, id string) (*entities.ReviewRecord, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_records WHERE id = ?`
	record, err := scanReview(r.q(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "review "+id)
	}
	return record, nil
}

// ListReviews returns records matching filter in insertion order.
func (r *Repository) ListReviews(ctx context.Context, filter ports.ReviewFilter) ([]entities.ReviewRecord, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.StartupID != "" {
		conditions = append(conditions, "startup_id = ?")
		args = append(args, filter.StartupID)
	}

	query := `SELECT ` + reviewColumns + ` FROM review_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var records []entities.ReviewRecord
	if filter.Limit > 0 {
		records = make([]entities.ReviewRecord, 0, filter.Limit)
	}
	for rows.Next() {
		record, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// CountReviewsByStatus returns the number of records per status.
func (r *Repository) CountReviewsByStatus(ctx context.Context) (map[entities.ReviewStatus]int, error) {
	rows, err := r.q(ctx).QueryContext(ctx, `SELECT status, COUNT(*) FROM review_records GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting reviews: %w", err)
	}
	defer rows.Close()

	counts := make(map[entities.ReviewStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning review count: %w", err)
		}
		counts[entities.ReviewStatus(status)] = count
	}
	return counts, rows.Err()
}

func scanReview(row rowScanner) (*entities.ReviewRecord, error) {
	var (
		rec                          entities.ReviewRecord
		field, confidence, status    string
		oldValue, newValue           string
		sourceURL, reviewedBy, notes sql.NullString
		observedAt, reviewedAt       sql.NullTime
	)

	if err := row.Scan(
		&rec.ID,
		&rec.StartupID,
		&field,
		&oldValue,
		&newValue,
		&sourceURL,
		&confidence,
		&observedAt,
		&status,
		&rec.CreatedAt,
		&reviewedAt,
		&reviewedBy,
		&notes,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(oldValue), &rec.OldValue); err != nil {
		return nil, fmt.Errorf("unmarshaling old value: %w", err)
	}
	if err := json.Unmarshal([]byte(newValue), &rec.NewValue); err != nil {
		return nil, fmt.Errorf("unmarshaling new value: %w", err)
	}

	rec.Field = entities.Field(field)
	rec.Confidence = entities.Confidence(confidence)
	rec.Status = entities.ReviewStatus(status)
	rec.SourceURL = sourceURL.String
	rec.ObservedAt = observedAt.Time
	rec.ReviewedBy = reviewedBy.String
	rec.Notes = notes.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		rec.ReviewedAt = &t
	}

	return &rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
