package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// SaveMetricVersion appends a version and assigns the next version number
// for the startup and field.
func (r *Repository) SaveMetricVersion(ctx context.Context, version *entities.MetricVersion) error {
	if version.ID == "" {
		version.ID = uuid.New().String()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = timeNow().UTC()
	}

	oldValue, err := json.Marshal(version.OldValue)
	if err != nil {
		return fmt.Errorf("marshaling old value: %w", err)
	}
	newValue, err := json.Marshal(version.NewValue)
	if err != nil {
		return fmt.Errorf("marshaling new value: %w", err)
	}

	return r.RunInTx(ctx, func(ctx context.Context) error {
		var next int
		err := r.q(ctx).QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM metric_versions WHERE startup_id = ? AND field = ?`,
			version.StartupID, string(version.Field),
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("getting next version: %w", err)
		}

		query := `
			INSERT INTO metric_versions (id, startup_id, field, version, old_value, new_value, review_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = r.q(ctx).ExecContext(ctx, query,
			version.ID,
			version.StartupID,
			string(version.Field),
			next,
			string(oldValue),
			string(newValue),
			version.ReviewID,
			version.CreatedAt,
		)
		if err != nil {
			return mapError(err, "metric version")
		}

		version.Version = next
		return nil
	})
}

// ListMetricVersions returns versions for a startup, newest first.
func (r *Repository) ListMetricVersions(ctx context.Context, startupID string) ([]entities.MetricVersion, error) {
	query := `
		SELECT id, startup_id, field, version, old_value, new_value, review_id, created_at
		FROM metric_versions
		WHERE startup_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	rows, err := r.q(ctx).QueryContext(ctx, query, startupID)
	if err != nil {
		return nil, fmt.Errorf("querying metric versions: %w", err)
	}
	defer rows.Close()

	var versions []entities.MetricVersion
	for rows.Next() {
		var (
			v                  entities.MetricVersion
			field              string
			oldValue, newValue string
		)
		if err := rows.Scan(&v.ID, &v.StartupID, &field, &v.Version, &oldValue, &newValue, &v.ReviewID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning metric version: %w", err)
		}
		v.Field = entities.Field(field)
		if err := json.Unmarshal([]byte(oldValue), &v.OldValue); err != nil {
			return nil, fmt.Errorf("unmarshaling old value: %w", err)
		}
		if err := json.Unmarshal([]byte(newValue), &v.NewValue); err != nil {
			return nil, fmt.Errorf("unmarshaling new value: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
