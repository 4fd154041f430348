package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

const startupColumns = `id, name, website, description, founded, headquarters, founders,
	total_funding, valuation, estimated_users, employee_count, acquisition, last_updated`

// SaveStartup inserts or replaces a startup.
func (r *Repository) SaveStartup(ctx context.Context, startup *entities.Startup) error {
	if err := startup.Validate(); err != nil {
		return err
	}

	founders, err := encodeJSON(startup.Founders, len(startup.Founders) > 0)
	if err != nil {
		return fmt.Errorf("marshaling founders: %w", err)
	}
	acquisition, err := encodeJSON(startup.Metrics.Acquisition, startup.Metrics.Acquisition != nil)
	if err != nil {
		return fmt.Errorf("marshaling acquisition: %w", err)
	}

	var lastUpdated sql.NullTime
	if !startup.LastUpdated.IsZero() {
		lastUpdated = sql.NullTime{Time: startup.LastUpdated, Valid: true}
	}

	query := `
		INSERT OR REPLACE INTO startups (` + startupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.q(ctx).ExecContext(ctx, query,
		startup.ID,
		startup.Name,
		nullString(startup.Website),
		nullString(startup.Description),
		nullInt(startup.Founded),
		nullString(startup.Headquarters),
		founders,
		nullFloat(startup.Metrics.TotalFunding),
		nullFloat(startup.Metrics.Valuation),
		nullFloat(startup.Metrics.EstimatedUsers),
		nullFloat(startup.Metrics.EmployeeCount),
		acquisition,
		lastUpdated,
	)
	if err != nil {
		return mapError(err, "saving startup "+startup.ID)
	}
	return nil
}

// FindStartup returns a startup by ID.
func (r *Repository) FindStartup(ctx context.Context, id string) (*entities.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups WHERE id = ?`
	startup, err := scanStartup(r.q(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "startup "+id)
	}
	return startup, nil
}

// ListStartups returns every tracked startup ordered by name.
func (r *Repository) ListStartups(ctx context.Context) ([]entities.Startup, error) {
	query := `SELECT ` + startupColumns + ` FROM startups ORDER BY name COLLATE NOCASE, id`
	rows, err := r.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying startups: %w", err)
	}
	defer rows.Close()

	var result []entities.Startup
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning startup: %w", err)
		}
		result = append(result, *startup)
	}
	return result, rows.Err()
}

// CurrentValue returns the snapshot value of one field.
func (r *Repository) CurrentValue(ctx context.Context, startupID string, field entities.Field) (entities.Value, error) {
	startup, err := r.FindStartup(ctx, startupID)
	if err != nil {
		return entities.NullValue(), err
	}
	return startup.CurrentValue(field), nil
}

// ApplyApprovedChange writes an approved value into the startup record.
// The read and the write run in one transaction.
func (r *Repository) ApplyApprovedChange(ctx context.Context, startupID string, field entities.Field, value entities.Value) error {
	return r.RunInTx(ctx, func(ctx context.Context) error {
		startup, err := r.FindStartup(ctx, startupID)
		if err != nil {
			return err
		}
		if err := startup.Apply(field, value, timeNow().UTC()); err != nil {
			return err
		}
		return r.SaveStartup(ctx, startup)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStartup(row rowScanner) (*entities.Startup, error) {
	var (
		s                                             entities.Startup
		website, description, headquarters            sql.NullString
		founders, acquisition                         sql.NullString
		founded                                       sql.NullInt64
		totalFunding, valuation, users, employeeCount sql.NullFloat64
		lastUpdated                                   sql.NullTime
	)

	if err := row.Scan(
		&s.ID,
		&s.Name,
		&website,
		&description,
		&founded,
		&headquarters,
		&founders,
		&totalFunding,
		&valuation,
		&users,
		&employeeCount,
		&acquisition,
		&lastUpdated,
	); err != nil {
		return nil, err
	}

	s.Website = website.String
	s.Description = description.String
	s.Founded = int(founded.Int64)
	s.Headquarters = headquarters.String
	s.Metrics.TotalFunding = floatPtr(totalFunding)
	s.Metrics.Valuation = floatPtr(valuation)
	s.Metrics.EstimatedUsers = floatPtr(users)
	s.Metrics.EmployeeCount = floatPtr(employeeCount)
	s.LastUpdated = lastUpdated.Time

	if founders.Valid && founders.String != "" {
		if err := json.Unmarshal([]byte(founders.String), &s.Founders); err != nil {
			return nil, fmt.Errorf("unmarshaling founders: %w", err)
		}
	}
	if acquisition.Valid && acquisition.String != "" {
		var a entities.Acquisition
		if err := json.Unmarshal([]byte(acquisition.String), &a); err != nil {
			return nil, fmt.Errorf("unmarshaling acquisition: %w", err)
		}
		s.Metrics.Acquisition = &a
	}

	return &s, nil
}

func encodeJSON(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
