package entities

import "time"

// MetricVersion is a historical record of an approved change applied to a startup.
type MetricVersion struct {
	ID        string    `json:"id"`
	StartupID string    `json:"startup_id"`
	Field     Field     `json:"field"`
	Version   int       `json:"version"`
	OldValue  Value     `json:"old_value"`
	NewValue  Value     `json:"new_value"`
	ReviewID  string    `json:"review_id"`
	CreatedAt time.Time `json:"created_at"`
}
