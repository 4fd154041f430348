package entities

import "time"

// CandidateChange is a proposed update to one metric of one startup,
// derived from a single evidence item.
type CandidateChange struct {
	StartupID  string     `json:"startupId"`
	Field      Field      `json:"field"`
	OldValue   Value      `json:"oldValue"`
	NewValue   Value      `json:"newValue"`
	SourceURL  string     `json:"source"`
	Confidence Confidence `json:"confidence"`
	ObservedAt time.Time  `json:"observedAt"`
}

// CandidateKey groups candidates that target the same metric.
type CandidateKey struct {
	StartupID string
	Field     Field
}

// Key returns the (startup, field) grouping key.
func (c CandidateChange) Key() CandidateKey {
	return CandidateKey{StartupID: c.StartupID, Field: c.Field}
}

// IsNoOp reports whether the change would leave the value unchanged.
func (c CandidateChange) IsNoOp() bool {
	return c.OldValue.Equal(c.NewValue)
}
