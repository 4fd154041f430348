package entities

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ReviewStatus is the lifecycle state of a review record.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s ReviewStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsValid reports whether s is a known status.
func (s ReviewStatus) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// ParseReviewStatus converts a string to a ReviewStatus.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	st := ReviewStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", Validationf("unknown review status %q", s)
	}
	return st, nil
}

// ReviewRecord is a candidate change awaiting or having received a human decision.
type ReviewRecord struct {
	ID         string       `json:"id"`
	StartupID  string       `json:"startupId"`
	Field      Field        `json:"field"`
	OldValue   Value        `json:"oldValue"`
	NewValue   Value        `json:"newValue"`
	SourceURL  string       `json:"source"`
	Confidence Confidence   `json:"confidence"`
	ObservedAt time.Time    `json:"observedAt"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	ReviewedAt *time.Time   `json:"reviewedAt,omitempty"`
	ReviewedBy string       `json:"reviewedBy,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

// NewReviewRecord creates a pending record for a candidate.
func NewReviewRecord(id string, c CandidateChange, createdAt time.Time) ReviewRecord {
	return ReviewRecord{
		ID:         id,
		StartupID:  c.StartupID,
		Field:      c.Field,
		OldValue:   c.OldValue,
		NewValue:   c.NewValue,
		SourceURL:  c.SourceURL,
		Confidence: c.Confidence,
		ObservedAt: c.ObservedAt,
		Status:     StatusPending,
		CreatedAt:  createdAt,
	}
}

// Candidate returns the change the record was created from.
func (r ReviewRecord) Candidate() CandidateChange {
	return CandidateChange{
		StartupID:  r.StartupID,
		Field:      r.Field,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		SourceURL:  r.SourceURL,
		Confidence: r.Confidence,
		ObservedAt: r.ObservedAt,
	}
}

// CanTransition checks the preconditions shared by Approve and Reject.
// The reviewer is checked before the state.
func (r ReviewRecord) CanTransition(reviewer string) error {
	if strings.TrimSpace(reviewer) == "" {
		return errors.WithHint(Validationf("reviewer is required"),
			"pass --by or set TRACKER_REVIEWER")
	}
	if r.Status.IsTerminal() {
		return errors.WithHintf(Conflictf("review %s is already %s", r.ID, r.Status),
			"reviewed by %s", r.ReviewedBy)
	}
	return nil
}

// Approve moves a pending record to approved. On error the record is unchanged.
func (r *ReviewRecord) Approve(reviewer string, at time.Time) error {
	if err := r.CanTransition(reviewer); err != nil {
		return err
	}
	r.Status = StatusApproved
	r.ReviewedBy = strings.TrimSpace(reviewer)
	r.ReviewedAt = &at
	return nil
}

// Reject moves a pending record to rejected. On error the record is unchanged.
func (r *ReviewRecord) Reject(reviewer, notes string, at time.Time) error {
	if err := r.CanTransition(reviewer); err != nil {
		return err
	}
	r.Status = StatusRejected
	r.ReviewedBy = strings.TrimSpace(reviewer)
	r.ReviewedAt = &at
	r.Notes = notes
	return nil
}
