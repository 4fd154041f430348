package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRecord() ReviewRecord {
	c := CandidateChange{
		StartupID:  "everlywell",
		Field:      FieldTotalFunding,
		OldValue:   NumberValue(250_000_000),
		NewValue:   NumberValue(300_000_000),
		SourceURL:  "https://example.com/a",
		Confidence: ConfidenceHigh,
		ObservedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	return NewReviewRecord("rev-1", c, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
}

func TestNewReviewRecord(t *testing.T) {
	r := pendingRecord()

	assert.Equal(t, StatusPending, r.Status)
	assert.Nil(t, r.ReviewedAt)
	assert.Empty(t, r.ReviewedBy)
	assert.Equal(t, "everlywell", r.Candidate().StartupID)
	assert.True(t, r.Candidate().NewValue.Equal(NumberValue(300_000_000)))
}

func TestReviewRecord_Approve(t *testing.T) {
	at := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

	t.Run("pending to approved", func(t *testing.T) {
		r := pendingRecord()
		require.NoError(t, r.Approve("alice", at))

		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, "alice", r.ReviewedBy)
		require.NotNil(t, r.ReviewedAt)
		assert.Equal(t, at, *r.ReviewedAt)
	})

	t.Run("empty reviewer is a validation error", func(t *testing.T) {
		r := pendingRecord()
		err := r.Approve("  ", at)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, StatusPending, r.Status)
		assert.Nil(t, r.ReviewedAt)
	})

	t.Run("approve twice is a conflict", func(t *testing.T) {
		r := pendingRecord()
		require.NoError(t, r.Approve("alice", at))

		err := r.Approve("bob", at.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Equal(t, "alice", r.ReviewedBy)
	})

	t.Run("reviewer checked before state", func(t *testing.T) {
		r := pendingRecord()
		require.NoError(t, r.Reject("alice", "", at))

		err := r.Approve("", at)
		assert.True(t, IsValidation(err))
		assert.False(t, IsConflict(err))
	})
}

func TestReviewRecord_Reject(t *testing.T) {
	at := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

	t.Run("pending to rejected with notes", func(t *testing.T) {
		r := pendingRecord()
		require.NoError(t, r.Reject("bob", "syndicated rumor", at))

		assert.Equal(t, StatusRejected, r.Status)
		assert.Equal(t, "bob", r.ReviewedBy)
		assert.Equal(t, "syndicated rumor", r.Notes)
	})

	t.Run("reject after approve is a conflict and stays approved", func(t *testing.T) {
		r := pendingRecord()
		require.NoError(t, r.Approve("alice", at))

		err := r.Reject("bob", "nope", at)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Equal(t, StatusApproved, r.Status)
		assert.Empty(t, r.Notes)
	})
}

func TestParseReviewStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ReviewStatus
		wantErr bool
	}{
		{name: "pending", input: "pending", want: StatusPending},
		{name: "upper case approved", input: "APPROVED", want: StatusApproved},
		{name: "rejected with spaces", input: " rejected ", want: StatusRejected},
		{name: "unknown", input: "archived", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReviewStatus(tt.input)
			if tt.wantErr {
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReviewStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}
