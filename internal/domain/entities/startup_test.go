package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestStartup_CurrentValue(t *testing.T) {
	s := Startup{
		ID:   "everlywell",
		Name: "Everlywell",
		Metrics: StartupMetrics{
			TotalFunding: ptr(250_000_000),
			Valuation:    ptr(2_900_000_000),
		},
	}

	assert.True(t, s.CurrentValue(FieldTotalFunding).Equal(NumberValue(250_000_000)))
	assert.True(t, s.CurrentValue(FieldValuation).Equal(NumberValue(2_900_000_000)))
	assert.True(t, s.CurrentValue(FieldEstimatedUsers).IsNull())
	assert.True(t, s.CurrentValue(FieldAcquisition).IsNull())
}

func TestStartup_Apply(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("numeric field", func(t *testing.T) {
		s := Startup{ID: "a", Name: "A"}
		require.NoError(t, s.Apply(FieldEstimatedUsers, NumberValue(1_000_000), at))

		require.NotNil(t, s.Metrics.EstimatedUsers)
		assert.InDelta(t, 1_000_000, *s.Metrics.EstimatedUsers, 0.001)
		assert.Equal(t, at, s.LastUpdated)
	})

	t.Run("acquisition field", func(t *testing.T) {
		s := Startup{ID: "a", Name: "A"}
		acq := Acquisition{Acquirer: "Labcorp", Date: "2024-05-30"}
		require.NoError(t, s.Apply(FieldAcquisition, AcquisitionValue(acq), at))

		require.NotNil(t, s.Metrics.Acquisition)
		assert.Equal(t, acq, *s.Metrics.Acquisition)
	})

	t.Run("kind mismatch rejected", func(t *testing.T) {
		s := Startup{ID: "a", Name: "A"}
		err := s.Apply(FieldValuation, AcquisitionValue(Acquisition{Acquirer: "X"}), at)

		assert.True(t, IsValidation(err))
		assert.Nil(t, s.Metrics.Valuation)
		assert.True(t, s.LastUpdated.IsZero())
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		s := Startup{ID: "a", Name: "A"}
		assert.True(t, IsValidation(s.Apply(Field("revenue"), NumberValue(1), at)))
	})
}

func TestStartup_Validate(t *testing.T) {
	assert.NoError(t, Startup{ID: "a", Name: "A"}.Validate())
	assert.True(t, IsValidation(Startup{Name: "A"}.Validate()))
	assert.True(t, IsValidation(Startup{ID: "a"}.Validate()))
}

func TestEvidenceItem_Text(t *testing.T) {
	e := EvidenceItem{Title: "Everlywell Raises $2 Million", Snippet: "Series A"}
	assert.Equal(t, "everlywell raises $2 million series a", e.Text())
}

func TestParseField(t *testing.T) {
	f, err := ParseField("valuation")
	require.NoError(t, err)
	assert.Equal(t, FieldValuation, f)
	assert.True(t, f.IsMonetary())
	assert.False(t, FieldEmployeeCount.IsMonetary())

	_, err = ParseField("revenue")
	assert.True(t, IsValidation(err))
}

func TestConfidence_Rank(t *testing.T) {
	assert.Greater(t, ConfidenceHigh.Rank(), ConfidenceMedium.Rank())
	assert.Greater(t, ConfidenceMedium.Rank(), ConfidenceLow.Rank())
	assert.Greater(t, ConfidenceLow.Rank(), Confidence("bogus").Rank())
}
