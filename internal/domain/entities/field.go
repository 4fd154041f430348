// Package entities contains core domain data structures.
package entities

// Field names a tracked startup metric that a candidate change can target.
type Field string

// Tracked fields. The string values match the JSON keys of StartupMetrics.
const (
	FieldTotalFunding   Field = "totalFunding"
	FieldValuation      Field = "valuation"
	FieldEstimatedUsers Field = "estimatedUsers"
	FieldEmployeeCount  Field = "employeeCount"
	FieldAcquisition    Field = "acquisition"
)

// AllFields lists every tracked field in display order.
var AllFields = []Field{
	FieldTotalFunding,
	FieldValuation,
	FieldEstimatedUsers,
	FieldEmployeeCount,
	FieldAcquisition,
}

// IsValid reports whether f is one of the tracked fields.
func (f Field) IsValid() bool {
	for _, known := range AllFields {
		if f == known {
			return true
		}
	}
	return false
}

// IsMonetary reports whether the field holds a dollar amount.
// Monetary fields are subject to the decrease and materiality filters.
func (f Field) IsMonetary() bool {
	return f == FieldTotalFunding || f == FieldValuation
}

// IsNumeric reports whether the field holds a plain number.
func (f Field) IsNumeric() bool {
	return f != FieldAcquisition
}

// ParseField converts a string to a Field.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.IsValid() {
		return "", Validationf("unknown field %q", s)
	}
	return f, nil
}

// Confidence is the extractor's qualitative trust in a candidate change.
type Confidence string

// Confidence levels, ordered high > medium > low.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank returns the ordering weight of the confidence level.
// Unknown levels rank below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ParseConfidence converts a string to a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(s)
	if c.Rank() == 0 {
		return "", Validationf("unknown confidence %q", s)
	}
	return c, nil
}

// String implements fmt.Stringer.
func (c Confidence) String() string {
	return string(c)
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

