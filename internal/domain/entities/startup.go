package entities

import (
	"strings"
	"time"
)

// StartupMetrics holds the tracked public metrics of a startup.
// A nil pointer means the metric is unknown.
type StartupMetrics struct {
	TotalFunding   *float64     `json:"totalFunding" yaml:"totalFunding"`
	Valuation      *float64     `json:"valuation" yaml:"valuation"`
	EstimatedUsers *float64     `json:"estimatedUsers" yaml:"estimatedUsers"`
	EmployeeCount  *float64     `json:"employeeCount" yaml:"employeeCount"`
	Acquisition    *Acquisition `json:"acquisition,omitempty" yaml:"acquisition,omitempty"`
}

// Startup is a tracked company and its latest metric snapshot.
type Startup struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Website      string         `json:"website,omitempty" yaml:"website,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Founded      int            `json:"founded,omitempty" yaml:"founded,omitempty"`
	Headquarters string         `json:"headquarters,omitempty" yaml:"headquarters,omitempty"`
	Metrics      StartupMetrics `json:"metrics" yaml:"metrics"`
	Founders     []string       `json:"founders,omitempty" yaml:"founders,omitempty"`
	LastUpdated  time.Time      `json:"lastUpdated" yaml:"lastUpdated"`
}

// Validate checks the fields required to track a startup.
func (s Startup) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return Validationf("startup id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return Validationf("startup %s: name is required", s.ID)
	}
	return nil
}

// CurrentValue returns the snapshot value of a field. Unknown metrics are null.
func (s Startup) CurrentValue(f Field) Value {
	switch f {
	case FieldTotalFunding:
		return OptionalNumber(s.Metrics.TotalFunding)
	case FieldValuation:
		return OptionalNumber(s.Metrics.Valuation)
	case FieldEstimatedUsers:
		return OptionalNumber(s.Metrics.EstimatedUsers)
	case FieldEmployeeCount:
		return OptionalNumber(s.Metrics.EmployeeCount)
	case FieldAcquisition:
		if s.Metrics.Acquisition == nil {
			return NullValue()
		}
		return AcquisitionValue(*s.Metrics.Acquisition)
	default:
		return NullValue()
	}
}

// Apply sets a field of the snapshot to v and stamps LastUpdated.
// The value kind must match the field: numbers for metrics, an acquisition
// or null for the acquisition field.
func (s *Startup) Apply(f Field, v Value, at time.Time) error {
	if !f.IsValid() {
		return Validationf("unknown field %q", f)
	}

	if f == FieldAcquisition {
		if v.IsNull() {
			s.Metrics.Acquisition = nil
		} else {
			a, ok := v.Acquisition()
			if !ok {
				return Validationf("field %s requires an acquisition value, got %s", f, v)
			}
			s.Metrics.Acquisition = &a
		}
		s.LastUpdated = at
		return nil
	}

	var target *float64
	if !v.IsNull() {
		n, ok := v.Number()
		if !ok {
			return Validationf("field %s requires a numeric value, got %s", f, v)
		}
		target = &n
	}

	switch f {
	case FieldTotalFunding:
		s.Metrics.TotalFunding = target
	case FieldValuation:
		s.Metrics.Valuation = target
	case FieldEstimatedUsers:
		s.Metrics.EstimatedUsers = target
	case FieldEmployeeCount:
		s.Metrics.EmployeeCount = target
	}
	s.LastUpdated = at
	return nil
}
