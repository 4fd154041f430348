package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindNumber
	kindAcquisition
)

// Acquisition describes a startup being bought by another company.
type Acquisition struct {
	Acquirer string `json:"acquirer" yaml:"acquirer"`
	Date     string `json:"date" yaml:"date"`
}

// Value is the old or new value of a metric change.
// It is exactly one of: null, a number, or an acquisition.
// The zero Value is null.
type Value struct {
	kind        valueKind
	number      float64
	acquisition Acquisition
}

// NullValue returns the null value.
func NullValue() Value {
	return Value{}
}

// NumberValue returns a numeric value.
func NumberValue(n float64) Value {
	return Value{kind: kindNumber, number: n}
}

// AcquisitionValue returns an acquisition value.
func AcquisitionValue(a Acquisition) Value {
	return Value{kind: kindAcquisition, acquisition: a}
}

// OptionalNumber returns NumberValue(*n) or NullValue when n is nil.
func OptionalNumber(n *float64) Value {
	if n == nil {
		return NullValue()
	}
	return NumberValue(*n)
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == kindNull
}

// Number returns the numeric value and whether v is a number.
func (v Value) Number() (float64, bool) {
	return v.number, v.kind == kindNumber
}

// Acquisition returns the acquisition and whether v is one.
func (v Value) Acquisition() (Acquisition, bool) {
	return v.acquisition, v.kind == kindAcquisition
}

// Equal reports structural equality. Two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindNumber:
		return v.number == o.number
	case kindAcquisition:
		return v.acquisition == o.acquisition
	default:
		return true
	}
}

// String renders the value for CLI output.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case kindAcquisition:
		if v.acquisition.Date == "" {
			return fmt.Sprintf("acquired by %s", v.acquisition.Acquirer)
		}
		return fmt.Sprintf("acquired by %s (%s)", v.acquisition.Acquirer, v.acquisition.Date)
	default:
		return "null"
	}
}

// MarshalJSON encodes null, a JSON number, or an acquisition object.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.number)
	case kindAcquisition:
		return json.Marshal(v.acquisition)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, a JSON number, or an acquisition object.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = NullValue()
		return nil
	case data[0] == '{':
		var a Acquisition
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("decoding acquisition value: %w", err)
		}
		*v = AcquisitionValue(a)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding numeric value: %w", err)
		}
		*v = NumberValue(n)
		return nil
	}
}
