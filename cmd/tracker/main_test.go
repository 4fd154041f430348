package main

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  errors.New("boom"),
			want: "error: boom\n",
		},
		{
			name: "with hint",
			err:  errors.WithHint(entities.Conflictf("already initialized"), "remove .tracker to start over"),
			want: "error: already initialized\nhint: remove .tracker to start over\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		field entities.Field
		value entities.Value
		want  string
	}{
		{"money millions", entities.FieldTotalFunding, entities.NumberValue(2_500_000), "$2.5M"},
		{"money billions", entities.FieldValuation, entities.NumberValue(1e9), "$1B"},
		{"users thousands", entities.FieldEstimatedUsers, entities.NumberValue(12_000), "12K"},
		{"small", entities.FieldEmployeeCount, entities.NumberValue(42), "42"},
		{"null", entities.FieldValuation, entities.NullValue(), "null"},
		{"acquisition", entities.FieldAcquisition, entities.AcquisitionValue(entities.Acquisition{Acquirer: "Acme"}), "acquired by Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.field, tt.value))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 startup", plural(1, "startup"))
	assert.Equal(t, "0 startups", plural(0, "startup"))
	assert.Equal(t, "3 startups", plural(3, "startup"))
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "startups", "stats", "history", "refresh", "schedule", "review", "export"} {
		assert.Contains(t, names, want)
	}
}
