package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", JSON: true, Output: &buf})
	require.NoError(t, err)

	log.Debugw("hidden")
	log.Infow("Refresh finished", "startup_id", "everlywell", "count", 2)
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "Refresh finished", entry["msg"])
	assert.Equal(t, "everlywell", entry["startup_id"])
	assert.EqualValues(t, 2, entry["count"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)

	log.Debugw("Resolved candidates", "field", "valuation")
	assert.Contains(t, buf.String(), "Resolved candidates")
	assert.Contains(t, buf.String(), "valuation")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "info"},
		{in: "DEBUG", want: "debug"},
		{in: "warning", want: "warn"},
		{in: "error", want: "error"},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl.String())
		})
	}
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Infow("ignored", "k", "v") })
	assert.IsType(t, &zap.SugaredLogger{}, Nop())
}
