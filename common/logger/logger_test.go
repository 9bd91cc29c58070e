package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestWithAnomaly_OmitsZeroIDs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.WithAnomaly("lineage_cycle", 7, 0).Warn("family data anomaly")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "lineage_cycle", rec["anomaly"])
	assert.Equal(t, float64(7), rec["person_id"])
	assert.NotContains(t, rec, "marriage_id")
}

func TestWithPairAndService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json").WithService("kinship")

	log.WithPair(1, 4).Info("resolved")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kinship", rec["service"])
	assert.Equal(t, float64(1), rec["person_a"])
	assert.Equal(t, float64(4), rec["person_b"])
}

func TestError_AddsStack(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "error", "json").Error("boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec["stack"], "runtime/debug")
}
