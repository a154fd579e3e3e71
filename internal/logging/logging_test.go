package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.jsonl")

	log, err := New(Config{Level: "info", JSON: true, OutputPaths: []string{out}})
	require.NoError(t, err)

	log.With(String("keyword", "cats")).Info("search loaded", Int("links", 12))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"search loaded"`)
	assert.Contains(t, string(data), `"keyword":"cats"`)
	assert.Contains(t, string(data), `"links":12`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored", Err(assert.AnError))
	assert.NoError(t, log.With(Bool("x", true)).Sync())
}
