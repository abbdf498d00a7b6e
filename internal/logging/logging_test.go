package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initBuffer(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.JSON = true
	cfg.Output = &buf
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Init(DefaultConfig()) })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestConfigs(t *testing.T) {
	assert.Equal(t, "warn", DefaultConfig().Level)
	assert.Equal(t, "debug", DebugConfig().Level)

	d := DaemonConfig("/tmp/x.log")
	assert.Equal(t, "info", d.Level)
	assert.Equal(t, "/tmp/x.log", d.File)
	assert.Equal(t, 10, d.MaxSizeMB)
	assert.Equal(t, 3, d.MaxBackups)
	assert.Equal(t, 28, d.MaxAgeDays)
	assert.True(t, d.Compress)
}

func TestLevels(t *testing.T) {
	t.Run("warn_filters_info", func(t *testing.T) {
		buf := initBuffer(t, "warn")
		Info("hidden")
		Debug("hidden")
		assert.Empty(t, buf.String())

		Warn("shown", KeyCount, 3)
		m := lastLine(t, buf)
		assert.Equal(t, "shown", m["msg"])
		assert.Equal(t, "warn", m["level"])
		assert.EqualValues(t, 3, m[KeyCount])
	})

	t.Run("debug_sets_verbose", func(t *testing.T) {
		buf := initBuffer(t, "debug")
		assert.True(t, Verbose)
		Debug("debug message", KeyEntry, "abc")
		assert.Contains(t, buf.String(), "debug message")
	})

	t.Run("unknown_level_is_warn", func(t *testing.T) {
		buf := initBuffer(t, "chatty")
		assert.False(t, Verbose)
		Info("hidden")
		Error("error message")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "error message")
	})
}

func TestWith(t *testing.T) {
	buf := initBuffer(t, "info")
	With(KeyOperation, "push").Infow("done")
	m := lastLine(t, buf)
	assert.Equal(t, "push", m[KeyOperation])
}

func TestLogOperation(t *testing.T) {
	buf := initBuffer(t, "debug")
	LogOperation("reconcile", time.Now().Add(-5*time.Millisecond), KeyCount, 1)
	m := lastLine(t, buf)
	assert.Equal(t, "reconcile", m[KeyOperation])
	assert.GreaterOrEqual(t, m[KeyDuration], float64(5))
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "timesheet.log")
	var console bytes.Buffer

	cfg := DaemonConfig(file)
	cfg.Output = &console
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Init(DefaultConfig()) })

	Info("tick", KeyCount, 2)
	require.NoError(t, Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tick"`)
	assert.Contains(t, console.String(), "tick")
}

// =============================================================================
// Context Tests
// =============================================================================

func TestRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()
	assert.Len(t, id1, 16)
	assert.NotEqual(t, id1, id2)

	ctx := WithRequestID(context.Background(), "abc123")
	assert.Equal(t, "abc123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(nil)) //nolint:staticcheck
}

func TestFromContext(t *testing.T) {
	buf := initBuffer(t, "info")
	ctx := WithRequestID(context.Background(), "req-1")
	FromContext(ctx).Infow("handled")
	m := lastLine(t, buf)
	assert.Equal(t, "req-1", m[KeyRequestID])
}

// =============================================================================
// Mask Tests
// =============================================================================

func TestIsSensitiveField(t *testing.T) {
	assert.True(t, IsSensitiveField("token"))
	assert.True(t, IsSensitiveField("Token_Secret"))
	assert.True(t, IsSensitiveField("authorization"))
	assert.False(t, IsSensitiveField("employee"))
}

func TestMaskArgs(t *testing.T) {
	args := []any{"token", "abcdefghijkl", KeyEmployee, "e1", "secret", 42}
	masked := MaskArgs(args)

	assert.Equal(t, "********", masked[1])
	assert.Equal(t, "e1", masked[3])
	assert.Equal(t, "********", masked[5])
	assert.Equal(t, "abcdefghijkl", args[1], "input is not modified")

	assert.Equal(t, "***", MaskValue("abc"))
	assert.Equal(t, "", MaskValue(""))
}

func TestSensitiveValuesNotLogged(t *testing.T) {
	buf := initBuffer(t, "info")
	Info("login", "token", "super-secret-token")
	assert.NotContains(t, buf.String(), "super-secret-token")
}
