package log

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyLogger_FollowsOutput(t *testing.T) {
	// logger 在切换输出之前创建
	l := Logger("socketsys/test")

	buf := &bytes.Buffer{}
	SetOutputWithLevel(buf, slog.LevelDebug)
	defer SetOutputWithLevel(os.Stderr, slog.LevelInfo)

	l.Debug("切换之后", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "切换之后")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "component=socketsys/test")
}

func TestSetLevel_FiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutputWithLevel(buf, slog.LevelInfo)
	defer SetOutputWithLevel(os.Stderr, slog.LevelInfo)

	l := Logger("socketsys/level")
	l.Debug("不应输出")
	assert.Empty(t, buf.String())

	SetLevel(slog.LevelDebug)
	l.Debug("应当输出")
	assert.Contains(t, buf.String(), "应当输出")
}

func TestSetJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutputWithLevel(buf, slog.LevelInfo)
	SetJSON(true)
	defer func() {
		SetJSON(false)
		SetOutputWithLevel(os.Stderr, slog.LevelInfo)
	}()

	Logger("socketsys/json").Info("json 格式")
	assert.Contains(t, buf.String(), `"component":"socketsys/json"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.name)
		require.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "01234567", TruncateID("0123456789", 8))
}
