package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"DEBUG":   DebugLevel,
	}
	for input, want := range cases {
		got, err := ParseLogLevel(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLogLevel("bogus")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
}

func TestNewLogger_JSONOutputCarriesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf, Component: "catalog"})

	l.Info("fetched solvers", map[string]interface{}{"count": 3})
	require.NoError(t, l.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched solvers", entry["msg"])
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestNewLogger_BelowLevelIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: WarnLevel, Format: JSONFormat, Output: &buf})

	l.Info("should not appear")
	require.NoError(t, l.Sync())
	assert.Empty(t, buf.String())

	l.Warn("should appear")
	require.NoError(t, l.Sync())
	assert.Contains(t, buf.String(), "should appear")
}

func TestWithComponent_ScopesSubsequentEntries(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	scoped := base.WithComponent("poll")

	scoped.Info("polling")
	require.NoError(t, scoped.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "poll", entry["component"])
}

func TestWith_AttachesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	scoped := base.With(map[string]interface{}{"remote_id": "123"})

	scoped.Info("dispatching")
	require.NoError(t, scoped.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "123", entry["remote_id"])
}

func TestDefault_IsNotNil(t *testing.T) {
	assert.NotNil(t, Default())
}
