package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentBackend, Output: &buf})

	l.Info("hello", FieldRoadID, "r1")
	l.Debug("hidden")
	l.WithComponent(ComponentReports).Warn("other")

	out := buf.String()
	assert.Contains(t, out, "component=backend")
	assert.Contains(t, out, "road_id=r1")
	assert.Contains(t, out, "component=reports")
	assert.NotContains(t, out, "hidden")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Format: "json", Output: &buf})
	l.Info("started")
	assert.Contains(t, buf.String(), `"component":"app"`)
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	l := New(Config{Component: ComponentCLI, Output: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentRecorder, Output: &buf}))

	sl.LogEntryRecorded(context.Background(), "e1", "t1", "r1", "B", 2, "5.00", true)
	sl.LogError(context.Background(), "boom", errors.New("disk full"), OpReset, ErrorTypeDatabase, nil)

	out := buf.String()
	assert.Contains(t, out, "entry_id=e1")
	assert.Contains(t, out, "priced=true")
	assert.Contains(t, out, `error="disk full"`)
	assert.Contains(t, out, "operation=reset")
	assert.Contains(t, out, "error_type=database_error")
}

func TestStructuredLoggerSingleComponent(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentRecorder, Output: &buf}))

	sl.LogEntryRecorded(context.Background(), "e1", "t1", "r1", "A", 1, "2.50", false)
	line := strings.TrimSpace(buf.String())
	assert.Equal(t, 1, strings.Count(line, "component="), line)

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("x"), OpRecord, "", NewFields())
	line = strings.TrimSpace(buf.String())
	assert.Equal(t, 1, strings.Count(line, "component="), line)
	assert.NotContains(t, line, "error_type")
}

func TestLogFieldsWithPeriod(t *testing.T) {
	f := NewFields().WithPeriod(2024, 3)
	assert.Equal(t, 2024, f[FieldYear])
	assert.Equal(t, 3, f[FieldMonth])
}
