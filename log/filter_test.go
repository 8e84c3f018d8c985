package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFilter(t *testing.T) {
	filter, err := WithFilter("info+:* debug:scoring")
	require.NoError(t, err)

	var buf bytes.Buffer
	l := New(&buf, DebugLevel, filter)
	l.Named("scoring").Debug("scoring detail")
	l.Named("archive").Debug("archive detail")
	l.Named("archive").Info("archive info")

	out := buf.String()
	assert.Contains(t, out, "scoring detail")
	assert.NotContains(t, out, "archive detail")
	assert.Contains(t, out, "archive info")
}

func TestLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.Debug("hidden")
	l.SetLevel(DebugLevel)
	l.Debug("shown", Decimal("penalty", decimal.RequireFromString("12.50")))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"penalty":"12.5"`)
	assert.Equal(t, DebugLevel, l.Level())

	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)
}

func TestCallerOfPackageFunctions(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { ResetDefault(saved) })

	var buf bytes.Buffer
	ResetDefault(New(&buf, InfoLevel, WithCaller(true), AddCallerSkip(1)))
	Info("package level")
	Default().Info("method")
	Named("scoring").Info("named")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, `"caller":"log/filter_test.go:`)
	}
}
