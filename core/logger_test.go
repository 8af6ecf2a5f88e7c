package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	buffer, cleanup := CaptureLog(t, LogLevelInfo)
	defer cleanup()

	Debug("This should not appear")
	Info("This should appear")
	Warn("This warning should appear")
	Error("This error should appear")

	logs := buffer.String()
	assert.NotContains(t, logs, "This should not appear")
	AssertLogContains(t, logs, "[INFO] This should appear")
	AssertLogContains(t, logs, "[WARN] This warning should appear")
	AssertLogContains(t, logs, "[ERROR] This error should appear")
}

func TestQuietTest(t *testing.T) {
	buffer, cleanup := CaptureLog(t, LogLevelDebug)
	defer cleanup()
	restore := QuietTest(t)
	Error("hidden")
	restore()
	Error("shown")
	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), "shown")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		hasError bool
	}{
		{"DEBUG", LogLevelDebug, false},
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"WARN", LogLevelWarn, false},
		{"WARNING", LogLevelWarn, false},
		{"ERROR", LogLevelError, false},
		{"OFF", LogLevelOff, false},
		{"NONE", LogLevelOff, false},
		{"INVALID", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestRecoverInternal(t *testing.T) {
	run := func() (err error) {
		defer RecoverInternal(&err)
		Internalf("bad node %d", 3)
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.True(t, IsInternal(err))
	assert.Equal(t, "internal error: bad node 3", err.Error())

	assert.Panics(t, func() {
		var err error
		defer RecoverInternal(&err)
		panic("not internal")
	})
}

func TestEnsureNoErr(t *testing.T) {
	defer QuietTest(t)()
	assert.NotPanics(t, func() { EnsureNoErr(nil) })
	cause := errors.New("boom")
	var err error
	func() {
		defer RecoverInternal(&err)
		EnsureNoErr(cause, "loading %s", "thing")
	}()
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "loading thing")
}

func TestCounterIDGen(t *testing.T) {
	var g CounterIDGen
	a, b := g.NextID(), g.NextID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, "_t7", Label("_t", 7))
}
