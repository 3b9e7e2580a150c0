package errors

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation error", ValidationError("invalid base path").Build(), 2},
		{"config error", ConfigError("bad config").Build(), 7},
		{"prerender error", PrerenderError("missing route").Build(), 11},
		{"filesystem error", FileSystemError("copy failed").Build(), 11},
		{"runtime error", RuntimeError("listen failed").Build(), 12},
		{"internal error", InternalError("bug").Build(), 10},
		{"unclassified error", &customError{msg: "unknown error"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := ConfigError("unknown environment").WithContext("environment", "staging").Build()

	quiet := NewCLIErrorAdapter(false, slog.Default())
	assert.Equal(t, "Error: unknown environment (environment=staging)", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, slog.Default())
	assert.Equal(t, "Error: [config:fatal] unknown environment", verbose.FormatError(err))

	assert.Equal(t, "Error: boom", quiet.FormatError(&customError{msg: "boom"}))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(PrerenderError("missing route").Fatal().Build())

	assert.Equal(t, 11, code)
	assert.Contains(t, out.String(), "missing route")
	assert.Contains(t, logs.String(), "category=prerender")
}
