package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sitedeploy.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "sitedeploy.yaml", file)
	})

	t.Run("Error string includes category and cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := WrapError(cause, CategoryFileSystem, "copy failed").Build()
		assert.Equal(t, "[filesystem:error] copy failed: permission denied", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		base := PrerenderError("missing route").WithContext("route", "/nope").Build()
		wrapped := fmt.Errorf("build: %w", base)

		require.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryPrerender))
		assert.Equal(t, CategoryPrerender, GetCategory(wrapped))
		assert.Equal(t, SeverityError, GetSeverity(wrapped))
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		assert.False(t, IsClassified(err))
		assert.Equal(t, CategoryInternal, GetCategory(err))
		assert.Equal(t, SeverityError, GetSeverity(err))
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := ValidationError("bad base path").WithContext("base_path", "x").Build()
		b := ValidationError("bad base path").Build()
		c := ConfigError("bad base path").Build()
		assert.ErrorIs(t, a, b)
		assert.NotErrorIs(t, a, c)
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Convenience constructors set severity", func(t *testing.T) {
		assert.True(t, ConfigError("x").Build().IsFatal())
		assert.True(t, ValidationError("x").Build().IsFatal())
		assert.True(t, BuildError("x").Build().IsFatal())
		assert.False(t, PrerenderError("x").Build().IsFatal())
		assert.Equal(t, SeverityWarning, PrerenderError("x").Warning().Build().Severity())
	})

	t.Run("WithContext on built error copies context", func(t *testing.T) {
		orig := NewError(CategoryBuild, "failed").WithContext("a", 1).Build()
		next := orig.WithContext("b", 2)

		_, hasB := orig.Context().Get("b")
		assert.False(t, hasB)
		v, ok := next.Context().Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)
	})
}

func TestErrorContext_Merge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"k": "v"}
	assert.Equal(t, other, empty.Merge(other))

	merged := ErrorContext{"k": "old", "x": 1}.Merge(other)
	assert.Equal(t, "v", merged["k"])
	assert.Equal(t, 1, merged["x"])
}
