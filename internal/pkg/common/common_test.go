package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCustomError(t *testing.T) {
	t.Run("should wrap without mutating predefined error", func(t *testing.T) {
		cause := errors.New("unexpected EOF")

		err := ErrInvalidRequest.WithErr(cause)

		assert.Equal(t, "invalid request: unexpected EOF", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Nil(t, ErrInvalidRequest.Err)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})

	t.Run("should hide details outside debug mode", func(t *testing.T) {
		err := ErrInvalidPreferences.WithErr(errors.New("maxTime: not a number"))

		assert.Equal(t, ErrorResponse{Code: "INVALID_PREFERENCES", Message: "invalid generation preferences"}, err.Response(false))
		assert.Equal(t, "maxTime: not a number", err.Response(true).Details)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("tomato", 0))
	assert.Equal(t, "tom", Truncate("tomato", 3))
	assert.Equal(t, "tomato", Truncate("tomato", 10))
	assert.Equal(t, "番茄", Truncate("番茄炒蛋", 2))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Chicken Thigh", "beef", "chicken"))
	assert.False(t, ContainsAny("Basmati Rice", "pasta", "noodle"))
	assert.False(t, ContainsAny("rice"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "olive oil", NormalizeName("  Olive Oil "))
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestParseJSONBytes(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	require.NoError(t, ParseJSONBytes([]byte(`{"name":"egg"}`), &v))
	assert.Equal(t, "egg", v.Name)

	assert.Error(t, ParseJSONBytes([]byte(`{"name":"egg"} {"name":"ham"}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"name":`), &v))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "AIza...wxyz", MaskSecret("AIzaSyD-1234567890wxyz"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestLogHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	t.Run("should mask sensitive fields", func(t *testing.T) {
		LogWarn("Config loaded", zap.String("api_key", "AIzaSyD-1234567890wxyz"), zap.String("model", "gemini"))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "AIza...wxyz", fields["api_key"])
		assert.Equal(t, "gemini", fields["model"])
	})

	t.Run("should log ai call outcome by level", func(t *testing.T) {
		LogAICall("gemini", 1, 0, errors.New("503"))
		LogAICall("gemini", 2, 0, nil)

		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	})
}
