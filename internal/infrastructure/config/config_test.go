package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Gemini.Model)
	assert.Equal(t, 2, cfg.Gemini.MaxRetries)
	assert.Equal(t, time.Second, cfg.Gemini.BaseDelay)
	assert.Equal(t, 8*time.Second, cfg.Gemini.MaxTotalTime)
	assert.Equal(t, 5*time.Second, cfg.Gemini.RequestTimeout)
	assert.Equal(t, 1, cfg.Generation.RecipeCount)
	assert.True(t, cfg.Generation.UseExpiringFirst)
	assert.False(t, cfg.Gemini.HasAPIKey())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "abc123secretkey")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("GEMINI_RECIPE_COUNT", "3")
	t.Setenv("RECIPE_USE_EXPIRING_FIRST", "false")
	t.Setenv("PANTRY_SERVICE_URL", "http://pantry:9000")
	t.Setenv("GEMINI_MAX_TOTAL_TIME", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "abc123secretkey", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Generation.RecipeCount)
	assert.False(t, cfg.Generation.UseExpiringFirst)
	assert.Equal(t, "http://pantry:9000", cfg.Pantry.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Gemini.MaxTotalTime)
	assert.True(t, cfg.Gemini.HasAPIKey())
}

func TestLoadConfig_RejectsInvalidRecipeCount(t *testing.T) {
	t.Setenv("GEMINI_RECIPE_COUNT", "9")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipe count")
}

func TestGeminiConfig_HasAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"placeholder", "your-gemini-api-key", false},
		{"real key", "AIzaSyExample", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GeminiConfig{APIKey: tt.key}.HasAPIKey())
		})
	}
}
