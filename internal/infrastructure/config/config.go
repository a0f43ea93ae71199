package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Generation GenerationConfig `mapstructure:"generation"`
	Pantry     PantryConfig     `mapstructure:"pantry"`
	LogLevel   string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// GeminiConfig 生成式文字端點配置
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	Temperature     float64       `mapstructure:"temperature"`
	TopP            float64       `mapstructure:"top_p"`
	TopK            int           `mapstructure:"top_k"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BaseDelay       time.Duration `mapstructure:"base_delay"`
	MaxTotalTime    time.Duration `mapstructure:"max_total_time"`
}

// GenerationConfig 食譜生成設定
type GenerationConfig struct {
	RecipeCount      int  `mapstructure:"recipe_count"`
	UseExpiringFirst bool `mapstructure:"use_expiring_first"`
}

// PantryConfig pantry 服務配置
type PantryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MaxRecipeCount 單次請求允許的最大食譜數
const MaxRecipeCount = 5

// LoadConfig 載入設定；.env 由呼叫端先行載入
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"gemini.api_key":                "GEMINI_API_KEY",
		"gemini.model":                  "GEMINI_MODEL",
		"gemini.base_url":               "GEMINI_BASE_URL",
		"gemini.max_retries":            "GEMINI_MAX_RETRIES",
		"gemini.max_total_time":         "GEMINI_MAX_TOTAL_TIME",
		"generation.recipe_count":       "GEMINI_RECIPE_COUNT",
		"generation.use_expiring_first": "RECIPE_USE_EXPIRING_FIRST",
		"pantry.base_url":               "PANTRY_SERVICE_URL",
		"server.port":                   "PORT",
		"log_level":                     "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "ai-chef-service")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Gemini 設定
	v.SetDefault("gemini.model", "gemini-2.0-flash-exp")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1")
	v.SetDefault("gemini.temperature", 0.9)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.top_k", 40)
	v.SetDefault("gemini.max_output_tokens", 2048)
	v.SetDefault("gemini.request_timeout", "5s")
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.base_delay", "1s")
	v.SetDefault("gemini.max_total_time", "8s")

	// 生成設定
	v.SetDefault("generation.recipe_count", 1)
	v.SetDefault("generation.use_expiring_first", true)

	// pantry 服務
	v.SetDefault("pantry.base_url", "http://localhost:8082")
	v.SetDefault("pantry.timeout", "5s")

	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Generation.RecipeCount < 1 || config.Generation.RecipeCount > MaxRecipeCount {
		return fmt.Errorf("recipe count must be between 1 and %d", MaxRecipeCount)
	}

	if config.Gemini.MaxRetries < 0 {
		return fmt.Errorf("invalid gemini max retries")
	}
	if config.Gemini.RequestTimeout <= 0 {
		return fmt.Errorf("invalid gemini request timeout")
	}
	if config.Gemini.MaxTotalTime <= 0 {
		return fmt.Errorf("invalid gemini max total time")
	}
	if config.Gemini.BaseDelay < 0 {
		return fmt.Errorf("invalid gemini base delay")
	}

	if config.Pantry.Timeout <= 0 {
		return fmt.Errorf("invalid pantry timeout")
	}

	return nil
}

// HasAPIKey 判斷 API Key 是否已正確設定（空值或佔位符視為未設定）
func (c GeminiConfig) HasAPIKey() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && !strings.HasPrefix(key, "your-")
}
