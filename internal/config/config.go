package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/armor-api/")
	v.AddConfigPath("$HOME/.armor-api")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("ARMOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier chain defaults
	v.SetDefault("classifier.provider", "bedrock")
	v.SetDefault("classifier.fallback_provider", "openai")
	v.SetDefault("classifier.max_text_length", 1000)
	v.SetDefault("classifier.inference_timeout", "5s")
	v.SetDefault("classifier.serialize_inference", false)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 500)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 500)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Scoring defaults
	v.SetDefault("scoring.medium_threshold", core.DefaultMediumThreshold)
	v.SetDefault("scoring.high_threshold", core.DefaultHighThreshold)
	v.SetDefault("scoring.weights", core.DefaultWeights())
	v.SetDefault("scoring.trusted_domains", []string{})

	// Assessment store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.ttl", "24h")
	v.SetDefault("store.cleanup_frequency", "1h")
	v.SetDefault("store.sqlite_path", "/data/armor_assessments.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/armor")

	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")

	// SMTP gateway defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp.block_high", false)
	v.SetDefault("smtp.headers.score", "X-Risk-Score")
	v.SetDefault("smtp.headers.level", "X-Risk-Level")
	v.SetDefault("smtp.headers.reason", "X-Risk-Reason")
	v.SetDefault("smtp.relay.enabled", false)
	v.SetDefault("smtp.relay.address", "127.0.0.1")
	v.SetDefault("smtp.relay.port", 10026)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapFloat64 gets a string-to-float mapping from the configuration
func (c *Config) GetStringMapFloat64(key string) map[string]float64 {
	raw := c.v.GetStringMap(key)
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for name := range raw {
		out[name] = c.v.GetFloat64(key + "." + name)
	}
	return out
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
