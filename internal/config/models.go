package config

import "time"

// ClassifierConfig represents the configuration for the classifier chain
type ClassifierConfig struct {
	Provider         string
	FallbackProvider string
	MaxTextLength    int
	InferenceTimeout time.Duration
	Serialize        bool
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// ScoringConfig represents the risk scoring configuration
type ScoringConfig struct {
	MediumThreshold float64
	HighThreshold   float64
	Weights         map[string]float64
	TrustedDomains  []string
}

// GetClassifier returns the classifier chain configuration
func (c *Config) GetClassifier() ClassifierConfig {
	timeout, err := c.GetDuration("classifier.inference_timeout")
	if err != nil {
		timeout = 5 * time.Second
	}
	return ClassifierConfig{
		Provider:         c.GetString("classifier.provider"),
		FallbackProvider: c.GetString("classifier.fallback_provider"),
		MaxTextLength:    c.GetInt("classifier.max_text_length"),
		InferenceTimeout: timeout,
		Serialize:        c.GetBool("classifier.serialize_inference"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetScoring returns the risk scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		MediumThreshold: c.GetFloat64("scoring.medium_threshold"),
		HighThreshold:   c.GetFloat64("scoring.high_threshold"),
		Weights:         c.GetStringMapFloat64("scoring.weights"),
		TrustedDomains:  c.GetStringSlice("scoring.trusted_domains"),
	}
}
