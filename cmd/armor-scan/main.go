package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/factory"
	"github.com/Eklavya-kapoor/armor-api/internal/logging"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
	"github.com/Eklavya-kapoor/armor-api/internal/trust"
)

var (
	// Classifier flags
	provider         = flag.String("provider", "bedrock", "Primary classifier provider (bedrock, gemini, openai, stub)")
	fallbackProvider = flag.String("fallback-provider", "stub", "Fallback classifier provider")
	maxTokens        = flag.Int("max-tokens", 500, "Maximum tokens for model response")
	temperature      = flag.Float64("temperature", 0.1, "Temperature for model generation")
	topP             = flag.Float64("top-p", 0.9, "Top-p for model generation")
	maxBodySize      = flag.Int("max-body-size", 4096, "Maximum text size to send to the model")
	inferenceTimeout = flag.String("inference-timeout", "5s", "Per-inference time budget")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Scoring flags
	mediumThreshold = flag.Float64("medium-threshold", core.DefaultMediumThreshold, "Score threshold for the medium risk tier")
	highThreshold   = flag.Float64("high-threshold", core.DefaultHighThreshold, "Score threshold for the high risk tier")
	maxTextLength   = flag.Int("max-text-length", 1000, "Maximum analyzed text length (longer input is truncated)")
	trustedDomains  = flag.String("trusted-domains", "", "Comma-separated list of trusted sender domains")

	// Input flags
	text          = flag.String("text", "", "Message text to scan (use -file or stdin if not specified)")
	sender        = flag.String("sender", "", "Message sender")
	mixedLanguage = flag.Bool("detect-mixed-language", false, "Enable the mixed-language signal")
	inputFile     = flag.String("file", "", "Input file with the message text")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog       = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := createConfigFromFlags()

	// Build the pipeline
	textProcessor := textutil.NewTextProcessor(logger)
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor)
	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}

	var domains []string
	if *trustedDomains != "" {
		domains = strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
	}

	scoring := cfg.GetScoring()
	service := core.NewScanService(
		core.NewFeatureExtractor(),
		classifier,
		core.NewRiskScorer(scoring.Weights, scoring.MediumThreshold, scoring.HighThreshold),
		textProcessor,
		trust.NewChecker(domains, logger),
		nil,
		logger,
		false,
		0,
		*maxTextLength,
	)

	messageText := readMessageText(logger)

	var metadata map[string]any
	if *mixedLanguage {
		metadata = map[string]any{"detect_mixed_language": true}
	}

	// Print request summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("Sender: %s\n", *sender)
	fmt.Printf("Text length: %d bytes\n", len(messageText))
	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s (fallback: %s)\n", *provider, *fallbackProvider)

	assessment, err := service.Scan(context.Background(), &core.ScanRequest{
		Text:     messageText,
		Sender:   *sender,
		Metadata: metadata,
	})
	if err != nil {
		logger.Fatal("Failed to scan message", zap.Error(err))
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Risk score: %.4f\n", assessment.RiskScore)
	fmt.Printf("Risk level: %s\n", assessment.RiskLevel)
	fmt.Printf("Degraded: %t\n", assessment.Degraded)
	fmt.Printf("Model used: %s\n", assessment.ModelUsed)
	fmt.Printf("Explanation:\n")
	for _, reason := range assessment.Explanation {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Printf("Processing time: %dms\n", assessment.ProcessingTimeMs)

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
}

// readMessageText resolves the message text from flag, file or stdin.
func readMessageText(logger *zap.Logger) string {
	if *text != "" {
		return *text
	}

	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		reader = file
	} else {
		logger.Info("Reading message from stdin")
		reader = os.Stdin
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Fatal("Failed to read message text", zap.Error(err))
	}
	return string(data)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("classifier.provider", *provider)
	v.Set("classifier.fallback_provider", *fallbackProvider)
	v.Set("classifier.max_text_length", *maxTextLength)
	v.Set("classifier.inference_timeout", *inferenceTimeout)

	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	}

	v.Set("scoring.medium_threshold", *mediumThreshold)
	v.Set("scoring.high_threshold", *highThreshold)

	return config.NewFromViper(v)
}
