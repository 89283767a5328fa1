package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// GeminiClassifier implements the TextClassifier interface using Google
// Gemini.
type GeminiClassifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	promptFormat  string
	textProcessor *textutil.TextProcessor
}

// classifierVerdict represents the structured response from the model
type classifierVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// NewGeminiClassifier creates a new Gemini classifier
func NewGeminiClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *textutil.TextProcessor,
) (*GeminiClassifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClassifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a message risk classifier. Analyze the following message and classify it.
Respond with a JSON object containing:
- label: one of "scam", "suspicious", "benign"
- confidence: number between 0 and 1 (how confident you are in the label)
- reason: string (brief reason for the label)

Message:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClassifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify analyzes a message text and returns a normalized verdict
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*core.ClassifierResult, error) {
	processed := c.textProcessor.Process(text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText.WriteString(string(textPart))
		}
	}

	verdict, err := parseVerdict(responseText.String())
	if err != nil {
		return nil, err
	}

	return &core.ClassifierResult{
		Label:      core.NormalizeLabel(verdict.Label),
		Confidence: verdict.Confidence,
		ModelUsed:  c.modelName,
	}, nil
}

// parseVerdict parses the model's JSON verdict, tolerating surrounding
// prose by scanning for the outermost braces.
func parseVerdict(responseText string) (*classifierVerdict, error) {
	var verdict classifierVerdict
	if err := json.Unmarshal([]byte(responseText), &verdict); err == nil {
		return &verdict, nil
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from model response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return &verdict, nil
}
