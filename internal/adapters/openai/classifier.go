package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// OpenAIClassifier implements the TextClassifier interface using OpenAI
type OpenAIClassifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewOpenAIClassifier creates a new OpenAI classifier
func NewOpenAIClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *textutil.TextProcessor,
) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	}
}

// Classify analyzes a message text and returns a normalized verdict
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*core.ClassifierResult, error) {
	processed := c.textProcessor.Process(text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a message risk classifier. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
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
