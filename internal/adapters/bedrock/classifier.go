package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// BedrockClassifier implements the TextClassifier interface using Amazon
// Bedrock hosted models.
type BedrockClassifier struct {
	client        *bedrockruntime.Client
	modelID       string
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

// NewBedrockClassifier creates a new Bedrock classifier
func NewBedrockClassifier(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *textutil.TextProcessor,
) *BedrockClassifier {
	return &BedrockClassifier{
		client:        client,
		modelID:       modelID,
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
func (c *BedrockClassifier) Classify(ctx context.Context, text string) (*core.ClassifierResult, error) {
	// Truncate to the model's payload budget; upstream validation already
	// capped the text, this guards the model contract.
	processed := c.textProcessor.Process(text, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractResponseText(resp.Body)
	if err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(responseText)
	if err != nil {
		return nil, err
	}

	return &core.ClassifierResult{
		Label:      core.NormalizeLabel(verdict.Label),
		Confidence: verdict.Confidence,
		ModelUsed:  c.modelID,
	}, nil
}

// extractResponseText pulls the completion text out of the model-specific
// response envelope.
func (c *BedrockClassifier) extractResponseText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		return string(body), nil
	}
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClassifier) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClassifier) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
