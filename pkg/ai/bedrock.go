// pkg/ai/bedrock.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/mapper"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

const (
	defaultModelID = "anthropic.claude-3-haiku-20240307-v1:0"

	mappingMaxTokens    = 500
	suggestionMaxTokens = 200

	// fixSampleCount bounds the valid-value context sent per error
	fixSampleCount = 5
)

// anthropicMessage is a message in the Bedrock Claude request format
type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// anthropicRequest is the InvokeModel body for Claude on Bedrock
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

// anthropicResponse is the InvokeModel response body
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BedrockAgent backs the AI header-mapping and fix-suggestion capabilities
// with Claude on AWS Bedrock. All failures surface as errors to the caller,
// which downgrades them to "no match" / "no suggestion".
type BedrockAgent struct {
	client  *bedrockruntime.Client
	modelID string
	logger  *zap.Logger
}

// NewBedrockAgent creates an agent using the default AWS credential chain
func NewBedrockAgent(ctx context.Context, region, modelID string, logger *zap.Logger) (*BedrockAgent, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if modelID == "" {
		modelID = defaultModelID
	}

	agent := &BedrockAgent{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		logger:  logger.Named("bedrock-agent"),
	}

	agent.logger.Info("Initialized Bedrock agent",
		zap.String("model", modelID),
		zap.String("region", region))
	return agent, nil
}

// MapHeaders asks the model to map a whole batch of unmapped headers in a
// single call, bounding latency and cost
func (a *BedrockAgent) MapHeaders(ctx context.Context, headers []mapper.UnmappedHeader, availableFields []string) (map[string]string, error) {
	if len(headers) == 0 || len(availableFields) == 0 {
		return map[string]string{}, nil
	}

	prompt := buildMappingPrompt(headers, availableFields)

	response, err := a.invoke(ctx, prompt, mappingMaxTokens)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Normalized
	}

	mappings := extractMappings(response, names, availableFields)
	a.logger.Debug("AI header mapping response parsed",
		zap.Int("headers", len(headers)),
		zap.Int("mapped", len(mappings)))
	return mappings, nil
}

// SuggestFix asks the model for a single corrected value for one validation
// error. The boolean is false when the model explicitly declined.
func (a *BedrockAgent) SuggestFix(ctx context.Context, verr model.ValidationError, validSamples []string) (string, bool, error) {
	if len(validSamples) > fixSampleCount {
		validSamples = validSamples[:fixSampleCount]
	}

	prompt := buildSuggestionPrompt(verr, validSamples)

	response, err := a.invoke(ctx, prompt, suggestionMaxTokens)
	if err != nil {
		return "", false, err
	}

	suggestion, ok := extractSuggestion(response)
	return suggestion, ok, nil
}

// invoke sends one prompt through InvokeModel and returns the text content
func (a *BedrockAgent) invoke(ctx context.Context, prompt string, maxTokens int) (string, error) {
	request := anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: prompt}},
			},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke failed: %w", err)
	}

	var response anthropicResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse bedrock response: %w", err)
	}

	var text strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}

	return strings.TrimSpace(text.String()), nil
}

func buildMappingPrompt(headers []mapper.UnmappedHeader, availableFields []string) string {
	var info strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&info, "%d. '%s' (samples: %v)\n", i+1, h.Normalized, h.Samples)
	}

	return fmt.Sprintf(`You are a data mapping expert. Map these CSV headers to the most appropriate canonical fields.

Headers to map:
%s
Available canonical fields:
%s

Rules:
- Each header should map to exactly ONE canonical field
- Each canonical field can only be used ONCE
- If no good match exists, respond with "NONE"
- Consider semantic meaning, data types, and common business terminology

Respond in JSON format like:
{"header1": "canonical_field1", "header2": "canonical_field2", "header3": "NONE"}

Only return the JSON, no other text.`, info.String(), strings.Join(availableFields, ", "))
}

func buildSuggestionPrompt(verr model.ValidationError, validSamples []string) string {
	return fmt.Sprintf(`You are an expert data cleaner. A data validation process found an error. Your task is to suggest a single, most likely correction for the invalid value.

Error Details:
- Column: %q
- Invalid Value: %q
- Error Type: %q
- Validation Rule: %q

Context from the dataset:
- Here are some other valid values from the %q column: %v

Instructions:
- Analyze the invalid value and the error.
- Consider the column type and other valid values for context.
- Provide the most probable corrected value.
- Respond in JSON format like this: {"suggestion": "your_suggested_fix"}
- Only return the JSON, no other text or explanation. If you cannot determine a fix, respond with {"suggestion": null}.`,
		verr.Column,
		model.ValueString(verr.Value),
		string(verr.Kind),
		verr.Message,
		verr.Column,
		validSamples)
}
