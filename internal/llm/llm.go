package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"testwright/internal/models"
)

// GenerateRequest describes the feature a test should be drafted for.
type GenerateRequest struct {
	FeatureName  string
	Description  string
	Selectors    []string
	APIEndpoints []string
	RiskLevel    models.RiskLevel
}

// Draft is the provider's raw candidate test.
type Draft struct {
	TestName    string `json:"testName"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Provider generates test drafts. The scoring and aggregation core is
// provider-agnostic and never depends on which variant produced the
// text.
type Provider interface {
	GenerateTest(ctx context.Context, req GenerateRequest) (*Draft, error)
}

// AnthropicProvider implements Provider against the Anthropic API.
type AnthropicProvider struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewAnthropicProvider creates a provider with the given API key and model.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildGeneratePrompt constructs the system and user prompts for test drafting.
func buildGeneratePrompt(req GenerateRequest) (system string, user string) {
	system = `You write end-to-end browser tests for web application features. Return ONLY a JSON object with these fields:
- "testName": a file-style test name derived from the feature (e.g. "checkout-flow.cy.js")
- "description": one sentence describing what the test covers
- "source": the complete test source text

Rules:
- Use a describe block per feature and multiple it blocks per behavior
- Use only the provided selectors, referenced as data-testid attributes
- Include at least one edge case (empty, invalid, or boundary input) and one error handling case
- Use value assertions (equality, contains, length), not only visibility checks
- Never hardcode absolute URLs or fixed numeric waits
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Feature: ")
	sb.WriteString(req.FeatureName)
	sb.WriteString("\n")
	if req.Description != "" {
		sb.WriteString("Description: ")
		sb.WriteString(req.Description)
		sb.WriteString("\n")
	}
	if req.RiskLevel != "" {
		sb.WriteString("Risk level: ")
		sb.WriteString(string(req.RiskLevel))
		sb.WriteString("\n")
	}
	if len(req.Selectors) > 0 {
		sb.WriteString("Selectors: ")
		sb.WriteString(strings.Join(req.Selectors, ", "))
		sb.WriteString("\n")
	}
	if len(req.APIEndpoints) > 0 {
		sb.WriteString("API endpoints: ")
		sb.WriteString(strings.Join(req.APIEndpoints, ", "))
		sb.WriteString("\n")
	}
	user = sb.String()
	return
}

// GenerateTest asks the model for a test draft for the given feature.
func (p *AnthropicProvider) GenerateTest(ctx context.Context, req GenerateRequest) (*Draft, error) {
	systemPrompt, userPrompt := buildGeneratePrompt(req)

	msg, err := p.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = stripFence(text)

	var draft Draft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	if draft.Source == "" {
		return nil, fmt.Errorf("LLM response has no test source")
	}
	return &draft, nil
}

// stripFence removes markdown code fencing if the model added it anyway.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
