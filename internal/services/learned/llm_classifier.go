package learned

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/genai"
)

const classifyInstruction = `You are a binary sentiment classifier.

Classify the overall sentiment of the text below as POSITIVE or NEGATIVE and give the probability of that label.

Output Format (JSON only, no markdown fences):
{"label": "POSITIVE", "probability": 0.93}

Text:
%s`

type llmPrediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// parseLLMPrediction extracts the JSON verdict from a model response
func parseLLMPrediction(response string) (string, float64, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var p llmPrediction
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return "", 0, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	if p.Label == "" {
		return "", 0, fmt.Errorf("classifier response has no label")
	}
	return p.Label, p.Probability, nil
}

// GeminiClassifier classifies with a Gemini model via google.golang.org/genai.
type GeminiClassifier struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiClassifier creates a classifier; the client is built in Load
func NewGeminiClassifier(apiKey, model string) *GeminiClassifier {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClassifier{apiKey: apiKey, model: model}
}

func (c *GeminiClassifier) Name() string { return "gemini" }

// Load creates the client and runs one probe classification
func (c *GeminiClassifier) Load(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client

	if _, _, err := c.Classify(ctx, "this is good"); err != nil {
		c.client = nil
		return fmt.Errorf("Gemini probe failed: %w", err)
	}
	return nil
}

func (c *GeminiClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrEmptyInput
	}
	if c.client == nil {
		return "", 0, fmt.Errorf("Gemini client is not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(fmt.Sprintf(classifyInstruction, text))},
		},
	}, config)
	if err != nil {
		return "", 0, fmt.Errorf("Gemini classification failed (model: %s): %w", c.model, err)
	}

	return parseLLMPrediction(resp.Text())
}

// ClaudeClassifier classifies with an Anthropic Claude model.
type ClaudeClassifier struct {
	apiKey string
	model  string
	client anthropic.Client
	ready  bool
}

// NewClaudeClassifier creates a classifier; the client is built in Load
func NewClaudeClassifier(apiKey, model string) *ClaudeClassifier {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ClaudeClassifier{apiKey: apiKey, model: model}
}

func (c *ClaudeClassifier) Name() string { return "claude" }

// Load creates the client and runs one probe classification
func (c *ClaudeClassifier) Load(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("Anthropic API key is required")
	}

	c.client = anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.ready = true

	if _, _, err := c.Classify(ctx, "this is good"); err != nil {
		c.ready = false
		return fmt.Errorf("Claude probe failed: %w", err)
	}
	return nil
}

func (c *ClaudeClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrEmptyInput
	}
	if !c.ready {
		return "", 0, fmt.Errorf("Claude client is not initialized")
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 64,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(classifyInstruction, text))),
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("Claude classification failed (model: %s): %w", c.model, err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	return parseLLMPrediction(response.String())
}
