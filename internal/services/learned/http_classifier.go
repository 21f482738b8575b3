package learned

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClassifier calls a text-classification inference server. It accepts the
// Hugging Face response shapes: {label,score}, [{label,score}] and [[{label,score}]].
type HTTPClassifier struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
	Model  string `json:"model,omitempty"`
}

type inferencePrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewHTTPClassifier creates a classifier for endpoint
func NewHTTPClassifier(endpoint, model, apiKey string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClassifier) Name() string { return "http" }

// Load probes the server with a known-positive sentence.
func (c *HTTPClassifier) Load(ctx context.Context) error {
	if c.endpoint == "" {
		return fmt.Errorf("inference endpoint is not configured")
	}
	label, _, err := c.Classify(ctx, "this is good")
	if err != nil {
		return fmt.Errorf("inference server probe failed: %w", err)
	}
	if _, ok := LabelScore(label, 1); !ok {
		return fmt.Errorf("inference server returned unsupported label %q", label)
	}
	return nil
}

// Classify posts text and returns the top prediction
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrEmptyInput
	}

	body, err := json.Marshal(inferenceRequest{Inputs: text, Model: c.model})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("inference server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	prediction, err := parsePrediction(respBody)
	if err != nil {
		return "", 0, err
	}
	return prediction.Label, prediction.Score, nil
}

func parsePrediction(body []byte) (inferencePrediction, error) {
	var single inferencePrediction
	if err := json.Unmarshal(body, &single); err == nil && single.Label != "" {
		return single, nil
	}

	var flat []inferencePrediction
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return top(flat), nil
	}

	var nested [][]inferencePrediction
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return top(nested[0]), nil
	}

	return inferencePrediction{}, fmt.Errorf("unrecognised inference response: %.200s", string(body))
}

func top(predictions []inferencePrediction) inferencePrediction {
	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best
}
