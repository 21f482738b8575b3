package learned

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier_ResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantScore float64
	}{
		{"object", `{"label":"POSITIVE","score":0.91}`, "POSITIVE", 0.91},
		{"flat list", `[{"label":"NEGATIVE","score":0.8},{"label":"POSITIVE","score":0.2}]`, "NEGATIVE", 0.8},
		{"nested list", `[[{"label":"POSITIVE","score":0.3},{"label":"NEGATIVE","score":0.7}]]`, "NEGATIVE", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req inferenceRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "some text", req.Inputs)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewHTTPClassifier(server.URL, "sst2", "secret", time.Second)
			label, score, err := c.Classify(context.Background(), "some text")
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, label)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
		})
	}
}

func TestHTTPClassifier_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "", "", time.Second)

	_, _, err := c.Classify(context.Background(), "text")
	assert.ErrorContains(t, err, "status 503")

	_, _, err = c.Classify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	assert.Error(t, c.Load(context.Background()))
	assert.Error(t, NewHTTPClassifier("", "", "", 0).Load(context.Background()))
}

func TestHTTPClassifier_LoadProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"label":"POSITIVE","score":0.99}`))
	}))
	defer server.Close()

	require.NoError(t, NewHTTPClassifier(server.URL, "", "", time.Second).Load(context.Background()))
}

func TestParseLLMPrediction(t *testing.T) {
	label, p, err := parseLLMPrediction("```json\n{\"label\": \"NEGATIVE\", \"probability\": 0.82}\n```")
	require.NoError(t, err)
	assert.Equal(t, "NEGATIVE", label)
	assert.InDelta(t, 0.82, p, 1e-9)

	label, _, err = parseLLMPrediction(`Sure: {"label":"POSITIVE","probability":0.6}`)
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", label)

	_, _, err = parseLLMPrediction("no idea")
	assert.Error(t, err)

	_, _, err = parseLLMPrediction(`{"probability":0.6}`)
	assert.Error(t, err)
}

func TestClassifiersRequireKeys(t *testing.T) {
	assert.Error(t, NewGeminiClassifier("", "").Load(context.Background()))
	assert.Error(t, NewClaudeClassifier("", "").Load(context.Background()))

	_, _, err := NewClaudeClassifier("k", "").Classify(context.Background(), "text")
	assert.ErrorContains(t, err, "not initialized")
}
