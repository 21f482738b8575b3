package learned

import (
	"fmt"
	"os"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
)

// NewClassifier builds the backend named by config.Provider. Provider "none"
// returns a nil classifier, which degrades the scorer on first use.
func NewClassifier(config common.LearnedConfig) (interfaces.Classifier, error) {
	timeout := common.Duration(config.Timeout, DefaultCallTimeout)

	switch config.Provider {
	case "http":
		return NewHTTPClassifier(config.Endpoint, config.Model, config.APIKey, timeout), nil
	case "gemini":
		return NewGeminiClassifier(resolveKey(config.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY"), config.Model), nil
	case "claude":
		return NewClaudeClassifier(resolveKey(config.APIKey, "ANTHROPIC_API_KEY"), config.Model), nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown learned provider: %s", config.Provider)
}

// OptionsFromConfig converts the [fusion] and [learned] sections into scorer options
func OptionsFromConfig(fusion common.FusionConfig, config common.LearnedConfig) Options {
	return Options{
		CharCap:     fusion.LearnedCharCap,
		CallTimeout: common.Duration(config.Timeout, DefaultCallTimeout),
		InitTimeout: common.Duration(config.InitTimeout, DefaultInitTimeout),
	}
}

func resolveKey(configured string, envNames ...string) string {
	if configured != "" {
		return configured
	}
	for _, name := range envNames {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

