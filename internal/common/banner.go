package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective engine settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Sentio", GetFullVersion())

	logger.Info().
		Str("environment", config.Environment).
		Str("learned_provider", config.Learned.Provider).
		Str("cache_backend", config.Cache.Backend).
		Str("cache_ttl", config.Fusion.CacheTTL).
		Int("batch_workers", config.Batch.Workers).
		Bool("kafka", config.Alerts.Kafka.Enabled).
		Msg("Sentiment engine configuration")
}
