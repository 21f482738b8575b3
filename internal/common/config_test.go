package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, "6h", config.Fusion.CacheTTL)
	assert.Equal(t, 500, config.Fusion.LearnedCharCap)
	assert.Equal(t, 30, config.Alerts.DefaultThreshold)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 9000

[learned]
provider = "gemini"
model = "gemini-2.0-flash"
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[learned]
provider = "none"

[cache]
backend = "badger"
`), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "none", config.Learned.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.Learned.Model)
	assert.Equal(t, "badger", config.Cache.Backend)
	assert.Equal(t, 4, config.Batch.Workers, "untouched defaults survive")
}

func TestLoadFromFiles_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentio.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0644))

	t.Setenv("SENTIO_SERVER_PORT", "9100")
	t.Setenv("SENTIO_KAFKA_BROKERS", "k1:9092, k2:9092")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, config.Alerts.Kafka.Brokers)
	assert.True(t, config.Alerts.Kafka.Enabled)
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport="), 0644))
	_, err = LoadFromFiles(bad)
	assert.ErrorContains(t, err, "file 1 of 1")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Learned.Provider = "bert" }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"bad ttl", func(c *Config) { c.Fusion.CacheTTL = "six hours" }},
		{"threshold too low", func(c *Config) { c.Alerts.DefaultThreshold = 5 }},
		{"threshold too high", func(c *Config) { c.Alerts.DefaultThreshold = 51 }},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"bad schedule", func(c *Config) { c.Alerts.Schedule = "every minute" }},
		{"kafka without topic", func(c *Config) { c.Alerts.Kafka.Enabled = true; c.Alerts.Kafka.Topic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8086, config.Server.Port)

	ApplyFlagOverrides(config, 7000, "0.0.0.0")
	assert.Equal(t, 7000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 6*time.Hour, Duration("6h", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("nope", time.Minute))
}
