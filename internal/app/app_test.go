package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/services/scheduler"
)

func testConfig(t *testing.T, backend string) *common.Config {
	t.Helper()
	dir := t.TempDir()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = filepath.Join(dir, "badger")
	config.Storage.SQLite.Path = filepath.Join(dir, "articles.db")
	config.Learned.Provider = "none"
	config.Cache.Backend = backend
	return config
}

func TestNew_ScoresAndProcessesPending(t *testing.T) {
	for _, backend := range []string{"memory", "badger"} {
		t.Run(backend, func(t *testing.T) {
			application, err := New(testConfig(t, backend), arbor.NewLogger())
			require.NoError(t, err)
			defer application.Close()

			ctx := context.Background()
			item := application.Fusion.Analyze(ctx, "Shares surge after strong profit growth", true)
			assert.Greater(t, item.FinalScore, 0.0)
			assert.Equal(t, interfaces.LearnedStatePermanentlyDegraded, application.Learned.State())

			cached := application.Fusion.Analyze(ctx, "Shares surge after strong profit growth", true)
			assert.True(t, cached.Cached)

			articles := application.StorageManager.ArticleStorage()
			require.NoError(t, articles.SaveArticle(ctx, models.Article{
				ID:          "a1",
				Headline:    "Acme profit jumps",
				PublishedAt: time.Now().Add(-time.Hour),
				Entities:    []string{"Acme"},
			}))

			result, err := application.Processor.ProcessPending(ctx, models.SourceAll, 0)
			require.NoError(t, err)
			require.Len(t, result.Scored, 1)
			assert.Empty(t, result.Failures)

			require.NoError(t, application.Collector.RunEvaluation(ctx))
		})
	}
}

func TestStartScheduler_RegistersJobs(t *testing.T) {
	config := testConfig(t, "memory")
	config.Alerts.Enabled = true

	application, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.StartScheduler())
	statuses := application.SchedulerService.GetAllJobStatuses()
	assert.Contains(t, statuses, scheduler.JobProcessPending)
	assert.Contains(t, statuses, scheduler.JobEvaluateAlerts)
}

func TestStartScheduler_SkipsEvaluationWhenAlertsDisabled(t *testing.T) {
	config := testConfig(t, "memory")
	config.Alerts.Enabled = false

	application, err := New(config, arbor.NewLogger())
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.StartScheduler())
	statuses := application.SchedulerService.GetAllJobStatuses()
	assert.Contains(t, statuses, scheduler.JobProcessPending)
	assert.NotContains(t, statuses, scheduler.JobEvaluateAlerts)
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	config := testConfig(t, "memory")
	config.Learned.Provider = "telepathy"

	_, err := New(config, arbor.NewLogger())
	assert.Error(t, err)
}
