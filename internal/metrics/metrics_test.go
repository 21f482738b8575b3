package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		CacheLookups,
		AnalyzeDuration,
		ScorerFailures,
		FusionTotalFailures,
		LearnedScorerDegraded,
		LearnedFallbacks,
		BatchItems,
		AlertsRaised,
		AlertPublishErrors,
	}

	for _, c := range collectors {
		desc := make(chan *prometheus.Desc, 1)
		c.Describe(desc)
		close(desc)
		require.NotNil(t, <-desc)
	}
}

func TestCounterVecIncrements(t *testing.T) {
	before := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	CacheLookups.WithLabelValues("hit").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookups.WithLabelValues("hit")))

	before = testutil.ToFloat64(AlertsRaised.WithLabelValues("sentiment_spike", "critical"))
	AlertsRaised.WithLabelValues("sentiment_spike", "critical").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AlertsRaised.WithLabelValues("sentiment_spike", "critical")))
}

func TestDegradedGauge(t *testing.T) {
	LearnedScorerDegraded.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(LearnedScorerDegraded))
	LearnedScorerDegraded.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(LearnedScorerDegraded))
}
