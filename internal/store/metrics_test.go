package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricSamplesNewestFirstAndPruned(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	require.NoError(t, InsertMetricSample(db, MetricSample{
		CapturedAt:      now.Add(-48 * time.Hour),
		ProcessRSSBytes: 100,
	}))
	require.NoError(t, InsertMetricSample(db, MetricSample{
		CapturedAt:      now.Add(-time.Minute),
		ProcessRSSBytes: 200,
	}))
	require.NoError(t, InsertMetricSample(db, MetricSample{
		CapturedAt:      now,
		ProcessRSSBytes: 300,
	}))

	samples, err := LatestMetricSamples(db, 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, int64(300), samples[0].ProcessRSSBytes)
	assert.Equal(t, int64(200), samples[1].ProcessRSSBytes)

	require.NoError(t, PruneMetricSamples(db, now.Add(-24*time.Hour)))
	samples, err = LatestMetricSamples(db, 10)
	require.NoError(t, err)
	require.Len(t, samples, 2)
}
