package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestChatMetrics_Creation(t *testing.T) {
	metrics, err := NewChatMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics.requestsCounter)
	assert.NotNil(t, metrics.rejectedCounter)
	assert.NotNil(t, metrics.failedCounter)
	assert.NotNil(t, metrics.durationHistogram)
	assert.NotNil(t, metrics.activeGauge)
}

func TestChatMetrics_Recording(t *testing.T) {
	metrics, err := NewChatMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("answered run", func(t *testing.T) {
		assert.NotPanics(t, func() {
			metrics.RecordStarted(ctx)
			metrics.RecordAnswered(ctx, "leave_balance", "sql", 1200*time.Millisecond)
		})
	})

	t.Run("failed run", func(t *testing.T) {
		assert.NotPanics(t, func() {
			metrics.RecordStarted(ctx)
			metrics.RecordFailed(ctx, "timeout", 3*time.Minute)
		})
	})

	t.Run("rejected request", func(t *testing.T) {
		assert.NotPanics(t, func() {
			metrics.RecordRejected(ctx)
		})
	})
}

func TestChatMetrics_ConcurrentRecording(t *testing.T) {
	metrics, err := NewChatMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			metrics.RecordStarted(ctx)
			duration := time.Duration(id) * 100 * time.Millisecond
			if id%2 == 0 {
				metrics.RecordAnswered(ctx, "general", "general", duration)
			} else {
				metrics.RecordFailed(ctx, "workflow_error", duration)
			}
		}(i)
	}
	wg.Wait()
}

func collectInt64Sums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestChatMetrics_ExportedThroughProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewChatMetricsWithProvider(mp)
	require.NoError(t, err)
	ctx := context.Background()

	metrics.RecordStarted(ctx)
	metrics.RecordAnswered(ctx, "hr_policy", "policy", time.Second)
	metrics.RecordStarted(ctx)
	metrics.RecordFailed(ctx, "timeout", 2*time.Second)
	metrics.RecordRejected(ctx)

	sums := collectInt64Sums(t, reader)
	assert.Equal(t, int64(1), sums["hr_assistant.chat.requests"])
	assert.Equal(t, int64(1), sums["hr_assistant.chat.failed"])
	assert.Equal(t, int64(1), sums["hr_assistant.chat.rejected"])
	assert.Equal(t, int64(0), sums["hr_assistant.chat.active"])
}
