package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "hr-assistant/chat"

// ChatMetrics provides metrics collection for chat requests
type ChatMetrics struct {
	requestsCounter   metric.Int64Counter
	rejectedCounter   metric.Int64Counter
	failedCounter     metric.Int64Counter
	durationHistogram metric.Float64Histogram
	activeGauge       metric.Int64UpDownCounter
}

// NewChatMetrics creates a chat metrics collector on the global meter provider.
// Instruments are no-ops until a provider is installed with otel.SetMeterProvider.
func NewChatMetrics() (*ChatMetrics, error) {
	return NewChatMetricsWithProvider(otel.GetMeterProvider())
}

// NewChatMetricsWithProvider creates a chat metrics collector on mp.
func NewChatMetricsWithProvider(mp metric.MeterProvider) (*ChatMetrics, error) {
	meter := mp.Meter(meterName)

	requestsCounter, err := meter.Int64Counter(
		"hr_assistant.chat.requests",
		metric.WithDescription("Total number of chat requests answered by the workflow"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedCounter, err := meter.Int64Counter(
		"hr_assistant.chat.rejected",
		metric.WithDescription("Total number of chat requests rejected as invalid input"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	failedCounter, err := meter.Int64Counter(
		"hr_assistant.chat.failed",
		metric.WithDescription("Total number of chat requests where the workflow failed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"hr_assistant.chat.duration",
		metric.WithDescription("Duration of workflow execution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeGauge, err := meter.Int64UpDownCounter(
		"hr_assistant.chat.active",
		metric.WithDescription("Number of workflow runs in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ChatMetrics{
		requestsCounter:   requestsCounter,
		rejectedCounter:   rejectedCounter,
		failedCounter:     failedCounter,
		durationHistogram: durationHistogram,
		activeGauge:       activeGauge,
	}, nil
}

// RecordStarted marks a workflow run as in flight
func (cm *ChatMetrics) RecordStarted(ctx context.Context) {
	cm.activeGauge.Add(ctx, 1)
}

// RecordRejected records a request refused before any stage ran
func (cm *ChatMetrics) RecordRejected(ctx context.Context) {
	cm.rejectedCounter.Add(ctx, 1)
}

// RecordAnswered records a completed workflow run with its intent and route
func (cm *ChatMetrics) RecordAnswered(ctx context.Context, intent, route string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("route", route),
		attribute.String("status", "answered"),
	)
	cm.requestsCounter.Add(ctx, 1, attrs)
	cm.durationHistogram.Record(ctx, duration.Seconds(), attrs)
	cm.activeGauge.Add(ctx, -1)
}

// RecordFailed records a workflow run that returned an error
func (cm *ChatMetrics) RecordFailed(ctx context.Context, errorType string, duration time.Duration) {
	cm.failedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", "failed"),
			attribute.String("error.type", errorType),
		),
	)
	cm.durationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "failed"),
		),
	)
	cm.activeGauge.Add(ctx, -1)
}
