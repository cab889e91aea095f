package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hr-assistant/server/internal/agent/graph"
	"github.com/hr-assistant/server/internal/agent/graph/conversations"
	"github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
	"github.com/hr-assistant/server/internal/metrics"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const (
	InvalidInputText  = "Invalid input. Please provide a valid message."
	InternalErrorText = "An internal error occurred. Please try again."
)

// ErrTranscriptsDisabled is returned by history calls when no transcript store is configured.
var ErrTranscriptsDisabled = errx.New(errors.New("transcripts disabled"), http.StatusNotFound, "transcript storage is not configured")

// ServiceConfig wires the chat service. Transcripts and Metrics are optional.
type ServiceConfig struct {
	Runner      graph.Runner
	Transcripts *conversations.TranscriptManager
	Metrics     *metrics.ChatMetrics
	Timeout     time.Duration
}

// Service answers one chat request per call. It never returns an error:
// every failure is mapped to a fixed reply.
type Service struct {
	runner      graph.Runner
	transcripts *conversations.TranscriptManager
	metrics     *metrics.ChatMetrics
	timeout     time.Duration
	tracer      trace.Tracer
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("workflow runner is nil")
	}
	return &Service{
		runner:      cfg.Runner,
		transcripts: cfg.Transcripts,
		metrics:     cfg.Metrics,
		timeout:     cfg.Timeout,
		tracer:      otel.Tracer("hr-assistant/chat"),
	}, nil
}

// Answer validates the request, runs the workflow under the configured
// deadline and records the exchange.
func (s *Service) Answer(ctx context.Context, req model.ChatRequest) model.ChatResult {
	if !req.Valid() {
		logx.Warn().Str("request_id", req.RequestID).Msg("rejected chat request with missing message or email")
		if s.metrics != nil {
			s.metrics.RecordRejected(ctx)
		}
		return model.ChatResult{Response: InvalidInputText, Intent: model.IntentGeneral}
	}

	ctx, span := s.tracer.Start(ctx, "chat.answer", trace.WithAttributes(
		attribute.String("request_id", req.RequestID),
	))
	defer span.End()

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.metrics != nil {
		s.metrics.RecordStarted(ctx)
	}
	start := time.Now()

	res, err := s.runner.Invoke(runCtx, req)
	elapsed := time.Since(start)
	if err != nil {
		errorType := "workflow_error"
		if errors.Is(err, context.DeadlineExceeded) {
			errorType = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, errorType)
		logx.Error().
			Err(err).
			Str("request_id", req.RequestID).
			Str("error_type", errorType).
			Dur("elapsed", elapsed).
			Msg("workflow failed")
		if s.metrics != nil {
			s.metrics.RecordFailed(ctx, errorType, elapsed)
		}
		return model.ChatResult{Response: InternalErrorText, Intent: model.IntentGeneral}
	}

	route := res.Intent.Route().String()
	span.SetAttributes(
		attribute.String("chat.intent", res.Intent.String()),
		attribute.String("chat.route", route),
	)
	if s.metrics != nil {
		s.metrics.RecordAnswered(ctx, res.Intent.String(), route, elapsed)
	}
	logx.Info().
		Str("request_id", req.RequestID).
		Str("intent", res.Intent.String()).
		Strs("route", res.Route).
		Dur("elapsed", elapsed).
		Msg("chat answered")

	s.record(ctx, req, res.Response)
	return res
}

func (s *Service) record(ctx context.Context, req model.ChatRequest, answer string) {
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.Record(ctx, req.UserEmail, req.Message, answer); err != nil {
		logx.Warn().Err(err).Str("request_id", req.RequestID).Msg("failed to record transcript")
	}
}

// History returns the stored transcript of a user.
func (s *Service) History(ctx context.Context, userEmail string) ([]*schema.Message, error) {
	if s.transcripts == nil {
		return nil, ErrTranscriptsDisabled
	}
	return s.transcripts.History(ctx, userEmail)
}

// ClearHistory deletes the stored transcript of a user.
func (s *Service) ClearHistory(ctx context.Context, userEmail string) error {
	if s.transcripts == nil {
		return ErrTranscriptsDisabled
	}
	return s.transcripts.Clear(ctx, userEmail)
}
