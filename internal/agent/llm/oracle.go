package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
	logx "github.com/hr-assistant/server/pkg/logger"
)

// ChatOracle turns a chat model into a prompt-in, text-out oracle.
type ChatOracle struct {
	model     einomodel.BaseChatModel
	modelName string
	tracer    trace.Tracer
}

// NewChatOracle wraps a chat model.
func NewChatOracle(cm *ChatModel) (*ChatOracle, error) {
	if cm == nil || cm.Model == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	return &ChatOracle{
		model:     cm.Model,
		modelName: cm.ModelName,
		tracer:    otel.Tracer("hr-assistant/oracle"),
	}, nil
}

// Complete sends prompt as a single user message and returns the reply text.
func (o *ChatOracle) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "oracle.complete", trace.WithAttributes(
		attribute.String("llm.model", o.modelName),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	out, err := o.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return "", errx.WrapOracle(err)
	}
	if out == nil {
		span.SetStatus(codes.Error, "empty reply")
		return "", errx.WrapOracle(fmt.Errorf("model returned no message"))
	}

	if usage, ok := UsageOf(out, o.modelName); ok {
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
		logx.Debug().
			Str("model", o.modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("total_cost_usd", usage.CostUSD).
			Msg("LLM usage")
	}
	return strings.TrimSpace(out.Content), nil
}

var _ model.Oracle = (*ChatOracle)(nil)
