package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hrmodel "github.com/hr-assistant/server/internal/agent/model"
	errx "github.com/hr-assistant/server/internal/core/error"
)

type stubChatModel struct {
	reply  *schema.Message
	err    error
	inputs [][]*schema.Message
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.inputs = append(s.inputs, input)
	return s.reply, s.err
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := s.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestChatOracle_Complete(t *testing.T) {
	t.Run("returns trimmed content", func(t *testing.T) {
		reply := schema.AssistantMessage("  hr_policy\n", nil)
		reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}}
		stub := &stubChatModel{reply: reply}

		oracle, err := NewChatOracle(&ChatModel{Model: stub, ModelName: "gemini-2.5-flash"})
		require.NoError(t, err)

		got, err := oracle.Complete(context.Background(), "What is the leave policy?")
		require.NoError(t, err)
		assert.Equal(t, "hr_policy", got)

		require.Len(t, stub.inputs, 1)
		require.Len(t, stub.inputs[0], 1)
		assert.Equal(t, schema.User, stub.inputs[0][0].Role)
		assert.Equal(t, "What is the leave policy?", stub.inputs[0][0].Content)
	})

	t.Run("wraps transport errors", func(t *testing.T) {
		stub := &stubChatModel{err: errors.New("connection refused")}
		oracle, err := NewChatOracle(&ChatModel{Model: stub, ModelName: "llama3"})
		require.NoError(t, err)

		_, err = oracle.Complete(context.Background(), "hi")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err))
	})

	t.Run("nil reply is an error", func(t *testing.T) {
		oracle, err := NewChatOracle(&ChatModel{Model: &stubChatModel{}, ModelName: "llama3"})
		require.NoError(t, err)

		_, err = oracle.Complete(context.Background(), "hi")
		assert.Error(t, err)
	})

	t.Run("nil model rejected", func(t *testing.T) {
		_, err := NewChatOracle(nil)
		assert.Error(t, err)
	})
}

func TestUsageOf(t *testing.T) {
	msg := schema.AssistantMessage("ok", nil)
	_, ok := UsageOf(msg, "llama3")
	assert.False(t, ok)

	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000}}
	u, ok := UsageOf(msg, "gemini-2.5-flash")
	require.True(t, ok)
	assert.InDelta(t, 2.80, u.CostUSD, 0.0001)

	u, ok = UsageOf(msg, "llama3")
	require.True(t, ok)
	assert.Zero(t, u.CostUSD)
}

func TestNewChatModel(t *testing.T) {
	cfg := hrmodel.OracleConfig{Provider: "ollama"}
	cfg.Ollama.Model = "llama3"
	cm, err := NewChatModel(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cm.Provider)
	assert.Equal(t, "llama3", cm.ModelName)

	_, err = NewChatModel(context.Background(), hrmodel.OracleConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = NewChatModel(context.Background(), hrmodel.OracleConfig{Provider: "bedrock"})
	assert.ErrorContains(t, err, "unsupported oracle provider")
}
