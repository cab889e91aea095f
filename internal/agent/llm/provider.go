package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// ChatModel is the chat model selected for the oracle together with its name.
type ChatModel struct {
	Model     einomodel.BaseChatModel
	Provider  string
	ModelName string
}

// NewChatModel builds the configured backend.
func NewChatModel(ctx context.Context, cfg model.OracleConfig) (*ChatModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		return newOllama(cfg)
	case ProviderGemini:
		return newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported oracle provider %q", cfg.Provider)
	}
}

func newOllama(cfg model.OracleConfig) (*ChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := NewOllamaChatModel(&OllamaConfig{
		BaseURL:     cfg.Ollama.BaseURL,
		Model:       cfg.Ollama.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Ollama model")
		return nil, fmt.Errorf("error creating Ollama model: %w", err)
	}
	return &ChatModel{Model: cm, Provider: ProviderOllama, ModelName: cfg.Ollama.Model}, nil
}

func newGemini(ctx context.Context, cfg model.OracleConfig) (*ChatModel, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Gemini.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.Gemini.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Gemini.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini model")
		return nil, fmt.Errorf("error creating Gemini model: %w", err)
	}
	return &ChatModel{Model: cm, Provider: ProviderGemini, ModelName: cfg.Gemini.Model}, nil
}
