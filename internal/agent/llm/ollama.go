package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaTimeout = 120 * time.Second
)

// OllamaConfig configures the Ollama chat model.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   *int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OllamaChatModel adapts Ollama's /api/generate endpoint to eino's BaseChatModel.
type OllamaChatModel struct {
	baseURL     string
	model       string
	temperature *float32
	maxTokens   *int
	httpClient  *http.Client
}

type ollamaOptions struct {
	Temperature float32  `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	TopP        float32  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	Error           string `json:"error,omitempty"`
}

// NewOllamaChatModel creates an Ollama-backed chat model.
func NewOllamaChatModel(cfg *OllamaConfig) (*OllamaChatModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ollama config is nil")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultOllamaTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &OllamaChatModel{
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  client,
	}, nil
}

// Generate sends the conversation as a single non-streaming generate call.
func (m *OllamaChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (outMsg *schema.Message, err error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}, opts...)

	req := m.toRequest(input, options)

	ctx = callbacks.EnsureRunInfo(ctx, m.GetType(), components.ComponentOfChatModel)
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{
		Messages: input,
		Config:   callbackConfig(req),
	})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}

	msg := schema.AssistantMessage(out.Response, nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		FinishReason: out.DoneReason,
		Usage: &schema.TokenUsage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}

	callbacks.OnEnd(ctx, &model.CallbackOutput{
		Message: msg,
		Config:  callbackConfig(req),
		TokenUsage: &model.TokenUsage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	})
	return msg, nil
}

// Stream returns the generated message as a single-chunk stream.
func (m *OllamaChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// GetType names the component for eino callbacks.
func (m *OllamaChatModel) GetType() string {
	return "Ollama"
}

// IsCallbacksEnabled tells eino the model reports its own callbacks.
func (m *OllamaChatModel) IsCallbacksEnabled() bool {
	return true
}

func callbackConfig(req *ollamaRequest) *model.Config {
	cfg := &model.Config{Model: req.Model}
	if req.Options != nil {
		cfg.MaxTokens = req.Options.NumPredict
		cfg.Temperature = req.Options.Temperature
		cfg.TopP = req.Options.TopP
		cfg.Stop = req.Options.Stop
	}
	return cfg
}

func (m *OllamaChatModel) toRequest(input []*schema.Message, options *model.Options) *ollamaRequest {
	var system, prompt []string
	for _, msg := range input {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == schema.System {
			system = append(system, msg.Content)
			continue
		}
		prompt = append(prompt, msg.Content)
	}

	req := &ollamaRequest{
		Model:  m.model,
		Prompt: strings.Join(prompt, "\n\n"),
		System: strings.Join(system, "\n\n"),
		Stream: false,
	}
	if options.Model != nil && *options.Model != "" {
		req.Model = *options.Model
	}

	o := &ollamaOptions{Stop: options.Stop}
	if options.Temperature != nil {
		o.Temperature = *options.Temperature
	}
	if options.MaxTokens != nil {
		o.NumPredict = *options.MaxTokens
	}
	if options.TopP != nil {
		o.TopP = *options.TopP
	}
	if o.Temperature != 0 || o.NumPredict != 0 || o.TopP != 0 || len(o.Stop) > 0 {
		req.Options = o
	}
	return req
}

var _ model.BaseChatModel = (*OllamaChatModel)(nil)
