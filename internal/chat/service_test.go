package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr-assistant/server/internal/agent/graph/conversations"
	"github.com/hr-assistant/server/internal/agent/model"
	"github.com/hr-assistant/server/internal/metrics"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []model.ChatRequest
	res   model.ChatResult
	err   error
	wait  bool
}

func (r *fakeRunner) Invoke(ctx context.Context, in model.ChatRequest) (model.ChatResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, in)
	r.mu.Unlock()
	if r.wait {
		<-ctx.Done()
		return model.ChatResult{}, ctx.Err()
	}
	return r.res, r.err
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type memoryTranscripts struct {
	mu       sync.Mutex
	messages map[string][]*schema.Message
}

func (m *memoryTranscripts) AddMessage(_ context.Context, userEmail string, message *schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = map[string][]*schema.Message{}
	}
	m.messages[userEmail] = append(m.messages[userEmail], message)
	return nil
}

func (m *memoryTranscripts) LoadHistory(_ context.Context, userEmail string) (*model.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.Transcript{UserEmail: userEmail, Messages: m.messages[userEmail]}, nil
}

func (m *memoryTranscripts) ClearHistory(_ context.Context, userEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, userEmail)
	return nil
}

func newService(t *testing.T, runner *fakeRunner, transcripts model.TranscriptRepository, timeout time.Duration) *Service {
	t.Helper()
	m, err := metrics.NewChatMetrics()
	require.NoError(t, err)

	cfg := ServiceConfig{Runner: runner, Metrics: m, Timeout: timeout}
	if transcripts != nil {
		cfg.Transcripts = conversations.NewTranscriptManager(transcripts, 0)
	}
	s, err := NewService(cfg)
	require.NoError(t, err)
	return s
}

func TestNewServiceRequiresRunner(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	assert.Error(t, err)
}

func TestAnswerRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  model.ChatRequest
	}{
		{"missing email", model.ChatRequest{Message: "What is my leave balance?"}},
		{"blank email", model.ChatRequest{Message: "What is my leave balance?", UserEmail: "  "}},
		{"empty message", model.ChatRequest{UserEmail: "jane@acme.io"}},
		{"whitespace message", model.ChatRequest{Message: " \n\t", UserEmail: "jane@acme.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			s := newService(t, runner, nil, time.Second)

			res := s.Answer(context.Background(), tt.req)

			assert.Equal(t, InvalidInputText, res.Response)
			assert.Empty(t, res.Route)
			assert.Zero(t, runner.callCount(), "no stage may run for invalid input")
		})
	}
}

func TestAnswerReturnsWorkflowResult(t *testing.T) {
	runner := &fakeRunner{res: model.ChatResult{
		Response: "You have 12 leave days left.",
		Intent:   model.IntentLeaveBalance,
		Route:    []string{"classify_intent", "generate_sql_query", "execute_sql", "generate_response"},
	}}
	transcripts := &memoryTranscripts{}
	s := newService(t, runner, transcripts, time.Second)

	res := s.Answer(context.Background(), model.ChatRequest{
		RequestID: "req-42",
		Message:   "How many leave days do I have?",
		UserEmail: "jane@acme.io",
	})

	assert.Equal(t, "You have 12 leave days left.", res.Response)
	require.Equal(t, 1, runner.callCount())
	assert.Equal(t, "req-42", runner.calls[0].RequestID)

	history, err := s.History(context.Background(), "jane@acme.io")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "How many leave days do I have?", history[0].Content)
	assert.Equal(t, "You have 12 leave days left.", history[1].Content)

	require.NoError(t, s.ClearHistory(context.Background(), "jane@acme.io"))
	history, err = s.History(context.Background(), "jane@acme.io")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnswerMapsWorkflowErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("graph exploded")}
	s := newService(t, runner, nil, time.Second)

	res := s.Answer(context.Background(), model.ChatRequest{Message: "hi", UserEmail: "jane@acme.io"})

	assert.Equal(t, InternalErrorText, res.Response)
}

func TestAnswerAppliesTimeout(t *testing.T) {
	runner := &fakeRunner{wait: true}
	s := newService(t, runner, nil, 20*time.Millisecond)

	start := time.Now()
	res := s.Answer(context.Background(), model.ChatRequest{Message: "hi", UserEmail: "jane@acme.io"})

	assert.Equal(t, InternalErrorText, res.Response)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHistoryWithoutTranscripts(t *testing.T) {
	s := newService(t, &fakeRunner{}, nil, time.Second)

	_, err := s.History(context.Background(), "jane@acme.io")
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
	assert.ErrorIs(t, s.ClearHistory(context.Background(), "jane@acme.io"), ErrTranscriptsDisabled)
}
