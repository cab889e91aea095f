package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/hr-assistant/server/internal/agent/model"
)

// TranscriptManager records finished exchanges for audit. The workflow never
// reads transcripts back, so every call here is off the answer path.
type TranscriptManager struct {
	repo       model.TranscriptRepository
	maxHistory int
}

func NewTranscriptManager(repo model.TranscriptRepository, maxHistory int) *TranscriptManager {
	return &TranscriptManager{
		repo:       repo,
		maxHistory: maxHistory,
	}
}

// Record appends the user's question and the assistant's reply.
func (tm *TranscriptManager) Record(ctx context.Context, userEmail, question, answer string) error {
	if err := tm.repo.AddMessage(ctx, userEmail, schema.UserMessage(question)); err != nil {
		return err
	}
	reply := schema.AssistantMessage(answer, nil)
	return tm.repo.AddMessage(ctx, userEmail, reply)
}

// History returns the most recent messages of a user's transcript.
func (tm *TranscriptManager) History(ctx context.Context, userEmail string) ([]*schema.Message, error) {
	transcript, err := tm.repo.LoadHistory(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	return trimTail(transcript.Messages, tm.maxHistory), nil
}

// Clear removes a user's transcript.
func (tm *TranscriptManager) Clear(ctx context.Context, userEmail string) error {
	return tm.repo.ClearHistory(ctx, userEmail)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
