package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ConversationState is the record threaded through every workflow stage.
// Stages never mutate their input; each returns a copy with its own fields set.
type ConversationState struct {
	Messages  []*schema.Message
	UserEmail string
	UserName  string

	Intent    Intent
	RawIntent string // label as returned by the classifier, after normalization

	PendingQuery string // SQL handed from the synthesizer to the executor
	AnswerText   string // intermediate answer, then the final reply

	Route []string // stages visited, in order

	// Reserved; not read by the workflow.
	RequestedField string
	UserData       map[string]any
}

// NewConversationState builds the initial state for a single chat request.
func NewConversationState(in ChatRequest) ConversationState {
	return ConversationState{
		Messages:  []*schema.Message{schema.UserMessage(in.Message)},
		UserEmail: in.UserEmail,
		UserName:  in.UserName,
		Intent:    IntentGeneral,
	}
}

// LatestMessage returns the content of the most recent user turn, or "".
func (s ConversationState) LatestMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m == nil || m.Role != schema.User {
			continue
		}
		return m.Content
	}
	return ""
}

// RunState is per-invocation bookkeeping held as eino graph local state.
// It is only touched inside state handlers or compose.ProcessState.
type RunState struct {
	RequestID   string
	Visited     []string
	OracleCalls int
}

// ChatRequest is the inbound request for one chat turn.
type ChatRequest struct {
	RequestID string `json:"-"`
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name,omitempty"`
}

// Valid reports whether the request carries both a message and an email.
func (r ChatRequest) Valid() bool {
	return strings.TrimSpace(r.Message) != "" && strings.TrimSpace(r.UserEmail) != ""
}

// ChatResult is what the workflow hands back to the caller.
type ChatResult struct {
	Response string   `json:"response"`
	Intent   Intent   `json:"-"`
	Route    []string `json:"-"`
}
