package nodes

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	"github.com/hr-assistant/server/internal/agent/graph/parsers"
	"github.com/hr-assistant/server/internal/agent/graph/prompts"
	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const defaultFallbackName = "User"

// Stages holds the collaborators shared by the workflow steps. Each step takes
// a state value and returns a new one; oracle and database failures are turned
// into fallback text and never returned as errors.
type Stages struct {
	Oracle   model.Oracle
	DB       model.Database
	Policies *model.PolicyBook

	// FallbackName replaces the name placeholder when the request carries no name.
	FallbackName string
	// ScopeByEmail adds the caller's email filter to generated SQL.
	ScopeByEmail bool
}

// Classify labels the latest message with one of the known intents.
func (s *Stages) Classify(ctx context.Context, in model.ConversationState) model.ConversationState {
	out := in
	out.Intent = model.IntentGeneral
	out.RawIntent = ""

	message := in.LatestMessage()
	if strings.TrimSpace(message) == "" {
		stageLog(ctx, logx.Debug(), NodeClassifyIntent).Msg("empty message; classified as general")
		return out
	}

	prompt, err := prompts.RenderClassify(ctx, message)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeClassifyIntent).Err(err).Msg("failed to render classify prompt")
		return out
	}

	reply, err := s.complete(ctx, prompt)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeClassifyIntent).Err(err).Msg("intent classification failed; defaulting to general")
		return out
	}

	out.Intent, out.RawIntent = parsers.ParseIntent(reply)
	stageLog(ctx, logx.Info(), NodeClassifyIntent).
		Str("intent", out.Intent.String()).
		Str("label", out.RawIntent).
		Msg("intent classified")
	return out
}

// GenerateSQL asks the oracle for a query over the live schema.
func (s *Stages) GenerateSQL(ctx context.Context, in model.ConversationState) model.ConversationState {
	out := in
	out.PendingQuery = ""
	out.AnswerText = ""

	cols, err := s.DB.Schema(ctx)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeGenerateSQL).Err(err).Msg("schema introspection failed")
		cols = nil
	}
	if len(cols) == 0 {
		out.AnswerText = SchemaUnavailableText
		return out
	}

	prompt, err := prompts.RenderSQL(ctx, prompts.SQLRequest{
		Message:   in.LatestMessage(),
		UserEmail: in.UserEmail,
		Schema:    cols,
		Scoped:    s.ScopeByEmail,
	})
	if err != nil {
		stageLog(ctx, logx.Error(), NodeGenerateSQL).Err(err).Msg("failed to render sql prompt")
		out.AnswerText = SQLGenerationFailed
		return out
	}

	reply, err := s.complete(ctx, prompt)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeGenerateSQL).Err(err).Msg("sql generation failed")
		out.AnswerText = SQLGenerationFailed
		return out
	}

	out.PendingQuery = parsers.StripSQLFences(reply)
	if out.PendingQuery == "" {
		stageLog(ctx, logx.Warn(), NodeGenerateSQL).Msg("oracle returned no sql")
		return out
	}
	stageLog(ctx, logx.Debug(), NodeGenerateSQL).Str("sql", out.PendingQuery).Msg("sql generated")
	return out
}

// ExecuteSQL runs the pending query and formats its rows.
func (s *Stages) ExecuteSQL(ctx context.Context, in model.ConversationState) model.ConversationState {
	out := in
	if in.PendingQuery == "" {
		if in.AnswerText == "" {
			out.AnswerText = NoSQLQueryText
		}
		return out
	}

	rs, err := s.DB.Query(ctx, in.PendingQuery)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeExecuteSQL).Err(err).Str("sql", in.PendingQuery).Msg("database query failed")
		out.AnswerText = DatabaseQueryFailed
		return out
	}

	out.AnswerText = FormatResult(rs)
	stageLog(ctx, logx.Debug(), NodeExecuteSQL).Int("rows", len(rs.Rows)).Msg("sql executed")
	return out
}

// GetPolicy answers with the first policy whose key the message mentions.
func (s *Stages) GetPolicy(ctx context.Context, in model.ConversationState) model.ConversationState {
	out := in
	entry, ok := s.Policies.Lookup(in.LatestMessage())
	if !ok {
		stageLog(ctx, logx.Debug(), NodeGetPolicy).Msg("no policy matched")
		out.AnswerText = model.PolicyNotFound
		return out
	}
	stageLog(ctx, logx.Debug(), NodeGetPolicy).Str("policy", entry.Key).Msg("policy matched")
	out.AnswerText = entry.Text
	return out
}

// GenerateResponse writes the final HR assistant reply into AnswerText.
func (s *Stages) GenerateResponse(ctx context.Context, in model.ConversationState) model.ConversationState {
	out := in
	prompt, err := prompts.RenderResponse(ctx, in.LatestMessage(), in.AnswerText, in.Intent.UsesAnswer())
	if err != nil {
		stageLog(ctx, logx.Error(), NodeGenerateResponse).Err(err).Msg("failed to render response prompt")
		out.AnswerText = ResponseFailedText
		return out
	}

	reply, err := s.complete(ctx, prompt)
	if err != nil {
		stageLog(ctx, logx.Error(), NodeGenerateResponse).Err(err).Msg("response generation failed")
		out.AnswerText = ResponseFailedText
		return out
	}

	out.AnswerText = strings.ReplaceAll(reply, nameSlot, s.displayName(in.UserName))
	return out
}

func (s *Stages) displayName(userName string) string {
	if name := strings.TrimSpace(userName); name != "" {
		return name
	}
	if s.FallbackName != "" {
		return s.FallbackName
	}
	return defaultFallbackName
}

// complete calls the oracle and counts the call on the run state when present.
func (s *Stages) complete(ctx context.Context, prompt string) (string, error) {
	_ = compose.ProcessState(ctx, func(_ context.Context, st *model.RunState) error {
		st.OracleCalls++
		return nil
	})
	reply, err := s.Oracle.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// stageLog decorates ev with the node and, inside a workflow run, the request id.
func stageLog(ctx context.Context, ev *zerolog.Event, node string) *zerolog.Event {
	ev = ev.Str("node", node)
	_ = compose.ProcessState(ctx, func(_ context.Context, st *model.RunState) error {
		if st.RequestID != "" {
			ev = ev.Str("request_id", st.RequestID)
		}
		return nil
	})
	return ev
}
