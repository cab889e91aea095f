package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

type stageFunc func(context.Context, model.ConversationState) model.ConversationState

func lambda(fn stageFunc) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.ConversationState) (model.ConversationState, error) {
		return fn(ctx, in), nil
	})
}

// NewClassifyIntentNode creates the classify_intent node
func NewClassifyIntentNode(s *Stages) *compose.Lambda {
	return lambda(s.Classify)
}

// NewGenerateSQLNode creates the generate_sql_query node
func NewGenerateSQLNode(s *Stages) *compose.Lambda {
	return lambda(s.GenerateSQL)
}

// NewExecuteSQLNode creates the execute_sql node
func NewExecuteSQLNode(s *Stages) *compose.Lambda {
	return lambda(s.ExecuteSQL)
}

// NewGetPolicyNode creates the get_policy node
func NewGetPolicyNode(s *Stages) *compose.Lambda {
	return lambda(s.GetPolicy)
}

// NewGenerateResponseNode creates the generate_response node
func NewGenerateResponseNode(s *Stages) *compose.Lambda {
	return lambda(s.GenerateResponse)
}

// NewRoutePreHandler records the stage on the run state before it executes.
func NewRoutePreHandler(stage string) func(context.Context, model.ConversationState, *model.RunState) (model.ConversationState, error) {
	return func(ctx context.Context, in model.ConversationState, state *model.RunState) (model.ConversationState, error) {
		state.Visited = append(state.Visited, stage)
		logx.Debug().
			Str("request_id", state.RequestID).
			Str("node", stage).
			Str("intent", in.Intent.String()).
			Msg("entering stage")
		return in, nil
	}
}

// NewResponsePostHandler copies the visited stages onto the final state.
func NewResponsePostHandler() func(context.Context, model.ConversationState, *model.RunState) (model.ConversationState, error) {
	return func(ctx context.Context, out model.ConversationState, state *model.RunState) (model.ConversationState, error) {
		out.Route = append([]string(nil), state.Visited...)
		logx.Debug().
			Str("request_id", state.RequestID).
			Strs("route", out.Route).
			Int("oracle_calls", state.OracleCalls).
			Msg("workflow finished")
		return out, nil
	}
}

// NewIntentCondition picks the stage that follows classification.
func NewIntentCondition() func(context.Context, model.ConversationState) (string, error) {
	return func(ctx context.Context, in model.ConversationState) (string, error) {
		route := in.Intent.Route()
		switch route {
		case model.RouteSQL:
			return NodeGenerateSQL, nil
		case model.RoutePolicy:
			return NodeGetPolicy, nil
		case model.RouteGeneral:
			return NodeGenerateResponse, nil
		default:
			return "", fmt.Errorf("no stage for route %s", route)
		}
	}
}

// IntentBranchTargets lists every stage the intent condition can return.
func IntentBranchTargets() map[string]bool {
	return map[string]bool{
		NodeGenerateSQL:      true,
		NodeGetPolicy:        true,
		NodeGenerateResponse: true,
	}
}
