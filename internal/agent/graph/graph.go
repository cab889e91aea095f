package graph

import (
	"context"
	"fmt"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/hr-assistant/server/internal/agent/graph/nodes"
	"github.com/hr-assistant/server/internal/agent/graph/observers"
	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

const (
	graphName          = "hr_assistant"
	defaultMaxRunSteps = 10
)

// Runner executes the compiled workflow for one chat request.
type Runner interface {
	Invoke(ctx context.Context, in model.ChatRequest) (model.ChatResult, error)
}

// Config holds the collaborators and knobs the workflow is built from.
type Config struct {
	Oracle   model.Oracle
	Database model.Database
	Policies *model.PolicyBook

	FallbackName string
	// ScopeByEmail adds the caller's email filter to generated SQL unless the
	// message asks for all employees.
	ScopeByEmail bool
	MaxRunSteps  int
}

// GraphBuilder handles the construction of the intent routing graph
type GraphBuilder struct {
	stages *nodes.Stages
	graph  *compose.Graph[model.ConversationState, model.ConversationState]
}

type requestIDKey struct{}

type graphRunner struct {
	runnable compose.Runnable[model.ConversationState, model.ConversationState]
	handler  einocb.Handler
}

func (r *graphRunner) Invoke(ctx context.Context, in model.ChatRequest) (model.ChatResult, error) {
	ctx = context.WithValue(ctx, requestIDKey{}, in.RequestID)

	out, err := r.runnable.Invoke(ctx, model.NewConversationState(in), compose.WithCallbacks(r.handler))
	if err != nil {
		return model.ChatResult{}, err
	}
	return model.ChatResult{
		Response: out.AnswerText,
		Intent:   out.Intent,
		Route:    out.Route,
	}, nil
}

// BuildWorkflow builds and compiles the graph and returns a Runner.
func BuildWorkflow(ctx context.Context, cfg Config) (Runner, error) {
	runnable, err := BuildGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Workflow graph built successfully")
	return &graphRunner{runnable: runnable, handler: observers.NewAllCallbacks()}, nil
}

// BuildGraph constructs and returns the compiled workflow graph
func BuildGraph(ctx context.Context, cfg Config) (compose.Runnable[model.ConversationState, model.ConversationState], error) {
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database is nil")
	}
	policies := cfg.Policies
	if policies == nil {
		policies = model.NewPolicyBook()
	}

	builder := &GraphBuilder{
		stages: &nodes.Stages{
			Oracle:       cfg.Oracle,
			DB:           cfg.Database,
			Policies:     policies,
			FallbackName: cfg.FallbackName,
			ScopeByEmail: cfg.ScopeByEmail,
		},
		graph: compose.NewGraph[model.ConversationState, model.ConversationState](
			compose.WithGenLocalState(func(ctx context.Context) *model.RunState {
				id, _ := ctx.Value(requestIDKey{}).(string)
				return &model.RunState{RequestID: id}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx, cfg.MaxRunSteps)
}

// addNodes adds the five stages, each recording itself on the run state
func (b *GraphBuilder) addNodes() error {
	stages := []struct {
		key  string
		node *compose.Lambda
		opts []compose.GraphAddNodeOpt
	}{
		{key: nodes.NodeClassifyIntent, node: nodes.NewClassifyIntentNode(b.stages)},
		{key: nodes.NodeGenerateSQL, node: nodes.NewGenerateSQLNode(b.stages)},
		{key: nodes.NodeExecuteSQL, node: nodes.NewExecuteSQLNode(b.stages)},
		{key: nodes.NodeGetPolicy, node: nodes.NewGetPolicyNode(b.stages)},
		{
			key:  nodes.NodeGenerateResponse,
			node: nodes.NewGenerateResponseNode(b.stages),
			opts: []compose.GraphAddNodeOpt{compose.WithStatePostHandler(nodes.NewResponsePostHandler())},
		},
	}

	for _, s := range stages {
		opts := append([]compose.GraphAddNodeOpt{
			compose.WithNodeName(s.key),
			compose.WithStatePreHandler(nodes.NewRoutePreHandler(s.key)),
		}, s.opts...)
		if err := b.graph.AddLambdaNode(s.key, s.node, opts...); err != nil {
			logx.Error().Err(err).Str("node", s.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.key, err)
		}
	}
	return nil
}

// addEdges creates the fixed connections between stages
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeClassifyIntent},
		{nodes.NodeGenerateSQL, nodes.NodeExecuteSQL},
		{nodes.NodeExecuteSQL, nodes.NodeGenerateResponse},
		{nodes.NodeGetPolicy, nodes.NodeGenerateResponse},
		{nodes.NodeGenerateResponse, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates the intent routing branch after classification
func (b *GraphBuilder) addBranches() error {
	intentBranch := compose.NewGraphBranch(nodes.NewIntentCondition(), nodes.IntentBranchTargets())
	if err := b.graph.AddBranch(nodes.NodeClassifyIntent, intentBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent branch")
		return fmt.Errorf("error adding intent branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context, maxSteps int) (compose.Runnable[model.ConversationState, model.ConversationState], error) {
	if maxSteps <= 0 {
		maxSteps = defaultMaxRunSteps
	}

	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName(graphName),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
