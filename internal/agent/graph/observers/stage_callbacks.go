package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/hr-assistant/server/internal/agent/model"
	logx "github.com/hr-assistant/server/pkg/logger"
)

type stageStartKey struct{}

// newStageHandler logs every workflow stage with its duration and resulting intent.
func newStageHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			logx.Debug().Str("node", info.Name).Msg("stage start")
			return context.WithValue(ctx, stageStartKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			ev := logx.Debug().Str("node", info.Name)
			if started, ok := ctx.Value(stageStartKey{}).(time.Time); ok {
				ev = ev.Dur("elapsed", time.Since(started))
			}
			if st, ok := output.(model.ConversationState); ok {
				ev = ev.Str("intent", st.Intent.String())
			}
			ev.Msg("stage end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("node", info.Name).Msg("stage error")
			return ctx
		}).
		Build()
}
