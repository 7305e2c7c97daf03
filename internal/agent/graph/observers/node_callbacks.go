package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	logx "github.com/catalog-assistant/server/pkg/logger"
)

type nodeStartKey struct{}

// newNodeHandler logs how long each pipeline node took.
func newNodeHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			if !isNode(info) {
				return ctx
			}
			return context.WithValue(ctx, nodeStartKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackOutput) context.Context {
			if !isNode(info) {
				return ctx
			}
			ev := logx.Debug().Str("node", info.Name)
			if start, ok := ctx.Value(nodeStartKey{}).(time.Time); ok {
				ev = ev.Dur("elapsed", time.Since(start))
			}
			ev.Msg("Node done")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if isNode(info) {
				logx.Error().Err(err).Str("node", info.Name).Msg("Node failed")
			}
			return ctx
		}).
		Build()
}

func isNode(info *einocb.RunInfo) bool {
	return info != nil && info.Component == compose.ComponentOfLambda
}
