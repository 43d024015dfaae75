package agent

import (
	"context"

	"github.com/spetersoncode/steward/event"
)

// Run starts a turn that runs handler on ac. The turn does not begin until
// the driver first calls Next, and it advances only while the driver is
// waiting for the next event.
//
// ac must not be used by any other goroutine until the stream is done.
func Run(ctx context.Context, ac *Context, handler Handler) *event.Stream {
	return event.Start(ctx, func(ctx context.Context, yield event.Yield) error {
		ac.yield = yield
		defer func() { ac.yield = nil }()
		return handler(ctx, ac)
	})
}

// RunAgent starts a turn running a registered agent.
func RunAgent(ctx context.Context, ac *Context, a *Agent) *event.Stream {
	ac.logger.Info("running agent", "agent", a.Name)
	return Run(ctx, ac, a.Handler)
}
