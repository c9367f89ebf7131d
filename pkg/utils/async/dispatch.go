package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a pipeline handler asynchronously. The webhook response
// must not wait for image builds, so each triggered flow runs fire-and-forget
// on a background context that keeps the request's logger.
//
// Errors and panics are logged and reported to Sentry (when initialized);
// they never propagate back to the webhook response.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				sentry.CaptureException(fmt.Errorf("panic in async handler: %v", r))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
			sentry.CaptureException(err)
		}
	}()
}

// newBackgroundContext creates a background context preserving the logger, so
// cancellation of the originating request does not cancel the pipeline.
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
