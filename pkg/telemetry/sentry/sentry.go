package sentry

import (
	"context"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Dsn         string
	Environment string
	Tags        map[string]string
}

// New initializes the global hub. An empty DSN leaves reporting disabled.
func New(opt Options) error {
	if opt.Dsn == "" {
		return nil
	}
	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:         opt.Dsn,
		Environment: opt.Environment,
		Tags:        opt.Tags,
	})
	if err != nil {
		return eris.Wrap(err, "failed to initialize sentry")
	}
	return nil
}

// Recover reports a recovered panic value from the match loop and flushes.
func Recover(matchID string, r any) {
	if !enabled() || r == nil {
		return
	}
	sentrygo.WithScope(func(scope *sentrygo.Scope) {
		scope.SetTag("match_id", matchID)
		sentrygo.CurrentHub().Recover(r)
	})
	sentrygo.Flush(5 * time.Second)
}

// CaptureError reports a handled error, tagged with the trace in ctx if any.
func CaptureError(ctx context.Context, matchID string, err error) {
	if !enabled() || err == nil {
		return
	}
	sentrygo.WithScope(func(scope *sentrygo.Scope) {
		scope.SetTag("match_id", matchID)
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			scope.SetTag("trace_id", spanCtx.TraceID().String())
		}
		sentrygo.CaptureException(err)
	})
}

func Shutdown(ctx context.Context, timeout time.Duration) {
	if !enabled() {
		return
	}
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until > 0 && until < timeout {
			timeout = until
		}
	}
	sentrygo.Flush(timeout)
}

func enabled() bool {
	return sentrygo.CurrentHub().Client() != nil
}
