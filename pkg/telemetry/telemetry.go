package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/argus-labs/arena/pkg/telemetry/sentry"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Telemetry struct {
	Logger      zerolog.Logger
	Tracer      trace.Tracer
	serviceName string

	shutdown func(context.Context) error
}

// New builds the logger, tracer and crash reporter from the environment, then applies opts.
func New(opts Options) (Telemetry, error) {
	return newTelemetry(nil, opts)
}

func newTelemetry(out io.Writer, opts Options) (Telemetry, error) {
	config, err := loadConfig()
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load telemetry config")
	}

	options := Options{}
	config.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid telemetry options")
	}

	if err := sentry.New(options.SentryOptions); err != nil {
		return Telemetry{}, err
	}

	tracer, shutdown, err := setupTracing(context.Background(), options)
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to setup tracing")
	}

	return Telemetry{
		Logger:      newLogger(out, options),
		Tracer:      tracer,
		serviceName: options.ServiceName,
		shutdown:    shutdown,
	}, nil
}

// Nop returns a Telemetry that discards logs and traces. Used by tests and embedders.
func Nop() Telemetry {
	return Telemetry{
		Logger:      zerolog.Nop(),
		Tracer:      noop.NewTracerProvider().Tracer("nop"),
		serviceName: "nop",
	}
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	sentry.Shutdown(ctx, 2*time.Second)
	if t.shutdown != nil {
		return t.shutdown(ctx)
	}
	return nil
}

// GetLogger returns a component-specific logger.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.Logger.With().Str("component", t.serviceName+"."+component).Logger()
}
