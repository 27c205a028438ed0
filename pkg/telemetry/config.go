package telemetry

import (
	"strings"

	"github.com/argus-labs/arena/pkg/telemetry/sentry"
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config is read from the ARENA_ environment.
type Config struct {
	// TraceEnabled turns on the OTLP exporter. Disabled tracing uses a noop tracer.
	TraceEnabled bool `env:"ARENA_TRACE_ENABLED" envDefault:"false"`

	// TraceEndpoint is the OTLP collector endpoint.
	TraceEndpoint string `env:"ARENA_TRACE_ENDPOINT" envDefault:"localhost:4317"`

	// TraceSampleRate is the sampling rate for traces (0.0 to 1.0).
	TraceSampleRate float64 `env:"ARENA_TRACE_SAMPLE_RATE" envDefault:"0.1"`

	// Log level ("debug", "info", "warn", "error").
	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`

	// Log format ("json", "pretty").
	LogFormat string `env:"ARENA_LOG_FORMAT" envDefault:"json"`

	SentryDsn string `env:"ARENA_SENTRY_DSN"`
	SentryENV string `env:"ARENA_SENTRY_ENV" envDefault:"DEV"`
}

func loadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse telemetry config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate telemetry config")
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return eris.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", cfg.LogLevel)
	}
	if ParseLogFormat(cfg.LogFormat) == LogFormatUndefined {
		return eris.Errorf("invalid log format: %s (must be 'json' or 'pretty')", cfg.LogFormat)
	}
	if cfg.TraceEnabled {
		if cfg.TraceEndpoint == "" {
			return eris.New("trace endpoint cannot be empty when tracing is enabled")
		}
		if cfg.TraceSampleRate < 0.0 || cfg.TraceSampleRate > 1.0 {
			return eris.New("trace sample rate must be between 0.0 and 1.0")
		}
	}
	return nil
}

func (cfg *Config) applyToOptions(opt *Options) {
	opt.TraceEnabled = cfg.TraceEnabled
	opt.Endpoint = cfg.TraceEndpoint
	opt.LogLevel = cfg.LogLevel
	opt.LogFormat = ParseLogFormat(cfg.LogFormat)
	opt.TraceSampleRate = cfg.TraceSampleRate
	opt.SentryOptions = sentry.Options{
		Dsn:         cfg.SentryDsn,
		Environment: cfg.SentryENV,
	}
}

type Options struct {
	ServiceName     string
	TraceEnabled    bool
	Endpoint        string
	LogLevel        string
	LogFormat       LogFormat
	TraceSampleRate float64

	SentryOptions sentry.Options
}

// apply overrides the receiver with the non-zero fields of newOpt.
func (opt *Options) apply(newOpt Options) {
	if newOpt.ServiceName != "" {
		opt.ServiceName = newOpt.ServiceName
	}
	if newOpt.Endpoint != "" {
		opt.Endpoint = newOpt.Endpoint
	}
	if newOpt.LogLevel != "" {
		opt.LogLevel = newOpt.LogLevel
	}
	if newOpt.LogFormat != LogFormatUndefined {
		opt.LogFormat = newOpt.LogFormat
	}
	if newOpt.TraceSampleRate != 0.0 {
		opt.TraceSampleRate = newOpt.TraceSampleRate
	}
	if newOpt.SentryOptions.Tags != nil {
		opt.SentryOptions.Tags = newOpt.SentryOptions.Tags
	}
}

func (opt *Options) validate() error {
	if opt.ServiceName == "" {
		return eris.New("service name cannot be empty")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(opt.LogLevel)); err != nil {
		return eris.Errorf("invalid log level: %s", opt.LogLevel)
	}
	if opt.LogFormat == LogFormatUndefined {
		return eris.New("log format must be specified")
	}
	if opt.TraceSampleRate < 0.0 || opt.TraceSampleRate > 1.0 {
		return eris.New("trace sample rate must be between 0.0 and 1.0")
	}
	return nil
}

type LogFormat uint8

const (
	LogFormatUndefined LogFormat = iota
	LogFormatJSON
	LogFormatPretty
)

func (f LogFormat) String() string {
	switch f {
	case LogFormatJSON:
		return "json"
	case LogFormatPretty:
		return "pretty"
	case LogFormatUndefined:
		return "undefined"
	default:
		return "undefined"
	}
}

// ParseLogFormat converts a string to LogFormat, case-insensitively.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "pretty":
		return LogFormatPretty
	default:
		return LogFormatUndefined
	}
}
