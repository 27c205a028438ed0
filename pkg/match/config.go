package match

import (
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/argus-labs/arena/pkg/gamemode/systems"
	"github.com/argus-labs/arena/pkg/physics"
	"github.com/argus-labs/arena/pkg/statsd"
)

// matchConfig is read from the environment.
type matchConfig struct {
	// Gamemode is a catalog entry name.
	Gamemode string `env:"ARENA_GAMEMODE" envDefault:"knockoff"`

	// TickRate is the number of simulation ticks per second.
	TickRate int `env:"ARENA_TICK_RATE" envDefault:"60"`

	// InboxCapacity bounds the events buffered between two ticks.
	InboxCapacity int `env:"ARENA_INBOX_CAPACITY" envDefault:"1024"`

	// CollisionGroupZero is "all" (group 0 collides with every group) or "none".
	CollisionGroupZero string `env:"ARENA_COLLISION_GROUP_ZERO" envDefault:"all"`
}

func loadMatchConfig() (matchConfig, error) {
	cfg := matchConfig{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse match config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate match config")
	}

	return cfg, nil
}

func (cfg *matchConfig) validate() error {
	if cfg.Gamemode == "" {
		return eris.New("gamemode cannot be empty")
	}
	if cfg.TickRate <= 0 || cfg.TickRate > 240 {
		return eris.Errorf("tick rate must be between 1 and 240, got %d", cfg.TickRate)
	}
	if cfg.InboxCapacity <= 0 {
		return eris.New("inbox capacity must be positive")
	}
	if _, err := ParseGroupPolicy(cfg.CollisionGroupZero); err != nil {
		return err
	}
	return nil
}

func (cfg *matchConfig) toOptions() Options {
	return Options{
		Gamemode:           cfg.Gamemode,
		TickRate:           cfg.TickRate,
		InboxCapacity:      cfg.InboxCapacity,
		CollisionGroupZero: cfg.CollisionGroupZero,
	}
}

// ParseGroupPolicy maps "all" and "none" to the collision group 0 policies.
func ParseGroupPolicy(s string) (physics.GroupPolicy, error) {
	switch s {
	case "all":
		return physics.GroupZeroCollidesAll, nil
	case "none":
		return physics.GroupZeroNeverCollides, nil
	default:
		return 0, eris.Errorf("invalid collision group zero policy %q (must be 'all' or 'none')", s)
	}
}

type Options struct {
	Gamemode      string
	TickRate      int
	InboxCapacity int
	// CollisionGroupZero is "all" or "none", see ParseGroupPolicy.
	CollisionGroupZero string

	Catalog *Catalog
	Sink    systems.Sink
	Logger  *zerolog.Logger
	Tracer  trace.Tracer
	Metrics *statsd.Recorder
}

func newDefaultOptions() Options {
	return Options{
		Gamemode:           "knockoff",
		TickRate:           60,
		InboxCapacity:      1024,
		CollisionGroupZero: "all",
		Catalog:            DefaultCatalog(),
		Tracer:             noop.NewTracerProvider().Tracer("arena"),
		Metrics:            statsd.NewNop(),
	}
}

// apply overrides the receiver with the non-zero fields of newOpt.
func (opt *Options) apply(newOpt Options) {
	if newOpt.Gamemode != "" {
		opt.Gamemode = newOpt.Gamemode
	}
	if newOpt.TickRate != 0 {
		opt.TickRate = newOpt.TickRate
	}
	if newOpt.InboxCapacity != 0 {
		opt.InboxCapacity = newOpt.InboxCapacity
	}
	if newOpt.CollisionGroupZero != "" {
		opt.CollisionGroupZero = newOpt.CollisionGroupZero
	}
	if newOpt.Catalog != nil {
		opt.Catalog = newOpt.Catalog
	}
	if newOpt.Sink != nil {
		opt.Sink = newOpt.Sink
	}
	if newOpt.Logger != nil {
		opt.Logger = newOpt.Logger
	}
	if newOpt.Tracer != nil {
		opt.Tracer = newOpt.Tracer
	}
	if newOpt.Metrics != nil {
		opt.Metrics = newOpt.Metrics
	}
}

func (opt *Options) validate() error {
	cfg := matchConfig{
		Gamemode:           opt.Gamemode,
		TickRate:           opt.TickRate,
		InboxCapacity:      opt.InboxCapacity,
		CollisionGroupZero: opt.CollisionGroupZero,
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if opt.Catalog == nil {
		return eris.New("catalog cannot be nil")
	}
	return nil
}
