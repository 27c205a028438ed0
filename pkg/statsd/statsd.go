// Package statsd wraps the datadog client so the rest of the module only sees tick and event metrics.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Tick stages.
const (
	StagePreUpdate  = "pre_update"
	StagePhysics    = "physics"
	StagePostUpdate = "post_update"
	StageTick       = "tick"
)

type Recorder struct {
	client ddstatsd.ClientInterface
	logger zerolog.Logger
}

// NewNop returns a recorder backed by the datadog no-op client.
func NewNop() *Recorder {
	return &Recorder{client: &ddstatsd.NoOpClient{}, logger: zerolog.Nop()}
}

// New dials address. Every metric is prefixed with "arena." and carries tags.
func New(address string, tags []string, logger zerolog.Logger) (*Recorder, error) {
	if address == "" {
		return nil, eris.New("statsd address must not be empty")
	}
	opts := []ddstatsd.Option{ddstatsd.WithNamespace("arena.")}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}
	client, err := ddstatsd.New(address, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create statsd client")
	}
	return &Recorder{client: client, logger: logger}, nil
}

// WithClient wraps an existing client.
func WithClient(client ddstatsd.ClientInterface, logger zerolog.Logger) *Recorder {
	return &Recorder{client: client, logger: logger}
}

// EmitTickStat records the time elapsed since start for one tick stage.
func (r *Recorder) EmitTickStat(start time.Time, stage string) {
	if err := r.client.Timing("tick", time.Since(start), []string{"stage:" + stage}, 1); err != nil {
		r.logger.Warn().Err(err).Str("stage", stage).Msg("failed to emit tick stat")
	}
}

// Count records a match event such as a join, kill or goal.
func (r *Recorder) Count(name string, value int64, tags ...string) {
	if err := r.client.Count(name, value, tags, 1); err != nil {
		r.logger.Warn().Err(err).Str("metric", name).Msg("failed to emit count")
	}
}

// Gauge records a point-in-time value such as the active entity count.
func (r *Recorder) Gauge(name string, value float64, tags ...string) {
	if err := r.client.Gauge(name, value, tags, 1); err != nil {
		r.logger.Warn().Err(err).Str("metric", name).Msg("failed to emit gauge")
	}
}

func (r *Recorder) Close() error {
	return r.client.Close()
}
