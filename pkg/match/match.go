// Package match runs one gamemode at a fixed tick rate. Player events arrive through a
// bounded inbox from any goroutine and are applied at the start of the next tick; the
// render state and player roster are published for concurrent readers.
package match

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/gamemode/systems"
	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/physics"
	"github.com/argus-labs/arena/pkg/statsd"
	"github.com/argus-labs/arena/pkg/telemetry/sentry"
)

// State is the render snapshot published at the end of every tick.
type State struct {
	MatchID    string         `json:"matchId"`
	Tick       uint64         `json:"tick"`
	Gamemode   string         `json:"gamemode"`
	Background string         `json:"background,omitempty"`
	Entities   []physics.View `json:"entities"`
	Scores     map[string]int `json:"scores,omitempty"`
	Goals      *[2]int        `json:"goals,omitempty"`
}

type Match struct {
	id      string
	name    string
	dt      float64
	options Options

	world   *physics.World
	handler *gamemode.Handler
	kill    *systems.Kill
	inbox   *inbox
	roster  *roster
	tick    uint64

	mu    sync.RWMutex
	state State

	logger  zerolog.Logger
	tracer  trace.Tracer
	metrics *statsd.Recorder
}

type goalScorer interface {
	Score() (int, int)
}

type discardSink struct{}

func (discardSink) Offer(leaderboard.Record) bool { return true }

// New builds a match from env config overridden by opts and starts its gamemode.
func New(opts Options) (*Match, error) {
	envs, err := loadMatchConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load match config")
	}
	options := newDefaultOptions()
	options.apply(envs.toOptions())
	options.apply(opts)
	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid match options")
	}
	return newMatch(options)
}

func newMatch(options Options) (*Match, error) {
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = *options.Logger
	}
	if options.Sink == nil {
		options.Sink = discardSink{}
	}
	policy, err := ParseGroupPolicy(options.CollisionGroupZero)
	if err != nil {
		return nil, err
	}

	s, err := options.Catalog.build(options.Gamemode, options.Sink)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger = logger.With().Str("match", id).Logger()
	world := physics.NewWorld(policy, logger)
	handler := gamemode.NewHandler(world, s.gamemode, gamemode.HandlerOptions{
		Logger:          logger,
		Metrics:         options.Metrics,
		BackgroundColor: s.config.Options.BackgroundColor,
	})
	for _, system := range s.systems {
		if err := handler.AddSystem(system); err != nil {
			return nil, eris.Wrapf(err, "failed to add system %s", system.Name())
		}
	}
	if err := handler.Start(); err != nil {
		return nil, eris.Wrap(err, "failed to start gamemode")
	}

	m := &Match{
		id:      id,
		name:    options.Gamemode,
		dt:      1 / float64(options.TickRate),
		options: options,
		world:   world,
		handler: handler,
		kill:    s.kill,
		inbox:   newInbox(options.InboxCapacity),
		roster:  newRoster(),
		logger:  logger,
		tracer:  options.Tracer,
		metrics: options.Metrics,
	}
	m.publish()

	logger.Info().
		Str("gamemode", options.Gamemode).
		Strs("systems", handler.Systems()).
		Int("tick_rate", options.TickRate).
		Msg("match created")
	return m, nil
}

// Enqueue queues ev for the next tick. Safe for concurrent use.
func (m *Match) Enqueue(ev Event) error {
	if err := m.inbox.push(ev); err != nil {
		m.metrics.Count("inbox.dropped", 1, "kind:"+ev.Kind.String())
		return err
	}
	return nil
}

func (m *Match) Join(id, name string) error {
	return m.Enqueue(Event{Kind: EventJoin, Player: id, Name: name})
}

func (m *Match) Leave(id string) error {
	return m.Enqueue(Event{Kind: EventLeave, Player: id})
}

func (m *Match) Input(id string, control physics.ControlState) error {
	return m.Enqueue(Event{Kind: EventInput, Player: id, Control: control})
}

func (m *Match) Press(id, button string) error {
	return m.Enqueue(Event{Kind: EventButton, Player: id, Button: button})
}

// Run ticks until ctx is done, then cleans up the gamemode. A panic inside a tick is
// reported and re-raised.
func (m *Match) Run(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			sentry.Recover(m.id, r)
			panic(r)
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(m.options.TickRate))
	defer ticker.Stop()

	m.logger.Info().Msg("match running")
	for {
		select {
		case <-ctx.Done():
			m.handler.CleanUp()
			m.logger.Info().Uint64("tick", m.tick).Msg("match stopped")
			return nil
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs one full update: events, pre-update, physics, post-update, publish.
// Only one goroutine may call Tick.
func (m *Match) Tick(ctx context.Context) {
	ctx, span := m.tracer.Start(ctx, "match.tick", trace.WithAttributes(
		attribute.Int64("tick", int64(m.tick)),
		attribute.String("match", m.id),
	))
	defer span.End()
	tickStart := time.Now()

	m.processEvents(ctx, span)

	start := time.Now()
	m.handler.PreUpdate(m.dt)
	m.metrics.EmitTickStat(start, statsd.StagePreUpdate)

	start = time.Now()
	contacts := m.world.Step(m.dt)
	m.world.Sync(m.dt)
	m.metrics.EmitTickStat(start, statsd.StagePhysics)

	start = time.Now()
	m.handler.PostUpdate(m.dt)
	m.metrics.EmitTickStat(start, statsd.StagePostUpdate)

	m.tick++
	m.publish()

	span.SetAttributes(attribute.Int("contacts", contacts))
	m.metrics.Gauge("entities", float64(m.world.Registry.Len()))
	m.metrics.EmitTickStat(tickStart, statsd.StageTick)
}

func (m *Match) processEvents(ctx context.Context, span trace.Span) {
	for _, ev := range m.inbox.drain() {
		if err := m.apply(ev); err != nil {
			m.logger.Warn().Err(err).Str("kind", ev.Kind.String()).Str("player", ev.Player).Msg("event rejected")
			span.RecordError(err)
			span.SetStatus(codes.Error, "event rejected")
			sentry.CaptureError(ctx, m.id, err)
		}
	}
}

func (m *Match) apply(ev Event) error {
	switch ev.Kind {
	case EventJoin:
		if m.roster.has(ev.Player) {
			return eris.Errorf("player %s already joined", ev.Player)
		}
		info := gamemode.PlayerInfo{ID: ev.Player, Name: ev.Name}
		e, err := m.handler.OnPlayerJoin(info)
		if err != nil {
			return err
		}
		m.handler.OnPlayerCreated(info, e)
		m.roster.join(ev.Player, ev.Name, e.ID)
		m.metrics.Count("players.joined", 1)

	case EventLeave:
		if !m.roster.has(ev.Player) {
			return eris.Wrapf(gamemode.ErrUnknownPlayer, "leave from %s", ev.Player)
		}
		m.handler.OnPlayerLeave(ev.Player)
		m.roster.leave(ev.Player)
		m.metrics.Count("players.left", 1)

	case EventInput:
		e, err := m.handler.PlayerEntity(ev.Player)
		if err != nil {
			return err
		}
		if c, ok := e.Controller().(*physics.InputController); ok {
			c.SetState(ev.Control)
		}
		if ev.Control.Sensor != nil {
			m.roster.sense(ev.Player, ev.Control.Sensor)
		}

	case EventButton:
		if !m.roster.has(ev.Player) {
			return eris.Wrapf(gamemode.ErrUnknownPlayer, "button from %s", ev.Player)
		}
		m.handler.OnButtonPressed(ev.Player, ev.Button)

	default:
		return eris.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

func (m *Match) publish() {
	state := State{
		MatchID:    m.id,
		Tick:       m.tick,
		Gamemode:   m.name,
		Background: m.handler.BackgroundColor(),
		Entities:   m.world.Views(),
	}
	if m.kill != nil {
		state.Scores = m.kill.Scores()
	}
	if g, ok := m.handler.Gamemode().(goalScorer); ok {
		one, two := g.Score()
		state.Goals = &[2]int{one, two}
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// State returns the snapshot of the last completed tick.
func (m *Match) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Players returns the connected players sorted by id.
func (m *Match) Players() []Player {
	return m.roster.snapshot()
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Gamemode() string {
	return m.name
}

func (m *Match) TickRate() int {
	return m.options.TickRate
}

// Handler exposes the gamemode handler. Only use it from the tick goroutine.
func (m *Match) Handler() *gamemode.Handler {
	return m.handler
}

// Pending is the number of queued events.
func (m *Match) Pending() int {
	return m.inbox.len()
}
