// Package gamemode composes a concrete ruleset with optional rule systems. Systems declare
// the lifecycle categories they take part in and talk to each other through named hooks.
package gamemode

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/physics"
	"github.com/argus-labs/arena/pkg/respawn"
	"github.com/argus-labs/arena/pkg/statsd"
)

type HandlerOptions struct {
	Logger  zerolog.Logger
	Metrics *statsd.Recorder
	// BackgroundColor is exposed to the render collaborator.
	BackgroundColor string
}

// Handler wraps a Gamemode and dispatches every lifecycle call to its systems first and the
// gamemode's own callback last. It is owned by the tick context.
type Handler struct {
	gamemode Gamemode
	world    *physics.World
	respawns *respawn.Scheduler
	hooks    *hookRegistry
	original overrides

	systems       []System
	preUpdate     []PreUpdater
	postUpdate    []PostUpdater
	join          PlayerJoiner
	joinOwner     string
	playerCreated []PlayerCreatedHandler
	playerLeave   []PlayerLeaveHandler
	button        []ButtonHandler
	started       bool

	players   map[string]*physics.Entity
	abandoned map[physics.EntityID]struct{}

	background string
	logger     zerolog.Logger
	metrics    *statsd.Recorder
}

// NewHandler captures the gamemode overrides and declares the built-in hooks.
func NewHandler(world *physics.World, gm Gamemode, opts HandlerOptions) *Handler {
	h := &Handler{
		gamemode:   gm,
		world:      world,
		hooks:      newHookRegistry(),
		original:   captureOverrides(gm),
		players:    make(map[string]*physics.Entity),
		abandoned:  make(map[physics.EntityID]struct{}),
		background: opts.BackgroundColor,
		logger:     opts.Logger.With().Str("gamemode", gm.Name()).Logger(),
		metrics:    opts.Metrics,
	}
	if h.metrics == nil {
		h.metrics = statsd.NewNop()
	}
	h.respawns = respawn.New(world.Registry, h.respawned, h.logger)
	// a fresh registry cannot already have these
	_ = h.hooks.add(HookDeath)
	_ = h.hooks.add(HookRespawn)
	return h
}

// AddSystem runs the system's Setup and binds it to every category it declares.
func (h *Handler) AddSystem(s System) error {
	if h.started {
		return eris.Wrapf(ErrAlreadyStarted, "add system %s", s.Name())
	}
	if slices.ContainsFunc(h.systems, func(other System) bool { return other.Name() == s.Name() }) {
		return eris.Wrapf(ErrDuplicateSystem, "system %s", s.Name())
	}

	caps, err := s.Setup(h)
	if err != nil {
		return eris.Wrapf(err, "setup of system %s failed", s.Name())
	}
	if caps == 0 {
		return eris.Wrapf(ErrEmptyCapabilities, "system %s", s.Name())
	}
	if err := h.bind(s, caps); err != nil {
		return err
	}

	h.systems = append(h.systems, s)
	h.logger.Debug().Str("system", s.Name()).Stringer("capabilities", caps).Msg("system added")
	return nil
}

func (h *Handler) bind(s System, caps Capability) error {
	missing := func(c Capability) error {
		return eris.Wrapf(ErrMissingCapabilityMethod, "system %s declares %s", s.Name(), c)
	}

	// validate everything before touching the tables so a failed bind leaves no trace
	if caps.Has(CapPlayerJoin) && h.join != nil {
		return eris.Wrapf(ErrDuplicateExclusiveBinding, "system %s conflicts with %s", s.Name(), h.joinOwner)
	}
	pre, okPre := s.(PreUpdater)
	post, okPost := s.(PostUpdater)
	join, okJoin := s.(PlayerJoiner)
	created, okCreated := s.(PlayerCreatedHandler)
	leave, okLeave := s.(PlayerLeaveHandler)
	button, okButton := s.(ButtonHandler)
	for _, check := range []struct {
		cap Capability
		ok  bool
	}{
		{CapPreUpdate, okPre},
		{CapPostUpdate, okPost},
		{CapPlayerJoin, okJoin},
		{CapPlayerCreated, okCreated},
		{CapPlayerLeave, okLeave},
		{CapButtonPressed, okButton},
	} {
		if caps.Has(check.cap) && !check.ok {
			return missing(check.cap)
		}
	}

	if caps.Has(CapPreUpdate) {
		h.preUpdate = append(h.preUpdate, pre)
	}
	if caps.Has(CapPostUpdate) {
		h.postUpdate = append(h.postUpdate, post)
	}
	if caps.Has(CapPlayerJoin) {
		h.join = join
		h.joinOwner = s.Name()
	}
	if caps.Has(CapPlayerCreated) {
		h.playerCreated = append(h.playerCreated, created)
	}
	if caps.Has(CapPlayerLeave) {
		h.playerLeave = append(h.playerLeave, leave)
	}
	if caps.Has(CapButtonPressed) {
		h.button = append(h.button, button)
	}
	return nil
}

// Start attaches every system's hooks in registration order and then sets up the gamemode.
func (h *Handler) Start() error {
	if h.started {
		return ErrAlreadyStarted
	}
	for _, s := range h.systems {
		if err := s.AttachHooks(h); err != nil {
			return eris.Wrapf(err, "system %s failed to attach hooks", s.Name())
		}
	}
	if err := h.gamemode.Setup(h); err != nil {
		return eris.Wrapf(err, "gamemode %s setup failed", h.gamemode.Name())
	}
	h.started = true
	h.logger.Info().Int("systems", len(h.systems)).Msg("gamemode started")
	return nil
}

// PreUpdate advances pending respawns, then runs pre-update systems and the gamemode.
func (h *Handler) PreUpdate(dt float64) {
	h.respawns.Update(dt)
	for _, s := range h.preUpdate {
		start := time.Now()
		s.PreUpdate(dt)
		h.metrics.EmitTickStat(start, "system."+systemName(s))
	}
	h.original.preUpdate(dt)
}

func (h *Handler) PostUpdate(dt float64) {
	for _, s := range h.postUpdate {
		start := time.Now()
		s.PostUpdate(dt)
		h.metrics.EmitTickStat(start, "system."+systemName(s))
	}
	h.original.postUpdate(dt)
}

func systemName(v any) string {
	if s, ok := v.(System); ok {
		return s.Name()
	}
	return "unknown"
}

// OnPlayerJoin asks the join system to create the player's entity.
func (h *Handler) OnPlayerJoin(p PlayerInfo) (*physics.Entity, error) {
	if h.join == nil {
		return nil, ErrNoJoinSystem
	}
	e, err := h.join.OnPlayerJoin(p)
	if err != nil {
		return nil, eris.Wrapf(err, "player %s could not join", p.ID)
	}
	return e, nil
}

func (h *Handler) OnPlayerCreated(p PlayerInfo, e *physics.Entity) {
	for _, s := range h.playerCreated {
		s.OnPlayerCreated(p, e)
	}
	h.original.onPlayerCreated(p, e)
}

// OnPlayerLeave runs the leave systems, then abandons the player's entity: it loses its
// controller and stays in the simulation until it is eliminated.
func (h *Handler) OnPlayerLeave(id string) {
	for _, s := range h.playerLeave {
		s.OnPlayerLeave(id)
	}

	if e, ok := h.players[id]; ok {
		delete(h.players, id)
		h.abandoned[e.ID] = struct{}{}
		e.SetController(nil)
		e.Acceleration.SetZero()
		if h.respawns.Cancel(e) {
			// dead and waiting: nothing left to eliminate
			h.UnregisterFully(e)
		}
	}

	h.original.onPlayerLeave(id)
}

func (h *Handler) OnButtonPressed(id, button string) {
	for _, s := range h.button {
		s.OnButtonPressed(id, button)
	}
	h.original.onButtonPressed(id, button)
}

// Kill eliminates e: it leaves the simulation, HookDeath fires, then the gamemode's OnDeath.
// Unless something scheduled a respawn the entity is then removed for good.
func (h *Handler) Kill(e *physics.Entity) {
	if !e.Alive || !h.world.Registry.Known(e.ID) {
		return
	}
	e.Alive = false
	if h.world.Registry.IsActive(e.ID) {
		h.world.Registry.Unregister(e)
	}

	_ = h.hooks.trigger(HookDeath, DeathEvent{Entity: e, Player: e.Player, Abandoned: h.Abandoned(e)})
	h.original.onDeath(e)

	if h.world.Registry.Known(e.ID) && !h.respawns.Pending(e) {
		h.UnregisterFully(e)
	}
	h.metrics.Count("deaths", 1)
}

// ScheduleRespawn brings e back after delay seconds.
func (h *Handler) ScheduleRespawn(e *physics.Entity, delay float64) {
	h.respawns.AddRespawn(e, delay)
}

func (h *Handler) respawned(e *physics.Entity) {
	_ = h.hooks.trigger(HookRespawn, RespawnEvent{Entity: e, Player: e.Player})
	h.original.onRespawn(e)
}

// UnregisterFully removes e permanently, cancelling any pending respawn.
func (h *Handler) UnregisterFully(e *physics.Entity) {
	h.respawns.Cancel(e)
	delete(h.abandoned, e.ID)
	if p, ok := h.players[e.Player]; ok && p == e {
		delete(h.players, e.Player)
	}
	if h.world.Registry.Known(e.ID) {
		h.world.Registry.UnregisterFully(e)
	}
}

// SetPlayerEntity records e as the entity owned by player id.
func (h *Handler) SetPlayerEntity(id string, e *physics.Entity) {
	e.Player = id
	h.players[id] = e
}

// PlayerEntity returns the entity of a connected player.
func (h *Handler) PlayerEntity(id string) (*physics.Entity, error) {
	e, ok := h.players[id]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownPlayer, "player %s", id)
	}
	return e, nil
}

// PlayerIDs returns the connected players in sorted order.
func (h *Handler) PlayerIDs() []string {
	ids := make([]string, 0, len(h.players))
	for id := range h.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Abandoned reports whether e belonged to a player who has left.
func (h *Handler) Abandoned(e *physics.Entity) bool {
	_, ok := h.abandoned[e.ID]
	return ok
}

func (h *Handler) RespawnPending(e *physics.Entity) bool {
	return h.respawns.Pending(e)
}

func (h *Handler) World() *physics.World {
	return h.world
}

func (h *Handler) Registry() *physics.Registry {
	return h.world.Registry
}

func (h *Handler) Gamemode() Gamemode {
	return h.gamemode
}

func (h *Handler) BackgroundColor() string {
	return h.background
}

func (h *Handler) Metrics() *statsd.Recorder {
	return h.metrics
}

// Logger returns a logger tagged with the system name.
func (h *Handler) Logger(system string) zerolog.Logger {
	return h.logger.With().Str("system", system).Logger()
}

// Systems returns the names of the added systems in registration order.
func (h *Handler) Systems() []string {
	names := make([]string, 0, len(h.systems))
	for _, s := range h.systems {
		names = append(names, s.Name())
	}
	return names
}

// CleanUp ends the match: the gamemode cleans up and every entity is released.
func (h *Handler) CleanUp() {
	h.gamemode.CleanUp()
	h.respawns.Clear()
	h.world.Registry.Clear()
	clear(h.players)
	clear(h.abandoned)
}
