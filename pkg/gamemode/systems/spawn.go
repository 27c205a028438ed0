// Package systems holds the optional rule systems a match is composed from.
package systems

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// HookSpawn fires after a joining player's entity is registered.
const HookSpawn = "spawn"

type SpawnEvent struct {
	Player gamemode.PlayerInfo
	Entity *physics.Entity
}

var palette = []string{"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4", "#46f0f0", "#f032e6"}

// Spawn owns player join: every new player gets a circle driven by its input.
type Spawn struct {
	Radius      float64
	Mass        float64
	Friction    float64
	MaxVelocity float64
	Group       uint32

	h      *gamemode.Handler
	joined int
	logger zerolog.Logger
}

var (
	_ gamemode.System       = (*Spawn)(nil)
	_ gamemode.PlayerJoiner = (*Spawn)(nil)
)

func NewSpawn() *Spawn {
	return &Spawn{
		Radius:      20,
		Mass:        0.5,
		Friction:    0.5,
		MaxVelocity: 200,
		Group:       1,
	}
}

func (s *Spawn) Name() string { return "spawn" }

func (s *Spawn) Setup(h *gamemode.Handler) (gamemode.Capability, error) {
	s.h = h
	s.logger = h.Logger(s.Name())
	if err := h.AddHook(HookSpawn); err != nil {
		return 0, err
	}
	return gamemode.CapPlayerJoin, nil
}

func (s *Spawn) AttachHooks(*gamemode.Handler) error { return nil }

func (s *Spawn) OnPlayerJoin(p gamemode.PlayerInfo) (*physics.Entity, error) {
	if _, err := s.h.PlayerEntity(p.ID); err == nil {
		return nil, eris.Errorf("player %s already has an entity", p.ID)
	}

	x, y := 0.0, 0.0
	if sp, ok := s.h.Gamemode().(gamemode.SpawnPointer); ok {
		x, y = sp.SpawnPoint(p)
	}

	e := physics.NewCircle(physics.Body{
		X:              x,
		Y:              y,
		Mass:           s.Mass,
		Friction:       s.Friction,
		MaxVelocity:    s.MaxVelocity,
		CollisionGroup: s.Group,
		Tint:           palette[s.joined%len(palette)],
	}, s.Radius)
	s.joined++

	s.h.Registry().Register(e)
	e.SetController(physics.NewInputController(p.ID))
	s.h.SetPlayerEntity(p.ID, e)

	s.logger.Debug().Str("player", p.ID).Uint32("entity", uint32(e.ID)).Msg("player spawned")
	if err := s.h.TriggerHook(HookSpawn, SpawnEvent{Player: p, Entity: e}); err != nil {
		return nil, err
	}
	return e, nil
}
