package gamemode

import (
	"strings"

	"github.com/argus-labs/arena/pkg/physics"
)

// Capability is a lifecycle category a system takes part in.
type Capability uint8

const (
	CapPreUpdate Capability = 1 << iota
	CapPostUpdate
	// CapPlayerJoin is exclusive: one system per match decides where a joining player spawns.
	CapPlayerJoin
	CapPlayerCreated
	CapPlayerLeave
	CapButtonPressed
)

func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	names := []string{}
	for _, item := range []struct {
		cap  Capability
		name string
	}{
		{CapPreUpdate, "pre_update"},
		{CapPostUpdate, "post_update"},
		{CapPlayerJoin, "player_join"},
		{CapPlayerCreated, "player_created"},
		{CapPlayerLeave, "player_leave"},
		{CapButtonPressed, "button_pressed"},
	} {
		if c.Has(item.cap) {
			names = append(names, item.name)
		}
	}
	return strings.Join(names, "|")
}

// System is a rule module composed into a match. Setup runs when the system is added and
// returns the categories it takes part in; AttachHooks runs once every system is added.
// For each declared capability the system must implement the matching interface below.
type System interface {
	Name() string
	Setup(h *Handler) (Capability, error)
	AttachHooks(h *Handler) error
}

// PlayerInfo identifies a connected player.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PreUpdater interface {
	PreUpdate(dt float64)
}

type PostUpdater interface {
	PostUpdate(dt float64)
}

type PlayerJoiner interface {
	OnPlayerJoin(p PlayerInfo) (*physics.Entity, error)
}

type PlayerCreatedHandler interface {
	OnPlayerCreated(p PlayerInfo, e *physics.Entity)
}

type PlayerLeaveHandler interface {
	OnPlayerLeave(id string)
}

type ButtonHandler interface {
	OnButtonPressed(id string, button string)
}

// DeathHandler and RespawnHandler are gamemode-only overrides.
type DeathHandler interface {
	OnDeath(e *physics.Entity)
}

type RespawnHandler interface {
	OnRespawn(e *physics.Entity)
}

// SpawnPointer lets a gamemode choose where a joining player's entity is created.
type SpawnPointer interface {
	SpawnPoint(p PlayerInfo) (x, y float64)
}

// Gamemode is a concrete ruleset. Besides Setup and CleanUp it may implement any of
// PreUpdater, PostUpdater, PlayerCreatedHandler, PlayerLeaveHandler, ButtonHandler,
// DeathHandler and RespawnHandler; the handler calls those after its systems.
type Gamemode interface {
	Name() string
	Setup(h *Handler) error
	CleanUp()
}

// overrides are the gamemode callbacks captured when the handler is built. Missing ones
// are no-ops.
type overrides struct {
	preUpdate       func(dt float64)
	postUpdate      func(dt float64)
	onPlayerCreated func(p PlayerInfo, e *physics.Entity)
	onPlayerLeave   func(id string)
	onButtonPressed func(id, button string)
	onDeath         func(e *physics.Entity)
	onRespawn       func(e *physics.Entity)
}

func captureOverrides(gm Gamemode) overrides {
	o := overrides{
		preUpdate:       func(float64) {},
		postUpdate:      func(float64) {},
		onPlayerCreated: func(PlayerInfo, *physics.Entity) {},
		onPlayerLeave:   func(string) {},
		onButtonPressed: func(string, string) {},
		onDeath:         func(*physics.Entity) {},
		onRespawn:       func(*physics.Entity) {},
	}
	if v, ok := gm.(PreUpdater); ok {
		o.preUpdate = v.PreUpdate
	}
	if v, ok := gm.(PostUpdater); ok {
		o.postUpdate = v.PostUpdate
	}
	if v, ok := gm.(PlayerCreatedHandler); ok {
		o.onPlayerCreated = v.OnPlayerCreated
	}
	if v, ok := gm.(PlayerLeaveHandler); ok {
		o.onPlayerLeave = v.OnPlayerLeave
	}
	if v, ok := gm.(ButtonHandler); ok {
		o.onButtonPressed = v.OnButtonPressed
	}
	if v, ok := gm.(DeathHandler); ok {
		o.onDeath = v.OnDeath
	}
	if v, ok := gm.(RespawnHandler); ok {
		o.onRespawn = v.OnRespawn
	}
	return o
}
