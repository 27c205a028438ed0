package systems

import (
	"github.com/ByteArena/box2d"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// RespawnTime is the default delay, in seconds, before a dead player comes back.
const RespawnTime = 3.0

// Respawn brings dead players back at their spawn point. Entities of players who left are
// not scheduled and get removed by the handler.
type Respawn struct {
	Delay float64

	h      *gamemode.Handler
	points map[physics.EntityID]box2d.B2Vec2
}

var (
	_ gamemode.System               = (*Respawn)(nil)
	_ gamemode.PlayerCreatedHandler = (*Respawn)(nil)
)

func NewRespawn() *Respawn {
	return &Respawn{
		Delay:  RespawnTime,
		points: make(map[physics.EntityID]box2d.B2Vec2),
	}
}

func (r *Respawn) Name() string { return "respawn" }

func (r *Respawn) Setup(h *gamemode.Handler) (gamemode.Capability, error) {
	r.h = h
	return gamemode.CapPlayerCreated, nil
}

func (r *Respawn) AttachHooks(h *gamemode.Handler) error {
	if err := gamemode.Subscribe(h, gamemode.HookDeath, r.onDeath); err != nil {
		return err
	}
	return gamemode.Subscribe(h, gamemode.HookRespawn, r.onRespawn)
}

// OnPlayerCreated remembers where the entity started. Gamemodes that place players run
// after systems, so they can override this point in their own OnRespawn.
func (r *Respawn) OnPlayerCreated(_ gamemode.PlayerInfo, e *physics.Entity) {
	r.points[e.ID] = e.Position
}

func (r *Respawn) onDeath(ev gamemode.DeathEvent) {
	if ev.Abandoned {
		delete(r.points, ev.Entity.ID)
		return
	}
	r.h.ScheduleRespawn(ev.Entity, r.Delay)
}

func (r *Respawn) onRespawn(ev gamemode.RespawnEvent) {
	if p, ok := r.points[ev.Entity.ID]; ok {
		ev.Entity.MoveTo(p.X, p.Y)
	}
	ev.Entity.ResetPhysics()
}
