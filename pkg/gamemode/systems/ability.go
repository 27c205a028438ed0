package systems

import (
	"github.com/ByteArena/box2d"
	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// Buttons understood by the ability system.
const (
	ButtonDash  = "dash"
	ButtonBrake = "brake"
)

// DashCooldown is the default time, in seconds, between two abilities of the same player.
const DashCooldown = 1.5

// Ability turns button presses into instant velocity changes, with a shared cooldown.
type Ability struct {
	Cooldown float64

	h         *gamemode.Handler
	cooldowns map[string]float64
	logger    zerolog.Logger
}

var (
	_ gamemode.System             = (*Ability)(nil)
	_ gamemode.PreUpdater         = (*Ability)(nil)
	_ gamemode.ButtonHandler      = (*Ability)(nil)
	_ gamemode.PlayerLeaveHandler = (*Ability)(nil)
)

func NewAbility() *Ability {
	return &Ability{
		Cooldown:  DashCooldown,
		cooldowns: make(map[string]float64),
	}
}

func (a *Ability) Name() string { return "ability" }

func (a *Ability) Setup(h *gamemode.Handler) (gamemode.Capability, error) {
	a.h = h
	a.logger = h.Logger(a.Name())
	return gamemode.CapPreUpdate | gamemode.CapButtonPressed | gamemode.CapPlayerLeave, nil
}

func (a *Ability) AttachHooks(*gamemode.Handler) error { return nil }

func (a *Ability) PreUpdate(dt float64) {
	for id, left := range a.cooldowns {
		if left-dt <= 0 {
			delete(a.cooldowns, id)
			continue
		}
		a.cooldowns[id] = left - dt
	}
}

func (a *Ability) OnButtonPressed(id, button string) {
	if button != ButtonDash && button != ButtonBrake {
		return
	}
	if _, cooling := a.cooldowns[id]; cooling {
		return
	}
	e, err := a.h.PlayerEntity(id)
	if err != nil {
		a.logger.Debug().Err(err).Str("button", button).Msg("button from player without entity")
		return
	}
	if !e.Alive {
		return
	}

	switch button {
	case ButtonDash:
		dir := dashDirection(e)
		if dir.Length() == 0 {
			return
		}
		e.Velocity = box2d.B2Vec2MulScalar(e.MaxVelocity, dir)
	case ButtonBrake:
		e.Velocity.SetZero()
	}
	a.cooldowns[id] = a.Cooldown
	a.h.Metrics().Count("abilities", 1, "ability:"+button)
}

// dashDirection prefers the stick direction and falls back to the direction of travel.
func dashDirection(e *physics.Entity) box2d.B2Vec2 {
	if c, ok := e.Controller().(*physics.InputController); ok {
		if d := c.Direction(); d.Length() > 0 {
			return box2d.B2Vec2MulScalar(1/d.Length(), d)
		}
	}
	if speed := e.Velocity.Length(); speed > 0 {
		return box2d.B2Vec2MulScalar(1/speed, e.Velocity)
	}
	return box2d.MakeB2Vec2(0, 0)
}

func (a *Ability) OnPlayerLeave(id string) {
	delete(a.cooldowns, id)
}

// CoolingDown reports whether player id has to wait before using an ability.
func (a *Ability) CoolingDown(id string) bool {
	_, ok := a.cooldowns[id]
	return ok
}
