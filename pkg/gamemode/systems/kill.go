package systems

import (
	"maps"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// HookKill fires once per attacker credited with a death.
const HookKill = "kill"

// TagTime is how long, in seconds, a contact keeps counting towards a kill.
const TagTime = 4.0

type KillEvent struct {
	Victim       string
	VictimEntity physics.EntityID
	Attacker     string
}

// Kill tags players on contact and credits every live tag when the victim dies.
type Kill struct {
	h      *gamemode.Handler
	tags   *gamemode.TagTracker
	scores map[string]int
}

var (
	_ gamemode.System               = (*Kill)(nil)
	_ gamemode.PreUpdater           = (*Kill)(nil)
	_ gamemode.PlayerCreatedHandler = (*Kill)(nil)
)

func NewKill() *Kill {
	return &Kill{
		tags:   gamemode.NewTagTracker(TagTime),
		scores: make(map[string]int),
	}
}

func (k *Kill) Name() string { return "kill" }

func (k *Kill) Setup(h *gamemode.Handler) (gamemode.Capability, error) {
	k.h = h
	if err := h.AddHook(HookKill); err != nil {
		return 0, err
	}
	return gamemode.CapPreUpdate | gamemode.CapPlayerCreated, nil
}

func (k *Kill) AttachHooks(h *gamemode.Handler) error {
	return gamemode.Subscribe(h, gamemode.HookDeath, k.onDeath)
}

func (k *Kill) PreUpdate(dt float64) {
	k.tags.Update(dt)
}

// OnPlayerCreated tags the new entity whenever another player's entity touches it. The
// other side adds its own listener, so contacts tag both ways.
func (k *Kill) OnPlayerCreated(_ gamemode.PlayerInfo, e *physics.Entity) {
	e.OnContact(func(self, other *physics.Entity) {
		if other.Player == "" || other.Player == self.Player {
			return
		}
		k.tags.Tag(self.ID, other.Player)
	})
}

func (k *Kill) onDeath(ev gamemode.DeathEvent) {
	for _, attacker := range k.tags.Attackers(ev.Entity.ID) {
		k.scores[attacker]++
		_ = k.h.TriggerHook(HookKill, KillEvent{
			Victim:       ev.Player,
			VictimEntity: ev.Entity.ID,
			Attacker:     attacker,
		})
	}
	k.tags.Forget(ev.Entity.ID)
}

func (k *Kill) Tags() *gamemode.TagTracker {
	return k.tags
}

func (k *Kill) Score(player string) int {
	return k.scores[player]
}

func (k *Kill) Scores() map[string]int {
	return maps.Clone(k.scores)
}
