package systems

import (
	"maps"
	"slices"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/physics"
)

// Sink accepts leaderboard records without blocking the tick.
type Sink interface {
	Offer(r leaderboard.Record) bool
}

// Highscore keeps kill totals and forwards changes to a Sink once per tick.
type Highscore struct {
	sink    Sink
	totals  map[string]int
	names   map[string]string
	pending map[string]float64
}

var (
	_ gamemode.System               = (*Highscore)(nil)
	_ gamemode.PostUpdater          = (*Highscore)(nil)
	_ gamemode.PlayerCreatedHandler = (*Highscore)(nil)
)

func NewHighscore(sink Sink) *Highscore {
	return &Highscore{
		sink:    sink,
		totals:  make(map[string]int),
		names:   make(map[string]string),
		pending: make(map[string]float64),
	}
}

func (s *Highscore) Name() string { return "highscore" }

func (s *Highscore) Setup(*gamemode.Handler) (gamemode.Capability, error) {
	return gamemode.CapPostUpdate | gamemode.CapPlayerCreated, nil
}

// AttachHooks needs the kill system to have declared HookKill.
func (s *Highscore) AttachHooks(h *gamemode.Handler) error {
	return gamemode.Subscribe(h, HookKill, func(ev KillEvent) {
		s.totals[ev.Attacker]++
		s.pending[ev.Attacker]++
	})
}

// OnPlayerCreated lists the player with a zero delta so it shows up on the board.
func (s *Highscore) OnPlayerCreated(p gamemode.PlayerInfo, _ *physics.Entity) {
	s.names[p.ID] = p.Name
	if _, ok := s.pending[p.ID]; !ok {
		s.pending[p.ID] = 0
	}
}

// PostUpdate offers pending deltas in player order. Rejected ones are retried next tick.
func (s *Highscore) PostUpdate(float64) {
	if len(s.pending) == 0 || s.sink == nil {
		return
	}
	for _, player := range slices.Sorted(maps.Keys(s.pending)) {
		if s.sink.Offer(leaderboard.Record{Player: player, Name: s.names[player], Delta: s.pending[player]}) {
			delete(s.pending, player)
		}
	}
}

func (s *Highscore) Total(player string) int {
	return s.totals[player]
}
