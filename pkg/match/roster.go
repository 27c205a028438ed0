package match

import (
	"maps"
	"slices"
	"sync"

	"github.com/argus-labs/arena/pkg/physics"
)

// Player is what the lobby UI sees of a connected player.
type Player struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Entity physics.EntityID   `json:"entity"`
	Sensor map[string]float64 `json:"sensor,omitempty"`
}

// roster is written by the tick loop and read from any goroutine.
type roster struct {
	mu      sync.RWMutex
	players map[string]Player
}

func newRoster() *roster {
	return &roster{players: make(map[string]Player)}
}

func (r *roster) join(id, name string, entity physics.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[id] = Player{ID: id, Name: name, Entity: entity}
}

func (r *roster) leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

func (r *roster) sense(id string, sensor map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	p.Sensor = maps.Clone(sensor)
	r.players[id] = p
}

func (r *roster) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[id]
	return ok
}

// snapshot copies the roster sorted by player id.
func (r *roster) snapshot() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Player, 0, len(r.players))
	for _, id := range slices.Sorted(maps.Keys(r.players)) {
		p := r.players[id]
		p.Sensor = maps.Clone(p.Sensor)
		out = append(out, p)
	}
	return out
}
