package physics

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/assert"
)

// Registry is the arena of entities. Known entities keep their id for the lifetime of the
// match; only active ones take part in physics.
type Registry struct {
	known    map[EntityID]*Entity
	active   []EntityID
	isActive map[EntityID]struct{}
	nextID   EntityID
	logger   zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		known:    make(map[EntityID]*Entity),
		isActive: make(map[EntityID]struct{}),
		logger:   logger,
	}
}

// Register activates e, assigning an id on first registration.
func (r *Registry) Register(e *Entity) {
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
		r.known[e.ID] = e
	}
	known, ok := r.known[e.ID]
	if !assert.Check(&r.logger, ok && known == e, "entity %d does not belong to this registry", e.ID) {
		return
	}
	if !assert.Check(&r.logger, !r.IsActive(e.ID), "entity %d registered twice", e.ID) {
		return
	}
	r.active = append(r.active, e.ID)
	r.isActive[e.ID] = struct{}{}
}

// Unregister deactivates e but keeps it known, e.g. while it waits to respawn.
func (r *Registry) Unregister(e *Entity) {
	idx := slices.Index(r.active, e.ID)
	if !assert.Check(&r.logger, idx >= 0, "unregister of inactive entity %d", e.ID) {
		return
	}
	r.active = slices.Delete(r.active, idx, idx+1)
	delete(r.isActive, e.ID)
}

// UnregisterFully forgets e and releases its render handle.
func (r *Registry) UnregisterFully(e *Entity) {
	if !assert.Check(&r.logger, r.Known(e.ID), "full unregister of unknown entity %d", e.ID) {
		return
	}
	if idx := slices.Index(r.active, e.ID); idx >= 0 {
		r.active = slices.Delete(r.active, idx, idx+1)
	}
	delete(r.isActive, e.ID)
	delete(r.known, e.ID)
	e.SetController(nil)
	if e.Handle != nil {
		e.Handle.Release()
	}
}

// Entities returns a snapshot of the active entities in registration order. Mutating the
// registry while ranging over the result is safe.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.active))
	for _, id := range r.active {
		out = append(out, r.known[id])
	}
	return out
}

func (r *Registry) Get(id EntityID) (*Entity, bool) {
	e, ok := r.known[id]
	return e, ok
}

func (r *Registry) Known(id EntityID) bool {
	_, ok := r.known[id]
	return ok
}

func (r *Registry) IsActive(id EntityID) bool {
	_, ok := r.isActive[id]
	return ok
}

func (r *Registry) Len() int {
	return len(r.active)
}

// Clear fully unregisters everything. Called when a match ends.
func (r *Registry) Clear() {
	for _, e := range r.known {
		if e.Handle != nil {
			e.Handle.Release()
		}
	}
	clear(r.known)
	clear(r.isActive)
	r.active = r.active[:0]
}
