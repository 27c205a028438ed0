// Package physics is the tick-driven rigid body core: circles and segments, impulse
// resolution, collision groups and per-entity controllers.
package physics

import (
	"github.com/rs/zerolog"
)

// World steps the active entities of its registry.
type World struct {
	Registry *Registry
	policy   GroupPolicy
	logger   zerolog.Logger
}

func NewWorld(policy GroupPolicy, logger zerolog.Logger) *World {
	return &World{
		Registry: NewRegistry(logger),
		policy:   policy,
		logger:   logger,
	}
}

func (w *World) Policy() GroupPolicy {
	return w.policy
}

// Step runs controllers and integration for every live entity, then resolves contacts at
// the predicted positions and clamps the resulting velocities again. It returns the number
// of resolved contacts.
func (w *World) Step(dt float64) int {
	entities := w.Registry.Entities()
	for _, e := range entities {
		if e.Alive {
			e.integrate(dt)
		}
	}

	resolved := 0
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			if !w.participates(a) || !w.participates(b) || !w.policy.canCollide(a, b) {
				continue
			}
			c, ok := detect(a, b)
			if !ok || !resolve(c) {
				continue
			}
			resolved++
			notify(c)
		}
	}

	// impulses may push a light entity past its limit
	if resolved > 0 {
		for _, e := range entities {
			if w.participates(e) {
				e.clampVelocity()
			}
		}
	}
	return resolved
}

// participates re-checks activity because listeners may remove entities mid-step.
func (w *World) participates(e *Entity) bool {
	return e.Alive && w.Registry.IsActive(e.ID)
}

// Sync commits positions and updates render handles. Headless matches call it once per tick.
func (w *World) Sync(dt float64) {
	for _, e := range w.Registry.Entities() {
		if e.Alive {
			e.commit(dt)
		}
	}
}

// Views returns the render projection of the active entities.
func (w *World) Views() []View {
	entities := w.Registry.Entities()
	out := make([]View, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.View())
	}
	return out
}
