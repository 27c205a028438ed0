// Package respawn counts down dead entities and brings them back into the simulation.
package respawn

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/assert"
	"github.com/argus-labs/arena/pkg/physics"
)

// timers within this of zero have elapsed, absorbing float drift from summing dt
const tolerance = 1e-9

type entry struct {
	entity    *physics.Entity
	remaining float64
}

// Scheduler owns the pending respawns of one match. It is not safe for concurrent use.
type Scheduler struct {
	registry  *physics.Registry
	onRespawn func(*physics.Entity)
	pending   []*entry
	logger    zerolog.Logger
}

// New returns a scheduler that calls onRespawn exactly once per elapsed timer, after the
// entity is active again.
func New(registry *physics.Registry, onRespawn func(*physics.Entity), logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		registry:  registry,
		onRespawn: onRespawn,
		logger:    logger,
	}
}

// AddRespawn deactivates e and schedules it to come back after delay seconds. Scheduling an
// entity that is already pending resets its timer.
func (s *Scheduler) AddRespawn(e *physics.Entity, delay float64) {
	if !assert.Check(&s.logger, s.registry.Known(e.ID), "respawn scheduled for unknown entity %d", e.ID) {
		return
	}
	e.Alive = false
	if s.registry.IsActive(e.ID) {
		s.registry.Unregister(e)
	}
	if i := s.index(e.ID); i >= 0 {
		s.pending[i].remaining = delay
		return
	}
	s.pending = append(s.pending, &entry{entity: e, remaining: delay})
}

// Update advances every timer by dt and respawns the elapsed ones in scheduling order.
// Entities fully unregistered in the meantime are dropped silently.
func (s *Scheduler) Update(dt float64) {
	var due []*physics.Entity
	keep := s.pending[:0]
	for _, p := range s.pending {
		if !s.registry.Known(p.entity.ID) {
			continue
		}
		p.remaining -= dt
		if p.remaining <= tolerance {
			due = append(due, p.entity)
			continue
		}
		keep = append(keep, p)
	}
	clear(s.pending[len(keep):])
	s.pending = keep

	for _, e := range due {
		e.Alive = true
		e.ResetPhysics()
		s.registry.Register(e)
		if s.onRespawn != nil {
			s.onRespawn(e)
		}
	}
}

// Cancel drops the pending respawn of e, if any.
func (s *Scheduler) Cancel(e *physics.Entity) bool {
	i := s.index(e.ID)
	if i < 0 {
		return false
	}
	s.pending = slices.Delete(s.pending, i, i+1)
	return true
}

func (s *Scheduler) Pending(e *physics.Entity) bool {
	return s.index(e.ID) >= 0
}

// Remaining returns the seconds left before e respawns.
func (s *Scheduler) Remaining(e *physics.Entity) (float64, bool) {
	i := s.index(e.ID)
	if i < 0 {
		return 0, false
	}
	return s.pending[i].remaining, true
}

func (s *Scheduler) Len() int {
	return len(s.pending)
}

func (s *Scheduler) Clear() {
	s.pending = nil
}

func (s *Scheduler) index(id physics.EntityID) int {
	return slices.IndexFunc(s.pending, func(p *entry) bool { return p.entity.ID == id })
}
