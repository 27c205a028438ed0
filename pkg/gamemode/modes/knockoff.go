// Package modes contains the concrete gamemodes.
package modes

import (
	"math"

	"github.com/ByteArena/box2d"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// KnockOff arena geometry. Rates are per second.
const (
	KnockOffCenterX    = 500.0
	KnockOffCenterY    = 500.0
	KnockOffRadius     = 350.0
	KnockOffShrinkRate = 60.0
	KnockOffMinRadius  = 60.0
)

// golden angle, spreads consecutive spawns around the ring
const spawnAngleStep = 2.399963229728653

// KnockOff is a shrinking circular arena. Anything pushed past the edge is eliminated.
type KnockOff struct {
	ShrinkRate float64
	MinRadius  float64

	h      *gamemode.Handler
	radius float64
	placed int
}

var (
	_ gamemode.Gamemode       = (*KnockOff)(nil)
	_ gamemode.PreUpdater     = (*KnockOff)(nil)
	_ gamemode.PostUpdater    = (*KnockOff)(nil)
	_ gamemode.SpawnPointer   = (*KnockOff)(nil)
	_ gamemode.RespawnHandler = (*KnockOff)(nil)
)

func NewKnockOff() *KnockOff {
	return &KnockOff{
		ShrinkRate: KnockOffShrinkRate,
		MinRadius:  KnockOffMinRadius,
		radius:     KnockOffRadius,
	}
}

func (k *KnockOff) Name() string { return "knockoff" }

func (k *KnockOff) Setup(h *gamemode.Handler) error {
	k.h = h
	k.radius = KnockOffRadius
	return nil
}

func (k *KnockOff) Radius() float64 {
	return k.radius
}

// PreUpdate shrinks the arena, never below MinRadius.
func (k *KnockOff) PreUpdate(dt float64) {
	k.radius = math.Max(k.MinRadius, k.radius-k.ShrinkRate*dt)
}

// PostUpdate eliminates every circle whose edge left the arena.
func (k *KnockOff) PostUpdate(float64) {
	center := box2d.MakeB2Vec2(KnockOffCenterX, KnockOffCenterY)
	for _, e := range k.h.Registry().Entities() {
		if !e.Alive || e.Shape.Kind != physics.ShapeCircle {
			continue
		}
		dist := box2d.B2Vec2Sub(e.Position, center).Length()
		if dist > k.radius-e.Shape.Radius {
			k.h.Kill(e)
		}
	}
}

// SpawnPoint places players on a ring at half the current radius.
func (k *KnockOff) SpawnPoint(gamemode.PlayerInfo) (float64, float64) {
	return k.nextPoint()
}

func (k *KnockOff) OnRespawn(e *physics.Entity) {
	x, y := k.nextPoint()
	e.MoveTo(x, y)
	e.ResetPhysics()
}

func (k *KnockOff) nextPoint() (float64, float64) {
	angle := float64(k.placed) * spawnAngleStep
	k.placed++
	r := k.radius / 2
	return KnockOffCenterX + r*math.Cos(angle), KnockOffCenterY + r*math.Sin(angle)
}

func (k *KnockOff) CleanUp() {
	k.radius = KnockOffRadius
	k.placed = 0
}
