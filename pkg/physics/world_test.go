package physics_test

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/physics"
)

func newWorld(policy physics.GroupPolicy) *physics.World {
	return physics.NewWorld(policy, zerolog.Nop())
}

type recordingHandle struct {
	x, y     float64
	released bool
}

func (h *recordingHandle) SetPosition(x, y float64) { h.x, h.y = x, y }
func (h *recordingHandle) Release()                 { h.released = true }

func TestStepIntegratesAndSyncCommits(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	e := physics.NewCircle(physics.Body{X: 10, Y: 20, Mass: 1}, 5)
	h := &recordingHandle{}
	e.Handle = h
	e.Acceleration = box2d.MakeB2Vec2(10, 0)
	w.Registry.Register(e)

	w.Step(0.5)
	assert.InDelta(t, 5, e.Velocity.X, 1e-12)
	assert.InDelta(t, 12.5, e.Predicted.X, 1e-12)
	assert.InDelta(t, 10, e.Position.X, 1e-12, "step must not commit")

	w.Sync(0.5)
	assert.InDelta(t, 12.5, e.Position.X, 1e-12)
	assert.InDelta(t, 12.5, h.x, 1e-12)
	assert.InDelta(t, 20, h.y, 1e-12)
}

func TestVelocityNeverExceedsMax(t *testing.T) {
	t.Parallel()

	accels := []box2d.B2Vec2{
		box2d.MakeB2Vec2(1e6, 0),
		box2d.MakeB2Vec2(-300, 400),
		box2d.MakeB2Vec2(1, 1),
		box2d.MakeB2Vec2(0, -9000),
	}
	for _, a := range accels {
		w := newWorld(physics.GroupZeroCollidesAll)
		e := physics.NewCircle(physics.Body{Mass: 1, MaxVelocity: 50}, 5)
		e.Acceleration = a
		w.Registry.Register(e)
		for tick := 0; tick < 200; tick++ {
			w.Step(1.0 / 60)
			w.Sync(1.0 / 60)
			require.LessOrEqual(t, e.Velocity.Length(), 50+1e-9)
		}
	}
}

func TestFrictionNeverReversesVelocity(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	e := physics.NewCircle(physics.Body{Mass: 1, Friction: 100}, 5)
	e.Velocity = box2d.MakeB2Vec2(30, -40)
	w.Registry.Register(e)

	w.Step(0.1)
	assert.InDelta(t, 0, e.Velocity.Length(), 1e-12)

	e.Friction = 0.5
	e.Velocity = box2d.MakeB2Vec2(10, 0)
	w.Step(0.1)
	assert.InDelta(t, 9.5, e.Velocity.X, 1e-12)
}

func TestDifferentGroupsNeverCollide(t *testing.T) {
	t.Parallel()

	for _, policy := range []physics.GroupPolicy{physics.GroupZeroCollidesAll, physics.GroupZeroNeverCollides} {
		w := newWorld(policy)
		a := physics.NewCircle(physics.Body{X: 0, Mass: 1, CollisionGroup: 1}, 20)
		b := physics.NewCircle(physics.Body{X: 10, Mass: 1, CollisionGroup: 2}, 20)
		a.Velocity = box2d.MakeB2Vec2(10, 0)
		w.Registry.Register(a)
		w.Registry.Register(b)

		touched := false
		a.OnContact(func(_, _ *physics.Entity) { touched = true })
		assert.Zero(t, w.Step(0.01))
		assert.False(t, touched)
		assert.InDelta(t, 10, a.Velocity.X, 1e-12)
	}
}

func TestHeadOnBounceAgainstWallThroughWorld(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	ball := physics.NewCircle(physics.Body{X: 85, Mass: 0.5, Restitution: physics.Restitution(1), CollisionGroup: 1}, 20)
	ball.Velocity = box2d.MakeB2Vec2(10, 0)
	wall := physics.NewLine(physics.Body{X: 100, CollisionGroup: 1}, 100, -50, 100, 50)
	w.Registry.Register(ball)
	w.Registry.Register(wall)

	assert.Equal(t, 1, w.Step(0.01))
	assert.InDelta(t, -10, ball.Velocity.X, 1e-9)
	assert.InDelta(t, 0, ball.Velocity.Y, 1e-9)
}

func TestInelasticBallStopsAgainstWall(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	ball := physics.NewCircle(physics.Body{X: 85, Mass: 1, Restitution: physics.Restitution(0), CollisionGroup: 1}, 20)
	ball.Velocity = box2d.MakeB2Vec2(10, 0)
	wall := physics.NewLine(physics.Body{X: 100, Restitution: physics.Restitution(0), CollisionGroup: 1}, 100, -50, 100, 50)
	w.Registry.Register(ball)
	w.Registry.Register(wall)

	assert.Zero(t, ball.Restitution)
	assert.Zero(t, wall.Restitution)
	assert.Equal(t, 1, w.Step(0.1))
	assert.InDelta(t, 0, ball.Velocity.X, 1e-9)
}

func TestUnsetRestitutionUsesDefault(t *testing.T) {
	t.Parallel()

	e := physics.NewCircle(physics.Body{Mass: 1}, 10)
	assert.InDelta(t, physics.DefaultRestitution, e.Restitution, 1e-12)
}

func TestImpulseCannotExceedMaxVelocity(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	heavy := physics.NewCircle(physics.Body{X: 0, Mass: 10, MaxVelocity: 100}, 20)
	light := physics.NewCircle(physics.Body{X: 39, Mass: 0.1, MaxVelocity: 100}, 20)
	heavy.Velocity = box2d.MakeB2Vec2(100, 0)
	w.Registry.Register(heavy)
	w.Registry.Register(light)

	require.Equal(t, 1, w.Step(0.01))
	assert.LessOrEqual(t, light.Velocity.Length(), light.MaxVelocity+1e-9)
	assert.InDelta(t, 100, light.Velocity.X, 1e-9)
	assert.LessOrEqual(t, heavy.Velocity.Length(), heavy.MaxVelocity+1e-9)
}

func TestContactListenersSeeSelfThenOther(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	a := physics.NewCircle(physics.Body{X: 0, Mass: 1}, 20)
	b := physics.NewCircle(physics.Body{X: 30, Mass: 1}, 20)
	a.Velocity = box2d.MakeB2Vec2(20, 0)
	w.Registry.Register(a)
	w.Registry.Register(b)

	var seen [][2]physics.EntityID
	record := func(self, other *physics.Entity) { seen = append(seen, [2]physics.EntityID{self.ID, other.ID}) }
	a.OnContact(record)
	b.OnContact(record)

	w.Step(0.01)
	assert.Equal(t, [][2]physics.EntityID{{a.ID, b.ID}, {b.ID, a.ID}}, seen)
}

func TestListenerRemovingEntityStopsFurtherContacts(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	a := physics.NewCircle(physics.Body{X: 0, Mass: 1}, 20)
	b := physics.NewCircle(physics.Body{X: 30, Mass: 1}, 20)
	c := physics.NewCircle(physics.Body{X: -30, Mass: 1}, 20)
	a.Velocity = box2d.MakeB2Vec2(20, 0)
	c.Velocity = box2d.MakeB2Vec2(20, 0)
	for _, e := range []*physics.Entity{a, b, c} {
		w.Registry.Register(e)
	}
	a.OnContact(func(self, _ *physics.Entity) {
		self.Alive = false
		w.Registry.Unregister(self)
	})

	assert.Equal(t, 1, w.Step(0.01))
	assert.False(t, w.Registry.IsActive(a.ID))
}

func TestDeadEntitiesAreSkipped(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	a := physics.NewCircle(physics.Body{X: 0, Mass: 1}, 20)
	b := physics.NewCircle(physics.Body{X: 30, Mass: 1}, 20)
	a.Velocity = box2d.MakeB2Vec2(20, 0)
	b.Alive = false
	w.Registry.Register(a)
	w.Registry.Register(b)

	assert.Zero(t, w.Step(0.01))
}

func TestViews(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	c := physics.NewCircle(physics.Body{X: 1, Y: 2, Tint: "#ff0000"}, 7)
	c.Player = "p1"
	l := physics.NewLine(physics.Body{X: 0, Y: 0}, -5, 0, 5, 0)
	w.Registry.Register(c)
	w.Registry.Register(l)

	views := w.Views()
	require.Len(t, views, 2)
	assert.Equal(t, physics.View{
		ID: c.ID, Player: "p1", X: 1, Y: 2, Shape: physics.ShapeCircle, Radius: 7, Tint: "#ff0000",
	}, views[0])
	assert.Equal(t, []float64{-5, 0, 5, 0}, views[1].Line)
	assert.Equal(t, "line", views[1].Shape.String())
}

func TestScriptedControllerIsDeterministic(t *testing.T) {
	t.Parallel()

	run := func() box2d.B2Vec2 {
		w := newWorld(physics.GroupZeroCollidesAll)
		e := physics.NewCircle(physics.Body{Mass: 1, MaxVelocity: 1000}, 10)
		w.Registry.Register(e)
		e.SetController(physics.NewScriptedController(300, 300, 150, 150, 1, 1.2))
		for i := 0; i < 90; i++ {
			w.Step(1.0 / 60)
			w.Sync(1.0 / 60)
		}
		return e.Position
	}
	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.InDelta(t, 300+150*math.Sin(1.5), first.X, 2)
}

func TestInputController(t *testing.T) {
	t.Parallel()

	w := newWorld(physics.GroupZeroCollidesAll)
	e := physics.NewCircle(physics.Body{Mass: 1, MaxVelocity: 1000}, 10)
	w.Registry.Register(e)
	ctrl := physics.NewInputController("p1")
	e.SetController(ctrl)
	assert.Equal(t, e.ID, ctrl.Entity())

	ctrl.SetState(physics.ControlState{X: 0.05, Y: 0})
	w.Step(0.1)
	assert.InDelta(t, 0, e.Velocity.Length(), 1e-12, "inside deadzone")

	ctrl.SetState(physics.ControlState{X: 3, Y: 4})
	w.Step(0.1)
	assert.InDelta(t, physics.DefaultAcceleration*0.1, e.Velocity.Length(), 1e-9, "direction is normalised")

	ctrl.SetState(physics.ControlState{Position: &[2]float64{40, 50}})
	w.Step(0.1)
	w.Sync(0.1)
	assert.InDelta(t, 40+e.Velocity.X*0.1, e.Position.X, 1e-9)
}

func TestSetControllerReplaces(t *testing.T) {
	t.Parallel()

	e := physics.NewCircle(physics.Body{Mass: 1}, 10)
	first := physics.NewInputController("a")
	second := physics.NewInputController("b")
	e.SetController(first)
	e.SetController(second)
	assert.Same(t, second, e.Controller())
}
