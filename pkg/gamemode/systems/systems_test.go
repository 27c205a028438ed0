package systems_test

import (
	"testing"

	"github.com/ByteArena/box2d"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/gamemode/systems"
	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/physics"
)

// lineup spawns players along the x axis, 100 units apart.
type lineup struct {
	next float64
}

func (*lineup) Name() string                  { return "lineup" }
func (*lineup) Setup(*gamemode.Handler) error { return nil }
func (*lineup) CleanUp()                      {}
func (l *lineup) SpawnPoint(gamemode.PlayerInfo) (float64, float64) {
	x := l.next
	l.next += 100
	return x, 0
}

type sink struct {
	accept  bool
	records []leaderboard.Record
}

func (s *sink) Offer(r leaderboard.Record) bool {
	if !s.accept {
		return false
	}
	s.records = append(s.records, r)
	return true
}

type fixture struct {
	h         *gamemode.Handler
	kill      *systems.Kill
	highscore *systems.Highscore
	respawn   *systems.Respawn
	ability   *systems.Ability
	sink      *sink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	world := physics.NewWorld(physics.GroupZeroCollidesAll, zerolog.Nop())
	f := &fixture{
		h:       gamemode.NewHandler(world, &lineup{}, gamemode.HandlerOptions{Logger: zerolog.Nop()}),
		kill:    systems.NewKill(),
		respawn: systems.NewRespawn(),
		ability: systems.NewAbility(),
		sink:    &sink{accept: true},
	}
	f.highscore = systems.NewHighscore(f.sink)
	for _, s := range []gamemode.System{f.ability, f.kill, f.highscore, f.respawn, systems.NewSpawn()} {
		require.NoError(t, f.h.AddSystem(s))
	}
	require.NoError(t, f.h.Start())
	return f
}

func (f *fixture) join(t *testing.T, id string) *physics.Entity {
	t.Helper()
	info := gamemode.PlayerInfo{ID: id, Name: "name-" + id}
	e, err := f.h.OnPlayerJoin(info)
	require.NoError(t, err)
	f.h.OnPlayerCreated(info, e)
	return e
}

func TestSpawnCreatesControlledEntity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var spawned []string
	require.NoError(t, gamemode.Subscribe(f.h, systems.HookSpawn, func(ev systems.SpawnEvent) {
		spawned = append(spawned, ev.Player.ID)
	}))

	a := f.join(t, "a")
	b := f.join(t, "b")
	assert.Equal(t, []string{"a", "b"}, spawned)
	assert.True(t, f.h.Registry().IsActive(a.ID))
	assert.Equal(t, "a", a.Player)
	assert.InDelta(t, 100, b.Position.X, 0)
	assert.NotEqual(t, a.Tint, b.Tint)

	ctrl, ok := a.Controller().(*physics.InputController)
	require.True(t, ok)
	assert.Equal(t, "a", ctrl.PlayerID)
	assert.Equal(t, a.ID, ctrl.Entity())

	_, err := f.h.OnPlayerJoin(gamemode.PlayerInfo{ID: "a"})
	require.Error(t, err)
}

func collide(f *fixture, a, b *physics.Entity) {
	a.MoveTo(0, 0)
	b.MoveTo(30, 0)
	a.Velocity = box2d.MakeB2Vec2(50, 0)
	b.Velocity = box2d.MakeB2Vec2(-50, 0)
	f.h.World().Step(1.0 / 60)
}

func TestContactTagsBothWaysAndDeathCreditsAttacker(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	b := f.join(t, "b")

	collide(f, a, b)
	assert.Equal(t, []string{"b"}, f.kill.Tags().Attackers(a.ID))
	assert.Equal(t, []string{"a"}, f.kill.Tags().Attackers(b.ID))

	var kills []systems.KillEvent
	require.NoError(t, gamemode.Subscribe(f.h, systems.HookKill, func(ev systems.KillEvent) {
		kills = append(kills, ev)
	}))

	f.h.Kill(b)
	assert.Equal(t, 1, f.kill.Score("a"))
	assert.Equal(t, []systems.KillEvent{{Victim: "b", VictimEntity: b.ID, Attacker: "a"}}, kills)
	assert.Empty(t, f.kill.Tags().Attackers(b.ID))
	assert.Equal(t, map[string]int{"a": 1}, f.kill.Scores())
}

func TestExpiredTagsEarnNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	b := f.join(t, "b")
	collide(f, a, b)

	for i := 0; i < 5; i++ {
		f.h.PreUpdate(1)
	}
	f.h.Kill(b)
	assert.Zero(t, f.kill.Score("a"))
}

func TestHighscoreFlushesDeltas(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	b := f.join(t, "b")
	f.h.PostUpdate(0)
	assert.Equal(t, []leaderboard.Record{
		{Player: "a", Name: "name-a", Delta: 0},
		{Player: "b", Name: "name-b", Delta: 0},
	}, f.sink.records)

	f.sink.records = nil
	collide(f, a, b)
	f.h.Kill(b)
	f.sink.accept = false
	f.h.PostUpdate(0)
	assert.Empty(t, f.sink.records)

	f.sink.accept = true
	f.h.PostUpdate(0)
	assert.Equal(t, []leaderboard.Record{{Player: "a", Name: "name-a", Delta: 1}}, f.sink.records)
	assert.Equal(t, 1, f.highscore.Total("a"))

	f.h.PostUpdate(0)
	assert.Len(t, f.sink.records, 1, "nothing left to flush")
}

func TestHighscoreNeedsKillSystem(t *testing.T) {
	t.Parallel()

	world := physics.NewWorld(physics.GroupZeroCollidesAll, zerolog.Nop())
	h := gamemode.NewHandler(world, &lineup{}, gamemode.HandlerOptions{Logger: zerolog.Nop()})
	require.NoError(t, h.AddSystem(systems.NewHighscore(&sink{})))
	require.NoError(t, h.AddSystem(systems.NewSpawn()))
	require.ErrorIs(t, h.Start(), gamemode.ErrUndefinedHook)
}

func TestRespawnReturnsToSpawnPoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.join(t, "a")
	b := f.join(t, "b")
	b.MoveTo(400, 400)
	b.Velocity = box2d.MakeB2Vec2(10, 10)

	f.h.Kill(b)
	require.True(t, f.h.RespawnPending(b))
	for i := 0; i < 2; i++ {
		f.h.PreUpdate(1)
		assert.False(t, f.h.Registry().IsActive(b.ID))
	}
	f.h.PreUpdate(1)
	assert.True(t, f.h.Registry().IsActive(b.ID))
	assert.InDelta(t, 100, b.Position.X, 0)
	assert.InDelta(t, 0, b.Position.Y, 0)
	assert.InDelta(t, 0, b.Velocity.Length(), 0)
}

func TestAbandonedEntityIsRemovedOnDeath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	f.h.OnPlayerLeave("a")
	assert.True(t, f.h.Registry().IsActive(a.ID))

	f.h.Kill(a)
	assert.False(t, f.h.RespawnPending(a))
	assert.False(t, f.h.Registry().Known(a.ID))
}

func TestDashAndCooldown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	ctrl := a.Controller().(*physics.InputController)
	ctrl.SetState(physics.ControlState{X: 0, Y: 0.5})

	f.h.OnButtonPressed("a", systems.ButtonDash)
	assert.InDelta(t, 0, a.Velocity.X, 1e-12)
	assert.InDelta(t, a.MaxVelocity, a.Velocity.Y, 1e-12)
	assert.True(t, f.ability.CoolingDown("a"))

	a.Velocity.SetZero()
	f.h.OnButtonPressed("a", systems.ButtonDash)
	assert.InDelta(t, 0, a.Velocity.Length(), 0, "still cooling down")

	f.h.PreUpdate(systems.DashCooldown)
	assert.False(t, f.ability.CoolingDown("a"))

	a.Velocity = box2d.MakeB2Vec2(30, 40)
	f.h.OnButtonPressed("a", systems.ButtonBrake)
	assert.InDelta(t, 0, a.Velocity.Length(), 0)

	f.h.OnButtonPressed("a", "wave")
	f.h.OnButtonPressed("ghost", systems.ButtonDash)
	f.h.OnPlayerLeave("a")
	assert.False(t, f.ability.CoolingDown("a"))
}

func TestDashFallsBackToTravelDirection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	a := f.join(t, "a")
	a.Velocity = box2d.MakeB2Vec2(-3, 0)
	f.h.OnButtonPressed("a", systems.ButtonDash)
	assert.InDelta(t, -a.MaxVelocity, a.Velocity.X, 1e-12)

	b := f.join(t, "b")
	f.h.OnButtonPressed("b", systems.ButtonDash)
	assert.InDelta(t, 0, b.Velocity.Length(), 0, "standing still without input does nothing")
	assert.False(t, f.ability.CoolingDown("b"))
}
