package modes

import (
	"slices"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// Hockey field, centred on the origin.
const (
	HockeyHalfWidth  = 500.0
	HockeyHalfHeight = 300.0
	HockeyStartX     = 200.0
	HockeyPlayerGap  = 60.0

	hockeyPlayerGroup = 1
	hockeyWallGroup   = 0
)

// Team colours.
const (
	TeamOneTint = "#3333ff"
	TeamTwoTint = "#ff3333"
)

// HookGoal fires after a goal, once positions are reset.
const HookGoal = "goal"

type Team int

const (
	TeamNone Team = iota
	TeamOne
	TeamTwo
)

type GoalEvent struct {
	Scorer Team
	Score  [2]int
}

// Hockey is two teams and a neutral ball. Walls close the top and bottom; the ball crossing
// either end of the field is a goal for the team defending the other end.
type Hockey struct {
	h     *gamemode.Handler
	ball  *physics.Entity
	walls []*physics.Entity
	team1 []string
	team2 []string
	score [2]int
}

var (
	_ gamemode.Gamemode             = (*Hockey)(nil)
	_ gamemode.PostUpdater          = (*Hockey)(nil)
	_ gamemode.SpawnPointer         = (*Hockey)(nil)
	_ gamemode.PlayerCreatedHandler = (*Hockey)(nil)
	_ gamemode.PlayerLeaveHandler   = (*Hockey)(nil)
)

func NewHockey() *Hockey {
	return &Hockey{}
}

func (g *Hockey) Name() string { return "hockey" }

func (g *Hockey) Setup(h *gamemode.Handler) error {
	g.h = h
	if err := h.AddHook(HookGoal); err != nil {
		return err
	}

	g.ball = physics.NewCircle(physics.Body{
		Mass:           0.5,
		Friction:       0.3,
		MaxVelocity:    400,
		CollisionGroup: hockeyPlayerGroup,
		Tint:           "#ffffff",
	}, 20)
	h.Registry().Register(g.ball)

	wall := physics.Body{Restitution: physics.Restitution(0.3), CollisionGroup: hockeyWallGroup, Tint: "#888888"}
	g.walls = []*physics.Entity{
		physics.NewLine(wall, -HockeyHalfWidth, -HockeyHalfHeight, HockeyHalfWidth, -HockeyHalfHeight),
		physics.NewLine(wall, -HockeyHalfWidth, HockeyHalfHeight, HockeyHalfWidth, HockeyHalfHeight),
	}
	for _, w := range g.walls {
		h.Registry().Register(w)
	}
	return nil
}

func (g *Hockey) Ball() *physics.Entity {
	return g.ball
}

func (g *Hockey) Walls() []*physics.Entity {
	return g.walls
}

// Score returns the goals of team one and team two.
func (g *Hockey) Score() (int, int) {
	return g.score[0], g.score[1]
}

func (g *Hockey) Team(player string) Team {
	switch {
	case slices.Contains(g.team1, player):
		return TeamOne
	case slices.Contains(g.team2, player):
		return TeamTwo
	default:
		return TeamNone
	}
}

// SpawnPoint assigns the player to the smaller team, team one on ties.
func (g *Hockey) SpawnPoint(p gamemode.PlayerInfo) (float64, float64) {
	if len(g.team2) >= len(g.team1) {
		g.team1 = append(g.team1, p.ID)
	} else {
		g.team2 = append(g.team2, p.ID)
	}
	return g.startPosition(p.ID)
}

// OnPlayerCreated paints the player's entity in its team colour.
func (g *Hockey) OnPlayerCreated(p gamemode.PlayerInfo, e *physics.Entity) {
	switch g.Team(p.ID) {
	case TeamOne:
		e.Tint = TeamOneTint
	case TeamTwo:
		e.Tint = TeamTwoTint
	case TeamNone:
	}
}

func (g *Hockey) startPosition(player string) (float64, float64) {
	if i := slices.Index(g.team1, player); i >= 0 {
		return -HockeyStartX, lane(i)
	}
	if i := slices.Index(g.team2, player); i >= 0 {
		return HockeyStartX, lane(i)
	}
	return 0, 0
}

// lane spreads team members vertically: 0, +gap, -gap, +2gap, ...
func lane(i int) float64 {
	step := float64((i + 1) / 2)
	if i%2 == 1 {
		return step * HockeyPlayerGap
	}
	return -step * HockeyPlayerGap
}

func (g *Hockey) PostUpdate(float64) {
	switch x := g.ball.Position.X; {
	case x < -HockeyHalfWidth:
		g.goal(TeamTwo)
	case x > HockeyHalfWidth:
		g.goal(TeamOne)
	}
}

func (g *Hockey) goal(scorer Team) {
	g.score[scorer-1]++
	g.resetBall()
	g.resetPlayers()
	g.h.Metrics().Count("goals", 1)
	_ = g.h.TriggerHook(HookGoal, GoalEvent{Scorer: scorer, Score: g.score})
}

func (g *Hockey) resetBall() {
	g.ball.ResetPhysics()
	g.ball.MoveTo(0, 0)
}

func (g *Hockey) resetPlayers() {
	for _, id := range slices.Concat(g.team1, g.team2) {
		e, err := g.h.PlayerEntity(id)
		if err != nil {
			continue
		}
		x, y := g.startPosition(id)
		e.ResetPhysics()
		e.MoveTo(x, y)
	}
}

func (g *Hockey) OnPlayerLeave(id string) {
	g.team1 = slices.DeleteFunc(g.team1, func(p string) bool { return p == id })
	g.team2 = slices.DeleteFunc(g.team2, func(p string) bool { return p == id })
}

func (g *Hockey) CleanUp() {
	g.team1, g.team2 = nil, nil
	g.score = [2]int{}
	g.ball = nil
	g.walls = nil
}
