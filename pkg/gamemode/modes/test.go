package modes

import (
	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/physics"
)

// Scripted is the offline test gamemode: two circles on Lissajous paths and no players.
type Scripted struct {
	Bodies []*physics.Entity
}

var _ gamemode.Gamemode = (*Scripted)(nil)

func NewScripted() *Scripted {
	return &Scripted{}
}

func (s *Scripted) Name() string { return "test" }

func (s *Scripted) Setup(h *gamemode.Handler) error {
	paths := []*physics.ScriptedController{
		physics.NewScriptedController(300, 300, 150, 150, 1, 1.2),
		physics.NewScriptedController(450, 300, 150, 150, 0.7, 1.5),
	}
	tints := []string{"#ff0000", "#0000ff"}
	for i, path := range paths {
		e := physics.NewCircle(physics.Body{
			X:              path.CenterX,
			Y:              path.CenterY,
			Mass:           1,
			MaxVelocity:    1000,
			CollisionGroup: 1,
			Tint:           tints[i],
		}, 30)
		h.Registry().Register(e)
		e.SetController(path)
		s.Bodies = append(s.Bodies, e)
	}
	return nil
}

func (s *Scripted) CleanUp() {
	s.Bodies = nil
}
