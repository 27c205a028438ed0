package physics

import (
	"math"

	"github.com/ByteArena/box2d"
)

// Controller drives one entity. The set is closed: ScriptedController and InputController.
// Register is called once when the controller is attached; Update runs at the start of
// every integration step.
type Controller interface {
	Register(id EntityID)
	Update(e *Entity, dt float64)
}

// ScriptedController moves its entity along a Lissajous curve around a centre point. It is
// used for non-networked test entities.
type ScriptedController struct {
	CenterX, CenterY float64
	AmpX, AmpY       float64
	FreqX, FreqY     float64

	entity  EntityID
	elapsed float64
}

var _ Controller = (*ScriptedController)(nil)

func NewScriptedController(cx, cy, ax, ay, fx, fy float64) *ScriptedController {
	return &ScriptedController{CenterX: cx, CenterY: cy, AmpX: ax, AmpY: ay, FreqX: fx, FreqY: fy}
}

func (s *ScriptedController) Register(id EntityID) {
	s.entity = id
	s.elapsed = 0
}

// Update places the entity on the curve and sets its velocity to the curve tangent so the
// predicted position lands on the next point.
func (s *ScriptedController) Update(e *Entity, dt float64) {
	s.elapsed += dt
	t := s.elapsed
	e.Position = box2d.MakeB2Vec2(
		s.CenterX+s.AmpX*math.Sin(s.FreqX*t),
		s.CenterY+s.AmpY*math.Sin(s.FreqY*t),
	)
	e.Velocity = box2d.MakeB2Vec2(
		s.AmpX*s.FreqX*math.Cos(s.FreqX*t),
		s.AmpY*s.FreqY*math.Cos(s.FreqY*t),
	)
	e.Acceleration.SetZero()
}

// ControlState is the latest input reported by a player.
type ControlState struct {
	// X and Y are stick axes in [-1, 1].
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Position, when set, teleports the entity on the next update.
	Position *[2]float64 `json:"position,omitempty"`
	// Sensor is opaque auxiliary state shown to the player list.
	Sensor map[string]float64 `json:"sensor,omitempty"`
}

// Input tuning.
const (
	DefaultDeadzone     = 0.1
	DefaultAcceleration = 300.0
)

// InputController applies the latest ControlState of a remote player.
type InputController struct {
	PlayerID     string
	Deadzone     float64
	Acceleration float64

	entity  EntityID
	state   ControlState
	pending *[2]float64
}

var _ Controller = (*InputController)(nil)

func NewInputController(playerID string) *InputController {
	return &InputController{
		PlayerID:     playerID,
		Deadzone:     DefaultDeadzone,
		Acceleration: DefaultAcceleration,
	}
}

func (c *InputController) Register(id EntityID) {
	c.entity = id
}

func (c *InputController) Entity() EntityID {
	return c.entity
}

// SetState stores the latest input. Only call from the tick context.
func (c *InputController) SetState(s ControlState) {
	c.state = s
	if s.Position != nil {
		p := *s.Position
		c.pending = &p
	}
}

func (c *InputController) State() ControlState {
	return c.state
}

// Direction is the stick vector after the deadzone, with length at most 1.
func (c *InputController) Direction() box2d.B2Vec2 {
	d := box2d.MakeB2Vec2(c.state.X, c.state.Y)
	mag := d.Length()
	if mag < c.Deadzone || mag == 0 {
		return box2d.MakeB2Vec2(0, 0)
	}
	if mag > 1 {
		d = box2d.B2Vec2MulScalar(1/mag, d)
	}
	return d
}

func (c *InputController) Update(e *Entity, _ float64) {
	if c.pending != nil {
		e.MoveTo(c.pending[0], c.pending[1])
		c.pending = nil
	}
	e.Acceleration = box2d.B2Vec2MulScalar(c.Acceleration, c.Direction())
}
