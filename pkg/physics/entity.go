package physics

import (
	"github.com/ByteArena/box2d"
)

// EntityID is a stable index into the Registry. The zero value means "not registered yet".
type EntityID uint32

// Entity defaults used when a Body field is left unset by NewCircle and NewLine.
const (
	DefaultRestitution = 1.0
	DefaultMaxVelocity = 100.0
)

// RenderHandle is the drawable owned by the rendering collaborator. The core moves it and
// tells it when it can be released, nothing else.
type RenderHandle interface {
	SetPosition(x, y float64)
	Release()
}

// ContactListener observes a resolved contact from the point of view of self.
type ContactListener func(self, other *Entity)

// Entity is a simulated body. Fields are mutated only from the tick context.
type Entity struct {
	ID EntityID

	Position     box2d.B2Vec2
	Predicted    box2d.B2Vec2
	Velocity     box2d.B2Vec2
	Acceleration box2d.B2Vec2

	// Mass of zero makes the entity immovable.
	Mass           float64
	Friction       float64
	Restitution    float64
	MaxVelocity    float64
	CollisionGroup uint32
	Alive          bool

	Shape  Shape
	Tint   string
	Handle RenderHandle

	// Player is the owning player id, empty for unowned entities.
	Player string

	controller Controller
	listeners  []ContactListener
}

// Body describes the physical properties of a new entity. A nil Restitution means
// DefaultRestitution; zero is a valid, fully inelastic value.
type Body struct {
	X, Y           float64
	Mass           float64
	Friction       float64
	Restitution    *float64
	MaxVelocity    float64
	CollisionGroup uint32
	Tint           string
}

// Restitution is a convenience for building Body literals.
func Restitution(e float64) *float64 {
	return &e
}

func newEntity(b Body, shape Shape) *Entity {
	restitution := DefaultRestitution
	if b.Restitution != nil {
		restitution = *b.Restitution
	}
	if b.MaxVelocity == 0 {
		b.MaxVelocity = DefaultMaxVelocity
	}
	pos := box2d.MakeB2Vec2(b.X, b.Y)
	return &Entity{
		Position:       pos,
		Predicted:      pos,
		Mass:           b.Mass,
		Friction:       b.Friction,
		Restitution:    restitution,
		MaxVelocity:    b.MaxVelocity,
		CollisionGroup: b.CollisionGroup,
		Alive:          true,
		Shape:          shape,
		Tint:           b.Tint,
	}
}

// NewCircle creates an unregistered circular entity.
func NewCircle(b Body, radius float64) *Entity {
	return newEntity(b, Shape{Kind: ShapeCircle, Radius: radius})
}

// NewLine creates an unregistered segment. Endpoints are absolute at creation and stored
// relative to the entity position.
func NewLine(b Body, x1, y1, x2, y2 float64) *Entity {
	origin := box2d.MakeB2Vec2(b.X, b.Y)
	return newEntity(b, Shape{
		Kind: ShapeLine,
		A:    box2d.B2Vec2Sub(box2d.MakeB2Vec2(x1, y1), origin),
		B:    box2d.B2Vec2Sub(box2d.MakeB2Vec2(x2, y2), origin),
	})
}

func (e *Entity) InvMass() float64 {
	if e.Mass == 0 {
		return 0
	}
	return 1 / e.Mass
}

// SetController attaches c, replacing any previous controller.
func (e *Entity) SetController(c Controller) {
	e.controller = c
	if c != nil {
		c.Register(e.ID)
	}
}

func (e *Entity) Controller() Controller {
	return e.controller
}

// OnContact appends a listener invoked on every resolved contact involving e.
func (e *Entity) OnContact(l ContactListener) {
	e.listeners = append(e.listeners, l)
}

// ResetPhysics zeroes velocity and acceleration.
func (e *Entity) ResetPhysics() {
	e.Velocity.SetZero()
	e.Acceleration.SetZero()
}

// MoveTo teleports the entity, committed and predicted.
func (e *Entity) MoveTo(x, y float64) {
	e.Position = box2d.MakeB2Vec2(x, y)
	e.Predicted = e.Position
	if e.Handle != nil {
		e.Handle.SetPosition(x, y)
	}
}

// integrate runs one simulation step. Position is not committed here.
func (e *Entity) integrate(dt float64) {
	if e.controller != nil {
		e.controller.Update(e, dt)
	}

	// friction is applied before acceleration and never reverses the velocity
	damp := 1 - e.Friction*dt
	if damp < 0 {
		damp = 0
	}
	e.Velocity = box2d.B2Vec2MulScalar(damp, e.Velocity)

	e.Velocity = box2d.B2Vec2Add(e.Velocity, box2d.B2Vec2MulScalar(dt, e.Acceleration))
	e.clampVelocity()

	e.Predicted = box2d.B2Vec2Add(e.Position, box2d.B2Vec2MulScalar(dt, e.Velocity))
}

func (e *Entity) clampVelocity() {
	if e.MaxVelocity <= 0 {
		e.Velocity.SetZero()
		return
	}
	speed := e.Velocity.Length()
	if speed > e.MaxVelocity {
		e.Velocity = box2d.B2Vec2MulScalar(e.MaxVelocity/speed, e.Velocity)
	}
}

// commit moves the entity along its velocity and mirrors the result onto the handle.
func (e *Entity) commit(dt float64) {
	e.Position = box2d.B2Vec2Add(e.Position, box2d.B2Vec2MulScalar(dt, e.Velocity))
	e.Predicted = e.Position
	if e.Handle != nil {
		e.Handle.SetPosition(e.Position.X, e.Position.Y)
	}
}

// View is the read-only render projection of an entity.
type View struct {
	ID     EntityID  `json:"id"`
	Player string    `json:"player,omitempty"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Shape  ShapeKind `json:"shape"`
	Radius float64   `json:"radius,omitempty"`
	Line   []float64 `json:"line,omitempty"`
	Tint   string    `json:"tint,omitempty"`
}

func (e *Entity) View() View {
	v := View{
		ID:     e.ID,
		Player: e.Player,
		X:      e.Position.X,
		Y:      e.Position.Y,
		Shape:  e.Shape.Kind,
		Tint:   e.Tint,
	}
	switch e.Shape.Kind {
	case ShapeCircle:
		v.Radius = e.Shape.Radius
	case ShapeLine:
		a, b := e.Shape.endpoints(e.Position)
		v.Line = []float64{a.X, a.Y, b.X, b.Y}
	}
	return v
}
