package physics

import (
	"math"

	"github.com/ByteArena/box2d"
)

// Contact is an overlap between A and B. Normal is a unit vector pointing from A towards B.
type Contact struct {
	A, B   *Entity
	Normal box2d.B2Vec2
	Depth  float64
}

// GroupPolicy decides how collision group 0 behaves.
type GroupPolicy uint8

const (
	// GroupZeroCollidesAll makes group 0 a wildcard that collides with every group.
	GroupZeroCollidesAll GroupPolicy = iota
	// GroupZeroNeverCollides makes group 0 entities inert.
	GroupZeroNeverCollides
)

func (p GroupPolicy) canCollide(a, b *Entity) bool {
	if a.CollisionGroup == 0 || b.CollisionGroup == 0 {
		return p == GroupZeroCollidesAll
	}
	return a.CollisionGroup == b.CollisionGroup
}

// detect tests a and b at their predicted positions.
func detect(a, b *Entity) (Contact, bool) {
	switch {
	case a.Shape.Kind == ShapeCircle && b.Shape.Kind == ShapeCircle:
		return circleCircle(a, b)
	case a.Shape.Kind == ShapeCircle && b.Shape.Kind == ShapeLine:
		c, ok := circleLine(a, b)
		if !ok {
			return Contact{}, false
		}
		// normal was computed line -> circle
		return Contact{A: a, B: b, Normal: box2d.B2Vec2MulScalar(-1, c.Normal), Depth: c.Depth}, true
	case a.Shape.Kind == ShapeLine && b.Shape.Kind == ShapeCircle:
		c, ok := circleLine(b, a)
		if !ok {
			return Contact{}, false
		}
		return Contact{A: a, B: b, Normal: c.Normal, Depth: c.Depth}, true
	default:
		return Contact{}, false
	}
}

func circleCircle(a, b *Entity) (Contact, bool) {
	d := box2d.B2Vec2Sub(b.Predicted, a.Predicted)
	sum := a.Shape.Radius + b.Shape.Radius
	distSq := box2d.B2Vec2Dot(d, d)
	if distSq >= sum*sum {
		return Contact{}, false
	}
	dist := math.Sqrt(distSq)
	if dist < epsilon {
		// coincident centres have no meaningful normal
		return Contact{}, false
	}
	return Contact{A: a, B: b, Normal: box2d.B2Vec2MulScalar(1/dist, d), Depth: sum - dist}, true
}

// circleLine returns a contact whose normal points from the line to the circle.
func circleLine(circle, line *Entity) (Contact, bool) {
	p1, p2 := line.Shape.endpoints(line.Predicted)
	q := closestOnSegment(circle.Predicted, p1, p2)
	d := box2d.B2Vec2Sub(circle.Predicted, q)
	r := circle.Shape.Radius
	distSq := box2d.B2Vec2Dot(d, d)
	if distSq >= r*r {
		return Contact{}, false
	}
	dist := math.Sqrt(distSq)
	n := segmentNormal(p1, p2)
	if dist >= epsilon {
		n = box2d.B2Vec2MulScalar(1/dist, d)
	} else if box2d.B2Vec2Dot(n, circle.Velocity) > 0 {
		// centre on the segment: push back against the direction of travel
		n = box2d.B2Vec2MulScalar(-1, n)
	}
	return Contact{A: line, B: circle, Normal: n, Depth: r - dist}, true
}

// resolve applies the impulse and positional correction. It reports whether the contact
// was resolved; separating or doubly immovable pairs are skipped.
func resolve(c Contact) bool {
	invA, invB := c.A.InvMass(), c.B.InvMass()
	if invA+invB == 0 {
		return false
	}

	vRel := box2d.B2Vec2Dot(box2d.B2Vec2Sub(c.B.Velocity, c.A.Velocity), c.Normal)
	if vRel >= 0 {
		return false
	}

	e := math.Min(c.A.Restitution, c.B.Restitution)
	j := -(1 + e) * vRel / (invA + invB)

	c.A.Velocity = box2d.B2Vec2Sub(c.A.Velocity, box2d.B2Vec2MulScalar(j*invA, c.Normal))
	c.B.Velocity = box2d.B2Vec2Add(c.B.Velocity, box2d.B2Vec2MulScalar(j*invB, c.Normal))

	correction := c.Depth / (invA + invB)
	shiftA := box2d.B2Vec2MulScalar(-correction*invA, c.Normal)
	shiftB := box2d.B2Vec2MulScalar(correction*invB, c.Normal)
	c.A.Position = box2d.B2Vec2Add(c.A.Position, shiftA)
	c.A.Predicted = box2d.B2Vec2Add(c.A.Predicted, shiftA)
	c.B.Position = box2d.B2Vec2Add(c.B.Position, shiftB)
	c.B.Predicted = box2d.B2Vec2Add(c.B.Predicted, shiftB)
	return true
}

func notify(c Contact) {
	for _, l := range c.A.listeners {
		l(c.A, c.B)
	}
	for _, l := range c.B.listeners {
		l(c.B, c.A)
	}
}
