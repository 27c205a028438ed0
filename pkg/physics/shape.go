package physics

import (
	"math"

	"github.com/ByteArena/box2d"
)

type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	default:
		return "unknown"
	}
}

func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Shape is the collision geometry of an entity. Line endpoints are relative to the entity position.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	A, B   box2d.B2Vec2
}

func (s Shape) endpoints(at box2d.B2Vec2) (box2d.B2Vec2, box2d.B2Vec2) {
	return box2d.B2Vec2Add(at, s.A), box2d.B2Vec2Add(at, s.B)
}

// distances below this are treated as coincident
const epsilon = 1e-9

// closestOnSegment returns the point of segment ab nearest to p.
func closestOnSegment(p, a, b box2d.B2Vec2) box2d.B2Vec2 {
	ab := box2d.B2Vec2Sub(b, a)
	lenSq := box2d.B2Vec2Dot(ab, ab)
	if lenSq < epsilon {
		return a
	}
	t := box2d.B2Vec2Dot(box2d.B2Vec2Sub(p, a), ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return box2d.B2Vec2Add(a, box2d.B2Vec2MulScalar(t, ab))
}

// segmentNormal is the left-hand unit normal of ab.
func segmentNormal(a, b box2d.B2Vec2) box2d.B2Vec2 {
	d := box2d.B2Vec2Sub(b, a)
	n := box2d.MakeB2Vec2(-d.Y, d.X)
	if l := n.Length(); l > epsilon {
		return box2d.B2Vec2MulScalar(1/l, n)
	}
	return box2d.MakeB2Vec2(1, 0)
}
