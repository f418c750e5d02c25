package geom

import (
	"fmt"
	"math"

	"github.com/maja42/vmath"
	"github.com/maja42/vmath/math32"
)

// Box is an axis-aligned rectangle with closed boundaries. A valid box has
// X ≤ X2 and Y ≤ Y2; the empty box inverts that on purpose.
type Box struct {
	X, Y, X2, Y2 float32
}

// B is a shorthand constructor for boxes.
func B(x, y, x2, y2 float32) Box {
	return Box{X: x, Y: y, X2: x2, Y2: y2}
}

// Empty returns the identity of Expand: a box that covers nothing, has area 0
// and intersects no finite box.
func Empty() Box {
	return Box{
		X:  math32.Infinity,
		Y:  math32.Infinity,
		X2: math32.NegInfinity,
		Y2: math32.NegInfinity,
	}
}

// FromRectf converts a vmath rectangle into a Box.
func FromRectf(r vmath.Rectf) Box {
	return Box{X: r.Min[0], Y: r.Min[1], X2: r.Max[0], Y2: r.Max[1]}
}

// Rectf converts the box for use with vmath-based callers.
func (b Box) Rectf() vmath.Rectf {
	return vmath.Rectf{
		Min: vmath.Vec2f{b.X, b.Y},
		Max: vmath.Vec2f{b.X2, b.Y2},
	}
}

// BoundingBox returns the box itself.
func (b Box) BoundingBox() Box {
	return b
}

// Area returns the covered area; 0 for degenerate and empty boxes.
func (b Box) Area() float32 {
	if b.X2 < b.X || b.Y2 < b.Y {
		return 0
	}
	return (b.X2 - b.X) * (b.Y2 - b.Y)
}

// Expand returns the smallest box covering both b and g.
func (b Box) Expand(g Geom) Box {
	o := g.BoundingBox()
	return Box{
		X:  math32.Min(b.X, o.X),
		Y:  math32.Min(b.Y, o.Y),
		X2: math32.Max(b.X2, o.X2),
		Y2: math32.Max(b.Y2, o.Y2),
	}
}

// ExpandArea returns the additional area needed to cover g. Never negative.
func (b Box) ExpandArea(g Geom) float32 {
	return b.Expand(g).Area() - b.Area()
}

// ContainsPoint reports closed containment: the boundary is inside.
func (b Box) ContainsPoint(p Point) bool {
	return b.X <= p.X && p.X <= b.X2 && b.Y <= p.Y && p.Y <= b.Y2
}

// Intersects reports closed intersection. The empty box intersects nothing.
func (b Box) Intersects(o Box) bool {
	return b.X <= o.X2 && o.X <= b.X2 && b.Y <= o.Y2 && o.Y <= b.Y2
}

// Wraps reports whether removing g from the covered set cannot shrink b,
// i.e. whether g lies strictly inside b.
func (b Box) Wraps(g Geom) bool {
	o := g.BoundingBox()
	return b.X < o.X && o.X2 < b.X2 && b.Y < o.Y && o.Y2 < b.Y2
}

// DistTo returns the minimum euclidean distance from p to the box; 0 if p is
// inside.
func (b Box) DistTo(p Point) float32 {
	dx := math32.Max(math32.Max(b.X-p.X, 0), p.X-b.X2)
	dy := math32.Max(math32.Max(b.Y-p.Y, 0), p.Y-b.Y2)
	return float32(math.Sqrt(float64(dx)*float64(dx) + float64(dy)*float64(dy)))
}

// IsFinite is false for the empty box and for boxes containing NaN or
// infinite coordinates.
func (b Box) IsFinite() bool {
	return finite(b.X) && finite(b.Y) && finite(b.X2) && finite(b.Y2) &&
		b.X <= b.X2 && b.Y <= b.Y2
}

func (b Box) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", b.X, b.Y, b.X2, b.Y2)
}

func finite(f float32) bool {
	d := float64(f)
	return !math.IsNaN(d) && !math.IsInf(d, 0)
}
