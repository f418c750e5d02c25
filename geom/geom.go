/*
Package geom provides the two-dimensional geometry primitives underneath the
spatial index: points, axis-aligned boxes and the distance/expansion operations
the index consumes. All coordinates are single-precision.
*/
package geom

import (
	"fmt"
	"math"

	"github.com/maja42/vmath"
)

// Geom is anything with a covering box and a distance to a point. Point and
// Box both implement it; the index never needs more of a geometry than this.
type Geom interface {
	BoundingBox() Box
	DistTo(p Point) float32
}

// Point is a location in the plane.
type Point struct {
	X, Y float32
}

// P is a shorthand constructor for points.
func P(x, y float32) Point {
	return Point{X: x, Y: y}
}

// BoundingBox returns the degenerate box sitting exactly on p.
func (p Point) BoundingBox() Box {
	return Box{X: p.X, Y: p.Y, X2: p.X, Y2: p.Y}
}

// DistTo returns the euclidean distance between two points.
func (p Point) DistTo(q Point) float32 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// Vec2f converts the point for use with vmath-based callers.
func (p Point) Vec2f() vmath.Vec2f {
	return vmath.Vec2f{p.X, p.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}
