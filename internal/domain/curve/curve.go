// Package curve turns slider control vertices into a measurable path.
//
// A Path is flattened into a polyline once at construction; Length and
// PositionAt are then cheap and safe to call any number of times.
package curve

import (
	"errors"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoControlPoints is returned when a path is built from zero vertices.
var ErrNoControlPoints = errors.New("curve has no control points")

// Curve is the capability the slider decomposer needs from a path.
type Curve interface {
	// Length is the arc length of the path in osu!pixels.
	Length() float64
	// PositionAt returns the position at progress in [0,1] along the path,
	// relative to the first control point.
	PositionAt(progress float64) mgl64.Vec2
}

// PathType selects how the vertices of a segment are interpolated.
type PathType string

// Supported path types. An empty type continues the current segment.
const (
	PathNone    PathType = ""
	PathLinear  PathType = "linear"
	PathBezier  PathType = "bezier"
	PathCatmull PathType = "catmull"
	PathPerfect PathType = "perfect"
)

// ControlPoint is a slider vertex relative to the slider head. A non-empty
// Type starts a new segment at this vertex.
type ControlPoint struct {
	X    float64  `json:"x" yaml:"x"`
	Y    float64  `json:"y" yaml:"y"`
	Type PathType `json:"type,omitempty" yaml:"type,omitempty"`
}

// Vec returns the vertex as a vector.
func (cp ControlPoint) Vec() mgl64.Vec2 { return mgl64.Vec2{cp.X, cp.Y} }

// Path is a flattened slider path.
type Path struct {
	points []mgl64.Vec2
	// cumulative distance at each point
	cumulative []float64
	length     float64
}

// NewPath flattens control points into a path. expectedDistance > 0 trims or
// extends the path to that length, as authored sliders carry a pixel length
// that wins over the geometric one.
func NewPath(controlPoints []ControlPoint, expectedDistance float64) (*Path, error) {
	if len(controlPoints) == 0 {
		return nil, ErrNoControlPoints
	}

	p := &Path{points: flatten(controlPoints)}
	p.measure(expectedDistance)
	return p, nil
}

// Length implements Curve.
func (p *Path) Length() float64 { return p.length }

// Points returns the flattened polyline. The slice must not be modified.
func (p *Path) Points() []mgl64.Vec2 { return p.points }

// PositionAt implements Curve.
func (p *Path) PositionAt(progress float64) mgl64.Vec2 {
	if len(p.points) == 0 {
		return mgl64.Vec2{}
	}
	if len(p.points) == 1 {
		return p.points[0]
	}

	d := clamp(progress, 0, 1) * p.length
	i := sort.SearchFloat64s(p.cumulative, d)
	switch {
	case i == 0:
		return p.points[0]
	case i >= len(p.points):
		return p.points[len(p.points)-1]
	}

	d0, d1 := p.cumulative[i-1], p.cumulative[i]
	p0, p1 := p.points[i-1], p.points[i]
	if d1-d0 < 1e-12 {
		return p0
	}
	w := (d - d0) / (d1 - d0)
	return p0.Add(p1.Sub(p0).Mul(w))
}

func (p *Path) measure(expected float64) {
	p.cumulative = make([]float64, len(p.points))
	total := 0.0
	for i := 1; i < len(p.points); i++ {
		total += p.points[i].Sub(p.points[i-1]).Len()
		p.cumulative[i] = total
	}

	if expected <= 0 || len(p.points) < 2 || math.Abs(expected-total) < 1e-9 {
		p.length = total
		return
	}

	if expected < total {
		// drop vertices past the expected length, then pin the last one
		for len(p.cumulative) > 1 && p.cumulative[len(p.cumulative)-2] >= expected {
			p.points = p.points[:len(p.points)-1]
			p.cumulative = p.cumulative[:len(p.cumulative)-1]
		}
	}

	n := len(p.points)
	prev, last := p.points[n-2], p.points[n-1]
	dir := last.Sub(prev)
	if l := dir.Len(); l > 0 {
		p.points[n-1] = prev.Add(dir.Mul((expected - p.cumulative[n-2]) / l))
		p.cumulative[n-1] = expected
		p.length = expected
		return
	}
	p.length = p.cumulative[n-1]
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
