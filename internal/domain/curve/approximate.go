package curve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	bezierToleranceSq = 0.25 * 0.25
	arcTolerance      = 0.1
	catmullDetail     = 50
)

// flatten splits the control points into typed segments and approximates
// each of them. Consecutive segments share their boundary vertex.
func flatten(cps []ControlPoint) []mgl64.Vec2 {
	var out []mgl64.Vec2
	add := func(pts []mgl64.Vec2) {
		for _, v := range pts {
			if n := len(out); n > 0 && out[n-1].ApproxEqual(v) {
				continue
			}
			out = append(out, v)
		}
	}

	kind := cps[0].Type
	if kind == PathNone {
		kind = PathBezier
	}

	start := 0
	for i := 1; i <= len(cps); i++ {
		if i < len(cps) && cps[i].Type == PathNone {
			continue
		}
		// segment [start, i] inclusive of the next segment's first vertex
		end := i
		if end == len(cps) {
			end = len(cps) - 1
		}
		add(approximate(kind, vecs(cps[start:end+1])))

		if i < len(cps) {
			kind = cps[i].Type
			start = i
		}
	}

	if len(out) == 0 {
		out = append(out, cps[0].Vec())
	}
	return out
}

func approximate(kind PathType, v []mgl64.Vec2) []mgl64.Vec2 {
	if len(v) < 2 {
		return v
	}
	switch kind {
	case PathLinear:
		return v
	case PathCatmull:
		return approximateCatmull(v)
	case PathPerfect:
		if len(v) == 3 {
			if arc, ok := approximateCircularArc(v[0], v[1], v[2]); ok {
				return arc
			}
		}
		return approximateBezierChain(v)
	default:
		return approximateBezierChain(v)
	}
}

// approximateBezierChain treats a repeated vertex (a red anchor) as the
// boundary between two independent bezier curves.
func approximateBezierChain(v []mgl64.Vec2) []mgl64.Vec2 {
	var out []mgl64.Vec2
	start := 0
	for i := 1; i < len(v); i++ {
		if i == len(v)-1 || v[i].ApproxEqual(v[i+1]) {
			out = append(out, approximateBezier(v[start:i+1])...)
			start = i + 1
		}
	}
	return out
}

func approximateBezier(cp []mgl64.Vec2) []mgl64.Vec2 {
	if len(cp) < 2 {
		return append([]mgl64.Vec2(nil), cp...)
	}

	var out []mgl64.Vec2
	stack := [][]mgl64.Vec2{cp}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if bezierFlatEnough(cur) {
			out = append(out, cur[0])
			continue
		}
		// right half first so the left half pops next
		l, r := bezierSubdivide(cur)
		stack = append(stack, r, l)
	}
	return append(out, cp[len(cp)-1])
}

func bezierFlatEnough(cp []mgl64.Vec2) bool {
	for i := 1; i < len(cp)-1; i++ {
		d := cp[i-1].Sub(cp[i].Mul(2)).Add(cp[i+1])
		if d.Dot(d) > bezierToleranceSq {
			return false
		}
	}
	return true
}

// bezierSubdivide splits a bezier at t=0.5 with de Casteljau.
func bezierSubdivide(cp []mgl64.Vec2) (left, right []mgl64.Vec2) {
	n := len(cp)
	mid := append([]mgl64.Vec2(nil), cp...)
	left = make([]mgl64.Vec2, n)
	right = make([]mgl64.Vec2, n)

	for r := 0; r < n; r++ {
		left[r] = mid[0]
		right[n-1-r] = mid[n-1-r]
		for i := 0; i < n-1-r; i++ {
			mid[i] = mid[i].Add(mid[i+1]).Mul(0.5)
		}
	}
	return left, right
}

func approximateCatmull(pts []mgl64.Vec2) []mgl64.Vec2 {
	n := len(pts)
	out := make([]mgl64.Vec2, 0, (n-1)*catmullDetail+1)
	out = append(out, pts[0])
	for i := 0; i < n-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, n-1)]
		for s := 1; s <= catmullDetail; s++ {
			out = append(out, catmullPoint(p0, p1, p2, p3, float64(s)/catmullDetail))
		}
	}
	return out
}

func catmullPoint(p0, p1, p2, p3 mgl64.Vec2, t float64) mgl64.Vec2 {
	t2 := t * t
	t3 := t2 * t
	at := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
	}
	return mgl64.Vec2{
		at(p0.X(), p1.X(), p2.X(), p3.X()),
		at(p0.Y(), p1.Y(), p2.Y(), p3.Y()),
	}
}

// approximateCircularArc returns false for collinear or degenerate input so
// the caller can fall back to a bezier.
func approximateCircularArc(a, b, c mgl64.Vec2) ([]mgl64.Vec2, bool) {
	d := 2 * (a.X()*(b.Y()-c.Y()) + b.X()*(c.Y()-a.Y()) + c.X()*(a.Y()-b.Y()))
	if math.Abs(d) < 1e-8 {
		return nil, false
	}

	aSq, bSq, cSq := a.Dot(a), b.Dot(b), c.Dot(c)
	centre := mgl64.Vec2{
		(aSq*(b.Y()-c.Y()) + bSq*(c.Y()-a.Y()) + cSq*(a.Y()-b.Y())) / d,
		(aSq*(c.X()-b.X()) + bSq*(a.X()-c.X()) + cSq*(b.X()-a.X())) / d,
	}
	radius := a.Sub(centre).Len()

	thetaStart := math.Atan2(a.Y()-centre.Y(), a.X()-centre.X())
	thetaEnd := math.Atan2(c.Y()-centre.Y(), c.X()-centre.X())
	for thetaEnd < thetaStart {
		thetaEnd += 2 * math.Pi
	}

	dir := 1.0
	thetaRange := thetaEnd - thetaStart

	// the arc runs clockwise when the middle vertex is on the right of a->c
	ortho := mgl64.Vec2{c.Y() - a.Y(), -(c.X() - a.X())}
	if ortho.Dot(b.Sub(a)) < 0 {
		dir = -1
		thetaRange = 2*math.Pi - thetaRange
	}

	steps := 2
	if 2*radius > arcTolerance {
		step := 2 * math.Acos(1-arcTolerance/radius)
		steps = max(2, int(math.Ceil(thetaRange/step)))
	}

	out := make([]mgl64.Vec2, 0, steps)
	for i := 0; i < steps; i++ {
		theta := thetaStart + dir*float64(i)/float64(steps-1)*thetaRange
		out = append(out, centre.Add(mgl64.Vec2{math.Cos(theta), math.Sin(theta)}.Mul(radius)))
	}
	return out, true
}

func vecs(cps []ControlPoint) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(cps))
	for i, cp := range cps {
		out[i] = cp.Vec()
	}
	return out
}
