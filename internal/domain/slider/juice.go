package slider

import (
	"github.com/okian/juicerank/internal/domain/curve"
)

const (
	// gaps above this get tiny droplets
	tinyDropletGap = 80.0
	// gaps are halved until the spacing is at most this
	tinyDropletMaxSpacing = 100.0
	// format versions below this ignore slider velocity for tick spacing
	tickVelocityVersion = 8
)

// Accumulator receives one call per emitted object and tells the decomposer
// whether finer detail is still wanted.
type Accumulator interface {
	TakeMore() bool
	IncFruits()
	IncDroplets()
	IncTinyDroplets()
}

// NestedKind tags a nested scoring object.
type NestedKind uint8

// Nested object kinds.
const (
	Fruit NestedKind = iota
	Droplet
	TinyDroplet
)

func (k NestedKind) String() string {
	switch k {
	case Fruit:
		return "fruit"
	case Droplet:
		return "droplet"
	case TinyDroplet:
		return "tiny_droplet"
	default:
		return "unknown"
	}
}

// NestedObject is a timed, positioned sub-object of a slider.
type NestedObject struct {
	Pos       float64
	StartTime float64
	Kind      NestedKind
}

// Buffers is scratch space owned by the caller for a whole map. Both slices
// are cleared between sliders and only grow.
type Buffers struct {
	Nested []NestedObject
	Ticks  []Event
}

// Params describe one slider together with the tempo governing its start.
type Params struct {
	X             float64
	StartTime     float64
	Curve         curve.Curve
	ControlPoints []curve.ControlPoint
	SpanCount     int

	BeatLength       float64
	SliderVelocity   float64
	SliderMultiplier float64
	TickRate         float64
	FormatVersion    int
}

// Velocity is the slider speed in osu!pixels per millisecond.
func (p Params) Velocity() float64 {
	return 100 * p.SliderMultiplier / p.BeatLength * p.SliderVelocity
}

// TickDistance is the spacing of droplets along the path.
func (p Params) TickDistance() float64 {
	m := 1.0
	if p.FormatVersion >= tickVelocityVersion {
		m = p.SliderVelocity
	}
	return 100 * p.SliderMultiplier / p.TickRate * m
}

// Option configures Decompose.
type Option func(*decomposer)

// WithLastTickAnchor makes the legacy last tick take part in gap filling,
// both as a gap end and as the anchor for the following gap.
func WithLastTickAnchor(enabled bool) Option {
	return func(d *decomposer) { d.lastTickAnchor = enabled }
}

type decomposer struct {
	lastTickAnchor bool
}

// Decompose expands a slider into fruits, droplets and tiny droplets, in
// time order. The objects live in bufs.Nested until drained from the
// returned stream.
func Decompose(p Params, acc Accumulator, bufs *Buffers, opts ...Option) *JuiceStream {
	d := decomposer{}
	for _, opt := range opts {
		opt(&d)
	}

	bufs.Nested = bufs.Nested[:0]
	js := &JuiceStream{ControlPoints: p.ControlPoints, bufs: bufs}
	if p.SpanCount <= 0 {
		return js
	}

	length := p.Curve.Length()
	velocity := p.Velocity()
	duration := float64(p.SpanCount) * length / velocity

	events := NewEvents(EventParams{
		StartTime:    p.StartTime,
		SpanDuration: duration / float64(p.SpanCount),
		Velocity:     velocity,
		TickDistance: p.TickDistance(),
		Distance:     length,
		SpanCount:    p.SpanCount,
	}, bufs.Ticks)

	var (
		last    Event
		hasLast bool
	)
	for {
		e, ok := events.Next()
		if !ok {
			break
		}
		if e.Kind == EventLastTick && !d.lastTickAnchor {
			continue
		}

		if hasLast && acc.TakeMore() {
			fillGap(p, acc, bufs, last, e)
		}
		last, hasLast = e, true

		switch e.Kind {
		case EventTick:
			bufs.Nested = append(bufs.Nested, NestedObject{
				Pos:       p.X + p.Curve.PositionAt(e.PathProgress).X(),
				StartTime: e.Time,
				Kind:      Droplet,
			})
			acc.IncDroplets()
		case EventHead, EventRepeat, EventTail:
			bufs.Nested = append(bufs.Nested, NestedObject{
				Pos:       p.X + p.Curve.PositionAt(e.PathProgress).X(),
				StartTime: e.Time,
				Kind:      Fruit,
			})
			acc.IncFruits()
		}
	}

	bufs.Ticks = events.Scratch()
	return js
}

// fillGap inserts tiny droplets between prev and cur when they are far apart.
func fillGap(p Params, acc Accumulator, bufs *Buffers, prev, cur Event) {
	gap := cur.Time - prev.Time
	if gap <= tinyDropletGap {
		return
	}

	unit := gap
	for unit > tinyDropletMaxSpacing {
		unit /= 2
	}

	for t := unit; t < gap; t += unit {
		progress := prev.PathProgress + t/gap*(cur.PathProgress-prev.PathProgress)
		bufs.Nested = append(bufs.Nested, NestedObject{
			Pos:       p.X + p.Curve.PositionAt(progress).X(),
			StartTime: prev.Time + t,
			Kind:      TinyDroplet,
		})
		acc.IncTinyDroplets()
	}
}

// JuiceStream is the decomposed slider. It is a draining, one-shot sequence
// over the caller's Buffers.
type JuiceStream struct {
	// ControlPoints are the slider's original vertices.
	ControlPoints []curve.ControlPoint

	bufs *Buffers
	pos  int
}

// Len is the number of objects not yet taken.
func (js *JuiceStream) Len() int {
	if js.bufs == nil {
		return 0
	}
	return len(js.bufs.Nested) - js.pos
}

// Next moves the next object out of the stream. The arena is cleared once
// the last object has been taken.
func (js *JuiceStream) Next() (NestedObject, bool) {
	if js.Len() == 0 {
		js.release()
		return NestedObject{}, false
	}
	obj := js.bufs.Nested[js.pos]
	js.pos++
	if js.Len() == 0 {
		js.release()
	}
	return obj, true
}

// Drain copies the remaining objects into dst and empties the arena.
func (js *JuiceStream) Drain(dst []NestedObject) []NestedObject {
	if js.Len() > 0 {
		dst = append(dst, js.bufs.Nested[js.pos:]...)
	}
	js.release()
	return dst
}

func (js *JuiceStream) release() {
	if js.bufs == nil {
		return
	}
	js.bufs.Nested = js.bufs.Nested[:0]
	js.bufs = nil
	js.pos = 0
}
