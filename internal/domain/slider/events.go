// Package slider decomposes sliders into the timed sub-objects a player has
// to catch.
package slider

import "math"

// EventKind tags a point of interest along a slider.
type EventKind uint8

// Event kinds in the order they can appear within one span.
const (
	EventHead EventKind = iota
	EventTick
	EventRepeat
	EventTail
	EventLastTick
)

func (k EventKind) String() string {
	switch k {
	case EventHead:
		return "head"
	case EventTick:
		return "tick"
	case EventRepeat:
		return "repeat"
	case EventTail:
		return "tail"
	case EventLastTick:
		return "last_tick"
	default:
		return "unknown"
	}
}

const (
	// maxDistance caps absurd slider lengths.
	maxDistance = 100_000.0
	// lastTickOffset is how far before the end the legacy last tick sits.
	lastTickOffset = 36.0
	// ticks closer than velocity*minTickEndTime to a span end are dropped
	minTickEndTime = 10.0
)

// Event is a single point of interest along a slider.
type Event struct {
	Kind         EventKind
	Time         float64
	PathProgress float64
	SpanIndex    int
}

// EventParams describe one slider for event generation.
type EventParams struct {
	StartTime    float64
	SpanDuration float64
	Velocity     float64
	TickDistance float64
	Distance     float64
	SpanCount    int
}

type eventsState uint8

const (
	stateHead eventsState = iota
	stateTicks
	stateRepeat
	stateLastTick
	stateTail
	stateDone
)

// Events lazily yields the events of one slider in time order. It is
// forward-only and cannot be restarted; request a new one per slider.
type Events struct {
	p        EventParams
	length   float64
	tickDist float64
	minDist  float64

	state eventsState
	span  int
	// ticks of the current span, in time order
	ticks []Event
	pos   int
}

// NewEvents prepares the event sequence for p. scratch is reused as tick
// storage and must not be touched by the caller until the sequence is done.
func NewEvents(p EventParams, scratch []Event) *Events {
	length := math.Min(maxDistance, p.Distance)
	return &Events{
		p:        p,
		length:   length,
		tickDist: clamp(p.TickDistance, 0, length),
		minDist:  p.Velocity * minTickEndTime,
		ticks:    scratch[:0],
	}
}

// Scratch hands the tick storage back for reuse by the next slider.
func (e *Events) Scratch() []Event { return e.ticks[:0] }

// Next returns the next event and false once the sequence is exhausted.
func (e *Events) Next() (Event, bool) {
	for {
		switch e.state {
		case stateHead:
			e.state = stateTicks
			e.fillTicks()
			return Event{Kind: EventHead, Time: e.p.StartTime}, true

		case stateTicks:
			if e.pos < len(e.ticks) {
				ev := e.ticks[e.pos]
				e.pos++
				return ev, true
			}
			e.state = stateRepeat

		case stateRepeat:
			if e.span < e.p.SpanCount-1 {
				e.span++
				e.state = stateTicks
				e.fillTicks()
				return Event{
					Kind:         EventRepeat,
					Time:         e.p.StartTime + float64(e.span)*e.p.SpanDuration,
					PathProgress: float64(e.span % 2),
					SpanIndex:    e.span - 1,
				}, true
			}
			e.state = stateLastTick

		case stateLastTick:
			e.state = stateTail
			return e.lastTick(), true

		case stateTail:
			e.state = stateDone
			return Event{
				Kind:         EventTail,
				Time:         e.p.StartTime + float64(e.p.SpanCount)*e.p.SpanDuration,
				PathProgress: float64(e.p.SpanCount % 2),
				SpanIndex:    e.p.SpanCount - 1,
			}, true

		default:
			return Event{}, false
		}
	}
}

// fillTicks generates the ticks of the current span into the scratch buffer.
func (e *Events) fillTicks() {
	e.ticks = e.ticks[:0]
	e.pos = 0
	if e.tickDist == 0 {
		return
	}

	spanStart := e.p.StartTime + float64(e.span)*e.p.SpanDuration
	reversed := e.span%2 == 1

	for d := e.tickDist; d <= e.length; d += e.tickDist {
		if d >= e.length-e.minDist {
			break
		}
		pathProgress := d / e.length
		timeProgress := pathProgress
		if reversed {
			timeProgress = 1 - pathProgress
		}
		e.ticks = append(e.ticks, Event{
			Kind:         EventTick,
			Time:         spanStart + timeProgress*e.p.SpanDuration,
			PathProgress: pathProgress,
			SpanIndex:    e.span,
		})
	}

	if reversed {
		for i, j := 0, len(e.ticks)-1; i < j; i, j = i+1, j-1 {
			e.ticks[i], e.ticks[j] = e.ticks[j], e.ticks[i]
		}
	}
}

// lastTick is the legacy horizon 36ms before the end, but never earlier
// than the slider's midpoint.
func (e *Events) lastTick() Event {
	total := float64(e.p.SpanCount) * e.p.SpanDuration
	finalSpan := e.p.SpanCount - 1
	finalSpanStart := e.p.StartTime + float64(finalSpan)*e.p.SpanDuration
	finalSpanEnd := math.Max(e.p.StartTime+total/2, finalSpanStart+e.p.SpanDuration-lastTickOffset)

	progress := (finalSpanEnd - finalSpanStart) / e.p.SpanDuration
	if e.p.SpanCount%2 == 0 {
		progress = 1 - progress
	}

	return Event{
		Kind:         EventLastTick,
		Time:         finalSpanEnd,
		PathProgress: progress,
		SpanIndex:    finalSpan,
	}
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
