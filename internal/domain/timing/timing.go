// Package timing holds the control points of a beatmap and answers which
// point governs a given time.
package timing

import (
	"sort"
)

// Default values substituted when no control point governs a time.
const (
	DefaultBeatLength     = 60_000.0 / 60.0
	DefaultSliderVelocity = 1.0
)

// ControlPoint is anything pinned to a time on the beatmap timeline.
type ControlPoint interface {
	PointTime() float64
}

// TimingPoint sets the tempo from Time onwards.
type TimingPoint struct {
	Time       float64 `json:"time" yaml:"time"`
	BeatLength float64 `json:"beat_length" yaml:"beat_length"`
}

// PointTime implements ControlPoint.
func (p TimingPoint) PointTime() float64 { return p.Time }

// DifficultyPoint scales slider velocity from Time onwards.
type DifficultyPoint struct {
	Time           float64 `json:"time" yaml:"time"`
	SliderVelocity float64 `json:"slider_velocity" yaml:"slider_velocity"`
}

// PointTime implements ControlPoint.
func (p DifficultyPoint) PointTime() float64 { return p.Time }

// EffectPoint toggles presentation effects. Difficulty ignores it but it is
// part of the timeline.
type EffectPoint struct {
	Time        float64 `json:"time" yaml:"time"`
	Kiai        bool    `json:"kiai" yaml:"kiai"`
	ScrollSpeed float64 `json:"scroll_speed" yaml:"scroll_speed"`
}

// PointTime implements ControlPoint.
func (p EffectPoint) PointTime() float64 { return p.Time }

// At returns the latest point whose time is <= t. points must be sorted
// ascending by time. ok is false when the slice is empty or every point lies
// after t.
func At[P ControlPoint](points []P, t float64) (point P, ok bool) {
	// first index whose time is strictly greater than t
	i := sort.Search(len(points), func(i int) bool {
		return points[i].PointTime() > t
	})
	if i == 0 {
		return point, false
	}
	return points[i-1], true
}

// Defaults are the values used when no control point precedes a time.
type Defaults struct {
	BeatLength     float64
	SliderVelocity float64
}

// DefaultDefaults returns the stock fallback values.
func DefaultDefaults() Defaults {
	return Defaults{
		BeatLength:     DefaultBeatLength,
		SliderVelocity: DefaultSliderVelocity,
	}
}

// Timeline is the read-only set of control points for one beatmap.
type Timeline struct {
	TimingPoints     []TimingPoint
	DifficultyPoints []DifficultyPoint
	EffectPoints     []EffectPoint

	defaults Defaults
}

// NewTimeline copies and sorts the given points. Zero-valued defaults fall
// back to DefaultDefaults.
func NewTimeline(timing []TimingPoint, difficulty []DifficultyPoint, effect []EffectPoint, defaults Defaults) *Timeline {
	if defaults.BeatLength <= 0 {
		defaults.BeatLength = DefaultBeatLength
	}
	if defaults.SliderVelocity <= 0 {
		defaults.SliderVelocity = DefaultSliderVelocity
	}

	tl := &Timeline{
		TimingPoints:     append([]TimingPoint(nil), timing...),
		DifficultyPoints: append([]DifficultyPoint(nil), difficulty...),
		EffectPoints:     append([]EffectPoint(nil), effect...),
		defaults:         defaults,
	}
	tl.Sort()
	return tl
}

// Sort orders every point slice by time, keeping authored order for ties.
func (tl *Timeline) Sort() {
	sortByTime(tl.TimingPoints)
	sortByTime(tl.DifficultyPoints)
	sortByTime(tl.EffectPoints)
}

func sortByTime[P ControlPoint](points []P) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].PointTime() < points[j].PointTime()
	})
}

// Defaults returns the fallback values of the timeline.
func (tl *Timeline) Defaults() Defaults { return tl.defaults }

// TimingPointAt returns the timing point active at t.
func (tl *Timeline) TimingPointAt(t float64) (TimingPoint, bool) {
	return At(tl.TimingPoints, t)
}

// DifficultyPointAt returns the difficulty point active at t.
func (tl *Timeline) DifficultyPointAt(t float64) (DifficultyPoint, bool) {
	return At(tl.DifficultyPoints, t)
}

// EffectPointAt returns the effect point active at t.
func (tl *Timeline) EffectPointAt(t float64) (EffectPoint, bool) {
	return At(tl.EffectPoints, t)
}

// BeatLengthAt returns the governing beat length at t or the default.
func (tl *Timeline) BeatLengthAt(t float64) float64 {
	if p, ok := tl.TimingPointAt(t); ok {
		return p.BeatLength
	}
	return tl.defaults.BeatLength
}

// SliderVelocityAt returns the governing slider velocity at t or the default.
func (tl *Timeline) SliderVelocityAt(t float64) float64 {
	if p, ok := tl.DifficultyPointAt(t); ok {
		return p.SliderVelocity
	}
	return tl.defaults.SliderVelocity
}
