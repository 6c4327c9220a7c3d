// Package beatmap is the data model the difficulty calculator reads.
//
// Beatmaps are submitted as JSON or YAML documents rather than in the
// authoring file grammar. A decoded map is validated once and is read-only
// afterwards.
package beatmap

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/okian/juicerank/internal/domain/curve"
	"github.com/okian/juicerank/internal/domain/timing"
)

const (
	// LatestVersion is the newest format version we know of.
	LatestVersion = 14

	DefaultSliderMultiplier = 1.4
	DefaultSliderTickRate   = 1.0
	DefaultCircleSize       = 5.0
	DefaultApproachRate     = 5.0
)

// ObjectKind tags a hit object.
type ObjectKind string

// Hit object kinds.
const (
	KindCircle  ObjectKind = "circle"
	KindSlider  ObjectKind = "slider"
	KindSpinner ObjectKind = "spinner"
)

// Metadata describes the song and the difficulty name.
type Metadata struct {
	Title   string `json:"title" yaml:"title"`
	Artist  string `json:"artist" yaml:"artist"`
	Creator string `json:"creator" yaml:"creator"`
	Version string `json:"version" yaml:"version"`
}

// Difficulty holds the map wide difficulty settings.
type Difficulty struct {
	CircleSize       float64 `json:"circle_size" yaml:"circle_size"`
	ApproachRate     float64 `json:"approach_rate" yaml:"approach_rate"`
	SliderMultiplier float64 `json:"slider_multiplier" yaml:"slider_multiplier"`
	SliderTickRate   float64 `json:"slider_tick_rate" yaml:"slider_tick_rate"`
}

// Slider is the slider specific part of a hit object.
type Slider struct {
	ControlPoints []curve.ControlPoint `json:"control_points" yaml:"control_points"`
	Repeats       int                  `json:"repeats" yaml:"repeats"`
	// Length is the authored pixel length; zero means use the geometry.
	Length float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// SpanCount is the number of times the path is travelled.
func (s *Slider) SpanCount() int { return s.Repeats + 1 }

// HitObject is a single authored object.
type HitObject struct {
	Kind      ObjectKind `json:"kind" yaml:"kind"`
	X         float64    `json:"x" yaml:"x"`
	Y         float64    `json:"y" yaml:"y"`
	StartTime float64    `json:"time" yaml:"time"`
	// EndTime is only meaningful for spinners.
	EndTime float64 `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Slider  *Slider `json:"slider,omitempty" yaml:"slider,omitempty"`
}

// Beatmap is a complete map.
type Beatmap struct {
	ID            string     `json:"id" yaml:"id"`
	FormatVersion int        `json:"format_version" yaml:"format_version"`
	Metadata      Metadata   `json:"metadata" yaml:"metadata"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`

	TimingPoints     []timing.TimingPoint     `json:"timing_points" yaml:"timing_points"`
	DifficultyPoints []timing.DifficultyPoint `json:"difficulty_points,omitempty" yaml:"difficulty_points,omitempty"`
	EffectPoints     []timing.EffectPoint     `json:"effect_points,omitempty" yaml:"effect_points,omitempty"`

	HitObjects []HitObject `json:"hit_objects" yaml:"hit_objects"`
}

// ApplyDefaults fills unset map settings with the format defaults.
func (b *Beatmap) ApplyDefaults() {
	if b.FormatVersion == 0 {
		b.FormatVersion = LatestVersion
	}
	if b.Difficulty.SliderMultiplier == 0 {
		b.Difficulty.SliderMultiplier = DefaultSliderMultiplier
	}
	if b.Difficulty.SliderTickRate == 0 {
		b.Difficulty.SliderTickRate = DefaultSliderTickRate
	}
	if b.Difficulty.CircleSize == 0 {
		b.Difficulty.CircleSize = DefaultCircleSize
	}
	if b.Difficulty.ApproachRate == 0 {
		b.Difficulty.ApproachRate = DefaultApproachRate
	}
}

// Validate rejects maps the calculator cannot take. Numeric oddities are not
// checked here; only structural problems are.
func (b *Beatmap) Validate() error {
	if b.Difficulty.SliderMultiplier <= 0 || b.Difficulty.SliderTickRate <= 0 {
		return fmt.Errorf("%w: slider multiplier and tick rate must be positive", ErrInvalidBeatmap)
	}
	for i := range b.HitObjects {
		obj := &b.HitObjects[i]
		switch obj.Kind {
		case KindCircle, KindSpinner:
		case KindSlider:
			if obj.Slider == nil || len(obj.Slider.ControlPoints) == 0 {
				return fmt.Errorf("%w: slider %d at %.0fms: %w", ErrInvalidBeatmap, i, obj.StartTime, curve.ErrNoControlPoints)
			}
			if obj.Slider.Repeats < 0 {
				return fmt.Errorf("%w: slider %d has negative repeats", ErrInvalidBeatmap, i)
			}
		default:
			return fmt.Errorf("%w: %q at index %d", ErrUnknownObject, obj.Kind, i)
		}
		if i > 0 && obj.StartTime < b.HitObjects[i-1].StartTime {
			return fmt.Errorf("%w: hit object %d is out of order", ErrInvalidBeatmap, i)
		}
	}
	return nil
}

// Timeline builds the sorted control point timeline of the map.
func (b *Beatmap) Timeline(defaults timing.Defaults) *timing.Timeline {
	return timing.NewTimeline(b.TimingPoints, b.DifficultyPoints, b.EffectPoints, defaults)
}

// Checksum identifies the map content independently of its ID.
func (b *Beatmap) Checksum() string {
	content := *b
	content.ID = ""
	raw, err := json.Marshal(content)
	if err != nil {
		// every field is plain data
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Duration is the time between the first and last object start.
func (b *Beatmap) Duration() float64 {
	if len(b.HitObjects) == 0 {
		return 0
	}
	return b.HitObjects[len(b.HitObjects)-1].StartTime - b.HitObjects[0].StartTime
}

// Count returns the number of objects of each kind.
func (b *Beatmap) Count() (circles, sliders, spinners int) {
	for i := range b.HitObjects {
		switch b.HitObjects[i].Kind {
		case KindCircle:
			circles++
		case KindSlider:
			sliders++
		case KindSpinner:
			spinners++
		}
	}
	return circles, sliders, spinners
}
