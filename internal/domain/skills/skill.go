// Package skills aggregates a chronological stream of per-object strain into
// a single difficulty value per skill dimension.
//
// Time is cut into fixed sections. Each section keeps its peak strain, and the
// final value is a weighted sum of the peaks with the hardest sections first.
// A skill is a single-goroutine accumulator; different skills share nothing
// and may be processed concurrently.
package skills

import (
	"cmp"
	"math"
	"slices"
)

const (
	// DefaultSectionLength is the length of a strain section in milliseconds.
	DefaultSectionLength = 400.0
	// DefaultDecayWeight discounts each successively easier section.
	DefaultDecayWeight = 0.9
)

// StrainDecay is the share of strain left after ms milliseconds.
func StrainDecay(ms, base float64) float64 {
	return math.Pow(base, ms/1000)
}

// Object is one difficulty object as seen by a skill.
type Object struct {
	StartTime float64
	// DeltaTime is the time since the previous object.
	DeltaTime float64
	// Strain is the instantaneous difficulty of the object.
	Strain float64
}

// Skill turns objects, fed in time order, into one difficulty value.
type Skill interface {
	Name() string
	Process(obj Object)
	// StartNewSectionFrom is called on every section boundary with the
	// strain carried over from the previous section.
	StartNewSectionFrom(initial float64)
	DifficultyValue() float64
}

// Strainer owns the continuous strain of a skill.
type Strainer interface {
	// Update folds an object's instantaneous strain into the current strain
	// and returns the new current strain.
	Update(strain, deltaTime float64) float64
	// InitialStrain is the current strain carried elapsed ms forward, used to
	// seed a new section.
	InitialStrain(elapsed float64) float64
}

// Option configures a StrainSkill.
type Option func(*StrainSkill)

// WithSectionLength overrides the section length in milliseconds.
func WithSectionLength(ms float64) Option {
	return func(s *StrainSkill) {
		if ms > 0 {
			s.sectionLength = ms
		}
	}
}

// WithDecayWeight overrides the per-rank weight of sorted peaks.
func WithDecayWeight(w float64) Option {
	return func(s *StrainSkill) {
		if w > 0 {
			s.decayWeight = w
		}
	}
}

// WithGridAlignedSections ends the first section on the next multiple of the
// section length instead of at the first object.
func WithGridAlignedSections(enabled bool) Option {
	return func(s *StrainSkill) { s.gridAligned = enabled }
}

// WithName names the skill.
func WithName(name string) Option {
	return func(s *StrainSkill) { s.name = name }
}

// StrainSkill is the section engine shared by all strain based skills.
type StrainSkill struct {
	name          string
	strainer      Strainer
	sectionLength float64
	decayWeight   float64
	gridAligned   bool

	currentSectionPeak float64
	currentSectionEnd  float64
	peaks              []float64

	prevTime float64
	started  bool
}

// NewStrainSkill builds a skill around strainer.
func NewStrainSkill(strainer Strainer, opts ...Option) *StrainSkill {
	s := &StrainSkill{
		strainer:      strainer,
		sectionLength: DefaultSectionLength,
		decayWeight:   DefaultDecayWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Skill.
func (s *StrainSkill) Name() string { return s.name }

// SectionLength reports the configured section length.
func (s *StrainSkill) SectionLength() float64 { return s.sectionLength }

// Process implements Skill. Objects must arrive in non-decreasing time.
// Sections run from the first object's time in steps of the section length,
// so a stream spanning D ms closes ceil(D/L) sections before the open one.
func (s *StrainSkill) Process(obj Object) {
	if !s.started {
		s.currentSectionEnd = obj.StartTime
		if s.gridAligned {
			s.currentSectionEnd = math.Ceil(obj.StartTime/s.sectionLength) * s.sectionLength
		}
		s.started = true
	}

	for obj.StartTime > s.currentSectionEnd {
		s.SaveCurrentPeak()
		s.StartNewSectionFrom(s.strainer.InitialStrain(s.currentSectionEnd - s.prevTime))
		s.currentSectionEnd += s.sectionLength
	}

	s.currentSectionPeak = math.Max(s.strainer.Update(obj.Strain, obj.DeltaTime), s.currentSectionPeak)
	s.prevTime = obj.StartTime
}

// SaveCurrentPeak closes the current section.
func (s *StrainSkill) SaveCurrentPeak() {
	s.peaks = append(s.peaks, s.currentSectionPeak)
}

// StartNewSectionFrom opens a section seeded with initial instead of zero.
func (s *StrainSkill) StartNewSectionFrom(initial float64) {
	s.currentSectionPeak = initial
}

// CurrentStrainPeaks returns the closed section peaks followed by the peak
// of the open section.
func (s *StrainSkill) CurrentStrainPeaks() []float64 {
	out := make([]float64, 0, len(s.peaks)+1)
	out = append(out, s.peaks...)
	return append(out, s.currentSectionPeak)
}

// DifficultyValue implements Skill.
func (s *StrainSkill) DifficultyValue() float64 {
	return WeightedSum(s.CurrentStrainPeaks(), s.decayWeight)
}

// WeightedSum sums positive peaks, hardest first, each weighted by
// decayWeight to the power of its rank. peaks is reordered in place.
func WeightedSum(peaks []float64, decayWeight float64) float64 {
	peaks = slices.DeleteFunc(peaks, func(p float64) bool { return p <= 0 })
	slices.SortFunc(peaks, func(a, b float64) int { return cmp.Compare(b, a) })

	difficulty, weight := 0.0, 1.0
	for _, p := range peaks {
		difficulty += p * weight
		weight *= decayWeight
	}
	return difficulty
}
