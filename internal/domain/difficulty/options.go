package difficulty

import (
	"github.com/okian/juicerank/internal/domain/skills"
	"github.com/okian/juicerank/internal/domain/timing"
)

// Option configures a Calculator.
type Option func(*Calculator)

// WithDefaults sets the tempo used where no control point applies.
func WithDefaults(d timing.Defaults) Option {
	return func(c *Calculator) {
		if d.BeatLength > 0 {
			c.defaults.BeatLength = d.BeatLength
		}
		if d.SliderVelocity > 0 {
			c.defaults.SliderVelocity = d.SliderVelocity
		}
	}
}

// WithSectionLength sets the strain section length in milliseconds.
func WithSectionLength(ms float64) Option {
	return func(c *Calculator) {
		c.skillOpts = append(c.skillOpts, skills.WithSectionLength(ms))
	}
}

// WithDecayWeight sets the weight applied per rank of sorted peaks.
func WithDecayWeight(w float64) Option {
	return func(c *Calculator) {
		c.skillOpts = append(c.skillOpts, skills.WithDecayWeight(w))
	}
}

// WithGridAlignedSections ends strain sections on multiples of the section
// length rather than counting from the first object.
func WithGridAlignedSections(enabled bool) Option {
	return func(c *Calculator) {
		c.skillOpts = append(c.skillOpts, skills.WithGridAlignedSections(enabled))
	}
}

// WithLastTickAnchor lets the legacy last tick bound tiny droplet gaps.
func WithLastTickAnchor(enabled bool) Option {
	return func(c *Calculator) { c.lastTickAnchor = enabled }
}

// WithPassedObjects limits the calculation to the first n fruits and
// droplets, as for a failed play. n <= 0 means the whole map.
func WithPassedObjects(n int) Option {
	return func(c *Calculator) { c.passedObjects = n }
}
