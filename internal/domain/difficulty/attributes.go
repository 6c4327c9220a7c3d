// Package difficulty turns a beatmap into difficulty attributes.
package difficulty

import "math"

// Attributes is the result of a difficulty calculation.
type Attributes struct {
	Stars    float64 `json:"stars"`
	Movement float64 `json:"movement"`
	Density  float64 `json:"density"`

	ApproachRate float64 `json:"approach_rate"`
	CircleSize   float64 `json:"circle_size"`

	Fruits       int `json:"fruits"`
	Droplets     int `json:"droplets"`
	TinyDroplets int `json:"tiny_droplets"`
	Spinners     int `json:"spinners"`
	MaxCombo     int `json:"max_combo"`

	// Passed is false when the object budget ran out before the map ended.
	Passed bool `json:"passed"`
}

// Objects is the number of catchable objects.
func (a *Attributes) Objects() int {
	return a.Fruits + a.Droplets + a.TinyDroplets
}

// AttributesBuilder counts objects while sliders are decomposed and limits
// how many combo objects are considered.
type AttributesBuilder struct {
	take int

	fruits       int
	droplets     int
	tinyDroplets int
	spinners     int
}

// NewAttributesBuilder allows up to take fruits and droplets. take <= 0
// means no limit.
func NewAttributesBuilder(take int) *AttributesBuilder {
	if take <= 0 {
		take = math.MaxInt
	}
	return &AttributesBuilder{take: take}
}

// TakeMore reports whether more objects are wanted.
func (b *AttributesBuilder) TakeMore() bool { return b.take > 0 }

// IncFruits counts a fruit against the budget.
func (b *AttributesBuilder) IncFruits() {
	b.take--
	b.fruits++
}

// IncDroplets counts a droplet against the budget.
func (b *AttributesBuilder) IncDroplets() {
	b.take--
	b.droplets++
}

// IncTinyDroplets counts a tiny droplet. Tiny droplets are free.
func (b *AttributesBuilder) IncTinyDroplets() {
	b.tinyDroplets++
}

// IncSpinners counts a spinner.
func (b *AttributesBuilder) IncSpinners() {
	b.spinners++
}

// Into copies the counts into attrs.
func (b *AttributesBuilder) Into(attrs *Attributes) {
	attrs.Fruits = b.fruits
	attrs.Droplets = b.droplets
	attrs.TinyDroplets = b.tinyDroplets
	attrs.Spinners = b.spinners
	attrs.MaxCombo = b.fruits + b.droplets
}
