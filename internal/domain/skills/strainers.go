package skills

// DecayStrainer keeps a strain that decays exponentially between objects.
type DecayStrainer struct {
	Base       float64
	Multiplier float64

	current float64
}

// Update implements Strainer.
func (d *DecayStrainer) Update(strain, deltaTime float64) float64 {
	d.current *= StrainDecay(deltaTime, d.Base)
	d.current += strain * d.Multiplier
	return d.current
}

// InitialStrain implements Strainer.
func (d *DecayStrainer) InitialStrain(elapsed float64) float64 {
	return d.current * StrainDecay(elapsed, d.Base)
}

// Current is the strain after the last update.
func (d *DecayStrainer) Current() float64 { return d.current }

// PeakStrainer has no memory: the strain of a section is the highest
// instantaneous strain inside it.
type PeakStrainer struct{}

// Update implements Strainer.
func (PeakStrainer) Update(strain, _ float64) float64 { return strain }

// InitialStrain implements Strainer.
func (PeakStrainer) InitialStrain(float64) float64 { return 0 }

// StrainDecaySkill is a StrainSkill whose strain decays exponentially.
type StrainDecaySkill struct {
	*StrainSkill
	decay *DecayStrainer
}

// NewStrainDecaySkill builds a decaying skill. base is the share of strain
// left after one second.
func NewStrainDecaySkill(base, multiplier float64, opts ...Option) *StrainDecaySkill {
	decay := &DecayStrainer{Base: base, Multiplier: multiplier}
	return &StrainDecaySkill{
		StrainSkill: NewStrainSkill(decay, opts...),
		decay:       decay,
	}
}

// CurrentStrain is the strain after the last processed object.
func (s *StrainDecaySkill) CurrentStrain() float64 { return s.decay.Current() }
