package difficulty

import (
	"math"

	"github.com/okian/juicerank/internal/domain/skills"
)

const (
	// objects closer than this in time are treated as this far apart
	minStrainTime = 40.0
	// playfield width in osu!pixels
	playfieldWidth = 512.0

	movementDecayBase = 0.2
	densityDecayBase  = 0.3
	movementScale     = 1.0
	densityScale      = 1.0

	ratingMultiplier = 0.153
	starsMeanPower   = 1.1
)

// palpable is a fruit or droplet the catcher has to reach.
type palpable struct {
	x    float64
	time float64
}

// catcherWidth follows circle size; larger circle size, smaller catcher.
func catcherWidth(cs float64) float64 {
	scale := 1 - 0.7*(cs-5)/5
	return 106.75 * scale * 0.8
}

// diffObject is the shared preprocessing of one palpable object.
type diffObject struct {
	time       float64
	deltaTime  float64
	strainTime float64
	// distance moved, in half catcher widths
	distance float64
}

func buildDiffObjects(objs []palpable, cs float64) []diffObject {
	if len(objs) < 2 {
		return nil
	}
	halfCatcher := catcherWidth(cs) / 2

	out := make([]diffObject, 0, len(objs)-1)
	for i := 1; i < len(objs); i++ {
		prev, cur := objs[i-1], objs[i]
		dt := cur.time - prev.time
		// the catcher only moves horizontally
		move := math.Abs(cur.x - prev.x)
		out = append(out, diffObject{
			time:       cur.time,
			deltaTime:  dt,
			strainTime: math.Max(minStrainTime, dt),
			distance:   math.Min(move, playfieldWidth) / halfCatcher,
		})
	}
	return out
}

// movementStrain rewards long, fast moves between objects.
func movementStrain(o diffObject) float64 {
	return o.distance / o.strainTime * 100
}

// densityStrain rewards objects packed closely in time.
func densityStrain(o diffObject) float64 {
	return 100 / o.strainTime
}

type dimension struct {
	skill    *skills.StrainDecaySkill
	evaluate func(diffObject) float64
}

func newDimensions(opts []skills.Option) []dimension {
	return []dimension{
		{
			skill:    skills.NewStrainDecaySkill(movementDecayBase, movementScale, named(opts, SkillMovement)...),
			evaluate: movementStrain,
		},
		{
			skill:    skills.NewStrainDecaySkill(densityDecayBase, densityScale, named(opts, SkillDensity)...),
			evaluate: densityStrain,
		},
	}
}

func named(opts []skills.Option, name string) []skills.Option {
	out := make([]skills.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, skills.WithName(name))
}

func (d dimension) run(objs []diffObject) {
	for _, o := range objs {
		d.skill.Process(skills.Object{
			StartTime: o.time,
			DeltaTime: o.deltaTime,
			Strain:    d.evaluate(o),
		})
	}
}

func rating(value float64) float64 {
	return math.Sqrt(value) * ratingMultiplier
}

// powerMean combines per skill ratings; p > 1 leans towards the larger one.
func powerMean(values []float64, p float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += math.Pow(v, p)
	}
	return math.Pow(sum, 1/p)
}
