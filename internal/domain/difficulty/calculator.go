package difficulty

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/curve"
	"github.com/okian/juicerank/internal/domain/skills"
	"github.com/okian/juicerank/internal/domain/slider"
	"github.com/okian/juicerank/internal/domain/timing"
)

// Skill names reported in Strains.
const (
	SkillMovement = "movement"
	SkillDensity  = "density"
)

// how often the object loop checks for cancellation
const cancelCheckInterval = 256

// Rater computes difficulty attributes for a beatmap.
type Rater interface {
	// Calculate rates b, honoring ctx for cancellation.
	Calculate(ctx context.Context, b *beatmap.Beatmap) (Attributes, error)
}

// Strains are the section peaks of each skill.
type Strains struct {
	SectionLength float64              `json:"section_length"`
	Peaks         map[string][]float64 `json:"peaks"`
}

// Calculator is the default Rater. It is safe for concurrent use; every
// calculation owns its own state.
type Calculator struct {
	defaults       timing.Defaults
	skillOpts      []skills.Option
	lastTickAnchor bool
	passedObjects  int
}

// NewCalculator creates a calculator with the given options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{defaults: timing.DefaultDefaults()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate implements Rater.
func (c *Calculator) Calculate(ctx context.Context, b *beatmap.Beatmap) (Attributes, error) {
	res, err := c.run(ctx, b)
	if err != nil {
		return Attributes{}, err
	}
	return res.attrs, nil
}

// Strains returns the per section peaks that make up the rating.
func (c *Calculator) Strains(ctx context.Context, b *beatmap.Beatmap) (Strains, error) {
	res, err := c.run(ctx, b)
	if err != nil {
		return Strains{}, err
	}
	out := Strains{Peaks: make(map[string][]float64, len(res.dims))}
	for _, d := range res.dims {
		out.SectionLength = d.skill.SectionLength()
		out.Peaks[d.skill.Name()] = d.skill.CurrentStrainPeaks()
	}
	return out, nil
}

type result struct {
	attrs Attributes
	dims  []dimension
}

func (c *Calculator) run(ctx context.Context, b *beatmap.Beatmap) (result, error) {
	builder := NewAttributesBuilder(c.passedObjects)
	objs, passed, err := c.palpableObjects(ctx, b, builder)
	if err != nil {
		return result{}, err
	}

	diffObjs := buildDiffObjects(objs, b.Difficulty.CircleSize)
	dims := newDimensions(c.skillOpts)

	// dimensions share nothing but the read-only objects
	var wg sync.WaitGroup
	for _, d := range dims {
		wg.Add(1)
		go func(d dimension) {
			defer wg.Done()
			d.run(diffObjs)
		}(d)
	}
	wg.Wait()

	attrs := Attributes{
		Movement:     rating(dims[0].skill.DifficultyValue()),
		Density:      rating(dims[1].skill.DifficultyValue()),
		ApproachRate: b.Difficulty.ApproachRate,
		CircleSize:   b.Difficulty.CircleSize,
		Passed:       passed,
	}
	attrs.Stars = powerMean([]float64{attrs.Movement, attrs.Density}, starsMeanPower)
	builder.Into(&attrs)

	return result{attrs: attrs, dims: dims}, nil
}

// palpableObjects converts hit objects into the fruits and droplets the
// catcher moves between, in time order. Tiny droplets only count.
func (c *Calculator) palpableObjects(ctx context.Context, b *beatmap.Beatmap, builder *AttributesBuilder) ([]palpable, bool, error) {
	timeline := b.Timeline(c.defaults)
	opts := []slider.Option{slider.WithLastTickAnchor(c.lastTickAnchor)}

	var (
		bufs   slider.Buffers
		out    = make([]palpable, 0, len(b.HitObjects))
		passed = true
	)
	for i := range b.HitObjects {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, fmt.Errorf("calculation cancelled: %w", err)
			}
		}
		if !builder.TakeMore() {
			passed = false
			break
		}

		obj := &b.HitObjects[i]
		switch obj.Kind {
		case beatmap.KindCircle:
			builder.IncFruits()
			out = append(out, palpable{x: obj.X, time: obj.StartTime})

		case beatmap.KindSlider:
			if obj.Slider == nil {
				return nil, false, fmt.Errorf("slider at %.0fms: %w", obj.StartTime, curve.ErrNoControlPoints)
			}
			path, err := curve.NewPath(obj.Slider.ControlPoints, obj.Slider.Length)
			if err != nil {
				return nil, false, fmt.Errorf("slider at %.0fms: %w", obj.StartTime, err)
			}
			js := slider.Decompose(slider.Params{
				X:                obj.X,
				StartTime:        obj.StartTime,
				Curve:            path,
				ControlPoints:    obj.Slider.ControlPoints,
				SpanCount:        obj.Slider.SpanCount(),
				BeatLength:       timeline.BeatLengthAt(obj.StartTime),
				SliderVelocity:   timeline.SliderVelocityAt(obj.StartTime),
				SliderMultiplier: b.Difficulty.SliderMultiplier,
				TickRate:         b.Difficulty.SliderTickRate,
				FormatVersion:    b.FormatVersion,
			}, builder, &bufs, opts...)
			for {
				n, ok := js.Next()
				if !ok {
					break
				}
				if n.Kind == slider.TinyDroplet {
					continue
				}
				out = append(out, palpable{x: n.Pos, time: n.StartTime})
			}

		case beatmap.KindSpinner:
			builder.IncSpinners()
		}
	}

	// sliders may overlap the objects that follow them
	slices.SortStableFunc(out, func(x, y palpable) int { return cmp.Compare(x.time, y.time) })
	return out, passed, nil
}
