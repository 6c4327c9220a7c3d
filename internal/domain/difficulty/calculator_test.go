package difficulty_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/curve"
	"github.com/okian/juicerank/internal/domain/difficulty"
	. "github.com/smartystreets/goconvey/convey"
)

func circles(n int, spacing float64, xs ...float64) *beatmap.Beatmap {
	b := &beatmap.Beatmap{ID: "circles"}
	for i := 0; i < n; i++ {
		b.HitObjects = append(b.HitObjects, beatmap.HitObject{
			Kind:      beatmap.KindCircle,
			X:         xs[i%len(xs)],
			StartTime: float64(i) * spacing,
		})
	}
	b.ApplyDefaults()
	return b
}

func sliderMap() *beatmap.Beatmap {
	b := &beatmap.Beatmap{
		ID:         "slider",
		Difficulty: beatmap.Difficulty{SliderMultiplier: 10, SliderTickRate: 1},
		HitObjects: []beatmap.HitObject{
			{Kind: beatmap.KindCircle, X: 0, StartTime: 0},
			{
				Kind: beatmap.KindSlider, X: 100, StartTime: 500,
				Slider: &beatmap.Slider{ControlPoints: []curve.ControlPoint{
					{X: 0, Y: 0, Type: curve.PathLinear},
					{X: 200, Y: 0},
				}},
			},
			{Kind: beatmap.KindSpinner, StartTime: 1000, EndTime: 2000},
		},
	}
	b.ApplyDefaults()
	return b
}

func TestCalculate(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty map", t, func() {
		b := &beatmap.Beatmap{}
		b.ApplyDefaults()
		attrs, err := difficulty.NewCalculator().Calculate(ctx, b)

		Convey("Then it rates zero", func() {
			So(err, ShouldBeNil)
			So(attrs.Stars, ShouldEqual, 0.0)
			So(attrs.Passed, ShouldBeTrue)
		})
	})

	Convey("Given a map with a slider and a spinner", t, func() {
		attrs, err := difficulty.NewCalculator().Calculate(ctx, sliderMap())

		Convey("Then nested objects are counted", func() {
			So(err, ShouldBeNil)
			So(attrs.Fruits, ShouldEqual, 3)
			So(attrs.Droplets, ShouldEqual, 0)
			So(attrs.TinyDroplets, ShouldEqual, 1)
			So(attrs.Spinners, ShouldEqual, 1)
			So(attrs.MaxCombo, ShouldEqual, 3)
			So(attrs.Objects(), ShouldEqual, 4)
		})

		Convey("Then map settings are reported", func() {
			So(attrs.CircleSize, ShouldEqual, beatmap.DefaultCircleSize)
			So(attrs.Stars, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a sparse map and a dense one", t, func() {
		calc := difficulty.NewCalculator()
		easy, err := calc.Calculate(ctx, circles(20, 1000, 256))
		So(err, ShouldBeNil)
		hard, err := calc.Calculate(ctx, circles(20, 100, 0, 512))
		So(err, ShouldBeNil)

		Convey("Then the dense map with wide moves rates higher", func() {
			So(hard.Stars, ShouldBeGreaterThan, easy.Stars)
			So(hard.Movement, ShouldBeGreaterThan, easy.Movement)
			So(hard.Density, ShouldBeGreaterThan, easy.Density)
		})

		Convey("Then a map without movement has no movement rating", func() {
			So(easy.Movement, ShouldEqual, 0.0)
		})
	})

	Convey("Given the same jumps mirrored across the playfield", t, func() {
		calc := difficulty.NewCalculator()
		right, err := calc.Calculate(ctx, circles(12, 150, 100, 400))
		So(err, ShouldBeNil)
		left, err := calc.Calculate(ctx, circles(12, 150, 412, 112))
		So(err, ShouldBeNil)

		Convey("Then the movement rating depends on distance only", func() {
			So(left.Movement, ShouldAlmostEqual, right.Movement, 1e-9)
			So(left.Movement, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a limit on passed objects", t, func() {
		attrs, err := difficulty.NewCalculator(difficulty.WithPassedObjects(2)).Calculate(ctx, circles(5, 200, 0, 300))

		Convey("Then only that many objects are rated", func() {
			So(err, ShouldBeNil)
			So(attrs.Fruits, ShouldEqual, 2)
			So(attrs.Passed, ShouldBeFalse)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := difficulty.NewCalculator().Calculate(cctx, circles(5, 200, 0))

		Convey("Then the calculation stops", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a slider without geometry", t, func() {
		b := &beatmap.Beatmap{HitObjects: []beatmap.HitObject{{Kind: beatmap.KindSlider}}}
		b.ApplyDefaults()
		_, err := difficulty.NewCalculator().Calculate(ctx, b)

		Convey("Then it is a structural error", func() {
			So(errors.Is(err, curve.ErrNoControlPoints), ShouldBeTrue)
		})
	})

	Convey("Given concurrent calculations on one calculator", t, func() {
		calc := difficulty.NewCalculator()
		b := circles(50, 150, 0, 200, 400)
		want, err := calc.Calculate(ctx, b)
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		results := make([]difficulty.Attributes, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = calc.Calculate(ctx, b)
			}(i)
		}
		wg.Wait()

		Convey("Then every result is identical", func() {
			for _, r := range results {
				So(r, ShouldResemble, want)
			}
		})
	})
}

func TestStrains(t *testing.T) {
	Convey("Given a calculator with a custom section length", t, func() {
		calc := difficulty.NewCalculator(difficulty.WithSectionLength(200), difficulty.WithDecayWeight(0.95))
		strains, err := calc.Strains(context.Background(), circles(11, 100, 0, 512))

		Convey("Then both skills report their peaks", func() {
			So(err, ShouldBeNil)
			So(strains.SectionLength, ShouldEqual, 200.0)
			So(strains.Peaks, ShouldContainKey, difficulty.SkillMovement)
			So(strains.Peaks, ShouldContainKey, difficulty.SkillDensity)
		})

		Convey("Then objects from 100ms to 1000ms close five sections before the open one", func() {
			// sections end at 100, 300, 500, 700 and 900
			So(len(strains.Peaks[difficulty.SkillDensity]), ShouldEqual, 6)
		})
	})

	Convey("Given a calculator with grid aligned sections", t, func() {
		calc := difficulty.NewCalculator(difficulty.WithSectionLength(200), difficulty.WithGridAlignedSections(true))
		strains, err := calc.Strains(context.Background(), circles(11, 100, 0, 512))

		Convey("Then sections end on multiples of their length", func() {
			// sections end at 200, 400, 600 and 800; 1000 is still open
			So(err, ShouldBeNil)
			So(len(strains.Peaks[difficulty.SkillDensity]), ShouldEqual, 5)
		})
	})
}

func TestAttributesBuilder(t *testing.T) {
	Convey("Given a builder with a budget of two", t, func() {
		b := difficulty.NewAttributesBuilder(2)

		Convey("Then tiny droplets are free and the rest consume budget", func() {
			So(b.TakeMore(), ShouldBeTrue)
			b.IncFruits()
			b.IncTinyDroplets()
			b.IncTinyDroplets()
			So(b.TakeMore(), ShouldBeTrue)
			b.IncDroplets()
			So(b.TakeMore(), ShouldBeFalse)

			var attrs difficulty.Attributes
			b.Into(&attrs)
			So(attrs.Fruits, ShouldEqual, 1)
			So(attrs.Droplets, ShouldEqual, 1)
			So(attrs.TinyDroplets, ShouldEqual, 2)
			So(attrs.MaxCombo, ShouldEqual, 2)
		})
	})

	Convey("Given an unlimited builder", t, func() {
		b := difficulty.NewAttributesBuilder(0)
		for i := 0; i < 1000; i++ {
			b.IncFruits()
		}

		Convey("Then it always wants more", func() {
			So(b.TakeMore(), ShouldBeTrue)
		})
	})
}
