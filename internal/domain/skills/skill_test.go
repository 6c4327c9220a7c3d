package skills_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/okian/juicerank/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStrainDecay(t *testing.T) {
	Convey("Given no elapsed time", t, func() {
		Convey("Then nothing decays for any base", func() {
			for _, base := range []float64{0.15, 0.3, 0.9, 1} {
				So(skills.StrainDecay(0, base), ShouldEqual, 1.0)
			}
		})
	})

	Convey("Given one second elapsed", t, func() {
		Convey("Then the base is what remains", func() {
			So(skills.StrainDecay(1000, 0.3), ShouldAlmostEqual, 0.3, 1e-12)
		})
	})
}

func TestWeightedSum(t *testing.T) {
	Convey("Given three positive peaks", t, func() {
		v := skills.WeightedSum([]float64{10, 30, 20}, 0.9)

		Convey("Then they are summed hardest first", func() {
			So(v, ShouldAlmostEqual, 56.1, 1e-9)
		})
	})

	Convey("Given only non-positive peaks", t, func() {
		Convey("Then the value is exactly zero", func() {
			So(skills.WeightedSum([]float64{0, 0, 0}, 0.9), ShouldEqual, 0.0)
			So(skills.WeightedSum([]float64{-1, 0, -5}, 0.9), ShouldEqual, 0.0)
			So(skills.WeightedSum(nil, 0.9), ShouldEqual, 0.0)
		})
	})

	Convey("Given empty sections among active ones", t, func() {
		Convey("Then they do not shift the ranking", func() {
			So(skills.WeightedSum([]float64{0, 10, -3, 20}, 0.9), ShouldAlmostEqual, 29, 1e-9)
		})
	})

	Convey("Given a peak that grows", t, func() {
		Convey("Then the value never decreases", func() {
			prev := 0.0
			for x := 0.5; x < 50; x += 0.5 {
				v := skills.WeightedSum([]float64{10, x, 20, 5}, 0.9)
				So(v, ShouldBeGreaterThanOrEqualTo, prev)
				prev = v
			}
		})
	})
}

func TestStrainSkill(t *testing.T) {
	Convey("Given a peak skill", t, func() {
		s := skills.NewStrainSkill(skills.PeakStrainer{}, skills.WithName("peak"))

		Convey("When objects span several sections", func() {
			s.Process(skills.Object{StartTime: 0, Strain: 5})
			s.Process(skills.Object{StartTime: 100, DeltaTime: 100, Strain: 3})
			s.Process(skills.Object{StartTime: 500, DeltaTime: 400, Strain: 7})

			Convey("Then each section keeps its own peak", func() {
				So(s.CurrentStrainPeaks(), ShouldResemble, []float64{5, 3, 7})
				So(s.Name(), ShouldEqual, "peak")
			})

			Convey("Then the value weights them by rank", func() {
				So(s.DifficultyValue(), ShouldAlmostEqual, 7+5*0.9+3*0.81, 1e-9)
			})

			Convey("Then extracting the value twice gives the same answer", func() {
				So(s.DifficultyValue(), ShouldEqual, s.DifficultyValue())
			})
		})
	})

	Convey("Given a stream starting at zero", t, func() {
		for _, d := range []float64{800, 1000, 1999} {
			s := skills.NewStrainSkill(skills.PeakStrainer{})
			for at := 0.0; at <= d; at += 50 {
				s.Process(skills.Object{StartTime: at, DeltaTime: 50, Strain: 1})
			}
			s.Process(skills.Object{StartTime: d, Strain: 1})

			Convey(fmt.Sprintf("Then a %.0fms stream has one peak per crossed section plus the open one", d), func() {
				So(len(s.CurrentStrainPeaks()), ShouldEqual, int(math.Ceil(d/400))+1)
			})
		}
	})

	Convey("Given a stream starting off the section grid", t, func() {
		for _, start := range []float64{150, 300, 1234.5} {
			for _, d := range []float64{50, 399, 400, 1000} {
				s := skills.NewStrainSkill(skills.PeakStrainer{})
				s.Process(skills.Object{StartTime: start, Strain: 1})
				s.Process(skills.Object{StartTime: start + d, DeltaTime: d, Strain: 1})

				Convey(fmt.Sprintf("Then a %.0fms stream from %.1fms closes ceil(D/L) sections", d, start), func() {
					So(len(s.CurrentStrainPeaks()), ShouldEqual, int(math.Ceil(d/400))+1)
				})
			}
		}
	})

	Convey("Given a first object inside a section", t, func() {
		feed := func(s skills.Skill) {
			s.Process(skills.Object{StartTime: 150, Strain: 2})
			s.Process(skills.Object{StartTime: 390, DeltaTime: 240, Strain: 4})
		}

		Convey("Then the first section ends at the first object", func() {
			s := skills.NewStrainSkill(skills.PeakStrainer{})
			feed(s)
			So(s.CurrentStrainPeaks(), ShouldResemble, []float64{2, 4})
		})

		Convey("Then grid aligned sections end on multiples of their length", func() {
			s := skills.NewStrainSkill(skills.PeakStrainer{}, skills.WithGridAlignedSections(true))
			feed(s)
			So(s.CurrentStrainPeaks(), ShouldResemble, []float64{4})
		})
	})

	Convey("Given a skill behind the Skill interface", t, func() {
		var s skills.Skill = skills.NewStrainDecaySkill(0.3, 1)
		s.Process(skills.Object{StartTime: 0, Strain: 1})
		s.StartNewSectionFrom(5)

		Convey("Then the section hook seeds the open section", func() {
			So(s.DifficultyValue(), ShouldAlmostEqual, 5, 1e-9)
		})
	})

	Convey("Given custom options", t, func() {
		s := skills.NewStrainSkill(skills.PeakStrainer{},
			skills.WithSectionLength(200),
			skills.WithDecayWeight(0.5),
		)

		Convey("Then they replace the defaults", func() {
			So(s.SectionLength(), ShouldEqual, 200.0)
			s.Process(skills.Object{StartTime: 0, Strain: 10})
			s.Process(skills.Object{StartTime: 300, DeltaTime: 300, Strain: 10})
			So(s.DifficultyValue(), ShouldAlmostEqual, 15, 1e-9)
		})

		Convey("Then nonsensical values are ignored", func() {
			s := skills.NewStrainSkill(skills.PeakStrainer{}, skills.WithSectionLength(-1), skills.WithDecayWeight(0))
			So(s.SectionLength(), ShouldEqual, skills.DefaultSectionLength)
		})
	})
}

func TestStrainDecaySkill(t *testing.T) {
	Convey("Given a decaying skill", t, func() {
		s := skills.NewStrainDecaySkill(0.5, 1)

		Convey("When a strong object is followed by a quiet one a second later", func() {
			s.Process(skills.Object{StartTime: 0, Strain: 10})
			s.Process(skills.Object{StartTime: 1000, DeltaTime: 1000, Strain: 0})

			Convey("Then the current strain halves", func() {
				So(s.CurrentStrain(), ShouldAlmostEqual, 5, 1e-9)
			})

			Convey("Then sections in between carry the decaying strain", func() {
				peaks := s.CurrentStrainPeaks()
				So(len(peaks), ShouldEqual, 4)
				So(peaks[0], ShouldAlmostEqual, 10, 1e-9)
				So(peaks[1], ShouldAlmostEqual, 10, 1e-9)
				So(peaks[2], ShouldAlmostEqual, 10*math.Pow(0.5, 0.4), 1e-9)
				So(peaks[3], ShouldAlmostEqual, 10*math.Pow(0.5, 0.8), 1e-9)
			})
		})
	})
}
