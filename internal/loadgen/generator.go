package loadgen

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/curve"
	"github.com/okian/juicerank/internal/domain/timing"
)

const (
	playfieldWidth  = 512
	playfieldHeight = 384
)

var (
	// note spacings in beats
	beatSteps = []float64{0.25, 0.5, 0.5, 1, 1, 2}
	pathTypes = []curve.PathType{curve.PathLinear, curve.PathBezier, curve.PathPerfect, curve.PathCatmull}
)

// Generator builds random but well formed maps.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

// NewGenerator seeds a generator.
func NewGenerator(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src)}
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail
		panic(err)
	}
	return id.String()
}

// Beatmap returns a map with n hit objects. Roughly one object in four is a
// slider and one in forty a spinner.
func (g *Generator) Beatmap(n int) *beatmap.Beatmap {
	id := g.id()
	beatLength := 60000 / float64(120+g.rng.IntN(120))

	b := &beatmap.Beatmap{
		ID: "lg-" + id[:8],
		Metadata: beatmap.Metadata{
			Title:   fmt.Sprintf("Synthetic %s", id[:4]),
			Artist:  "loadgen",
			Creator: "loadgen",
			Version: fmt.Sprintf("CS%.1f", 2+g.rng.Float64()*5),
		},
		Difficulty: beatmap.Difficulty{
			CircleSize:       2 + g.rng.Float64()*5,
			ApproachRate:     5 + g.rng.Float64()*5,
			SliderMultiplier: 1 + g.rng.Float64()*1.4,
			SliderTickRate:   float64(1 + g.rng.IntN(2)),
		},
		TimingPoints: []timing.TimingPoint{{Time: 0, BeatLength: beatLength}},
	}
	if g.rng.IntN(2) == 0 {
		b.DifficultyPoints = []timing.DifficultyPoint{{Time: 0, SliderVelocity: 0.75 + g.rng.Float64()*0.75}}
	}

	t := 1000.0
	for i := 0; i < n; i++ {
		obj := beatmap.HitObject{
			X:         float64(g.rng.IntN(playfieldWidth + 1)),
			Y:         float64(g.rng.IntN(playfieldHeight + 1)),
			StartTime: t,
		}
		switch r := g.rng.IntN(40); {
		case r == 0:
			obj.Kind = beatmap.KindSpinner
			obj.EndTime = t + 2*beatLength
		case r < 10:
			obj.Kind = beatmap.KindSlider
			obj.Slider = g.slider(obj.X, obj.Y)
		default:
			obj.Kind = beatmap.KindCircle
		}
		b.HitObjects = append(b.HitObjects, obj)

		step := beatSteps[g.rng.IntN(len(beatSteps))] * beatLength
		if obj.Kind != beatmap.KindCircle {
			// leave room for the body
			step += 2 * beatLength
		}
		t += step
	}
	b.ApplyDefaults()
	return b
}

func (g *Generator) slider(x, y float64) *beatmap.Slider {
	kind := pathTypes[g.rng.IntN(len(pathTypes))]
	// vertices are relative to the slider head
	points := []curve.ControlPoint{{X: 0, Y: 0, Type: kind}}
	count := 1
	switch kind {
	case curve.PathPerfect:
		count = 2
	case curve.PathBezier, curve.PathCatmull:
		count = 2 + g.rng.IntN(3)
	}
	for i := 0; i < count; i++ {
		points = append(points, curve.ControlPoint{
			X: float64(g.rng.IntN(playfieldWidth+1)) - x,
			Y: float64(g.rng.IntN(playfieldHeight+1)) - y,
		})
	}
	return &beatmap.Slider{
		ControlPoints: points,
		Repeats:       g.rng.IntN(3),
	}
}

// Batch generates cfg.Maps maps and appends the duplicates to resubmit.
func (g *Generator) Batch(cfg *Config) (maps, submissions []*beatmap.Beatmap) {
	maps = make([]*beatmap.Beatmap, cfg.Maps)
	for i := range maps {
		maps[i] = g.Beatmap(cfg.Objects)
	}
	submissions = append(submissions, maps...)
	dups := int(float64(cfg.Maps) * cfg.Duplicates)
	for i := 0; i < dups; i++ {
		submissions = append(submissions, maps[g.rng.IntN(len(maps))])
	}
	return maps, submissions
}
