// Command rate prints the difficulty of beatmap files without running the
// service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/difficulty"
	"github.com/okian/juicerank/internal/domain/timing"
	"github.com/okian/juicerank/pkg/logger"
)

type options struct {
	files          []string
	sectionLength  float64
	decayWeight    float64
	beatLength     float64
	sliderVelocity float64
	lastTickAnchor bool
	gridSections   bool
	passed         int
	strains        bool
	asJSON         bool
}

func newApp(o *options) *kingpin.Application {
	app := kingpin.New("rate", "Rate beatmap files (.json, .yaml).")
	app.Arg("files", "Beatmap files").Required().ExistingFilesVar(&o.files)
	app.Flag("section-length", "Strain section length in ms").Default("400").Float64Var(&o.sectionLength)
	app.Flag("decay-weight", "Weight of each successively easier section").Default("0.9").Float64Var(&o.decayWeight)
	app.Flag("beat-length", "Beat length where no timing point applies").
		Default(fmt.Sprint(timing.DefaultBeatLength)).Float64Var(&o.beatLength)
	app.Flag("slider-velocity", "Slider velocity where no difficulty point applies").
		Default(fmt.Sprint(timing.DefaultSliderVelocity)).Float64Var(&o.sliderVelocity)
	app.Flag("last-tick-anchor", "Let the legacy last tick bound tiny droplet gaps").BoolVar(&o.lastTickAnchor)
	app.Flag("grid-sections", "End strain sections on multiples of the section length").BoolVar(&o.gridSections)
	app.Flag("passed", "Rate only the first N fruits and droplets").Short('p').IntVar(&o.passed)
	app.Flag("strains", "Print the strain peaks of every map").Short('s').BoolVar(&o.strains)
	app.Flag("json", "Print JSON instead of tables").BoolVar(&o.asJSON)
	return app
}

func main() {
	var o options
	kingpin.MustParse(newApp(&o).Parse(os.Args[1:]))

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &o, os.Stdout); err != nil {
		logger.Get().Error(ctx, "rating failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// result is one rated file.
type result struct {
	File    string                `json:"file"`
	Beatmap *beatmap.Beatmap      `json:"-"`
	Attrs   difficulty.Attributes `json:"attributes"`
	Strains *difficulty.Strains   `json:"strains,omitempty"`
	Meta    beatmap.Metadata      `json:"metadata"`
	Counts  map[string]int        `json:"counts"`
}

func run(ctx context.Context, o *options, out io.Writer) error {
	calc := difficulty.NewCalculator(
		difficulty.WithDefaults(timing.Defaults{BeatLength: o.beatLength, SliderVelocity: o.sliderVelocity}),
		difficulty.WithSectionLength(o.sectionLength),
		difficulty.WithDecayWeight(o.decayWeight),
		difficulty.WithLastTickAnchor(o.lastTickAnchor),
		difficulty.WithGridAlignedSections(o.gridSections),
		difficulty.WithPassedObjects(o.passed),
	)

	results := make([]result, 0, len(o.files))
	for _, path := range o.files {
		r, err := rateFile(ctx, calc, path, o.strains)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	writeSummary(out, results)
	if o.strains {
		for i := range results {
			writeStrains(out, &results[i])
		}
	}
	return nil
}

func rateFile(ctx context.Context, calc *difficulty.Calculator, path string, withStrains bool) (result, error) {
	format, err := beatmap.FormatFromPath(path)
	if err != nil {
		return result{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	b, err := beatmap.Decode(f, format)
	if err != nil {
		return result{}, fmt.Errorf("%s: %w", path, err)
	}
	attrs, err := calc.Calculate(ctx, b)
	if err != nil {
		return result{}, fmt.Errorf("%s: %w", path, err)
	}

	circles, sliders, spinners := b.Count()
	r := result{
		File:    path,
		Beatmap: b,
		Attrs:   attrs,
		Meta:    b.Metadata,
		Counts:  map[string]int{"circles": circles, "sliders": sliders, "spinners": spinners},
	}
	if withStrains {
		st, err := calc.Strains(ctx, b)
		if err != nil {
			return result{}, fmt.Errorf("%s: %w", path, err)
		}
		r.Strains = &st
	}
	return r, nil
}
