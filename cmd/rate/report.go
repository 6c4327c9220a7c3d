package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/juicerank/internal/domain/difficulty"
)

func stars(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func writeSummary(w io.Writer, results []result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Map", "Length", "Objects", "Fruits", "Droplets", "Tiny", "Combo", "Movement", "Density", "Stars"})
	table.SetAutoWrapText(false)
	for _, r := range results {
		name := r.Meta.Title
		if r.Meta.Version != "" {
			name += " [" + r.Meta.Version + "]"
		}
		length := time.Duration(r.Beatmap.Duration() * float64(time.Millisecond)).Round(time.Second)
		table.Append([]string{
			filepath.Base(r.File),
			name,
			length.String(),
			humanize.Comma(int64(len(r.Beatmap.HitObjects))),
			humanize.Comma(int64(r.Attrs.Fruits)),
			humanize.Comma(int64(r.Attrs.Droplets)),
			humanize.Comma(int64(r.Attrs.TinyDroplets)),
			humanize.Comma(int64(r.Attrs.MaxCombo)),
			stars(r.Attrs.Movement),
			stars(r.Attrs.Density),
			stars(r.Attrs.Stars),
		})
	}
	table.Render()
}

func writeStrains(w io.Writer, r *result) {
	if r.Strains == nil {
		return
	}
	move := r.Strains.Peaks[difficulty.SkillMovement]
	dens := r.Strains.Peaks[difficulty.SkillDensity]

	fmt.Fprintf(w, "\n%s: %s sections of %sms\n",
		filepath.Base(r.File), humanize.Comma(int64(len(move))), humanize.Ftoa(r.Strains.SectionLength))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Section", "Movement", "Density"})
	table.SetBorder(false)
	for i := range move {
		d := 0.0
		if i < len(dens) {
			d = dens[i]
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(move[i], 'f', 3, 64),
			strconv.FormatFloat(d, 'f', 3, 64),
		})
	}
	table.Render()
}
