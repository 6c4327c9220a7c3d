package loadgen

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/juicerank/internal/domain/types"
)

// WriteReport prints the run summary followed by the fetched leaderboard.
func WriteReport(w io.Writer, stats *Stats, leaderboard []types.Entry) {
	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.SetAlignment(tablewriter.ALIGN_LEFT)
	summary.SetBorder(false)

	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	rows := [][]string{
		{"maps generated", humanize.Comma(int64(stats.MapsGenerated))},
		{"submitted", humanize.Comma(int64(stats.Submitted))},
		{"accepted", humanize.Comma(int64(stats.Accepted))},
		{"duplicate", humanize.Comma(int64(stats.Duplicate))},
		{"refused", humanize.Comma(int64(stats.Refused))},
		{"failed", humanize.Comma(int64(stats.Failed))},
		{"rated", humanize.Comma(int64(stats.Rated))},
		{"rating failed", humanize.Comma(int64(stats.RateFailed))},
		{"still pending", humanize.Comma(int64(stats.Pending))},
		{"duration", stats.Duration.Round(1e6).String()},
		{"submissions/s", humanize.FormatFloat("#,###.##", perSecond)},
	}
	summary.AppendBulk(rows)
	summary.Render()

	if len(leaderboard) == 0 {
		return
	}
	fmt.Fprintln(w)

	board := tablewriter.NewWriter(w)
	board.SetHeader([]string{"Rank", "Beatmap", "Title", "Stars"})
	board.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})
	for _, e := range leaderboard {
		board.Append([]string{
			humanize.Ordinal(e.Rank),
			e.BeatmapID,
			e.Title,
			strconv.FormatFloat(e.Stars, 'f', 2, 64),
		})
	}
	board.Render()
}
