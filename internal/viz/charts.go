package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cruisectl/internal/episode"
)

// SpeedChart plots ego, desired and lead speed over the trace.
func SpeedChart(tr *episode.Trace, width, height int) string {
	if len(tr.Rows) < 2 {
		return ""
	}
	return asciigraph.PlotMany(
		[][]float64{
			tr.Series(episode.EgoVelocity),
			tr.Series(episode.TargetSpeed),
			tr.Series(episode.LeadVelocity),
		},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Gray, asciigraph.Cyan),
		asciigraph.Caption("speed m/s: ego (green), desired (gray), lead (cyan)"),
	)
}

// GapChart plots the distance to the lead. Ticks without a lead are left
// blank; a trace that never saw one has no chart.
func GapChart(tr *episode.Trace, width, height int) string {
	gaps := tr.Series(episode.DistanceToLead)
	if len(gaps) < 2 || !anyFinite(gaps) {
		return ""
	}
	return asciigraph.Plot(gaps,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("distance to lead, m"),
	)
}

func anyFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
