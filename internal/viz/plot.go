// Package viz renders calibration runs in the terminal: step plots of stored
// runs and a live view of one in progress.
package viz

import (
	"github.com/guptarohit/asciigraph"
)

// PlotSeries renders one data series as an ascii graph with a caption.
func PlotSeries(caption string, data []float64) string {
	if len(data) == 0 {
		return "(no data)"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
