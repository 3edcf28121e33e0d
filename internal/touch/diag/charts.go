package diag

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderBackgroundProfile renders a sensor's learned per-angle reference
// distance as a line chart, one point per angular index, so a reviewer can
// spot a mis-learned background (an angle stuck at zero, a jump where a
// static object sits right at the foreground threshold).
func RenderBackgroundProfile(w io.Writer, sensorID string, refDistance []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Background profile: %s", sensorID),
			Subtitle: "reference distance per angular index",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "angle index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "meters"}),
	)

	categories := make([]string, len(refDistance))
	points := make([]opts.LineData, len(refDistance))
	for i, d := range refDistance {
		categories[i] = fmt.Sprintf("%d", i)
		points[i] = opts.LineData{Value: d}
	}

	line.SetXAxis(categories).AddSeries("reference distance", points)
	return line.Render(w)
}

// ClusterPoint is one recorded L4 cluster centroid in its sensor's local
// frame, used only for the scatter plot.
type ClusterPoint struct {
	X, Y       float64
	PointCount int
}

// RenderClusterScatter renders a set of cluster centroids as a scatter
// plot, sized by point count, for eyeballing whether clustering parameters
// are splitting or merging touches incorrectly.
func RenderClusterScatter(w io.Writer, sensorID string, points []ClusterPoint) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Cluster centroids: %s", sensorID),
			Subtitle: fmt.Sprintf("%d clusters", len(points)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
	)

	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		data[i] = opts.ScatterData{Value: []float64{p.X, p.Y}}
	}

	scatter.AddSeries("clusters", data)
	return scatter.Render(w)
}
