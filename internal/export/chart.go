// Package export renders simulation results to image files: PNG or SVG
// line charts of allele-frequency trajectories and animated GIFs of
// genotype proportions.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// legendLimit is the largest number of replicates that still gets a legend.
const legendLimit = 10

type ChartOptions struct {
	Title  string
	Format string
	Width  int
	Height int
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 512
	}
	return o
}

func renderer(format string) (chart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case FormatPNG:
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
}

// TrajectoryChart plots one line per replicate with generation on the
// x-axis and allele frequency on a fixed [0, 1] y-axis.
func TrajectoryChart(w io.Writer, freqs [][]float64, opts ChartOptions) error {
	opts = opts.withDefaults()
	rp, err := renderer(opts.Format)
	if err != nil {
		return err
	}

	longest := 0
	series := make([]chart.Series, 0, len(freqs))
	for i, f := range freqs {
		if len(f) == 0 {
			continue
		}
		longest = max(longest, len(f))

		xs := make([]float64, len(f))
		for g := range f {
			xs[g] = float64(g)
		}
		ys := f
		if len(f) == 1 {
			xs = []float64{0, 0}
			ys = []float64{f[0], f[0]}
		}

		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("rep %d", i),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no trajectories to plot")
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			Name:  "generation",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(longest-1), 1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	if len(series) <= legendLimit {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return graph.Render(rp, w)
}

// SweepPoint is one population size and the mean frequency observed there.
type SweepPoint struct {
	N    int
	Mean float64
}

// SweepChart plots mean frequency against log10 of the population size.
func SweepChart(w io.Writer, points []SweepPoint, opts ChartOptions) error {
	opts = opts.withDefaults()
	rp, err := renderer(opts.Format)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no sweep points to plot")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = math.Log10(float64(p.N))
		ys[i] = p.Mean
	}
	minX, maxX := xs[0], xs[len(xs)-1]
	if maxX <= minX {
		maxX = minX + 1
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			Name:  "population size",
			Range: &chart.ContinuousRange{Min: minX, Max: maxX},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", math.Pow(10, v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "mean frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "mean frequency",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}

	return graph.Render(rp, w)
}

// TimestampName names an export file after t, e.g. 20240301120000.png.
func TimestampName(t time.Time, ext string) string {
	return t.Format("20060102150405") + "." + strings.TrimPrefix(ext, ".")
}
