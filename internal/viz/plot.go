package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/popgen"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.Magenta,
}

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
	// PadTo extends every trajectory with its last value up to this many
	// generations.
	PadTo int
}

// PlotTrajectories draws every trajectory on a shared [0, 1] frequency
// axis.
func PlotTrajectories(freqs [][]float64, opts PlotOptions) string {
	if opts.Width <= 0 {
		opts.Width = 70
	}
	if opts.Height <= 0 {
		opts.Height = 12
	}

	longest := opts.PadTo
	for _, f := range freqs {
		longest = max(longest, len(f))
	}

	data := make([][]float64, 0, len(freqs))
	for _, f := range freqs {
		if len(f) == 0 {
			continue
		}
		data = append(data, padWithLast(f, longest))
	}
	if len(data) == 0 {
		return ""
	}

	colors := make([]asciigraph.AnsiColor, len(data))
	for i := range data {
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	options := []asciigraph.Option{
		asciigraph.Width(opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(colors...),
	}
	if opts.Caption != "" {
		options = append(options, asciigraph.Caption(opts.Caption))
	}
	return asciigraph.PlotMany(data, options...)
}

func padWithLast(f []float64, n int) []float64 {
	out := make([]float64, max(n, len(f)))
	copy(out, f)
	for i := len(f); i < len(out); i++ {
		out[i] = f[len(f)-1]
	}
	// asciigraph needs two points to draw a line.
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

// Summary renders the ensemble statistics of a run.
func Summary(title, model string, params popgen.Params, s ensemble.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(title) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}

	row("population", fmt.Sprintf("%d", params.N))
	row("initial freq", fmt.Sprintf("%.4g", params.Freq))
	row("generations", fmt.Sprintf("%d", params.Generations))
	if model == popgen.ModelSelection {
		row("selection (s)", fmt.Sprintf("%.4g", params.Selection))
		row("dominance (h)", fmt.Sprintf("%.4g", params.Dominance))
	}
	row("repetitions", fmt.Sprintf("%d", s.Repetitions))
	row("final freq", fmt.Sprintf("%.4f ± %.4f", s.MeanFinal, s.StdFinal))
	row("fixed", fmt.Sprintf("%d / %d", s.FixedCount, s.Repetitions))
	if s.HasFixation {
		row("mean fixation gen", fmt.Sprintf("%.1f", s.MeanFixationGen))
	} else {
		b.WriteString(accentStyle().Render("none of the repetitions reached fixation") + "\n")
	}

	if len(s.Metrics) > 0 {
		names := make([]string, 0, len(s.Metrics))
		for name := range s.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n")
		for _, name := range names {
			row(name, fmt.Sprintf("%.4f", s.Metrics[name]))
		}
	}

	return panelStyle().Render(strings.TrimRight(b.String(), "\n"))
}

var genotypeLabels = [3]string{"AA", "Aa", "aa"}

// GenotypeBars shows the three genotype proportions as bars of the given
// width.
func GenotypeBars(g popgen.Genotypes, width int) string {
	var b strings.Builder
	for i, v := range g.Slice() {
		style := lipgloss.NewStyle().Foreground(CurrentTheme.Genotypes[i])
		fmt.Fprintf(&b, "%s %s %.3f\n", genotypeLabels[i], Bar(v, width, style), v)
	}
	return strings.TrimRight(b.String(), "\n")
}
