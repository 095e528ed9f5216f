package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gendrift/internal/popgen"
)

type TickMsg time.Time

// Animation plays back the genotype proportions of one selection
// replicate, one generation per tick.
type Animation struct {
	title    string
	frames   []popgen.Genotypes
	freqs    []float64
	pos      int
	running  bool
	interval time.Duration
	barWidth int
}

func NewAnimation(title string, frames []popgen.Genotypes, interval time.Duration) Animation {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	freqs := make([]float64, len(frames))
	for i, g := range frames {
		freqs[i] = g.AlleleFrequency()
	}
	return Animation{
		title:    title,
		frames:   frames,
		freqs:    freqs,
		running:  len(frames) > 1,
		interval: interval,
		barWidth: 40,
	}
}

func (a Animation) Pos() int      { return a.pos }
func (a Animation) Running() bool { return a.running }

func (a Animation) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (a Animation) Init() tea.Cmd {
	return a.tick()
}

func (a Animation) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		case " ":
			a.running = !a.running
		case "[":
			a.running = false
			a.pos = max(a.pos-1, 0)
		case "]":
			a.running = false
			a.pos = min(a.pos+1, max(len(a.frames)-1, 0))
		case "r":
			a.pos = 0
			a.running = len(a.frames) > 1
		case "t":
			NextTheme()
		}
	case TickMsg:
		if a.running {
			if a.pos < len(a.frames)-1 {
				a.pos++
			}
			if a.pos >= len(a.frames)-1 {
				a.running = false
			}
		}
		return a, a.tick()
	}
	return a, nil
}

func (a Animation) View() string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(a.title) + "\n\n")

	if len(a.frames) == 0 {
		b.WriteString(hintStyle().Render("no genotype data") + "\n")
		return panelStyle().Render(b.String())
	}

	status := "PLAYING"
	if !a.running {
		status = "PAUSED"
		if a.pos == len(a.frames)-1 {
			status = "DONE"
		}
	}
	fmt.Fprintf(&b, "%s  %s\n\n",
		labelStyle().Render(fmt.Sprintf("gen %d/%d", a.pos, len(a.frames)-1)),
		accentStyle().Render(status))

	b.WriteString(GenotypeBars(a.frames[a.pos], a.barWidth) + "\n\n")
	b.WriteString(labelStyle().Render("freq(A)") + valueStyle().Render(fmt.Sprintf("%.4f", a.freqs[a.pos])) + "\n")
	b.WriteString(Sparkline(a.freqs[:a.pos+1], a.barWidth+10) + "\n\n")
	b.WriteString(hintStyle().Render("space pause  [ ] step  r restart  t theme  q quit"))

	return panelStyle().Render(b.String())
}
