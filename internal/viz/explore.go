package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"github.com/slochower/nonequilibrium-manuscript/internal/metrics"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
)

type knob struct {
	name, unit string
	get        func(kinetics.Parameters) float64
	set        func(*kinetics.Parameters, float64)
	// Log knobs move by a factor, the rest by a fixed amount.
	log  bool
	step float64
}

func (k knob) nudge(v float64, up bool) float64 {
	if k.log {
		if v == 0 {
			if up {
				return k.step
			}
			return 0
		}
		if up {
			return v * math.Pow(10, 0.25)
		}
		return v / math.Pow(10, 0.25)
	}
	if up {
		return v + k.step
	}
	return v - k.step
}

var knobs = []knob{
	{name: "[S]", unit: "M", log: true, step: 1e-6,
		get: func(p kinetics.Parameters) float64 { return p.Substrate },
		set: func(p *kinetics.Parameters, v float64) { p.Substrate = v }},
	{name: "load", unit: "kcal/(mol cycle)", step: 0.5,
		get: func(p kinetics.Parameters) float64 { return p.LoadSlope },
		set: func(p *kinetics.Parameters, v float64) { p.LoadSlope = v }},
	{name: "k_cat", unit: "1/s", log: true, step: 1,
		get: func(p kinetics.Parameters) float64 { return p.CatalyticRate },
		set: func(p *kinetics.Parameters, v float64) { p.CatalyticRate = v }},
	{name: "C", unit: "1/(M s)", log: true, step: 1e3,
		get: func(p kinetics.Parameters) float64 { return p.CIntersurface },
		set: func(p *kinetics.Parameters, v float64) { p.CIntersurface = v }},
	{name: "offset", unit: "kcal/mol", step: 0.25,
		get: func(p kinetics.Parameters) float64 { return p.OffsetFactor },
		set: func(p *kinetics.Parameters, v float64) { p.OffsetFactor = v }},
}

// Explorer is a Bubble Tea model that re-solves the steady state whenever a
// constant changes.
type Explorer struct {
	unbound, bound []float64
	start, params  kinetics.Parameters
	cursor         int
	theme          int
	result         *sim.Result
	summary        metrics.Summary
	err            error
	width          int
}

func NewExplorer(params kinetics.Parameters, unboundHist, boundHist []float64) Explorer {
	params.Iterations = 0
	m := Explorer{
		unbound: unboundHist,
		bound:   boundHist,
		start:   params,
		params:  params,
		width:   80,
	}
	m.solve()
	return m
}

func (m *Explorer) solve() {
	s, err := sim.New(m.params, nil)
	if err != nil {
		m.err = err
		return
	}
	res, err := s.Run(context.Background(), m.unbound, m.bound)
	if err != nil {
		m.err = err
		return
	}
	sum, err := metrics.Summarize(res.Flux, m.params.LoadSlope)
	if err != nil {
		m.err = err
		return
	}
	m.result, m.summary, m.err = res, sum, nil
}

func (m Explorer) Params() kinetics.Parameters { return m.params }

func (m Explorer) Summary() metrics.Summary { return m.summary }

func (m Explorer) Err() error { return m.err }

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(knobs)-1 {
				m.cursor++
			}
		case "left", "h", "right", "l":
			k := knobs[m.cursor]
			up := msg.String() == "right" || msg.String() == "l"
			k.set(&m.params, k.nudge(k.get(m.params), up))
			m.solve()
		case "r":
			m.params = m.start
			m.solve()
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m Explorer) View() string {
	theme := Themes[m.theme]
	primary := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	accent := lipgloss.NewStyle().Foreground(theme.Accent)
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	var b strings.Builder
	b.WriteString(primary.Render("nonequilibrium explorer") + "\n\n")

	for i, k := range knobs {
		cursor := "  "
		name := fmt.Sprintf("%-8s", k.name)
		if i == m.cursor {
			cursor = Selected.Render("▸ ")
			name = Selected.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s\n", cursor, name,
			accent.Render(fmt.Sprintf("%+10.3e", k.get(m.params))), muted.Render(k.unit)))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("error: "+m.err.Error()) + "\n")
	} else if m.result != nil {
		spark := max(m.width-20, 10)
		flux := m.result.Flux
		b.WriteString(fmt.Sprintf("%s %s\n", muted.Render("U   "), Sparkline(flux.Unbound, spark)))
		b.WriteString(fmt.Sprintf("%s %s\n", muted.Render("B   "), Sparkline(flux.Bound, spark)))
		b.WriteString(fmt.Sprintf("%s %s\n\n", muted.Render("U+B "), Sparkline(flux.Intrasurface(), spark)))
		b.WriteString(formatLines([]line{
			{"Intrasurface flux", "cycle/s", m.summary.MeanIntrasurface},
			{"Peak intrasurface flux", "cycle/s", m.summary.PeakIntrasurface},
			{"Intersurface flux", "cycle/s", m.summary.MeanIntersurface},
			{"Power", "kcal/(mol s)", m.summary.Power},
			{"dt", "s", m.result.Dt},
		}))
		for _, w := range m.result.Warnings {
			b.WriteString(StatusWarn.Render("warning: ") + w.Error() + "\n")
		}
	}

	b.WriteString("\n" + KeyHint.Render("↑/↓ select  ←/→ adjust  r reset  t theme  q quit"))
	return Panel.Render(b.String())
}

// RunExplorer starts the explorer in the terminal.
func RunExplorer(params kinetics.Parameters, unboundHist, boundHist []float64) error {
	p := tea.NewProgram(NewExplorer(params, unboundHist, boundHist))
	_, err := p.Run()
	return err
}
