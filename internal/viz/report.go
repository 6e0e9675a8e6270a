package viz

import (
	"fmt"
	"strings"

	"github.com/slochower/nonequilibrium-manuscript/internal/metrics"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
)

type line struct {
	label, unit string
	value       float64
}

func formatLines(lines []line) string {
	var b strings.Builder
	for _, l := range lines {
		if l.label == "" {
			b.WriteString(Separator(60) + "\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			MetricLabel.Render(fmt.Sprintf("%-25s", l.label)),
			MetricValue.Render(fmt.Sprintf("%+10.2e", l.value)),
			Subtle.Render(l.unit)))
	}
	return b.String()
}

// Report renders the constants of a run and its headline fluxes.
func Report(res *sim.Result, s metrics.Summary) string {
	p := res.Params
	lines := []line{
		{"C", "1/(M s)", p.CIntersurface},
		{"D", "degree²/s", p.D},
		{"k_cat", "1/s", p.CatalyticRate},
		{"[S]", "M", p.Substrate},
		{"dt", "s", res.Dt},
		{},
		{"Intrasurface flux", "cycle/s", s.MeanIntrasurface},
		{"Peak intrasurface flux", "cycle/s", s.PeakIntrasurface},
		{"Intersurface flux", "cycle/s", s.MeanIntersurface},
	}
	if s.LoadSlope != 0 {
		lines = append(lines,
			line{},
			line{"Applied load", "kcal/(mol cycle)", s.LoadSlope},
			line{"Power", "kcal/(mol s)", s.Power},
		)
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%d bins, kT %.2f kcal/mol", res.Bins, p.KT)) + "\n")
	b.WriteString(formatLines(lines))
	for _, w := range res.Warnings {
		b.WriteString(StatusWarn.Render("warning: ") + w.Error() + "\n")
	}
	return b.String()
}

// AgreementReport renders how closely the iterative estimate matches the
// eigenvector solution.
func AgreementReport(a metrics.Agreement) string {
	return formatLines([]line{
		{"Iterations", "", float64(a.Iterations)},
		{"Distribution gap", "", a.DistributionGap},
		{"Max flux gap", "cycle/s", a.MaxFluxGap},
		{"Center of mass drift", "bins", a.Drift},
		{"MSD growth", "degree²/step", a.MSDRate},
	})
}
