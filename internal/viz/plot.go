package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
)

const (
	plotHeight = 12
	plotWidth  = 72
)

// precision picks enough decimals to tell the largest value apart from zero.
func precision(series ...[]float64) uint {
	peak := 0.0
	for _, s := range series {
		for _, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				peak = math.Max(peak, math.Abs(v))
			}
		}
	}
	if peak == 0 || peak >= 1 {
		return 2
	}
	return uint(math.Min(-math.Floor(math.Log10(peak))+2, 12))
}

func plot(caption string, legends []string, colors []asciigraph.AnsiColor, series ...[]float64) string {
	opts := []asciigraph.Option{
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.Precision(precision(series...)),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesColors(colors...), asciigraph.SeriesLegends(legends...))
	}
	return asciigraph.PlotMany(series, opts...)
}

func surfaces(t Theme) []asciigraph.AnsiColor {
	return []asciigraph.AnsiColor{t.Unbound, t.Bound, t.Total}
}

func EnergyPlot(res *sim.Result) string {
	return plot("free energy (kcal/mol) vs bin", []string{"U", "B"}, surfaces(CurrentTheme),
		res.Unbound, res.Bound)
}

// LoadPlot shows both surfaces with the load added, extended half a cycle
// past each boundary.
func LoadPlot(res *sim.Result) string {
	load := kinetics.LinearLoad(res.Params.LoadSlope, res.Bins)
	_, u := kinetics.ExtendedLoadedProfile(res.Unbound, load)
	_, b := kinetics.ExtendedLoadedProfile(res.Bound, load)
	caption := fmt.Sprintf("energy + load (%.2f kcal/mol per cycle), bins %d..%d", res.Params.LoadSlope, -res.Bins/2, res.Bins+res.Bins/2-1)
	return plot(caption, []string{"U", "B"}, surfaces(CurrentTheme), u, b)
}

func SteadyStatePlot(res *sim.Result) string {
	d := res.SteadyState.Distribution
	return plot("steady-state population vs bin", []string{"U", "B"}, surfaces(CurrentTheme),
		d.Unbound(), d.Bound())
}

// BoltzmannPlot shows the equilibrium populations of each surface alone.
func BoltzmannPlot(res *sim.Result) string {
	return plot("equilibrium population vs bin", []string{"U", "B"}, surfaces(CurrentTheme),
		res.UnboundBoltzmann, res.BoundBoltzmann)
}

func FluxPlot(flux kinetics.FluxProfile, caption string) string {
	return plot(caption, []string{"U", "B", "U+B"}, surfaces(CurrentTheme),
		flux.Unbound, flux.Bound, flux.Intrasurface())
}

func IntersurfaceFluxPlot(flux kinetics.FluxProfile) string {
	return plot("intersurface flux (cycle/s) vs bin", nil, nil, flux.Intersurface)
}

func MSDPlot(r *kinetics.Relaxation) string {
	return plot("mean-squared displacement (deg²) vs iteration", nil, nil, r.MSD)
}

// SweepPlot plots a quantity against log10 of the substrate concentration.
func SweepPlot(logSubstrate, values []float64, caption string) string {
	if len(logSubstrate) == 0 {
		return ""
	}
	caption = fmt.Sprintf("%s vs log10[S] from %.1f to %.1f", caption, logSubstrate[0], logSubstrate[len(logSubstrate)-1])
	return plot(caption, nil, nil, values)
}

// ScorePlot plots one value per grid point.
func ScorePlot(scores []float64, caption string) string {
	if len(scores) == 0 {
		return ""
	}
	return plot(caption, nil, nil, scores)
}
