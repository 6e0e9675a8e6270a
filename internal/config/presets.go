package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/slochower/nonequilibrium-manuscript/internal/histogram"
)

// Preset names a data source together with the model constants that go
// with it.
type Preset string

const (
	PresetPKA         Preset = "pka"
	PresetPKAReversed Preset = "pka_reversed"
	PresetADK         Preset = "adk"
	PresetHIV         Preset = "hiv"
	PresetManual      Preset = "manual"
)

// PresetParams are the constants resolved once for a preset. Nil fields are
// left to the user.
type PresetParams struct {
	Description   string
	CIntersurface *float64 // 1/(M s)
	OffsetFactor  *float64 // kcal/mol
	CatalyticRate *float64 // 1/s
	Substrate     *float64 // M
	DataDir       string
	UnboundPath   string // relative to DataDir, %s is the histogram name
	BoundPath     string
	Format        histogram.Format
}

func f(v float64) *float64 { return &v }

var Presets = map[Preset]PresetParams{
	PresetPKA: {
		Description:   "protein kinase A, ATP",
		CIntersurface: f(0.24e6), OffsetFactor: f(6.0), CatalyticRate: f(140), Substrate: f(2e-3),
		DataDir:     "../../md-data/pka-md-data",
		UnboundPath: "apo/%s_chi_pop_hist_targ.txt",
		BoundPath:   "atpmg/%s_chi_pop_hist_ref.txt",
		Format:      histogram.CSV,
	},
	PresetPKAReversed: {
		Description:   "protein kinase A, reversed and averaged trajectories",
		CIntersurface: f(0.24e6), OffsetFactor: f(6.0), CatalyticRate: f(140), Substrate: f(2e-3),
		DataDir:     "../../md-data/pka-md-reversed-and-averaged",
		UnboundPath: "apo/%s_chi_pop_hist_targ.txt",
		BoundPath:   "atpmg/%s_chi_pop_hist_ref.txt",
		Format:      histogram.CSV,
	},
	PresetADK: {
		Description:   "adenylate kinase, ATP.AMP",
		CIntersurface: f(1e6), OffsetFactor: f(5.7), CatalyticRate: f(312), Substrate: f(2.5e-6),
		DataDir:     "../../md-data/adenylate-kinase",
		UnboundPath: "AdKDihedHist_apo-4ake/%s.dat",
		BoundPath:   "AdKDihedHist_ap5-3hpq/%s.dat",
		Format:      histogram.Dat,
	},
	PresetHIV: {
		Description:   "HIV protease, Gag",
		CIntersurface: f(1e6), OffsetFactor: f(4.5), CatalyticRate: f(0.3), Substrate: f(2e-3),
		DataDir:     "../../md-data/hiv-protease",
		UnboundPath: "1hhp_apo/%s.dat",
		BoundPath:   "1kjf_p1p6/%s.dat",
		Format:      histogram.Dat,
	},
	PresetManual: {
		Description: "user-supplied histograms and constants",
		Format:      histogram.Format{Comma: true, Column: -1},
	},
}

// Lookup returns the constants of p.
func Lookup(p Preset) (PresetParams, bool) {
	params, ok := Presets[p]
	return params, ok
}

// ListPresets returns preset names in sorted order.
func ListPresets() []Preset {
	names := make([]Preset, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// HistogramPaths resolves the unbound and bound files for a run. Manual
// runs use the explicit paths of the configuration.
func (c *Config) HistogramPaths() (unbound, bound string, format histogram.Format, err error) {
	params, ok := Lookup(c.Preset)
	if !ok {
		return "", "", histogram.Format{}, fmt.Errorf("%w: unknown preset %q", ErrConfig, c.Preset)
	}
	if c.Unbound != "" || c.Bound != "" || params.UnboundPath == "" {
		if c.Unbound == "" || c.Bound == "" {
			return "", "", histogram.Format{}, fmt.Errorf("%w: both unbound and bound histogram files are required", ErrConfig)
		}
		return c.Unbound, c.Bound, params.Format, nil
	}
	if c.Name == "" {
		return "", "", histogram.Format{}, fmt.Errorf("%w: preset %q needs a histogram name", ErrConfig, c.Preset)
	}
	dir := c.DataDir
	if dir == "" {
		dir = params.DataDir
	}
	unbound = filepath.Join(dir, fmt.Sprintf(params.UnboundPath, c.Name))
	bound = filepath.Join(dir, fmt.Sprintf(params.BoundPath, c.Name))
	return unbound, bound, params.Format, nil
}
