package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/slochower/nonequilibrium-manuscript/internal/config"
	"github.com/slochower/nonequilibrium-manuscript/internal/histogram"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"github.com/slochower/nonequilibrium-manuscript/internal/logging"
	"github.com/slochower/nonequilibrium-manuscript/internal/metrics"
	"github.com/slochower/nonequilibrium-manuscript/internal/optim"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
	"github.com/slochower/nonequilibrium-manuscript/internal/storage"
	"github.com/slochower/nonequilibrium-manuscript/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	// Run configuration
	configFile string
	saveConfig string
	preset     string
	name       string
	mdDir      string
	unbound    string
	bound      string
	kT         float64
	diffusion  float64
	cInter     float64
	offset     float64
	kcat       float64
	substrate  float64
	loadSlope  float64
	iterations int
	strict     bool
	plot       bool
	// Sweep range
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	theme       string
	// Grid search
	optParam     string
	optObjective string
	optFrom      float64
	optTo        float64
	optPoints    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nonequilibrium",
		Short: "steady-state kinetics of two-surface molecular motors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nonequilibrium", "run archive directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve the steady state and fluxes for one dihedral",
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "print ASCII plots of the profiles")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this path")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve over a log-spaced range of substrate concentrations",
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1e-7, "lowest substrate concentration (M)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1e-1, "highest substrate concentration (M)")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 13, "number of concentrations")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "tune constants interactively and watch the fluxes",
		RunE:  runExplore,
	}
	addModelFlags(exploreCmd)
	exploreCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid-search one constant for the highest power or flux",
		RunE:  runOptimize,
	}
	addModelFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&optParam, "param", "load_slope", "constant to search")
	optimizeCmd.Flags().StringVar(&optObjective, "objective", "power", "objective to maximize (power, flux)")
	optimizeCmd.Flags().Float64Var(&optFrom, "from", 0, "lowest value")
	optimizeCmd.Flags().Float64Var(&optTo, "to", 5, "highest value")
	optimizeCmd.Flags().IntVar(&optPoints, "points", 21, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list data-source presets and their constants",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run profiles",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-bin profiles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and profiles to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, optimizeCmd, exploreCmd, presetsCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", string(config.DefaultPreset), "data-source preset")
	cmd.Flags().StringVar(&name, "name", "", "histogram name within the preset data set")
	cmd.Flags().StringVar(&mdDir, "data-dir", "", "override the preset data directory")
	cmd.Flags().StringVar(&unbound, "unbound", "", "unbound population histogram file")
	cmd.Flags().StringVar(&bound, "bound", "", "bound population histogram file")
	cmd.Flags().Float64Var(&kT, "kt", config.DefaultKT, "thermal energy (kcal/mol)")
	cmd.Flags().Float64Var(&diffusion, "d", config.DefaultD, "rotational diffusion coefficient (degree²/s)")
	cmd.Flags().Float64Var(&cInter, "c-inter", 0, "intersurface prefactor (1/(M s))")
	cmd.Flags().Float64Var(&offset, "offset", 0, "bound surface energy offset (kcal/mol)")
	cmd.Flags().Float64Var(&kcat, "kcat", 0, "catalytic rate (1/s)")
	cmd.Flags().Float64Var(&substrate, "substrate", 0, "substrate concentration (M)")
	cmd.Flags().Float64Var(&loadSlope, "load", 0, "load slope (kcal/mol per cycle)")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "power iterations for the cross-check")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on an invalid transition matrix instead of warning")
}

// resolveConfig layers flags over the config file over the preset.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("preset") && loaded.Preset != config.Preset(preset) {
			return nil, fmt.Errorf("%w: --preset %s conflicts with config file preset %s", config.ErrConfig, preset, loaded.Preset)
		}
		cfg = loaded
	} else {
		cfg.Preset = config.Preset(preset)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = name
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = mdDir
	}
	if flags.Changed("unbound") {
		cfg.Unbound = unbound
	}
	if flags.Changed("bound") {
		cfg.Bound = bound
	}
	if flags.Changed("kt") {
		cfg.KT = kT
	}
	if flags.Changed("d") {
		cfg.D = diffusion
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}

	constants := []struct {
		flag, key string
		value     float64
	}{
		{"c-inter", "c_intersurface", cInter},
		{"offset", "offset_factor", offset},
		{"kcat", "catalytic_rate", kcat},
		{"substrate", "substrate", substrate},
		{"load", "load_slope", loadSlope},
	}
	for _, c := range constants {
		if flags.Changed(c.flag) {
			if err := cfg.Set(c.key, c.value); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.ApplyPreset(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadHistograms(cfg *config.Config) ([]float64, []float64, error) {
	u, b, format, err := cfg.HistogramPaths()
	if err != nil {
		return nil, nil, err
	}
	uh, err := histogram.Load(u, format)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read unbound histogram: %w", err)
	}
	bh, err := histogram.Load(b, format)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read bound histogram: %w", err)
	}
	return uh, bh, nil
}

func setup(cmd *cobra.Command) (*config.Config, kinetics.Parameters, []float64, []float64, *slog.Logger, error) {
	logger := logging.NewLogger(logLevel, os.Stderr)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, kinetics.Parameters{}, nil, nil, nil, err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return nil, kinetics.Parameters{}, nil, nil, nil, err
	}
	uh, bh, err := loadHistograms(cfg)
	if err != nil {
		return nil, kinetics.Parameters{}, nil, nil, nil, err
	}
	logger.Debug("loaded histograms", "preset", cfg.Preset, "name", cfg.Name, "bins", len(uh))
	return cfg, params, uh, bh, logger, nil
}

func runLabel(cfg *config.Config) string {
	if cfg.Name != "" {
		return fmt.Sprintf("%s_%s", cfg.Preset, cfg.Name)
	}
	return string(cfg.Preset)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, params, uh, bh, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	s, err := sim.New(params, logger)
	if err != nil {
		return err
	}
	res, err := s.Run(cmd.Context(), uh, bh)
	if err != nil {
		return err
	}

	summary, err := metrics.Summarize(res.Flux, params.LoadSlope)
	if err != nil {
		return err
	}
	var agreement *metrics.Agreement
	if res.Relaxation != nil {
		a, err := metrics.Compare(res.Relaxation, *res.IterativeFlux, res.SteadyState, res.Flux)
		if err != nil {
			return err
		}
		agreement = &a
	}

	fmt.Print(viz.Report(res, summary))
	if agreement != nil {
		fmt.Println()
		fmt.Print(viz.AgreementReport(*agreement))
	}

	if plot {
		printPlots(res)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runLabel(cfg), res, summary, agreement)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run: %s\n", runID)
	return nil
}

func printPlots(res *sim.Result) {
	plots := []string{viz.EnergyPlot(res)}
	if res.Params.LoadSlope != 0 {
		plots = append(plots, viz.LoadPlot(res))
	}
	plots = append(plots,
		viz.BoltzmannPlot(res),
		viz.SteadyStatePlot(res),
		viz.FluxPlot(res.Flux, "intrasurface flux (cycle/s) vs bin"),
		viz.IntersurfaceFluxPlot(res.Flux),
	)
	if res.Relaxation != nil {
		plots = append(plots, viz.MSDPlot(res.Relaxation))
	}
	if res.IterativeFlux != nil {
		plots = append(plots, viz.FluxPlot(*res.IterativeFlux, "iterative intrasurface flux (cycle/s) vs bin"))
	}
	for _, p := range plots {
		fmt.Println()
		fmt.Println(p)
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	_, params, uh, bh, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	concentrations, err := sim.Concentrations(sweepFrom, sweepTo, sweepPoints)
	if err != nil {
		return err
	}

	points, err := sim.Sweep(cmd.Context(), params, uh, bh, concentrations, logger)
	if err != nil {
		return err
	}

	means := make([]float64, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "[S] (M)\tLOG10\tFLUX\tPEAK\tINTERSURFACE\tPOWER")
	for i, pt := range points {
		s, err := metrics.Summarize(pt.Result.Flux, params.LoadSlope)
		if err != nil {
			return err
		}
		means[i] = s.MeanIntrasurface
		fmt.Fprintf(w, "%.3e\t%.2f\t%+.3e\t%.3e\t%+.3e\t%+.3e\n",
			pt.Substrate, sim.Log10([]float64{pt.Substrate})[0],
			s.MeanIntrasurface, s.PeakIntrasurface, s.MeanIntersurface, s.Power)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.SweepPlot(sim.Log10(concentrations), means, "mean intrasurface flux"))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	_, params, uh, bh, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	objective, ok := optim.Objectives[optObjective]
	if !ok {
		return fmt.Errorf("unknown objective: %s", optObjective)
	}
	values := optim.Linspace(optFrom, optTo, optPoints)
	g, err := optim.NewGridSearch([]string{optParam}, [][]float64{values})
	if err != nil {
		return err
	}

	points, best, err := g.Search(cmd.Context(), params, uh, bh, objective, logger)
	if err != nil {
		return err
	}

	scores := make([]float64, 0, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFLUX\tPOWER\t\n", strings.ToUpper(optParam))
	for i, p := range points {
		mark := ""
		if i == best {
			mark = "*"
		}
		if p.Err != nil {
			fmt.Fprintf(w, "%g\t-\t-\t%v\n", p.Values[optParam], p.Err)
			continue
		}
		scores = append(scores, p.Score)
		fmt.Fprintf(w, "%g\t%+.3e\t%+.3e\t%s\n", p.Values[optParam], p.Summary.MeanIntrasurface, p.Summary.Power, mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.ScorePlot(scores, fmt.Sprintf("%s vs %s from %g to %g", optObjective, optParam, optFrom, optTo)))
	fmt.Printf("\nbest %s: %g (%s %+.3e)\n", optParam, points[best].Values[optParam], optObjective, points[best].Score)
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	_, params, uh, bh, _, err := setup(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)
	return viz.RunExplorer(params, uh, bh)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tC\tOFFSET\tK_CAT\t[S]\tDESCRIPTION")
	for _, p := range config.ListPresets() {
		params, _ := config.Lookup(p)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p,
			optional(params.CIntersurface), optional(params.OffsetFactor),
			optional(params.CatalyticRate), optional(params.Substrate),
			params.Description)
	}
	return w.Flush()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBINS\t[S]\tLOAD\tFLUX\tWARNINGS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2e\t%.2f\t%+.3e\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bins,
			run.Params.Substrate,
			run.Params.LoadSlope,
			run.Summary.MeanIntrasurface,
			len(run.Warnings),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	profiles, err := st.LoadProfiles(runID)
	if err != nil {
		return err
	}

	res, err := resultFromTable(meta, profiles)
	if err != nil {
		return err
	}
	if relax, err := st.LoadRelaxation(runID); err == nil {
		res.Relaxation = &kinetics.Relaxation{MSD: relax.Columns["msd"], CenterOfMass: relax.Columns["center_of_mass"]}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bins: %d\n", meta.Bins)
	printPlots(res)
	return nil
}

// resultFromTable rebuilds the plottable parts of a run from its archive.
func resultFromTable(meta *storage.RunMetadata, t *storage.Table) (*sim.Result, error) {
	col := func(name string) ([]float64, error) {
		v, ok := t.Columns[name]
		if !ok {
			return nil, fmt.Errorf("run %s: missing column %s", meta.ID, name)
		}
		return v, nil
	}

	names := []string{
		"unbound_energy", "bound_energy",
		"unbound_boltzmann", "bound_boltzmann",
		"unbound_population", "bound_population",
		"flux_unbound", "flux_bound", "flux_intersurface",
	}
	cols := make([][]float64, len(names))
	for i, n := range names {
		c, err := col(n)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	res := &sim.Result{
		Params:           meta.Params,
		Bins:             meta.Bins,
		Unbound:          cols[0],
		Bound:            cols[1],
		UnboundBoltzmann: cols[2],
		BoundBoltzmann:   cols[3],
		Dt:               meta.Dt,
		SteadyState: kinetics.SteadyState{
			Distribution: append(append(kinetics.Distribution{}, cols[4]...), cols[5]...),
		},
		Flux: kinetics.FluxProfile{Unbound: cols[6], Bound: cols[7], Intersurface: cols[8]},
	}
	if u, ok := t.Columns["iterative_flux_unbound"]; ok {
		res.IterativeFlux = &kinetics.FluxProfile{
			Unbound:      u,
			Bound:        t.Columns["iterative_flux_bound"],
			Intersurface: t.Columns["iterative_flux_intersurface"],
		}
	}
	return res, nil
}
