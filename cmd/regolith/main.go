package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/regolith/internal/analysis"
	"github.com/san-kum/regolith/internal/automation"
	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/experiment"
	"github.com/san-kum/regolith/internal/export"
	"github.com/san-kum/regolith/internal/gui"
	"github.com/san-kum/regolith/internal/optim"
	"github.com/san-kum/regolith/internal/sim"
	"github.com/san-kum/regolith/internal/storage"
	"github.com/san-kum/regolith/internal/telemetry"
	"github.com/san-kum/regolith/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	// overrides
	dt         float64
	duration   float64
	controller string
	hold       string
	gravity    float64
	cohesion   float64
	friction   float64
	grid       int
	layers     int
	workers    int
	// run
	stride     int
	streamPath string
	// plot / svg / snapshot
	field     string
	outPath   string
	view      string
	svgWidth  int
	svgHeight int
	// sweep / calibrate
	sweepParam  string
	sweepValues []float64
	calParams   []string
	metricName  string
	metricGoal  float64
	evaluations int
	gridRanges  []string
	trials      int
	spread      float64
	seed        int64
	useWindow   bool
)

var logger *slog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "regolith",
		Short: "cohesive regolith and excavation tool simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if useWindow {
				return gui.RunInteractive(logger)
			}
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".regolith", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&useWindow, "gui", false, "open the 3D window instead of the terminal menu")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its telemetry",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&stride, "stride", 10, "record telemetry every n ticks")
	runCmd.Flags().StringVar(&streamPath, "stream", "", "also stream telemetry to this CSV while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [field...]",
		Short: "plot run telemetry",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id] [field...]",
		Short: "summarise run telemetry",
		Args:  cobra.MinimumNArgs(1),
		RunE:  summarizeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "plot one telemetry field as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVar(&field, "field", "force", "telemetry field")
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 300, "image height")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "simulate and draw the final bed as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshotSVG,
	}
	addConfigFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&view, "view", "side", "side or top")
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	snapshotCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgHeight, "height", 500, "image height")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the tool in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return viz.RunLive(cfg, configName())
		},
	}
	addConfigFlags(liveCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal preset menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "drive the tool in a 3D window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if preset == "" && configFile == "" {
				return gui.RunInteractive(logger)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return gui.Run(cfg, configName(), logger)
		},
	}
	addConfigFlags(guiCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tCONTROLLER\tGRAVITY\tCOHESION\tDURATION")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%.2e\t%.1fs\n", name, c.Controller, c.Gravity, c.Material.Cohesion, c.Duration)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure solver throughput",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	addConfigFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run parameter variants concurrently",
		Args:  cobra.NoArgs,
		RunE:  sweepParams,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "cohesion", "parameter to vary")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "parameter values")
	_ = sweepCmd.MarkFlagRequired("values")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "fit parameters so a run metric hits a target",
		Args:  cobra.NoArgs,
		RunE:  calibrate,
	}
	addConfigFlags(calibrateCmd)
	calibrateCmd.Flags().StringSliceVar(&calParams, "params", []string{"cohesion"}, "parameters to fit")
	calibrateCmd.Flags().StringVar(&metricName, "metric", "pile_height", "run metric to match")
	calibrateCmd.Flags().Float64Var(&metricGoal, "target", 0, "target metric value")
	calibrateCmd.Flags().IntVar(&evaluations, "evals", 40, "objective evaluations (simplex)")
	calibrateCmd.Flags().StringSliceVar(&gridRanges, "grid-values", nil, "grid search instead: one colon-separated value list per parameter")
	_ = calibrateCmd.MarkFlagRequired("target")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "find periodic loading in run telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().StringVar(&field, "field", "force", "telemetry field")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [x_field] [y_field]",
		Short: "scatter two telemetry fields, e.g. tool_y force",
		Args:  cobra.ExactArgs(3),
		RunE:  phaseRun,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [script.yaml]",
		Short: "run and store every step of a script",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&stride, "stride", 10, "record telemetry every n ticks")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check stability under randomly perturbed parameters",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.2, "relative parameter perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, summaryCmd, exportCSVCmd, svgCmd, snapshotCmd,
		liveCmd, tuiCmd, guiCmd, presetsCmd, benchCmd, sweepCmd, calibrateCmd,
		spectrumCmd, phaseCmd, batchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 1.0/240, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&controller, "controller", config.DefaultController, "controller (none, hold, plunge)")
	cmd.Flags().StringVar(&hold, "hold", "", "keys held by the hold controller, e.g. \"q\" or \"wd\"")
	cmd.Flags().Float64Var(&gravity, "gravity", -1.62, "vertical gravity")
	cmd.Flags().Float64Var(&cohesion, "cohesion", 0, "cohesion coefficient")
	cmd.Flags().Float64Var(&friction, "friction", 0, "friction coefficient")
	cmd.Flags().IntVar(&grid, "grid", 0, "grains per side")
	cmd.Flags().IntVar(&layers, "layers", 0, "grain layers")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs in ensembles (0 is one per CPU)")
}

// loadConfig layers defaults, the preset, the config file and explicit flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("hold") {
		cfg.Hold = hold
		if !flags.Changed("controller") {
			cfg.Controller = config.ControllerHold
		}
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("cohesion") {
		cfg.Material.Cohesion = cohesion
	}
	if flags.Changed("friction") {
		cfg.Material.Friction = friction
	}
	if flags.Changed("grid") {
		cfg.Scenario.Grid = grid
	}
	if flags.Changed("layers") {
		cfg.Scenario.Layers = layers
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, cfg.Validate()
}

func configName() string {
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return strings.TrimSuffix(configFile, ".yaml")
	}
	return "custom"
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), stride, logger)
	if err != nil {
		return err
	}
	if streamPath != "" {
		out, err := telemetry.CreateOutput(streamPath)
		if err != nil {
			return err
		}
		defer out.Close()
		exp.Recorder().Stream(out)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d grains, %.2fs at dt=%.5f\n",
		configName(), len(exp.World().Particles), cfg.Duration, cfg.Dt)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if result == nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(preset, cfg, result, exp.Recorder().Samples())
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "steps", result.StepsTaken, "elapsed", elapsed)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tGRAINS\tDURATION\tDT\tSTEPS\tCTRL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.5fs\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Duration,
			run.Dt,
			run.Steps,
			run.Controller,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []telemetry.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadTelemetry(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fields := args[1:]
	if len(fields) == 0 {
		fields = []string{"force", "kinetic_energy", "pile_height", "tool_y"}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))
	for _, f := range fields {
		data, err := telemetry.Series(samples, f)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(f),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func summarizeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	sums, err := telemetry.Summarize(samples, args[1:]...)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%d samples)\n\n", meta.ID, len(samples))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tMEAN\tSTD\tMIN\tMAX\tLAST")
	for _, s := range sums {
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n", s.Field, s.Mean, s.Std, s.Min, s.Max, s.Last)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}

func writeOutput(text string) error {
	if outPath == "" {
		_, err := fmt.Println(text)
		return err
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return telemetry.WriteAll(os.Stdout, samples)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := telemetry.WriteAll(f, samples); err != nil {
		return err
	}
	fmt.Printf("exported %d samples to %s\n", len(samples), outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	svg, err := export.TelemetryToSVG(samples, field, svgWidth, svgHeight, string(viz.CurrentTheme.Primary))
	if err != nil {
		return err
	}
	if svg == "" {
		return fmt.Errorf("need at least two samples of %s", field)
	}
	return writeOutput(svg)
}

func parseView(s string) (viz.View, error) {
	switch s {
	case "side":
		return viz.ViewSide, nil
	case "top":
		return viz.ViewTop, nil
	}
	return 0, fmt.Errorf("unknown view: %s (side, top)", s)
}

func snapshotSVG(cmd *cobra.Command, args []string) error {
	v, err := parseView(view)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), 0, logger)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	svg := export.SnapshotToSVG(result.Final.Snapshot(), exp.Params().ToolHalfExtents, v, svgWidth, svgHeight)
	return writeOutput(svg)
}

func benchSolver(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	grids := []int{6, 10, 14}
	if cmd.Flags().Changed("grid") {
		grids = []int{base.Scenario.Grid}
	}

	fmt.Printf("benchmarking %s\n\n", configName())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRAINS\tMODE\tRUNS\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/STEP")

	for _, g := range grids {
		cfg := *base
		cfg.Scenario.Grid = g
		cfg.Duration = 0.5
		exp, err := experiment.New(&cfg, experiment.NewRegistry(), 1, logger)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		pairs, _ := telemetry.Series(exp.Recorder().Samples(), "pairs")
		meanPairs := 0.0
		for _, p := range pairs {
			meanPairs += p
		}
		if len(pairs) > 0 {
			meanPairs /= float64(len(pairs))
		}
		grains := len(exp.World().Particles)
		fmt.Fprintf(w, "%d\tsingle\t1\t%d\t%v\t%.0f\t%.0f\n",
			grains, result.StepsTaken, elapsed.Round(time.Millisecond),
			float64(result.StepsTaken)/elapsed.Seconds(), meanPairs)

		// the same bed run side by side, one run per ensemble worker
		ens := experiment.NewEnsemble(&cfg, experiment.NewRegistry(), logger)
		n := ens.Backend().Workers()
		variants := make([]sim.Variant, n)
		for i := range variants {
			variants[i] = sim.Variant{Name: fmt.Sprintf("copy%d", i), Params: cfg.Params()}
		}
		start = time.Now()
		results, err := ens.Run(context.Background(), variants, exp.SimConfig())
		if err != nil {
			return err
		}
		elapsed = time.Since(start)

		total := 0
		for _, r := range results {
			total += r.StepsTaken
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\t%.0f\t%.0f\n",
			grains, ens.Backend().Name(), n, total, elapsed.Round(time.Millisecond),
			float64(total)/elapsed.Seconds(), meanPairs)
	}
	return w.Flush()
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base := cfg.Params()

	variants := make([]sim.Variant, 0, len(sweepValues))
	for _, v := range sweepValues {
		p := *base
		if err := p.SetParam(sweepParam, v); err != nil {
			return err
		}
		variants = append(variants, sim.Variant{Name: fmt.Sprintf("%s=%g", sweepParam, v), Params: &p})
	}

	ctx, cancel := signalContext()
	defer cancel()

	ens := experiment.NewEnsemble(cfg, experiment.NewRegistry(), logger)
	simCfg := sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateState: true}

	fmt.Printf("sweeping %s over %d values\n\n", sweepParam, len(variants))
	start := time.Now()
	results, err := ens.Run(ctx, variants, simCfg)
	if err != nil {
		return err
	}

	var names []string
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VARIANT\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, r := range results {
		row := make([]string, len(names))
		for j, name := range names {
			row[j] = fmt.Sprintf("%.4g", r.Metrics[name])
		}
		fmt.Fprintf(w, "%s\t%s\n", variants[i].Name, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// metricObjective runs a full simulation per evaluation and scores the squared
// distance of one metric from goal.
func metricObjective(cfg *config.Config, metric string, goal float64) optim.Objective {
	factory := experiment.Factory(cfg, experiment.NewRegistry(), logger)
	simCfg := sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateState: true}
	return func(ctx context.Context, p *dynamo.Params) (float64, error) {
		s, w, err := factory(p)
		if err != nil {
			return 0, err
		}
		result, err := s.Run(ctx, w, simCfg)
		if err != nil {
			return 0, err
		}
		v, ok := result.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric: %s", metric)
		}
		logger.Debug("calibration evaluation", "params", p.GetParams(), metric, v)
		return (v - goal) * (v - goal), nil
	}
}

func parseRanges(specs []string) ([][]float64, error) {
	out := make([][]float64, len(specs))
	for i, s := range specs {
		for _, part := range strings.Split(s, ":") {
			var v float64
			if _, err := fmt.Sscanf(part, "%g", &v); err != nil {
				return nil, fmt.Errorf("bad grid value %q: %w", part, err)
			}
			out[i] = append(out[i], v)
		}
	}
	return out, nil
}

func calibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base := cfg.Params()
	objective := metricObjective(cfg, metricName, metricGoal)

	ctx, cancel := signalContext()
	defer cancel()
	start := time.Now()

	var (
		values map[string]float64
		score  float64
		evals  int
	)
	if len(gridRanges) > 0 {
		ranges, err := parseRanges(gridRanges)
		if err != nil {
			return err
		}
		values, score, err = optim.NewGridSearch(calParams, ranges).Search(ctx, base, objective)
		if err != nil {
			return err
		}
		evals = 1
		for _, r := range ranges {
			evals *= len(r)
		}
	} else {
		c := optim.NewCalibration(calParams...)
		c.Evaluations = evaluations
		res, err := c.Run(ctx, base, objective)
		if err != nil {
			return err
		}
		values, score, evals = res.Values, res.Score, res.Evaluations
	}

	fmt.Printf("calibrated %s -> %s = %g in %d runs (%v)\n\n",
		strings.Join(calParams, ","), metricName, metricGoal, evals, time.Since(start).Round(time.Millisecond))
	printMetrics(values)
	fmt.Printf("\nresidual: %.4g\n", math.Sqrt(score))
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	series, err := telemetry.Series(samples, field)
	if err != nil {
		return err
	}
	times, _ := telemetry.Series(samples, "time")
	if len(times) < 2 {
		return analysis.ErrShortSeries
	}
	interval := (times[len(times)-1] - times[0]) / float64(len(times)-1)

	freq, amp, err := analysis.DominantFrequency(series, interval)
	if err != nil {
		return err
	}
	spec, df, err := analysis.Spectrum(series, interval)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("field: %s, %d samples every %.4fs\n\n", field, len(series), interval)
	fmt.Println(asciigraph.Plot(spec[1:],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude, %.3g Hz per bin", df)),
	))
	fmt.Printf("\ndominant frequency: %.3f hz (amplitude %.4g)\n", freq, amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	sc, err := analysis.NewScatter(samples, args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n\n", meta.ID)
	fmt.Print(sc.ASCII(72, 20))
	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := automation.NewRunner(st, logger)
	runner.Stride = stride
	results, err := runner.Run(ctx, script)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTEPS\tPEAK FORCE\tPILE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%.4g\n", r.Name, r.RunID, r.Result.StepsTaken,
			r.Result.Metrics["tool_force_peak"], r.Result.Metrics["pile_height"])
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("monte carlo: %d trials, spread %.0f%%, seed %d\n\n", trials, spread*100, seed)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:   cfg,
		Trials: trials,
		Spread: spread,
		Seed:   seed,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tCOHESION\tFRICTION\tSTIFFNESS\tSTABLE\tPEAK FORCE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3g\t%.3g\t%.3g\t%v\t%.4g\n", r.Trial,
			r.Params["cohesion"], r.Params["friction"], r.Params["stiffness"], r.Stable,
			r.Result.Metrics["tool_force_peak"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}
