package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/robosim/internal/analysis"
	"github.com/san-kum/robosim/internal/automation"
	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/export"
	"github.com/san-kum/robosim/internal/optim"
	"github.com/san-kum/robosim/internal/scenario"
	"github.com/san-kum/robosim/internal/sim"
	"github.com/san-kum/robosim/internal/storage"
	"github.com/san-kum/robosim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	ticks      int
	params     map[string]string
	noSave     bool
	columns    []string
	outFile    string
	asCSV      bool
	kps        []float64
	kds        []float64
	runs       int
	scriptFile string
	asSVG      bool
	column     string
	target     float64
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	metric     string
	spreads    map[string]string
	trials     int
	seed       int64
	pngFile    string
)

// main registers the robosim commands. Without a subcommand it opens the
// interactive scenario menu.
func main() {
	rootCmd := &cobra.Command{
		Use:   "robosim",
		Short: "omni-wheel robot drivetrain and kicker simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := registry()
			if err != nil {
				return err
			}
			return viz.RunInteractive(reg, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".robosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "robot config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "robot preset (overridden by --config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&scriptFile, "script", "", "yaml command script to register as a scenario")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store its trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to run (0 = scenario default)")
	runCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "scenario parameter key=value")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot columns of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&columns, "column", "c", []string{"ball_x", "ball_y", "r0_dir"}, "columns to plot")
	plotCmd.Flags().StringVar(&pngFile, "png", "", "also write the columns to a PNG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&asCSV, "csv", false, "export the frames table as CSV")
	exportCmd.Flags().BoolVar(&asSVG, "svg", false, "export robot and ball paths as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and frequency analysis of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVarP(&column, "column", "c", "r0_dir", "column to analyze")
	analyzeCmd.Flags().Float64Var(&target, "target", 90, "step target in column units")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to run (0 = scenario default)")
	liveCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "scenario parameter key=value")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTICKS\tDESCRIPTION")
			for _, name := range reg.List() {
				sc, _ := reg.Get(name)
				fmt.Fprintf(w, "%s\t%d\t%s\n", sc.Name, sc.Ticks, sc.Description)
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list robot presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			fmt.Println("presets:")
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "print the effective robot config, or write it to path",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid search heading PD gains on a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneHeading,
	}
	tuneCmd.Flags().Float64SliceVar(&kps, "kp", []float64{2, 4, 6, 8}, "heading kp values")
	tuneCmd.Flags().Float64SliceVar(&kds, "kd", []float64{0.1, 0.3, 0.5}, "heading kd values")
	tuneCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks per run (0 = scenario default)")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "run a scenario many times in parallel and report throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().IntVar(&runs, "runs", 32, "number of runs")
	benchCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks per run (0 = scenario default)")
	benchCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "scenario parameter key=value")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "name", "speed", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 6, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of values")
	sweepCmd.Flags().StringVar(&metric, "metric", "", "metric to minimise (default: report only)")
	sweepCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "fixed scenario parameter key=value")
	sweepCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks per run (0 = scenario default)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "rerun a scenario with randomly perturbed parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  monteCarloScenario,
	}
	monteCarloCmd.Flags().StringToStringVar(&spreads, "spread", nil, "parameter perturbation key=spread")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().StringToStringVarP(&params, "param", "p", nil, "base scenario parameter key=value")
	monteCarloCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks per run (0 = scenario default)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, scenariosCmd, presetsCmd, configCmd, tuneCmd, benchCmd, sweepCmd, monteCarloCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newLogger() golog.Logger {
	logger := golog.NewDevelopmentLogger("robosim")
	if verbose {
		return logger
	}
	return logger.Desugar().WithOptions(zap.IncreaseLevel(zap.InfoLevel)).Sugar()
}

// registry returns the built-in scenarios plus the --script one, if set.
func registry() (*scenario.Registry, error) {
	reg := scenario.NewRegistry()
	if scriptFile == "" {
		return reg, nil
	}
	script, err := automation.LoadScript(scriptFile)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", scriptFile)
	}
	reg.Register(script.Scenario())
	return reg, nil
}

// scenarioName picks the scenario from the arguments, falling back to the
// name of the --script scenario.
func scenarioName(reg *scenario.Registry, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if scriptFile == "" {
		return "", errors.New("a scenario name or --script is required")
	}
	script, err := automation.LoadScript(scriptFile)
	if err != nil {
		return "", err
	}
	_, err = reg.Get(script.Name)
	return script.Name, err
}

// loadConfig resolves the robot config: --config over --preset over the
// defaults.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func parseParams(raw map[string]string) (scenario.Params, error) {
	p := make(scenario.Params, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s", k)
		}
		p[k] = f
	}
	return p, nil
}

func scenarioConfig(name string, record bool) (scenario.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return scenario.Config{}, err
	}
	p, err := parseParams(params)
	if err != nil {
		return scenario.Config{}, err
	}
	return scenario.Config{Scenario: name, Robot: cfg, Ticks: ticks, Record: record, Params: p}, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	reg, err := registry()
	if err != nil {
		return err
	}
	name, err := scenarioName(reg, args)
	if err != nil {
		return err
	}
	sc, err := scenarioConfig(name, !noSave)
	if err != nil {
		return err
	}
	trial, err := scenario.New(reg, sc, logger)
	if err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", name)
	start := time.Now()
	result, err := trial.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", result.TicksTaken)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scenario:  name,
			Preset:    preset,
			DeltaTime: trial.Config().Robot.DeltaTime(),
			Params:    trial.Config().Params,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	printMetrics(result.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range metricNames(metrics) {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tTICKS\tROBOTS\tPRESET")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Robots,
			run.Preset,
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

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("ticks: %d\n\n", meta.Ticks)

	series := make([]export.Series, 0, len(columns))
	for _, col := range columns {
		times, data, err := st.LoadSeries(runID, col)
		if err != nil {
			if errors.Is(err, storage.ErrUnknownColumn) {
				cols, _ := st.Columns(runID)
				return errors.Wrapf(err, "available: %s", strings.Join(cols, ", "))
			}
			return err
		}
		if len(data) == 0 {
			return errors.New("no data to plot")
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()
		series = append(series, export.Series{Name: col, X: times, Y: data})
	}

	if pngFile == "" {
		return nil
	}
	f, err := os.Create(pngFile)
	if err != nil {
		return errors.Wrapf(err, "create %s", pngFile)
	}
	defer f.Close()
	if err := export.SeriesPNG(f, meta.Scenario+" "+meta.ID, series); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", pngFile)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return errors.Wrapf(err, "create %s", outFile)
		}
		defer f.Close()
		out = f
	}

	switch {
	case asSVG:
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		return export.RunSVG(out, frames, 800, 600)
	case asCSV:
		return st.ExportCSV(out, runID)
	default:
		return st.ExportJSON(out, runID)
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, data, err := st.LoadSeries(runID, column)
	if err != nil {
		return err
	}
	if strings.HasSuffix(column, "_dir") {
		data = analysis.UnwrapDegrees(data)
	}

	resp, err := analysis.AnalyzeStep(times, data, target)
	if err != nil {
		return err
	}

	fmt.Printf("step response: %s %s\n", meta.ID, column)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "start\t%.4f\n", resp.Start)
	fmt.Fprintf(w, "target\t%.4f\n", resp.Target)
	fmt.Fprintf(w, "final\t%.4f\n", resp.Final)
	fmt.Fprintf(w, "peak\t%.4f at %.3fs\n", resp.Peak, resp.PeakTime)
	fmt.Fprintf(w, "rise time\t%s\n", seconds(resp.RiseTime))
	fmt.Fprintf(w, "overshoot\t%.2f%%\n", resp.Overshoot)
	fmt.Fprintf(w, "settling time\t%s\n", seconds(resp.SettlingTime))
	fmt.Fprintf(w, "steady state error\t%.4f\n", resp.SteadyStateError)
	if err := w.Flush(); err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 4 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+column+")"),
		)
		fmt.Println()
		fmt.Println(graph)
	}
	if f := analysis.DominantFrequency(data, meta.DeltaTime); f > 0 {
		fmt.Printf("\ndominant frequency: %.3f Hz\n", f)
	}
	return nil
}

func seconds(v float64) string {
	if v < 0 {
		return "never"
	}
	return fmt.Sprintf("%.3fs", v)
}

func runLive(cmd *cobra.Command, args []string) error {
	reg, err := registry()
	if err != nil {
		return err
	}
	name, err := scenarioName(reg, args)
	if err != nil {
		return err
	}
	if _, err := reg.Get(name); err != nil {
		return err
	}
	sc, err := scenarioConfig(name, false)
	if err != nil {
		return err
	}
	return viz.RunLive(name, viz.TrialBuild(reg, sc))
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[0])
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	fmt.Print(string(data))
	return nil
}

func tuneHeading(cmd *cobra.Command, args []string) error {
	name := "turn"
	if len(args) == 1 {
		name = args[0]
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	sc, err := reg.Get(name)
	if err != nil {
		return err
	}
	n := ticks
	if n <= 0 {
		n = sc.Ticks
	}

	fmt.Printf("searching %d gain pairs on %s...\n", len(kps)*len(kds), name)
	start := time.Now()
	best, val, err := optim.TuneHeading(cmd.Context(), reg, name, cfg, kps, kds, n)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best heading_kp: %.4f\n", best[optim.HeadingKp])
	fmt.Printf("best heading_kd: %.4f\n", best[optim.HeadingKd])
	fmt.Printf("heading_error:   %.6f rad\n", val)
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	if runs <= 0 {
		return errors.Errorf("runs must be positive, got %d", runs)
	}
	sc, err := scenarioConfig(args[0], false)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	trial, err := scenario.New(reg, sc, nil)
	if err != nil {
		return err
	}
	simCfg := trial.SimConfig()

	factories := make([]sim.Factory, runs)
	for i := range factories {
		factories[i] = scenario.Factory(reg, sc)
	}

	start := time.Now()
	results, err := sim.RunBatch(cmd.Context(), factories, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := 0
	for _, res := range results {
		total += res.TicksTaken
	}
	fmt.Printf("runs:       %d\n", runs)
	fmt.Printf("ticks:      %d\n", total)
	fmt.Printf("elapsed:    %v\n", elapsed)
	fmt.Printf("ticks/sec:  %.0f\n", float64(total)/elapsed.Seconds())
	printMetrics(results[0].Metrics)
	return nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarioConfig(args[0], false)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	sw := &automation.Sweep{
		Base:   sc,
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
		Metric: metric,
	}

	fmt.Printf("sweeping %s over %d values on %s...\n", sweepParam, sweepSteps, args[0])
	points, err := automation.RunSweep(cmd.Context(), reg, sw)
	if err != nil {
		return err
	}

	names := metricNames(points[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(strings.Join(names, "\t")))
	for _, p := range points {
		fmt.Fprintf(w, "%.4f", p.Value)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6f", p.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if metric != "" {
		best, err := sw.Best(points)
		if err != nil {
			return err
		}
		fmt.Printf("\nbest %s: %.4f (%s %.6f)\n", sweepParam, best.Value, metric, best.Metrics[metric])
	}
	return nil
}

func monteCarloScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarioConfig(args[0], false)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	spread, err := parseParams(spreads)
	if err != nil {
		return err
	}
	mc := &automation.MonteCarlo{Base: sc, Spread: spread, Trials: trials, Seed: seed}

	fmt.Printf("running %d perturbed trials of %s...\n", trials, args[0])
	start := time.Now()
	results, err := automation.RunMonteCarlo(cmd.Context(), reg, mc)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range metricNames(results[0].Metrics) {
		st, err := automation.Summarize(results, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, st.Mean, st.StdDev, st.Min, st.Max)
	}
	return w.Flush()
}

func metricNames(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
