package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravkern/internal/bench"
	"github.com/san-kum/gravkern/internal/config"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/storage"
	"github.com/san-kum/gravkern/internal/tui"
	"github.com/san-kum/gravkern/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	save       bool

	numParticles int
	tileSize     int
	columns      int
	strategy     string
	precision    string
	seed         int64
	eps2         float64
	repeats      int
	tolerance    float64

	sweepTiles []int
	live       bool
)

var errValidation = errors.New("kernel output does not match reference")

func main() {
	rootCmd := &cobra.Command{
		Use:          "gravkern",
		Short:        "tiled n-body acceleration kernel",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravkern", "data directory")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "run reference and kernel and compare",
		RunE:  runCheck,
	}
	addRunFlags(checkCmd)

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "time one backend without validation",
		RunE:  runProfile,
	}
	addRunFlags(profileCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark kernel against reference",
		RunE:  runBench,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&sweepTiles, "sweep", nil, "tile sizes to sweep (e.g. 16,32,64)")
	benchCmd.Flags().BoolVar(&live, "live", false, "show sweep progress live")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(checkCmd, profileCmd, benchCmd, listCmd, showCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().IntVar(&numParticles, "n", def.Particles, "number of particles")
	cmd.Flags().IntVar(&tileSize, "p", def.TileSize, "tile size (targets per block)")
	cmd.Flags().IntVar(&columns, "q", def.Columns, "columns per tile")
	cmd.Flags().StringVar(&strategy, "strategy", def.Strategy, "global, tiled, column (profile also accepts reference)")
	cmd.Flags().StringVar(&precision, "precision", def.Precision, "single or double")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().Float64Var(&eps2, "eps2", def.Softening, "softening")
	cmd.Flags().IntVar(&repeats, "repeats", def.Repeats, "timed repetitions")
	cmd.Flags().Float64Var(&tolerance, "tolerance", def.Tolerance, "mismatch threshold in multiples of machine epsilon")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, mode string) (*config.Config, error) {
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
	if flags.Changed("n") {
		cfg.Particles = numParticles
	}
	if flags.Changed("p") {
		cfg.TileSize = tileSize
	}
	if flags.Changed("q") {
		cfg.Columns = columns
	}
	if flags.Changed("strategy") {
		cfg.Strategy = strategy
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("eps2") {
		cfg.Softening = eps2
	}
	if flags.Changed("repeats") {
		cfg.Repeats = repeats
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Lookup("sweep") != nil && flags.Changed("sweep") {
		cfg.Sweep = sweepTiles
	}

	cfg.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// benchOptions converts cfg for the harness. Only kernel strategies are
// accepted here.
func benchOptions(cfg *config.Config) (bench.Options, error) {
	s, err := launch.ParseStrategy(cfg.Strategy)
	if err != nil {
		return bench.Options{}, fmt.Errorf("%s needs a kernel strategy: %w", cfg.Mode, err)
	}
	return bench.Options{
		Particles: cfg.Particles,
		TileSize:  cfg.TileSize,
		Columns:   cfg.Columns,
		Strategy:  s,
		Precision: cfg.Precision,
		Seed:      cfg.Seed,
		Softening: cfg.Softening,
		Repeats:   cfg.Repeats,
		Tolerance: cfg.Tolerance,
	}, nil
}

func saveResult(cmd *cobra.Command, mode string, res *bench.Result) error {
	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(mode, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", viz.Subtle.Render("saved: "+runID))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "check")
	if err != nil {
		return err
	}
	opts, err := benchOptions(cfg)
	if err != nil {
		return err
	}

	res, err := bench.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	viz.RenderResult(out, "check", res)
	if err := saveResult(cmd, "check", res); err != nil {
		return err
	}
	if !res.Report.Pass {
		return errValidation
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "profile")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("repeats") && configFile == "" && preset == "" {
		cfg.Repeats = 1
	}

	opts := bench.Options{
		Particles: cfg.Particles,
		TileSize:  cfg.TileSize,
		Columns:   cfg.Columns,
		Precision: cfg.Precision,
		Seed:      cfg.Seed,
		Softening: cfg.Softening,
		Repeats:   cfg.Repeats,
	}
	res, err := bench.Profile(cmd.Context(), opts, cfg.Strategy)
	if err != nil {
		return err
	}

	viz.RenderResult(cmd.OutOrStdout(), "profile", res)
	return saveResult(cmd, "profile", res)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "bench")
	if err != nil {
		return err
	}
	opts, err := benchOptions(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cfg.Sweep) == 0 {
		res, err := bench.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		viz.RenderResult(out, "bench", res)
		return saveResult(cmd, "bench", res)
	}

	var points []bench.Point
	if live {
		points, err = tui.RunSweep(cmd.Context(), opts, cfg.Sweep)
	} else {
		fmt.Fprintln(out, viz.Title.Render(fmt.Sprintf("sweeping %d tile sizes (n=%d q=%d %s)",
			len(cfg.Sweep), opts.Particles, opts.Columns, opts.Strategy)))
		points, err = bench.Sweep(cmd.Context(), opts, cfg.Sweep, func(pt bench.Point) {
			if pt.Err != nil {
				fmt.Fprintf(out, "  p=%-5d %s\n", pt.TileSize, viz.StatusSkip.Render("skipped"))
				return
			}
			fmt.Fprintf(out, "  p=%-5d %s\n", pt.TileSize, viz.Metric("kernel", pt.Result.Kernel.Mean.String()))
		})
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	if err := viz.SweepTable(out, points); err != nil {
		return err
	}
	if plot := viz.SpeedupPlot(points); plot != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, plot)
	}

	failed := 0
	for _, pt := range points {
		if pt.Err != nil {
			continue
		}
		if err := saveResult(cmd, "bench", pt.Result); err != nil {
			return err
		}
		if pt.Result.Validated && !pt.Result.Report.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w (%d tile sizes)", errValidation, failed)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tTIME\tN\tP\tQ\tSTRATEGY\tPRECISION\tKERNEL\tCHECK")

	for _, run := range runs {
		r := run.Result
		if r == nil {
			continue
		}
		check := "-"
		if r.Validated {
			check = "FAIL"
			if r.Report.Pass {
				check = "PASS"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%v\t%s\n",
			run.ID,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			r.Particles,
			r.TileSize,
			r.Columns,
			r.Strategy,
			r.Precision,
			r.Kernel.Mean,
			check,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Result == nil {
		return fmt.Errorf("run %s has no result", runID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Subtle.Render(fmt.Sprintf("%s  %s", meta.ID, meta.Timestamp.Format("2006-01-02 15:04:05"))))
	viz.RenderResult(out, meta.Mode, meta.Result)

	ref, kernel, err := st.LoadAccelerations(runID)
	if err != nil {
		return err
	}
	rows := len(kernel)
	if rows > 5 {
		rows = 5
	}
	if rows == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "I\tAX\tAY\tAZ"
	if ref != nil {
		header += "\tREF_AX\tREF_AY\tREF_AZ"
	}
	fmt.Fprintln(w, header)
	for i := 0; i < rows; i++ {
		line := fmt.Sprintf("%d\t%.6g\t%.6g\t%.6g", i, kernel[i][0], kernel[i][1], kernel[i][2])
		if ref != nil {
			line += fmt.Sprintf("\t%.6g\t%.6g\t%.6g", ref[i][0], ref[i][1], ref[i][2])
		}
		fmt.Fprintln(w, line)
	}
	if len(kernel) > rows {
		fmt.Fprintf(w, "...\t(%d more)\n", len(kernel)-rows)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "available presets:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		desc := fmt.Sprintf("n=%d p=%d q=%d %s %s", p.Particles, p.TileSize, p.Columns, p.Strategy, p.Precision)
		if len(p.Sweep) > 0 {
			tiles := make([]string, len(p.Sweep))
			for i, t := range p.Sweep {
				tiles[i] = fmt.Sprint(t)
			}
			desc += " sweep=" + strings.Join(tiles, ",")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", name, p.Mode, desc)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "gravkern.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
