package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbforce/internal/config"
	"github.com/san-kum/nbforce/internal/ff"
	"github.com/san-kum/nbforce/internal/md"
	"github.com/san-kum/nbforce/internal/metrics"
	"github.com/san-kum/nbforce/internal/scan"
	"github.com/san-kum/nbforce/internal/storage"
	"github.com/san-kum/nbforce/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	rcut        float64
	tailCorr    bool
	dt          float64
	steps       int
	temperature float64
	seed        int64
	sampleEvery int

	fdStep    float64
	tolerance float64
	rattle    float64

	scanParam   string
	scanValues  []float64
	scanWorkers int
	scanTol     float64

	exportFormat string
	showForces   bool
	svgPath      string
	plotOut      string

	listName     string
	listMaxDrift float64
	listLimit    int
	reindex      bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "nbforce"})

func main() {
	rootCmd := &cobra.Command{
		Use:   "nbforce",
		Short: "non-bonded energies, forces and MD with Ewald electrostatics",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nbforce", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().Float64Var(&rcut, "rcut", config.DefaultRcut, "pair cutoff")
	rootCmd.PersistentFlags().BoolVar(&tailCorr, "tail", false, "add tail corrections beyond the pair cutoff")

	energyCmd := &cobra.Command{
		Use:   "energy",
		Short: "evaluate the energy, gradient and virial",
		RunE:  runEnergy,
	}
	energyCmd.Flags().BoolVar(&showForces, "forces", false, "print the gradient per atom")
	energyCmd.Flags().StringVar(&svgPath, "svg", "", "write an xy projection of the atoms to this file")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "finite-difference check of the gradient and the virial",
		RunE:  runCheck,
	}
	checkCmd.Flags().Float64Var(&fdStep, "h", 1e-5, "finite-difference step")
	checkCmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "accepted deviation")
	checkCmd.Flags().Float64Var(&rattle, "rattle", 0.05, "random displacement before checking")
	checkCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "energy against an ewald or cutoff parameter",
		RunE:  runConverge,
	}
	convergeCmd.Flags().StringVar(&scanParam, "param", "gmax", "parameter to scan ("+strings.Join(scan.ParamNames(), ", ")+")")
	convergeCmd.Flags().Float64SliceVar(&scanValues, "values", []float64{1, 2, 3, 4, 5, 6, 7, 8}, "parameter values")
	convergeCmd.Flags().IntVar(&scanWorkers, "workers", 0, "concurrent evaluations (0 = GOMAXPROCS)")
	convergeCmd.Flags().Float64Var(&scanTol, "tol", 1e-6, "convergence tolerance on the total energy")

	mdCmd := &cobra.Command{
		Use:   "md",
		Short: "run NVE molecular dynamics and store the run",
		RunE:  runMD,
	}
	addMDFlags(mdCmd)
	mdCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSample, "sample every n steps")
	mdCmd.Flags().StringVar(&exportFormat, "export", "", "also write the run to stdout (json)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run molecular dynamics with live visualization",
		RunE:  runLive,
	}
	addMDFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listName, "name", "", "only runs of this system")
	listCmd.Flags().Float64Var(&listMaxDrift, "max-drift", 0, "only runs with at most this energy drift")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "newest n runs")
	listCmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the run index from the run directories")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotOut, "out", "", "also save the energy traces to this file (png, svg, pdf)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				kind := "isolated"
				if cfg.Periodic() {
					kind = "periodic"
				}
				fmt.Printf("  %-12s %3d atoms  %s\n", name, cfg.NAtom(), kind)
			}
		},
	}

	rootCmd.AddCommand(energyCmd, checkCmd, convergeCmd, mdCmd, liveCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func addMDFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&temperature, "temp", 0, "initial temperature")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// loadConfig reads --preset or --config and applies the flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		return nil, fmt.Errorf("need --preset or --config")
	}

	flags := cmd.Flags()
	if flags.Changed("rcut") {
		cfg.Pair.Rcut = rcut
	}
	if flags.Changed("tail") {
		cfg.Pair.TailCorrections = tailCorr
	}
	if flags.Lookup("dt") != nil {
		if flags.Changed("dt") {
			cfg.MD.Dt = dt
		}
		if flags.Changed("steps") {
			cfg.MD.Steps = steps
		}
		if flags.Changed("temp") {
			cfg.MD.Temperature = temperature
		}
		if flags.Changed("seed") || cfg.MD.Seed == 0 {
			cfg.MD.Seed = seed
		}
	}
	if flags.Changed("sample") {
		cfg.MD.SampleEvery = sampleEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "name", cfg.Name, "natom", cfg.NAtom(), "periodic", cfg.Periodic(),
		"rcut", cfg.Pair.Rcut, "tailcorrections", cfg.Pair.TailCorrections)
	return cfg, nil
}

func buildForceField(cmd *cobra.Command) (*config.Config, *ff.ForceField, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	f, err := ff.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range f.Parts {
		logger.Debug("part", "name", p.Name())
	}
	if reci, ok := f.Part("ewald_reci").(*ff.EwaldReci); ok {
		logger.Debug("ewald", "alpha", reci.Alpha(), "gmax", reci.GMax())
	}
	return cfg, f, nil
}

func runEnergy(cmd *cobra.Command, args []string) error {
	_, f, err := buildForceField(cmd)
	if err != nil {
		return err
	}
	gpos := make([]float64, 3*f.NAtom())
	vtens := make([]float64, 9)
	start := time.Now()
	e, err := f.Compute(gpos, vtens)
	if err != nil {
		return err
	}
	logger.Debug("evaluated", "elapsed", time.Since(start))
	if svgPath != "" {
		canvas := viz.Snapshot(f.System.Cell, f.System.Pos, 60, 30)
		if err := os.WriteFile(svgPath, []byte(viz.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", svgPath)
	}

	fmt.Print(viz.EnergyTable(f.Energies(), e))
	fmt.Println()
	fmt.Println("virial:")
	for a := 0; a < 3; a++ {
		fmt.Printf("  %14.8g %14.8g %14.8g\n", vtens[3*a], vtens[3*a+1], vtens[3*a+2])
	}
	if showForces {
		fmt.Println("\ngradient:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ATOM\tGX\tGY\tGZ")
		for i := 0; i < f.NAtom(); i++ {
			fmt.Fprintf(w, "%d\t%.8g\t%.8g\t%.8g\n", i, gpos[3*i], gpos[3*i+1], gpos[3*i+2])
		}
		w.Flush()
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, f, err := buildForceField(cmd)
	if err != nil {
		return err
	}
	if rattle > 0 {
		rng := rand.New(rand.NewSource(seed))
		pos := append([]float64(nil), f.System.Pos...)
		for i := range pos {
			pos[i] += rattle * (2*rng.Float64() - 1)
		}
		if err := f.UpdatePos(pos); err != nil {
			return err
		}
	}

	failed := false
	report := func(label string, r ff.DerivativeReport) {
		status := "ok"
		if !r.OK(tolerance) {
			status = "FAIL"
			failed = true
		}
		fmt.Printf("%-10s max abs %.3e  rel norm %.3e  %s\n", label, r.MaxAbs, r.RelNorm, status)
	}

	g, err := ff.CheckGradient(f, fdStep)
	if err != nil {
		return err
	}
	report("gradient", g)
	if f.System.Cell != nil {
		v, err := ff.CheckVirial(f, fdStep)
		if err != nil {
			return err
		}
		report("virial", v)
	}
	if failed {
		return fmt.Errorf("derivative check failed at tolerance %g", tolerance)
	}
	return nil
}

func runConverge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	set, ok := scan.Params[scanParam]
	if !ok {
		return fmt.Errorf("unknown parameter %q (have %s)", scanParam, strings.Join(scan.ParamNames(), ", "))
	}
	if scanParam != "rcut" && (!cfg.Periodic() || !cfg.Ewald.Enabled) {
		return fmt.Errorf("scanning %s needs a periodic system with ewald enabled", scanParam)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	points, err := scan.Run(ctx, cfg, set, scanValues, scanWorkers)
	if err != nil {
		return err
	}
	logger.Debug("scan finished", "points", len(points), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRECIPROCAL\tTOTAL\tCHANGE\n", strings.ToUpper(scanParam))
	prev := math.NaN()
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.12g\t%.12g\t%.3e\n", p.Value, p.Energy("ewald_reci"), p.Total, math.Abs(p.Total-prev))
		prev = p.Total
	}
	w.Flush()
	fmt.Println()
	fmt.Println(viz.ConvergencePlot(scan.Totals(points), "total energy vs "+scanParam))

	if idx, ok := scan.Converged(points, scanTol); ok {
		if idx < len(points)-1 {
			fmt.Printf("converged within %g from %s = %g\n", scanTol, scanParam, points[idx].Value)
		} else {
			logger.Warn("not converged", "param", scanParam, "tol", scanTol)
		}
	}
	return nil
}

func runMD(cmd *cobra.Command, args []string) error {
	cfg, f, err := buildForceField(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := md.New(f)
	runMetrics := metrics.Default()
	sim.AddObserver(runMetrics)
	if verbose {
		sim.AddObserver(md.ObserverFunc(func(s md.Sample) {
			logger.Debug("sample", "step", s.Step, "total", s.Total, "temp", s.Temperature)
		}))
	}
	logger.Info("running", "name", cfg.Name, "steps", cfg.MD.Steps, "dt", cfg.MD.Dt)
	start := time.Now()
	result, runErr := sim.Run(ctx, md.Config{
		Dt:          cfg.MD.Dt,
		Steps:       cfg.MD.Steps,
		SampleEvery: cfg.MD.SampleEvery,
		Temperature: cfg.MD.Temperature,
		Seed:        cfg.MD.Seed,
	})
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early", "steps", result.StepsTaken, "err", runErr)
	}
	logger.Info("done", "steps", result.StepsTaken, "elapsed", time.Since(start), "drift", result.EnergyDrift)

	energies := make(map[string]float64)
	for _, pe := range f.Energies() {
		energies[pe.Name] = pe.Energy
	}
	meta := storage.RunMetadata{
		Name:        cfg.Name,
		Seed:        cfg.MD.Seed,
		Dt:          cfg.MD.Dt,
		Steps:       result.StepsTaken,
		Temperature: cfg.MD.Temperature,
		NAtom:       f.NAtom(),
		Energies:    energies,
		Metrics:     runMetrics.Values(),
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)

	saved, err := st.Load(runID)
	if err != nil {
		return err
	}
	ix, err := st.OpenIndex(cmd.Context())
	if err != nil {
		return err
	}
	defer ix.Close()
	if err := ix.Add(cmd.Context(), *saved); err != nil {
		return err
	}

	switch exportFormat {
	case "":
	case "json":
		if err := storage.ExportJSON(os.Stdout, *saved, result); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, f, err := buildForceField(cmd)
	if err != nil {
		return err
	}
	vel := md.MaxwellBoltzmann(f.System.Masses, f.NAtom(), cfg.MD.Temperature, cfg.MD.Seed)
	m, err := viz.NewModel(f, vel, cfg.MD.Dt, cfg.Name)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	var runs []storage.RunMetadata
	if reindex || listName != "" || listMaxDrift > 0 || listLimit > 0 {
		ctx := cmd.Context()
		ix, err := st.OpenIndex(ctx)
		if err != nil {
			return err
		}
		defer ix.Close()
		if reindex {
			n, err := st.Reindex(ctx, ix)
			if err != nil {
				return err
			}
			logger.Info("index rebuilt", "runs", n)
		}
		runs, err = ix.Query(ctx, storage.Filter{Name: listName, MaxDrift: listMaxDrift, Limit: listLimit})
		if err != nil {
			return err
		}
	} else {
		var err error
		runs, err = st.List()
		if err != nil {
			return err
		}
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tATOMS\tSTEPS\tDT\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%.2e\n",
			run.ID, run.Name, run.Timestamp.Format("2006-01-02 15:04"),
			run.NAtom, run.Steps, run.Dt, run.EnergyDrift)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has %d samples, need at least 2", meta.ID, len(samples))
	}

	times := make([]float64, len(samples))
	total := make([]float64, len(samples))
	pot := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		total[i] = s.Total
		pot[i] = s.Potential
	}
	fmt.Printf("%s  %d atoms  dt=%g  drift=%.2e\n\n", meta.Name, meta.NAtom, meta.Dt, meta.EnergyDrift)
	fmt.Println(asciigraph.PlotMany([][]float64{total, pot},
		asciigraph.Height(15), asciigraph.Width(70),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue),
		asciigraph.Caption("total (green) and potential (blue) energy")))
	if plotOut != "" {
		err := viz.SaveTracePlot(plotOut, meta.ID, "time", "energy",
			viz.Series{Name: "total", X: times, Y: total},
			viz.Series{Name: "potential", X: times, Y: pot})
		if err != nil {
			return err
		}
		logger.Info("trace written", "path", plotOut)
	}
	return nil
}
