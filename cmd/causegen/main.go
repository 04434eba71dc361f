package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/causegen/internal/config"
	"github.com/san-kum/causegen/internal/dynamo"
	"github.com/san-kum/causegen/internal/export"
	"github.com/san-kum/causegen/internal/integrators"
	"github.com/san-kum/causegen/internal/physics"
	"github.com/san-kum/causegen/internal/sample"
	"github.com/san-kum/causegen/internal/search"
	"github.com/san-kum/causegen/internal/storage"
	"github.com/san-kum/causegen/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	maxTries   int
	npts       int
	stride     int
	transient  int
	integrator string
	saveRun    bool
	// Fixed model parameters for the sample command
	cxy        float64
	a1, a2, a3 float64
	b1, b2, b3 float64
	dt         float64
	noise      float64
	u0Flag     string
	// Plot/export options
	varName string
	format  string
	outFile string
	xVar    string
	yVar    string
)

var stateLabels = []string{"x1", "x2", "x3", "y1", "y2", "y3"}

func main() {
	rootCmd := &cobra.Command{
		Use:   "causegen",
		Short: "chaotic benchmark time-series generator for causality estimators",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".causegen", "data directory")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "search for a well-behaved model under uncertain parameters",
		RunE:  runSearch,
	}
	searchCmd.Flags().StringVar(&configFile, "config", "", "search config file (yaml)")
	searchCmd.Flags().StringVar(&preset, "preset", "", "named preset")
	searchCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	searchCmd.Flags().IntVar(&maxTries, "max-tries", config.DefaultMaxTries, "retry bound")
	searchCmd.Flags().IntVar(&npts, "npts", config.DefaultNpts, "trajectory points for --save")
	searchCmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "subsampling stride")
	searchCmd.Flags().IntVar(&transient, "transient", config.DefaultTransient, "transient steps to discard")
	searchCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integration scheme (euler|rk4|rk45)")
	searchCmd.Flags().BoolVar(&saveRun, "save", false, "sample a full trajectory from the accepted model and store it")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "sample a trajectory from fixed parameters and store it",
		RunE:  runSample,
	}
	sampleCmd.Flags().Float64Var(&cxy, "c-xy", 1.0, "coupling strength")
	sampleCmd.Flags().Float64Var(&a1, "a1", 6.0, "rossler time-scale constant")
	sampleCmd.Flags().Float64Var(&a2, "a2", 0.2, "rossler constant")
	sampleCmd.Flags().Float64Var(&a3, "a3", 5.7, "rossler constant")
	sampleCmd.Flags().Float64Var(&b1, "b1", 10.0, "lorenz sigma")
	sampleCmd.Flags().Float64Var(&b2, "b2", 28.0, "lorenz rho")
	sampleCmd.Flags().Float64Var(&b3, "b3", 8.0/3.0, "lorenz beta")
	sampleCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration step")
	sampleCmd.Flags().Float64Var(&noise, "noise", 0, "observational noise level (percent)")
	sampleCmd.Flags().StringVar(&u0Flag, "u0", "0.1,0.1,0.1,0.1,0.1,0.1", "initial condition (6 comma-separated values)")
	sampleCmd.Flags().IntVar(&npts, "npts", config.DefaultNpts, "trajectory points")
	sampleCmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "subsampling stride")
	sampleCmd.Flags().IntVar(&transient, "transient", config.DefaultTransient, "transient steps to discard")
	sampleCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	sampleCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integration scheme (euler|rk4|rk45)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot a stored trajectory in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&varName, "var", "", "single variable to plot (x1..y3)")

	exportCmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a stored trajectory (csv or svg phase portrait)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv|svg)")
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&xVar, "x", "x2", "svg x-axis variable")
	exportCmd.Flags().StringVar(&yVar, "y", "y2", "svg y-axis variable")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named search presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "watch a system evolve (coupled|rossler|lorenz)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0.01, "integration step")
	liveCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integration scheme (euler|rk4|rk45)")

	rootCmd.AddCommand(searchCmd, sampleCmd, listCmd, plotCmd, exportCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getIntegrator(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4", "":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s (euler|rk4|rk45)", name)
	}
}

func newRng() *rand.Rand {
	s := seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(s), uint64(s)+1))
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override preset and config file.
	if cmd.Flags().Changed("max-tries") {
		cfg.MaxTries = maxTries
	}
	if cmd.Flags().Changed("npts") {
		cfg.Npts = npts
	}
	if cmd.Flags().Changed("stride") {
		cfg.Stride = stride
	}
	if cmd.Flags().Changed("transient") {
		cfg.Transient = transient
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed != 0 {
		seed = cfg.Seed
	}

	return cfg, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	integ, err := getIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	rng := newRng()
	spec, err := cfg.SearchSpec(rng)
	if err != nil {
		return err
	}

	searcher := search.NewSearcher(cfg.MaxTries)
	searcher.Transient = cfg.Transient
	searcher.Integrator = integ

	fmt.Println("searching for a well-behaved attractor...")
	start := time.Now()

	res, err := searcher.Search(context.Background(), spec, rng)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !res.Found {
		fmt.Printf("no attractor found after %d attempts (%v)\n", res.Attempts, elapsed)
		fmt.Println("widen the parameter ranges or raise --max-tries")
		return nil
	}

	p := res.Model.Params()
	fmt.Printf("accepted on attempt %d (%v)\n\n", res.Attempts, elapsed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "c_xy\t%g\n", p.Cxy)
	fmt.Fprintf(w, "a1, a2, a3\t%g, %g, %g\n", p.A1, p.A2, p.A3)
	fmt.Fprintf(w, "b1, b2, b3\t%g, %g, %g\n", p.B1, p.B2, p.B3)
	fmt.Fprintf(w, "dt\t%g\n", p.Dt)
	fmt.Fprintf(w, "noise\t%g%%\n", p.NoiseLevel)
	fmt.Fprintf(w, "u0\t%v\n", p.U0)
	if err := w.Flush(); err != nil {
		return err
	}

	if !saveRun {
		return nil
	}

	sampler := sample.New(cfg.Npts, cfg.Stride, cfg.Transient)
	sampler.Integrator = integ
	traj, err := sampler.Sample(res.Model, rng)
	if err != nil {
		return err
	}

	runID, err := saveTrajectory(cfg, p, res.Attempts, traj)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	u0, err := parseVector(u0Flag)
	if err != nil {
		return err
	}

	integ, err := getIntegrator(integrator)
	if err != nil {
		return err
	}

	p := physics.Params{
		U0: u0, Dt: dt, Cxy: cxy,
		A1: a1, A2: a2, A3: a3,
		B1: b1, B2: b2, B3: b3,
		NoiseLevel: noise,
	}
	model, err := physics.NewRosslerLorenz(p)
	if err != nil {
		return err
	}

	sampler := sample.New(npts, stride, transient)
	sampler.Integrator = integ

	fmt.Printf("sampling %d points (stride %d, transient %d)...\n", npts, stride, transient)
	traj, err := sampler.Sample(model, newRng())
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Npts, cfg.Stride, cfg.Transient = npts, stride, transient
	cfg.Integrator = integrator
	runID, err := saveTrajectory(cfg, p, 1, traj)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n\n", runID)
	printStats(traj)
	return nil
}

func saveTrajectory(cfg *config.Config, p physics.Params, attempts int, traj *mat.Dense) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	meta := storage.RunMetadata{
		Seed:       seed,
		Attempts:   attempts,
		Integrator: cfg.Integrator,
		U0:         p.U0,
		Dt:         p.Dt,
		Cxy:        p.Cxy,
		A1:         p.A1, A2: p.A2, A3: p.A3,
		B1: p.B1, B2: p.B2, B3: p.B3,
		NoiseLevel: p.NoiseLevel,
		Npts:       cfg.Npts,
		Stride:     cfg.Stride,
		Transient:  cfg.Transient,
	}
	return st.Save(meta, traj)
}

func printStats(traj *mat.Dense) {
	rows, cols := traj.Dims()
	col := make([]float64, rows)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VAR\tMEAN\tSTD\tMIN\tMAX")
	for j := 0; j < cols; j++ {
		mat.Col(col, j, traj)
		min, max := col[0], col[0]
		for _, v := range col {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		name := fmt.Sprintf("v%d", j)
		if j < len(stateLabels) {
			name = stateLabels[j]
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n",
			name, stat.Mean(col, nil), stat.StdDev(col, nil), min, max)
	}
	w.Flush()
}

func columnIndex(name string) (int, error) {
	for i, label := range stateLabels {
		if name == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown variable: %s (x1..x3, y1..y3)", name)
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
	fmt.Fprintln(w, "ID\tTIME\tNPTS\tSTRIDE\tDT\tC_XY\tNOISE\tATTEMPTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%.3f\t%.1f%%\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Npts,
			run.Stride,
			run.Dt,
			run.Cxy,
			run.NoiseLevel,
			run.Attempts,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	traj, header, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	rows, cols := traj.Dims()

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  dt: %g  stride: %d  c_xy: %g\n\n", rows, meta.Dt, meta.Stride, meta.Cxy)

	start, end := 0, cols
	if varName != "" {
		idx, err := columnIndex(varName)
		if err != nil {
			return err
		}
		start, end = idx, idx+1
	}

	data := make([]float64, rows)
	for j := start; j < end; j++ {
		mat.Col(data, j, traj)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(header[j]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, header, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return export.WriteCSV(out, traj, header)
	case "svg":
		xCol, err := columnIndex(xVar)
		if err != nil {
			return err
		}
		yCol, err := columnIndex(yVar)
		if err != nil {
			return err
		}
		svg, err := export.PhaseSVG(traj, xCol, yCol, 800, 600)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, svg)
		return err
	default:
		return fmt.Errorf("unknown format: %s (csv|svg)", format)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	name := "coupled"
	if len(args) > 0 {
		name = args[0]
	}

	integ, err := getIntegrator(integrator)
	if err != nil {
		return err
	}

	var sys dynamo.System
	var x0 dynamo.State
	var labels []string

	switch name {
	case "coupled":
		model, err := physics.NewRosslerLorenz(physics.DefaultParams())
		if err != nil {
			return err
		}
		sys = model
		x0 = model.InitialState()
		labels = stateLabels
	case "rossler":
		r := physics.NewRossler()
		sys, x0 = r, r.InitialState()
		labels = []string{"x", "y", "z"}
	case "lorenz":
		l := physics.NewLorenz()
		sys, x0 = l, l.InitialState()
		labels = []string{"x", "y", "z"}
	default:
		return fmt.Errorf("unknown system: %s (coupled|rossler|lorenz)", name)
	}

	return viz.Run(sys, integ, x0, dt, name, labels)
}

func parseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vec := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid initial condition %q: %w", s, err)
		}
		vec = append(vec, v)
	}
	return vec, nil
}
