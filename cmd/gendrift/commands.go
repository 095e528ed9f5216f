package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/gendrift/internal/automation"
	"github.com/san-kum/gendrift/internal/config"
	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/export"
	"github.com/san-kum/gendrift/internal/logging"
	"github.com/san-kum/gendrift/internal/popgen"
	"github.com/san-kum/gendrift/internal/sampling"
	"github.com/san-kum/gendrift/internal/storage"
	"github.com/san-kum/gendrift/internal/viz"
)

const catalogFile = "catalog.db"

func newSampler(seed uint64) popgen.Sampler {
	return sampling.New(seed)
}

func newLogger() *log.Logger {
	return logging.New(logLevel, os.Stderr)
}

func canonicalModel(name string) string {
	switch name {
	case "select", "selection":
		return popgen.ModelSelection
	default:
		return name
	}
}

func runDrift(cmd *cobra.Command, args []string) error {
	return runModel(cmd, popgen.ModelDrift)
}

func runSelection(cmd *cobra.Command, args []string) error {
	return runModel(cmd, popgen.ModelSelection)
}

// resolveConfig layers defaults, the preset, the config file and finally
// any flag set on the command line.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("population") {
		cfg.PopulationSize = popSize
	}
	if flags.Changed("frequency") {
		cfg.Frequency = frequency
	}
	if flags.Changed("generations") {
		cfg.Generations = generations
	}
	if flags.Changed("repetitions") {
		cfg.Repetitions = repetitions
	}
	if flags.Changed("selection") {
		cfg.Selection = selection
	}
	if flags.Changed("dominance") {
		cfg.Dominance = dominance
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runModel(cmd *cobra.Command, model string) error {
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("simulating", "model", model, "n", cfg.PopulationSize, "reps", cfg.Repetitions, "seed", cfg.Seed)
	start := time.Now()

	res, err := ensemble.Run(ctx, ensemble.Config{
		Model:       model,
		Params:      cfg.Params(),
		Repetitions: cfg.Repetitions,
		Seed:        cfg.Seed,
		Workers:     cfg.Workers,
		Logger:      logger,
	}, newSampler)
	if err != nil {
		return err
	}
	logger.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Println(viz.PlotTrajectories(frequencies(res), viz.PlotOptions{
		Caption: fmt.Sprintf("%s, N=%d", model, cfg.PopulationSize),
		PadTo:   cfg.Generations,
	}))
	fmt.Println()
	fmt.Println(viz.Summary(model, model, cfg.Params(), res.Summary))

	if !noSave {
		meta, err := saveRun(ctx, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", meta.ID)
	}

	if exportChart {
		path, err := writeRunExport(res, format, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("exported: %s\n", path)
	}
	return nil
}

func frequencies(res *ensemble.Result) [][]float64 {
	out := make([][]float64, len(res.Replicates))
	for i, r := range res.Replicates {
		out[i] = r.Frequencies
	}
	return out
}

func saveRun(ctx context.Context, res *ensemble.Result) (*storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Save(res)
	if err != nil {
		return nil, err
	}

	cat := storage.NewCatalog(filepath.Join(dataDir, catalogFile))
	if err := cat.Init(ctx); err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	if err := cat.Record(ctx, *meta); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return meta, nil
}

// writeRunExport writes a trajectory chart, or a genotype animation of the
// first replicate for the gif format, into the working directory.
func writeRunExport(res *ensemble.Result, format string, now time.Time) (string, error) {
	if format == "gif" && (len(res.Replicates) == 0 || len(res.Replicates[0].Genotypes) == 0) {
		return "", fmt.Errorf("gif export needs genotype data from a selection run")
	}

	path := export.TimestampName(now, format)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if format == "gif" {
		err = export.GenotypeGIF(f, res.Replicates[0].Genotypes, export.GIFOptions{})
	} else {
		err = export.TrajectoryChart(f, frequencies(res), export.ChartOptions{
			Title:  fmt.Sprintf("%s N=%d", res.Config.Model, res.Config.Params.N),
			Format: format,
		})
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := ensemble.SweepConfig{
		Min:         sweepMin,
		Max:         sweepMax,
		Factor:      sweepFactor,
		Freq:        sweepFreq,
		Generations: sweepGens,
		Trials:      sweepTrials,
		Seed:        sweepSeed,
		Workers:     sweepWorker,
		Logger:      newLogger(),
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := ensemble.Sweep(ctx, cfg, newSampler)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tMEAN FREQ\tFIXED")
	for _, p := range points {
		fmt.Fprintf(w, "%d\t%.4f\t%d/%d\n", p.N, p.MeanFrequency, p.Result.Summary.FixedCount, cfg.Trials)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if exportChart {
		chartPoints := make([]export.SweepPoint, len(points))
		for i, p := range points {
			chartPoints[i] = export.SweepPoint{N: p.N, Mean: p.MeanFrequency}
		}
		path := export.TimestampName(time.Now(), format)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.SweepChart(f, chartPoints, export.ChartOptions{Title: "drift sweep", Format: format}); err != nil {
			return err
		}
		fmt.Printf("exported: %s\n", path)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	base := uint64(time.Now().UnixNano())
	for i := range sc.Steps {
		if sc.Steps[i].Config.Seed == 0 {
			sc.Steps[i].Config.Seed = base + uint64(i)<<32
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, newSampler, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tN\tMEAN FINAL\tFIXED\tRUN ID")
	for _, r := range results {
		id := "-"
		if !noSave {
			meta, err := saveRun(ctx, r.Result)
			if err != nil {
				return err
			}
			id = meta.ID
		}
		s := r.Result.Summary
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%d/%d\t%s\n",
			r.Label, r.Result.Config.Model, r.Result.Config.Params.N, s.MeanFinal, s.FixedCount, s.Repetitions, id)
	}
	return w.Flush()
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, popgen.ModelSelection)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scan := &automation.ParameterScan{
		Base:  *cfg,
		Param: scanParam,
		Min:   scanFrom,
		Max:   scanTo,
		Steps: scanSteps,
	}
	results, err := automation.RunParameterScan(ctx, scan, newSampler, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tP(FIX A)\tMEAN FINAL\tMEAN FIX GEN\n", strings.ToUpper(scanParam))
	for _, r := range results {
		s := r.Result.Summary
		fixGen := "-"
		if s.HasFixation {
			fixGen = fmt.Sprintf("%.1f", s.MeanFixationGen)
		}
		fmt.Fprintf(w, "%.4g\t%.3f\t%.4f\t%s\n", r.Value, r.FixationProbability(), s.MeanFinal, fixGen)
	}
	return w.Flush()
}

func animateRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	gens, err := st.LoadGenotypes(runID)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		return fmt.Errorf("run %s has no genotype data (model %s)", runID, meta.Model)
	}
	if replicate < 0 || replicate >= len(gens) {
		return fmt.Errorf("replicate %d out of range [0, %d)", replicate, len(gens))
	}

	interval := time.Second / time.Duration(max(fps, 1))
	title := fmt.Sprintf("%s  rep %d  N=%d s=%g h=%g", meta.ID, replicate, meta.PopulationSize, meta.Selection, meta.Dominance)
	p := tea.NewProgram(viz.NewAnimation(title, gens[replicate], interval))
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Printf("no runs found in %s\n", st.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tN\tFREQ\tGENS\tREPS\tFIXED\tMEAN FINAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%d\t%d\t%d\t%.4f\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.PopulationSize,
			run.Frequency,
			run.Generations,
			run.Repetitions,
			run.FixedCount,
			run.MeanFinal,
		)
	}
	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cat := storage.NewCatalog(filepath.Join(dataDir, catalogFile))
	if err := cat.Init(ctx); err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.Query(ctx, storage.Filter{Model: canonicalModel(historyModel), Limit: historyLimit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tN\tS\tH\tREPS\tFIXED\tMEAN FINAL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%d\t%d\t%.4f\n",
			e.ID, e.Model, e.Timestamp.Format("2006-01-02 15:04:05"),
			e.PopulationSize, e.Selection, e.Dominance, e.Repetitions, e.FixedCount, e.MeanFinal)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.Replicates) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.PlotTrajectories(frequencies(res), viz.PlotOptions{
		Caption: runID,
		PadTo:   res.Config.Params.Generations,
	}))
	fmt.Println()
	fmt.Println(viz.Summary(runID, res.Config.Model, res.Config.Params, res.Summary))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if genotypesCSV {
		gens, err := st.LoadGenotypes(runID)
		if err != nil {
			return err
		}
		if gens == nil {
			return fmt.Errorf("run %s has no genotype data", runID)
		}
		return storage.WriteGenotypesCSV(os.Stdout, gens)
	}

	freqs, err := st.LoadFrequencies(runID)
	if err != nil {
		return err
	}
	if len(freqs) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteFrequenciesCSV(os.Stdout, freqs)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON("-", res)
}
