package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/gendrift/internal/automation"
	"github.com/san-kum/gendrift/internal/config"
	"github.com/san-kum/gendrift/internal/ensemble"
)

var (
	dataDir  string
	logLevel string

	popSize     int
	frequency   float64
	generations int
	repetitions int
	selection   float64
	dominance   float64
	seed        uint64
	workers     int
	configFile  string
	preset      string
	exportChart bool
	format      string
	noSave      bool

	sweepMin    int
	sweepMax    int
	sweepFactor int
	sweepTrials int
	sweepGens   int
	sweepFreq   float64
	sweepSeed   uint64
	sweepWorker int

	replicate int
	fps       int

	scanParam string
	scanFrom  float64
	scanTo    float64
	scanSteps int

	historyModel string
	historyLimit int
	genotypesCSV bool
)

// main registers the gendrift commands and exits with status 1 if the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "gendrift",
		Short:         "genetic drift and natural selection simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gendrift", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	driftCmd := &cobra.Command{
		Use:   "drift",
		Short: "simulate neutral Wright-Fisher drift",
		Args:  cobra.NoArgs,
		RunE:  runDrift,
	}
	addRunFlags(driftCmd, false)

	selectCmd := &cobra.Command{
		Use:     "select",
		Aliases: []string{"selection"},
		Short:   "simulate drift with diploid viability selection",
		Args:    cobra.NoArgs,
		RunE:    runSelection,
	}
	addRunFlags(selectCmd, true)

	def := ensemble.DefaultSweep()
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "mean allele frequency across population sizes",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepMin, "min", def.Min, "smallest population size")
	sweepCmd.Flags().IntVar(&sweepMax, "max", def.Max, "largest population size")
	sweepCmd.Flags().IntVar(&sweepFactor, "factor", def.Factor, "growth factor between sizes")
	sweepCmd.Flags().IntVar(&sweepTrials, "trials", def.Trials, "replicates per size")
	sweepCmd.Flags().IntVarP(&sweepGens, "generations", "g", def.Generations, "generation cap")
	sweepCmd.Flags().Float64VarP(&sweepFreq, "frequency", "f", def.Freq, "initial allele frequency")
	sweepCmd.Flags().Uint64Var(&sweepSeed, "seed", 0, "random seed (0 picks one)")
	sweepCmd.Flags().IntVar(&sweepWorker, "workers", config.DefaultWorkers, "parallel replicates (0 uses all CPUs)")
	sweepCmd.Flags().BoolVar(&exportChart, "export", false, "write a chart of the sweep")
	sweepCmd.Flags().StringVar(&format, "format", "png", "chart format (png, svg)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "fixation probability across values of one selection parameter",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	addModelFlags(scanCmd, true)
	scanCmd.Flags().StringVar(&scanParam, "param", automation.ParamSelection, "parameter to scan (selection, dominance, frequency)")
	scanCmd.Flags().Float64Var(&scanFrom, "from", 0, "first value")
	scanCmd.Flags().Float64Var(&scanTo, "to", 0.5, "last value")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 6, "number of values")

	animateCmd := &cobra.Command{
		Use:   "animate [run_id]",
		Short: "play back genotype frequencies of a selection run",
		Args:  cobra.ExactArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().IntVar(&replicate, "rep", 0, "replicate to animate")
	animateCmd.Flags().IntVar(&fps, "fps", 10, "generations per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "query the run catalog, newest first",
		Args:  cobra.NoArgs,
		RunE:  showHistory,
	}
	historyCmd.Flags().StringVar(&historyModel, "model", "", "only show runs of this model")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows (0 for all)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the trajectories of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&genotypesCSV, "genotypes", false, "export genotype proportions instead of allele frequencies")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := canonicalModel(args[0])
			presets := config.ListPresets(model)
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", model)
			for _, p := range presets {
				c := config.GetPreset(model, p)
				fmt.Printf("  %-10s N=%d f=%g G=%d r=%d", p, c.PopulationSize, c.Frequency, c.Generations, c.Repetitions)
				if model == "selection" {
					fmt.Printf(" s=%g h=%g", c.Selection, c.Dominance)
				}
				fmt.Println()
			}
			return nil
		},
	}

	rootCmd.AddCommand(driftCmd, selectCmd, sweepCmd, batchCmd, scanCmd, animateCmd, listCmd, historyCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command, withSelection bool) {
	addModelFlags(cmd, withSelection)
	f := cmd.Flags()
	f.BoolVar(&exportChart, "export", false, "write a chart of the run")
	f.StringVar(&format, "format", "png", "chart format (png, svg, gif)")
	f.BoolVar(&noSave, "no-save", false, "do not store the run")
}

func addModelFlags(cmd *cobra.Command, withSelection bool) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.IntVarP(&popSize, "population", "n", def.PopulationSize, "population size")
	f.Float64VarP(&frequency, "frequency", "f", def.Frequency, "initial frequency of allele A")
	f.IntVarP(&generations, "generations", "g", def.Generations, "generation cap")
	f.IntVarP(&repetitions, "repetitions", "r", def.Repetitions, "independent replicates")
	if withSelection {
		f.Float64VarP(&selection, "selection", "s", def.Selection, "selection coefficient against a")
		f.Float64VarP(&dominance, "dominance", "d", def.Dominance, "dominance coefficient of a")
	}
	f.Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	f.IntVar(&workers, "workers", def.Workers, "parallel replicates (0 uses all CPUs)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}
