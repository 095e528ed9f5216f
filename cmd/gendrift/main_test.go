package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/popgen"
	"github.com/san-kum/gendrift/internal/storage"
)

func newRunCmd(t *testing.T, withSelection bool, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, withSelection)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newRunCmd(t, false), popgen.ModelDrift)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.PopulationSize != 100 || cfg.Generations != 1000 || cfg.Repetitions != 3 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Seed == 0 {
		t.Error("a seed should be picked when none is given")
	}
	if p := cfg.Params(); p.Selection != 0 {
		t.Errorf("drift params should not carry selection: %+v", p)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("generations: 50\nrepetitions: 7\nseed: 11\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRunCmd(t, true, "--preset", "recessive", "--config", path, "-r", "2", "-s", "0.4")
	cfg, err := resolveConfig(cmd, popgen.ModelSelection)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if cfg.PopulationSize != 1000 || cfg.Dominance != 1.0 {
		t.Errorf("preset values lost: %+v", cfg)
	}
	if cfg.Generations != 50 || cfg.Seed != 11 {
		t.Errorf("config file values lost: %+v", cfg)
	}
	if cfg.Repetitions != 2 || cfg.Selection != 0.4 {
		t.Errorf("flags should win: %+v", cfg)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, err := resolveConfig(newRunCmd(t, false, "--preset", "nope"), popgen.ModelDrift); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := resolveConfig(newRunCmd(t, false, "-n", "0"), popgen.ModelDrift); err == nil {
		t.Error("expected validation error")
	}
	if _, err := resolveConfig(newRunCmd(t, false, "--config", "missing.yaml"), popgen.ModelDrift); err == nil {
		t.Error("expected missing config error")
	}
}

func TestCanonicalModel(t *testing.T) {
	tests := map[string]string{
		"select":    popgen.ModelSelection,
		"selection": popgen.ModelSelection,
		"drift":     popgen.ModelDrift,
		"":          "",
	}
	for in, want := range tests {
		if got := canonicalModel(in); got != want {
			t.Errorf("canonicalModel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunModelSavesAndCatalogs(t *testing.T) {
	dataDir = t.TempDir()
	logLevel = "error"
	cmd := newRunCmd(t, true, "-n", "20", "-g", "30", "-r", "2", "--seed", "5")

	if err := runModel(cmd, popgen.ModelSelection); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one saved run, got %d (%v)", len(runs), err)
	}
	if runs[0].Seed != 5 || runs[0].Repetitions != 2 {
		t.Errorf("unexpected metadata %+v", runs[0])
	}
	if _, err := os.Stat(filepath.Join(dataDir, catalogFile)); err != nil {
		t.Errorf("catalog not created: %v", err)
	}
}

func TestRunBatchSavesEveryStep(t *testing.T) {
	dataDir = t.TempDir()
	logLevel = "error"
	noSave = false

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	scenario := "name: pair\nsteps:\n  - model: drift\n    population_size: 10\n    generations: 20\n    repetitions: 1\n  - model: selection\n    population_size: 10\n    generations: 20\n    repetitions: 2\n"
	if err := os.WriteFile(path, []byte(scenario), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runBatch(&cobra.Command{}, []string{path}); err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil || len(runs) != 2 {
		t.Fatalf("expected two saved runs, got %d (%v)", len(runs), err)
	}
	if runs[0].ID == runs[1].ID {
		t.Errorf("runs share id %s", runs[0].ID)
	}
}

func TestRunScan(t *testing.T) {
	logLevel = "error"
	cmd := &cobra.Command{Use: "scan"}
	addModelFlags(cmd, true)
	if err := cmd.ParseFlags([]string{"-n", "20", "-g", "50", "-r", "2", "--seed", "3"}); err != nil {
		t.Fatal(err)
	}
	scanParam, scanFrom, scanTo, scanSteps = "dominance", 0, 1, 3

	if err := runScan(cmd, nil); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	scanParam = "mutation"
	if err := runScan(cmd, nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestListRunsEmptyDataDir(t *testing.T) {
	dataDir = filepath.Join(t.TempDir(), "none")
	if err := listRuns(&cobra.Command{}, nil); err != nil {
		t.Errorf("list on a missing data dir failed: %v", err)
	}
}

func TestWriteRunExport(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := writeRunExport(sampleResult(), "svg", ts)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if path != "20240301120000.svg" {
		t.Errorf("unexpected path %q", path)
	}

	if _, err := writeRunExport(sampleResult(), "gif", ts.Add(time.Second)); err == nil {
		t.Error("gif export of a drift run should fail")
	}
	if _, err := os.Stat("20240301120001.gif"); !os.IsNotExist(err) {
		t.Error("failed export should not leave a file behind")
	}
}

func sampleResult() *ensemble.Result {
	reps := []ensemble.Replicate{
		{Frequencies: []float64{0.5, 0.6, 1}, FixationGen: 2, Fixed: true},
		{Frequencies: []float64{0.5, 0.4, 0.45}, FixationGen: 2},
	}
	return &ensemble.Result{
		Config: ensemble.Config{
			Model:       popgen.ModelDrift,
			Params:      popgen.Params{N: 10, Freq: 0.5, Generations: 3},
			Repetitions: 2,
		},
		Replicates: reps,
		Summary:    ensemble.Summarize(reps),
	}
}
