// Package storage persists ensemble runs on disk: one directory per run
// holding metadata.json, frequencies.csv and, for selection runs,
// genotypes.csv. A SQLite catalog indexes runs for history queries.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/popgen"
)

const (
	metadataFile    = "metadata.json"
	frequenciesFile = "frequencies.csv"
	genotypesFile   = "genotypes.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type ReplicateMeta struct {
	Seed        uint64             `json:"seed"`
	FixationGen int                `json:"fixation_generation"`
	Fixed       bool               `json:"fixed"`
	FixedAt     float64            `json:"fixed_at"`
	Metrics     map[string]float64 `json:"metrics"`
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Model           string             `json:"model"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            uint64             `json:"seed"`
	PopulationSize  int                `json:"population_size"`
	Frequency       float64            `json:"frequency"`
	Generations     int                `json:"generations"`
	Repetitions     int                `json:"repetitions"`
	Selection       float64            `json:"selection,omitempty"`
	Dominance       float64            `json:"dominance,omitempty"`
	MeanFinal       float64            `json:"mean_final"`
	StdFinal        float64            `json:"std_final"`
	FixedCount      int                `json:"fixed_count"`
	MeanFixationGen float64            `json:"mean_fixation_generation,omitempty"`
	Metrics         map[string]float64 `json:"metrics"`
	Replicates      []ReplicateMeta    `json:"replicates"`
}

// Params rebuilds the simulation parameters the run was made with.
func (m *RunMetadata) Params() popgen.Params {
	return popgen.Params{
		N:           m.PopulationSize,
		Freq:        m.Frequency,
		Generations: m.Generations,
		Selection:   m.Selection,
		Dominance:   m.Dominance,
	}
}

// NewMetadata describes res without assigning an ID.
func NewMetadata(res *ensemble.Result, ts time.Time) RunMetadata {
	cfg := res.Config
	meta := RunMetadata{
		Model:           cfg.Model,
		Timestamp:       ts,
		Seed:            cfg.Seed,
		PopulationSize:  cfg.Params.N,
		Frequency:       cfg.Params.Freq,
		Generations:     cfg.Params.Generations,
		Repetitions:     len(res.Replicates),
		Selection:       cfg.Params.Selection,
		Dominance:       cfg.Params.Dominance,
		MeanFinal:       res.Summary.MeanFinal,
		StdFinal:        res.Summary.StdFinal,
		FixedCount:      res.Summary.FixedCount,
		MeanFixationGen: res.Summary.MeanFixationGen,
		Metrics:         res.Summary.Metrics,
		Replicates:      make([]ReplicateMeta, len(res.Replicates)),
	}
	for i, r := range res.Replicates {
		meta.Replicates[i] = ReplicateMeta{
			Seed:        r.Seed,
			FixationGen: r.FixationGen,
			Fixed:       r.Fixed,
			FixedAt:     r.FixedAt,
			Metrics:     r.Metrics,
		}
	}
	return meta
}

// Save writes res under a fresh run directory and returns its metadata.
// IDs are the model name plus a second-resolution timestamp; a numeric
// suffix is added when two runs land in the same second.
func (s *Store) Save(res *ensemble.Result) (*RunMetadata, error) {
	if res == nil {
		return nil, errors.New("storage: nil result")
	}
	if err := s.Init(); err != nil {
		return nil, err
	}

	ts := s.now()
	meta := NewMetadata(res, ts)
	base := fmt.Sprintf("%s_%s", res.Config.Model, ts.Format("20060102T150405"))

	runDir := ""
	for i := 1; ; i++ {
		id := base
		if i > 1 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			meta.ID = id
			runDir = dir
			break
		}
		if !os.IsExist(err) {
			return nil, err
		}
	}

	if err := s.writeRun(runDir, res, meta); err != nil {
		os.RemoveAll(runDir)
		return nil, err
	}
	return &meta, nil
}

// writeRun writes metadata.json last; List only sees complete runs.
func (s *Store) writeRun(runDir string, res *ensemble.Result, meta RunMetadata) error {
	freqs := make([][]float64, len(res.Replicates))
	for i, r := range res.Replicates {
		freqs[i] = r.Frequencies
	}
	if err := writeFile(filepath.Join(runDir, frequenciesFile), func(w io.Writer) error {
		return WriteFrequenciesCSV(w, freqs)
	}); err != nil {
		return err
	}

	if res.Config.Model == popgen.ModelSelection {
		gens := make([][]popgen.Genotypes, len(res.Replicates))
		for i, r := range res.Replicates {
			gens[i] = r.Genotypes
		}
		if err := writeFile(filepath.Join(runDir, genotypesFile), func(w io.Writer) error {
			return WriteGenotypesCSV(w, gens)
		}); err != nil {
			return err
		}
	}

	return writeJSONFile(filepath.Join(runDir, metadataFile), meta)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrequencies returns one frequency series per replicate.
func (s *Store) LoadFrequencies(runID string) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, frequenciesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFrequenciesCSV(file)
}

// LoadGenotypes returns per-replicate genotype series. Drift runs have no
// genotype file and yield nil.
func (s *Store) LoadGenotypes(runID string) ([][]popgen.Genotypes, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, genotypesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return ReadGenotypesCSV(file)
}

// LoadResult reassembles a saved run into an ensemble result.
func (s *Store) LoadResult(runID string) (*ensemble.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	freqs, err := s.LoadFrequencies(runID)
	if err != nil {
		return nil, err
	}
	gens, err := s.LoadGenotypes(runID)
	if err != nil {
		return nil, err
	}

	reps := make([]ensemble.Replicate, len(freqs))
	for i, f := range freqs {
		reps[i] = ensemble.Replicate{Index: i, Frequencies: f}
		if i < len(meta.Replicates) {
			rm := meta.Replicates[i]
			reps[i].Seed = rm.Seed
			reps[i].FixationGen = rm.FixationGen
			reps[i].Fixed = rm.Fixed
			reps[i].FixedAt = rm.FixedAt
			reps[i].Metrics = rm.Metrics
		}
		if i < len(gens) {
			reps[i].Genotypes = gens[i]
		}
	}

	return &ensemble.Result{
		Config: ensemble.Config{
			Model:       meta.Model,
			Params:      meta.Params(),
			Repetitions: meta.Repetitions,
			Seed:        meta.Seed,
		},
		Replicates: reps,
		Summary:    ensemble.Summarize(reps),
	}, nil
}

// WriteFrequenciesCSV writes a generation column followed by one column
// per replicate. Cells past the end of a replicate are left blank.
func WriteFrequenciesCSV(out io.Writer, freqs [][]float64) error {
	w := csv.NewWriter(out)

	header := []string{"generation"}
	rows := 0
	for i, f := range freqs {
		header = append(header, fmt.Sprintf("rep%d", i))
		rows = max(rows, len(f))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for g := 0; g < rows; g++ {
		row := []string{strconv.Itoa(g)}
		for _, f := range freqs {
			if g < len(f) {
				row = append(row, formatFloat(f[g]))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadFrequenciesCSV(in io.Reader) ([][]float64, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return [][]float64{}, nil
	}

	freqs := make([][]float64, len(records[0])-1)
	for line, record := range records[1:] {
		for j := 1; j < len(record) && j <= len(freqs); j++ {
			if record[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line+2, j, err)
			}
			freqs[j-1] = append(freqs[j-1], v)
		}
	}
	return freqs, nil
}

// WriteGenotypesCSV writes one row per replicate and generation.
func WriteGenotypesCSV(out io.Writer, gens [][]popgen.Genotypes) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"rep", "generation", "p_AA", "p_Aa", "p_aa"}); err != nil {
		return err
	}

	for rep, series := range gens {
		for g, gt := range series {
			row := []string{
				strconv.Itoa(rep),
				strconv.Itoa(g),
				formatFloat(gt.PAA),
				formatFloat(gt.PAa),
				formatFloat(gt.Paa),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func ReadGenotypesCSV(in io.Reader) ([][]popgen.Genotypes, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = 5

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var gens [][]popgen.Genotypes
	for line, record := range records {
		if line == 0 {
			continue
		}
		rep, err := strconv.Atoi(record[0])
		if err != nil || rep < 0 {
			return nil, fmt.Errorf("line %d: bad replicate %q", line+1, record[0])
		}
		// Rows are grouped by replicate in ascending order.
		if rep != len(gens)-1 && rep != len(gens) {
			return nil, fmt.Errorf("line %d: replicate %d out of order after %d", line+1, rep, len(gens)-1)
		}
		vals := make([]float64, 3)
		for k := range vals {
			v, err := strconv.ParseFloat(record[k+2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line+1, err)
			}
			vals[k] = v
		}
		if rep == len(gens) {
			gens = append(gens, nil)
		}
		gens[rep] = append(gens[rep], popgen.Genotypes{PAA: vals[0], PAa: vals[1], Paa: vals[2]})
	}
	return gens, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSONFile(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}
