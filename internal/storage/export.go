package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gendrift/internal/ensemble"
	"github.com/san-kum/gendrift/internal/popgen"
)

type ExportReplicate struct {
	Seed        uint64             `json:"seed"`
	Generations int                `json:"generations"`
	FixationGen int                `json:"fixation_generation"`
	Fixed       bool               `json:"fixed"`
	FixedAt     float64            `json:"fixed_at"`
	Frequencies []float64          `json:"frequencies"`
	Genotypes   []popgen.Genotypes `json:"genotypes,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

type ExportData struct {
	Model          string             `json:"model"`
	PopulationSize int                `json:"population_size"`
	Frequency      float64            `json:"frequency"`
	Generations    int                `json:"generations"`
	Selection      float64            `json:"selection,omitempty"`
	Dominance      float64            `json:"dominance,omitempty"`
	Seed           uint64             `json:"seed"`
	MeanFinal      float64            `json:"mean_final"`
	FixedCount     int                `json:"fixed_count"`
	Metrics        map[string]float64 `json:"metrics"`
	Replicates     []ExportReplicate  `json:"replicates"`
}

func NewExportData(res *ensemble.Result) ExportData {
	p := res.Config.Params
	data := ExportData{
		Model:          res.Config.Model,
		PopulationSize: p.N,
		Frequency:      p.Freq,
		Generations:    p.Generations,
		Selection:      p.Selection,
		Dominance:      p.Dominance,
		Seed:           res.Config.Seed,
		MeanFinal:      res.Summary.MeanFinal,
		FixedCount:     res.Summary.FixedCount,
		Metrics:        res.Summary.Metrics,
		Replicates:     make([]ExportReplicate, len(res.Replicates)),
	}

	for i, r := range res.Replicates {
		data.Replicates[i] = ExportReplicate{
			Seed:        r.Seed,
			Generations: len(r.Frequencies),
			FixationGen: r.FixationGen,
			Fixed:       r.Fixed,
			FixedAt:     r.FixedAt,
			Frequencies: r.Frequencies,
			Genotypes:   r.Genotypes,
			Metrics:     r.Metrics,
		}
	}
	return data
}

func WriteJSON(w io.Writer, res *ensemble.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(res))
}

// ExportJSON writes res to path, or to stdout when path is "-".
func ExportJSON(path string, res *ensemble.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, res)
	}
	return writeFile(path, func(w io.Writer) error {
		return WriteJSON(w, res)
	})
}
