package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/gendrift/internal/popgen"
)

func TestCatalogRecordQuery(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err := cat.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = cat.Close()
	})

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []RunMetadata{
		{ID: "drift_a", Model: popgen.ModelDrift, Timestamp: base, PopulationSize: 100, Frequency: 0.5, Generations: 1000, Repetitions: 3},
		{ID: "selection_b", Model: popgen.ModelSelection, Timestamp: base.Add(time.Minute), PopulationSize: 50, Selection: 0.2, Dominance: 0.25, FixedCount: 2},
		{ID: "drift_c", Model: popgen.ModelDrift, Timestamp: base.Add(2 * time.Minute), PopulationSize: 10, MeanFinal: 1},
	}
	for _, r := range runs {
		if err := cat.Record(ctx, r); err != nil {
			t.Fatalf("record %s: %v", r.ID, err)
		}
	}

	all, err := cat.Query(ctx, Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].ID != "drift_c" || all[2].ID != "drift_a" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if !all[2].Timestamp.Equal(base) {
		t.Errorf("timestamp not preserved: %v", all[2].Timestamp)
	}

	drift, err := cat.Query(ctx, Filter{Model: popgen.ModelDrift, Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(drift) != 1 || drift[0].ID != "drift_c" || drift[0].MeanFinal != 1 {
		t.Errorf("unexpected filtered result %+v", drift)
	}

	sel, err := cat.Query(ctx, Filter{Model: popgen.ModelSelection})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(sel) != 1 || sel[0].Selection != 0.2 || sel[0].FixedCount != 2 {
		t.Errorf("unexpected selection rows %+v", sel)
	}
}

func TestCatalogRecordUpserts(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err := cat.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer cat.Close()

	meta := RunMetadata{ID: "drift_x", Model: popgen.ModelDrift, Timestamp: time.Now(), MeanFinal: 0.2}
	if err := cat.Record(ctx, meta); err != nil {
		t.Fatalf("record: %v", err)
	}
	meta.MeanFinal = 0.8
	if err := cat.Record(ctx, meta); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := cat.Query(ctx, Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0].MeanFinal != 0.8 {
		t.Errorf("expected a single updated row, got %+v", rows)
	}
}

func TestCatalogNotInitialized(t *testing.T) {
	cat := NewCatalog("unused.db")
	if _, err := cat.Query(context.Background(), Filter{}); err == nil {
		t.Error("expected error before Init")
	}
	if err := cat.Close(); err != nil {
		t.Errorf("close on uninitialized catalog: %v", err)
	}
}

func TestCatalogRequiresPath(t *testing.T) {
	if err := NewCatalog("").Init(context.Background()); err == nil {
		t.Error("expected error for empty path")
	}
}
