package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog indexes saved runs in a SQLite database so history can be
// filtered without reading every run directory.
type Catalog struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

type CatalogEntry struct {
	ID             string
	Model          string
	Timestamp      time.Time
	PopulationSize int
	Frequency      float64
	Generations    int
	Repetitions    int
	Selection      float64
	Dominance      float64
	MeanFinal      float64
	FixedCount     int
}

// Filter narrows a catalog query. Empty Model matches every model and a
// non-positive Limit returns all rows.
type Filter struct {
	Model string
	Limit int
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return errors.New("catalog path is required")
	}
	if c.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	c.db = db
	return nil
}

// Record inserts or replaces the catalog row for meta.
func (c *Catalog) Record(ctx context.Context, meta RunMetadata) error {
	db, err := c.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, model, created_at, population_size, frequency,
			generations, repetitions, selection, dominance, mean_final, fixed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model = excluded.model,
			created_at = excluded.created_at,
			population_size = excluded.population_size,
			frequency = excluded.frequency,
			generations = excluded.generations,
			repetitions = excluded.repetitions,
			selection = excluded.selection,
			dominance = excluded.dominance,
			mean_final = excluded.mean_final,
			fixed_count = excluded.fixed_count
	`, meta.ID, meta.Model, meta.Timestamp.UnixNano(), meta.PopulationSize, meta.Frequency,
		meta.Generations, meta.Repetitions, meta.Selection, meta.Dominance, meta.MeanFinal, meta.FixedCount)
	return err
}

// Query returns matching runs, newest first.
func (c *Catalog) Query(ctx context.Context, f Filter) ([]CatalogEntry, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, model, created_at, population_size, frequency, generations,
		repetitions, selection, dominance, mean_final, fixed_count FROM runs`
	var args []any
	if f.Model != "" {
		query += ` WHERE model = ?`
		args = append(args, f.Model)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var (
			e       CatalogEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Model, &created, &e.PopulationSize, &e.Frequency, &e.Generations,
			&e.Repetitions, &e.Selection, &e.Dominance, &e.MeanFinal, &e.FixedCount); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Catalog) getDB() (*sql.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return nil, errors.New("catalog is not initialized")
	}
	return c.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			population_size INTEGER NOT NULL,
			frequency REAL NOT NULL,
			generations INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			selection REAL NOT NULL,
			dominance REAL NOT NULL,
			mean_final REAL NOT NULL,
			fixed_count INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_model_created ON runs (model, created_at);
	`)
	return err
}
