package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

const indexFile = "runs.db"

// Index is a SQLite catalog of stored runs for filtered listing. The run
// directories stay the source of truth; Reindex rebuilds the catalog.
type Index struct {
	db *bun.DB
}

type runRow struct {
	bun.BaseModel `bun:"table:runs"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	Timestamp   time.Time `bun:"timestamp,notnull"`
	Seed        int64     `bun:"seed"`
	Dt          float64   `bun:"dt"`
	Steps       int       `bun:"steps"`
	Temperature float64   `bun:"temperature"`
	NAtom       int       `bun:"natom"`
	EnergyDrift float64   `bun:"energy_drift"`
}

func rowFromMeta(m RunMetadata) runRow {
	return runRow{
		ID:          m.ID,
		Name:        m.Name,
		Timestamp:   m.Timestamp,
		Seed:        m.Seed,
		Dt:          m.Dt,
		Steps:       m.Steps,
		Temperature: m.Temperature,
		NAtom:       m.NAtom,
		EnergyDrift: m.EnergyDrift,
	}
}

func (r runRow) meta() RunMetadata {
	return RunMetadata{
		ID:          r.ID,
		Name:        r.Name,
		Timestamp:   r.Timestamp,
		Seed:        r.Seed,
		Dt:          r.Dt,
		Steps:       r.Steps,
		Temperature: r.Temperature,
		NAtom:       r.NAtom,
		EnergyDrift: r.EnergyDrift,
	}
}

// OpenIndex opens or creates the catalog in the store directory.
func (s *Store) OpenIndex(ctx context.Context) (*Index, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("sqlite", filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("storage: open index: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*runRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create index: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add records a run. Adding a run that is already present is a no-op.
func (ix *Index) Add(ctx context.Context, meta RunMetadata) error {
	row := rowFromMeta(meta)
	_, err := ix.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

// Filter selects runs in Query. Zero fields match everything.
type Filter struct {
	Name     string
	MaxDrift float64
	Limit    int
}

// Query returns the matching runs, newest first.
func (ix *Index) Query(ctx context.Context, f Filter) ([]RunMetadata, error) {
	var rows []runRow
	q := ix.db.NewSelect().Model(&rows).OrderExpr("timestamp DESC")
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.MaxDrift > 0 {
		q = q.Where("energy_drift <= ?", f.MaxDrift)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]RunMetadata, len(rows))
	for i, r := range rows {
		out[i] = r.meta()
	}
	return out, nil
}

// Reindex adds every run directory of the store and returns how many runs
// were seen.
func (s *Store) Reindex(ctx context.Context, ix *Index) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	for _, run := range runs {
		if err := ix.Add(ctx, run); err != nil {
			return 0, fmt.Errorf("storage: index %s: %w", run.ID, err)
		}
	}
	return len(runs), nil
}
