// Package store persists analysis runs and their result tables in an
// embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/urbanfabric/buildnet/internal/model"
)

// Run is one persisted analysis run.
type Run struct {
	ID        string
	Strategy  string
	RadiusM   float64
	Stats     *model.NetworkStats
	CreatedAt time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database at the given DSN and configures WAL mode.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	strategy   TEXT NOT NULL,
	radius_m   REAL NOT NULL,
	stats      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS centrality (
	run_id                 TEXT NOT NULL REFERENCES runs(id),
	building_id            TEXT NOT NULL,
	degree                 INTEGER NOT NULL,
	degree_centrality      REAL NOT NULL,
	betweenness_centrality REAL NOT NULL,
	closeness_centrality   REAL NOT NULL,
	pagerank               REAL NOT NULL,
	PRIMARY KEY (run_id, building_id)
);

CREATE TABLE IF NOT EXISTS accessibility (
	run_id                  TEXT NOT NULL REFERENCES runs(id),
	building_id             TEXT NOT NULL,
	distance_count          INTEGER NOT NULL,
	network_reachable_count INTEGER NOT NULL,
	avg_path_distance_m     REAL,
	weighted_accessibility  REAL NOT NULL,
	PRIMARY KEY (run_id, building_id)
);

CREATE INDEX IF NOT EXISTS idx_centrality_run_id ON centrality(run_id);
CREATE INDEX IF NOT EXISTS idx_accessibility_run_id ON accessibility(run_id);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records a new analysis run and returns it with its assigned ID.
func (s *Store) CreateRun(ctx context.Context, strategy string, radiusM float64, stats *model.NetworkStats) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal stats")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, strategy, radius_m, stats, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, strategy, radiusM, string(statsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert run")
	}

	return &Run{ID: id, Strategy: strategy, RadiusM: radiusM, Stats: stats, CreatedAt: now}, nil
}

// GetRun loads a run and its statistics record.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var statsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, strategy, radius_m, stats, created_at FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Strategy, &run.RadiusM, &statsJSON, &run.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "store: get run %s", runID)
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal stats for run %s", runID)
	}
	return &run, nil
}

// SaveCentrality persists the centrality table for a run.
func (s *Store) SaveCentrality(ctx context.Context, runID string, rows []model.CentralityRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin centrality tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO centrality (run_id, building_id, degree, degree_centrality,
			betweenness_centrality, closeness_centrality, pagerank)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "store: prepare centrality insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.BuildingID, row.Degree,
			row.DegreeCentrality, row.BetweennessCentrality,
			row.ClosenessCentrality, row.PageRank); err != nil {
			return eris.Wrapf(err, "store: insert centrality %s", row.BuildingID)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit centrality")
}

// LoadCentrality reads back the centrality table for a run, ordered by
// building ID. Values round-trip losslessly.
func (s *Store) LoadCentrality(ctx context.Context, runID string) ([]model.CentralityRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT building_id, degree, degree_centrality, betweenness_centrality,
			closeness_centrality, pagerank
		 FROM centrality WHERE run_id = ? ORDER BY building_id`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: query centrality for run %s", runID)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CentralityRow
	for rows.Next() {
		var row model.CentralityRow
		if err := rows.Scan(&row.BuildingID, &row.Degree, &row.DegreeCentrality,
			&row.BetweennessCentrality, &row.ClosenessCentrality, &row.PageRank); err != nil {
			return nil, eris.Wrap(err, "store: scan centrality row")
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate centrality rows")
	}
	return out, nil
}

// SaveAccessibility persists the accessibility table for a run. A nil
// average path distance is stored as NULL.
func (s *Store) SaveAccessibility(ctx context.Context, runID string, rows []model.AccessibilityRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin accessibility tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accessibility (run_id, building_id, distance_count,
			network_reachable_count, avg_path_distance_m, weighted_accessibility)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "store: prepare accessibility insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		var avg sql.NullFloat64
		if row.AvgPathDistanceM != nil {
			avg = sql.NullFloat64{Float64: *row.AvgPathDistanceM, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, row.BuildingID, row.DistanceCount,
			row.NetworkReachableCount, avg, row.WeightedAccessibility); err != nil {
			return eris.Wrapf(err, "store: insert accessibility %s", row.BuildingID)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit accessibility")
}

// LoadAccessibility reads back the accessibility table for a run, ordered by
// building ID. NULL average path distances come back as nil.
func (s *Store) LoadAccessibility(ctx context.Context, runID string) ([]model.AccessibilityRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT building_id, distance_count, network_reachable_count,
			avg_path_distance_m, weighted_accessibility
		 FROM accessibility WHERE run_id = ? ORDER BY building_id`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: query accessibility for run %s", runID)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AccessibilityRow
	for rows.Next() {
		var row model.AccessibilityRow
		var avg sql.NullFloat64
		if err := rows.Scan(&row.BuildingID, &row.DistanceCount,
			&row.NetworkReachableCount, &avg, &row.WeightedAccessibility); err != nil {
			return nil, eris.Wrap(err, "store: scan accessibility row")
		}
		if avg.Valid {
			v := avg.Float64
			row.AvgPathDistanceM = &v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate accessibility rows")
	}
	return out, nil
}
