// Package analytics computes aggregate statistics across recorded
// load-generation runs.
package analytics

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/terratrax/swgbench/internal/migrations"
)

// Summary aggregates every run in the history database.
type Summary struct {
	TotalRuns       int
	CompletedRuns   int
	FailedRuns      int
	InterruptedRuns int
	TotalBytes      uint64
	TotalCompleted  uint64
	AvgCPS          float64
	MaxCPS          float64
	AvgGbps         float64
	MaxGbps         float64
	FirstRun        *time.Time
	LastRun         *time.Time
}

// Manager reads aggregate statistics from the run-history database.
type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Summarize computes totals and averages across all runs. CPS and Gbps
// averages only consider completed runs, since partial runs carry
// partial totals.
func (m *Manager) Summarize() (*Summary, error) {
	s := &Summary{}

	var totalBytes, totalCompleted int64
	err := m.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'interrupted' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(total_bytes), 0),
		       COALESCE(SUM(total_completed), 0)
		FROM runs
	`).Scan(&s.TotalRuns, &s.CompletedRuns, &s.FailedRuns, &s.InterruptedRuns,
		&totalBytes, &totalCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	s.TotalBytes = uint64(totalBytes)
	s.TotalCompleted = uint64(totalCompleted)

	err = m.db.QueryRow(`
		SELECT COALESCE(AVG(avg_cps), 0), COALESCE(MAX(avg_cps), 0),
		       COALESCE(AVG(avg_gbps), 0), COALESCE(MAX(avg_gbps), 0)
		FROM runs
		WHERE status = 'completed'
	`).Scan(&s.AvgCPS, &s.MaxCPS, &s.AvgGbps, &s.MaxGbps)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate throughput: %w", err)
	}

	var first, last sql.NullTime
	err = m.db.QueryRow(`SELECT MIN(started_at), MAX(started_at) FROM runs`).Scan(&first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to find run range: %w", err)
	}
	if first.Valid {
		s.FirstRun = &first.Time
	}
	if last.Valid {
		s.LastRun = &last.Time
	}

	return s, nil
}
