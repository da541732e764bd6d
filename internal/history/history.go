package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/terratrax/swgbench/internal/migrations"
)

// Run is one load-generation run's summary record.
type Run struct {
	ID              int64
	StartedAt       time.Time
	CompletedAt     *time.Time
	Status          string // "running", "completed", "interrupted", "failed"
	ServerAddr      string
	Connections     int
	ProcessCount    int
	HTTPSPercent    float64
	AvgObjectSizeMB float64
	DurationSec     int
	TotalBytes      uint64
	TotalCompleted  uint64
	AvgCPS          float64
	AvgGbps         float64
}

// Manager handles run-history persistence.
type Manager struct {
	db *sql.DB
}

// NewManager opens (and if needed creates) the history database.
func NewManager(dbPath string) (*Manager, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := &Manager{db: db}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return m, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// CreateRun inserts a new run record and fills in its ID.
func (m *Manager) CreateRun(run *Run) error {
	result, err := m.db.Exec(`
		INSERT INTO runs
		(started_at, status, server_addr, connections, process_count, https_percent, avg_object_size_mb, duration_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.Status, run.ServerAddr, run.Connections, run.ProcessCount,
		run.HTTPSPercent, run.AvgObjectSizeMB, run.DurationSec)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// UpdateRun writes the final totals back to an existing record.
func (m *Manager) UpdateRun(run *Run) error {
	_, err := m.db.Exec(`
		UPDATE runs
		SET completed_at = ?, status = ?, total_bytes = ?, total_completed = ?, avg_cps = ?, avg_gbps = ?
		WHERE id = ?
	`, run.CompletedAt, run.Status, int64(run.TotalBytes), int64(run.TotalCompleted),
		run.AvgCPS, run.AvgGbps, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (m *Manager) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := m.db.Query(`
		SELECT id, started_at, completed_at, status, server_addr, connections, process_count,
		       https_percent, avg_object_size_mb, duration_sec, total_bytes, total_completed, avg_cps, avg_gbps
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var totalBytes, totalCompleted int64
		err := rows.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Status, &run.ServerAddr,
			&run.Connections, &run.ProcessCount, &run.HTTPSPercent, &run.AvgObjectSizeMB,
			&run.DurationSec, &totalBytes, &totalCompleted, &run.AvgCPS, &run.AvgGbps)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.TotalBytes = uint64(totalBytes)
		run.TotalCompleted = uint64(totalCompleted)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a single run by ID.
func (m *Manager) GetRun(id int64) (*Run, error) {
	run := &Run{}
	var totalBytes, totalCompleted int64
	err := m.db.QueryRow(`
		SELECT id, started_at, completed_at, status, server_addr, connections, process_count,
		       https_percent, avg_object_size_mb, duration_sec, total_bytes, total_completed, avg_cps, avg_gbps
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Status, &run.ServerAddr,
		&run.Connections, &run.ProcessCount, &run.HTTPSPercent, &run.AvgObjectSizeMB,
		&run.DurationSec, &totalBytes, &totalCompleted, &run.AvgCPS, &run.AvgGbps)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.TotalBytes = uint64(totalBytes)
	run.TotalCompleted = uint64(totalCompleted)
	return run, nil
}
