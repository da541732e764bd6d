package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terratrax/swgbench/internal/history"
)

func seedRuns(t *testing.T, dbPath string) {
	t.Helper()
	hm, err := history.NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create history manager: %v", err)
	}
	defer hm.Close()

	base := time.Now().Add(-time.Hour)
	fixtures := []struct {
		status string
		bytes  uint64
		comp   uint64
		cps    float64
		gbps   float64
	}{
		{"completed", 1000000, 100, 50, 1.0},
		{"completed", 3000000, 300, 150, 3.0},
		{"failed", 0, 0, 0, 0},
		{"interrupted", 500000, 40, 0, 0},
	}
	for i, f := range fixtures {
		run := &history.Run{
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			Status:      "running",
			ServerAddr:  "127.0.0.1",
			Connections: 10,
			DurationSec: 60,
		}
		if err := hm.CreateRun(run); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
		done := run.StartedAt.Add(time.Minute)
		run.CompletedAt = &done
		run.Status = f.status
		run.TotalBytes = f.bytes
		run.TotalCompleted = f.comp
		run.AvgCPS = f.cps
		run.AvgGbps = f.gbps
		if err := hm.UpdateRun(run); err != nil {
			t.Fatalf("UpdateRun failed: %v", err)
		}
	}
}

func TestSummarize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	seedRuns(t, dbPath)

	m, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer m.Close()

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.TotalRuns != 4 || s.CompletedRuns != 2 || s.FailedRuns != 1 || s.InterruptedRuns != 1 {
		t.Errorf("Run counts wrong: %+v", s)
	}
	if s.TotalBytes != 4500000 || s.TotalCompleted != 440 {
		t.Errorf("Totals wrong: %+v", s)
	}
	// Averages only cover the two completed runs.
	if s.AvgCPS != 100 || s.MaxCPS != 150 {
		t.Errorf("CPS aggregates wrong: %+v", s)
	}
	if s.AvgGbps != 2.0 || s.MaxGbps != 3.0 {
		t.Errorf("Gbps aggregates wrong: %+v", s)
	}
	if s.FirstRun == nil || s.LastRun == nil {
		t.Fatalf("Run range missing: %+v", s)
	}
	if !s.FirstRun.Before(*s.LastRun) {
		t.Errorf("Run range out of order: first=%v last=%v", s.FirstRun, s.LastRun)
	}
}

func TestSummarize_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	m, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer m.Close()

	s, err := m.Summarize()
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TotalRuns != 0 || s.TotalBytes != 0 || s.AvgCPS != 0 {
		t.Errorf("Expected zero summary, got %+v", s)
	}
	if s.FirstRun != nil || s.LastRun != nil {
		t.Errorf("Expected nil run range, got %+v", s)
	}
}
