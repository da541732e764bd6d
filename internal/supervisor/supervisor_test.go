package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terratrax/swgbench/internal/stats"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		total int
		procs int
		want  []int
	}{
		{"even split", 300, 4, []int{75, 75, 75, 75}},
		{"remainder spread", 10, 3, []int{4, 3, 3}},
		{"fewer conns than procs", 2, 8, []int{1, 1}},
		{"single proc", 7, 1, []int{7}},
		{"one each", 4, 4, []int{1, 1, 1, 1}},
		{"zero total", 0, 4, nil},
		{"zero procs", 10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.total, tt.procs)
			if len(got) != len(tt.want) {
				t.Fatalf("Partition(%d, %d) = %v, want %v", tt.total, tt.procs, got, tt.want)
			}
			sum := 0
			for i, share := range got {
				if share != tt.want[i] {
					t.Errorf("Partition(%d, %d) = %v, want %v", tt.total, tt.procs, got, tt.want)
					break
				}
				if share < 1 {
					t.Errorf("Share %d is below 1", share)
				}
				sum += share
			}
			if tt.total > 0 && tt.procs > 0 && sum != tt.total {
				t.Errorf("Shares sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

// fakeProcess writes n samples as NDJSON then blocks until killed,
// mimicking a worker process on the other end of a pipe.
func fakeProcess(t *testing.T, samples int, bytesPer uint64, killed *int32) *Process {
	t.Helper()
	pr, pw := io.Pipe()

	done := make(chan struct{})
	go func() {
		enc := json.NewEncoder(pw)
		for i := 0; i < samples; i++ {
			if err := enc.Encode(stats.Sample{Bytes: bytesPer, Completed: 1}); err != nil {
				break
			}
		}
		<-done
		pw.Close()
	}()

	var once sync.Once
	return &Process{
		Out: pr,
		Kill: func() error {
			atomic.AddInt32(killed, 1)
			once.Do(func() { close(done) })
			return nil
		},
		Wait: func() error { return nil },
	}
}

func TestSupervisor_AggregatesAcrossProcesses(t *testing.T) {
	var killed int32
	spawned := 0
	spawn := func(ctx context.Context, share, index int) (*Process, error) {
		spawned++
		return fakeProcess(t, 50, 1000, &killed), nil
	}

	var mu sync.Mutex
	var totalBytes, totalCompleted uint64
	sup := &Supervisor{
		Total:        4,
		ProcessCount: 2,
		Duration:     1500 * time.Millisecond,
		Spawn:        spawn,
		Report: func(r stats.Report) {
			mu.Lock()
			totalBytes += r.Bytes
			totalCompleted += r.Completed
			mu.Unlock()
		},
		Logger: log.New(io.Discard, "", 0),
	}

	if err := sup.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if spawned != 2 {
		t.Errorf("Expected 2 processes spawned, got %d", spawned)
	}
	if atomic.LoadInt32(&killed) != 2 {
		t.Errorf("Expected 2 processes killed at deadline, got %d", killed)
	}

	mu.Lock()
	defer mu.Unlock()
	if totalCompleted != 100 {
		t.Errorf("Expected 100 completions aggregated, got %d", totalCompleted)
	}
	if totalBytes != 100000 {
		t.Errorf("Expected 100000 bytes aggregated, got %d", totalBytes)
	}
}

func TestSupervisor_SpawnFailureIsFatal(t *testing.T) {
	var killed int32
	spawn := func(ctx context.Context, share, index int) (*Process, error) {
		if index == 1 {
			return nil, fmt.Errorf("fork failed")
		}
		return fakeProcess(t, 0, 0, &killed), nil
	}

	sup := &Supervisor{
		Total:        4,
		ProcessCount: 2,
		Duration:     time.Second,
		Spawn:        spawn,
		Report:       func(stats.Report) {},
		Logger:       log.New(io.Discard, "", 0),
	}

	if err := sup.Run(context.Background()); err == nil {
		t.Fatal("Expected spawn failure to be fatal")
	}
	if atomic.LoadInt32(&killed) != 1 {
		t.Errorf("Expected already-spawned process to be killed, got %d", killed)
	}
}

func TestSupervisor_TerminatesNearDeadline(t *testing.T) {
	var killed int32
	spawn := func(ctx context.Context, share, index int) (*Process, error) {
		return fakeProcess(t, 10, 1, &killed), nil
	}

	sup := &Supervisor{
		Total:        1,
		ProcessCount: 1,
		Duration:     300 * time.Millisecond,
		Spawn:        spawn,
		Report:       func(stats.Report) {},
		Logger:       log.New(io.Discard, "", 0),
	}

	start := time.Now()
	if err := sup.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run overran deadline: %v", elapsed)
	}
}

func TestSupervisor_NoConnections(t *testing.T) {
	sup := &Supervisor{
		Total:        0,
		ProcessCount: 1,
		Duration:     time.Second,
		Spawn: func(ctx context.Context, share, index int) (*Process, error) {
			t.Fatal("Spawn should not be called")
			return nil, nil
		},
		Report: func(stats.Report) {},
		Logger: log.New(io.Discard, "", 0),
	}
	if err := sup.Run(context.Background()); err == nil {
		t.Fatal("Expected error for zero connections")
	}
}
