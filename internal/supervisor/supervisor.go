package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terratrax/swgbench/internal/stats"
)

// Process is the supervisor-side view of one spawned worker process:
// the consumer end of its metrics pipe plus lifecycle controls.
type Process struct {
	Out  io.ReadCloser
	Kill func() error
	Wait func() error
}

// SpawnFunc starts one worker process that will run share connection
// workers. Spawn failure is fatal for the whole run.
type SpawnFunc func(ctx context.Context, share int, index int) (*Process, error)

// Supervisor owns the load-generation run: it partitions the requested
// concurrency over worker processes, drains their metric pipes, feeds
// the aggregator, and hard-stops everything when the duration elapses.
type Supervisor struct {
	Total        int           // requested total concurrent connections
	ProcessCount int           // 0 means one per available CPU
	Duration     time.Duration // run length; processes are killed at expiry
	Spawn        SpawnFunc
	Report       func(stats.Report)
	Logger       *log.Logger
}

const sampleBuffer = 4096

// Run executes the whole lifecycle. It returns once the duration has
// elapsed (or ctx was cancelled), every worker process has been
// terminated, and every metrics pipe has drained.
func (s *Supervisor) Run(ctx context.Context) error {
	shares := Partition(s.Total, s.processCount())
	if len(shares) == 0 {
		return fmt.Errorf("no connections to run")
	}

	procs := make([]*Process, 0, len(shares))
	channels := make([]<-chan stats.Sample, 0, len(shares))

	var readers errgroup.Group
	for i, share := range shares {
		proc, err := s.Spawn(ctx, share, i)
		if err != nil {
			terminate(procs)
			return fmt.Errorf("failed to spawn worker process %d: %w", i, err)
		}
		procs = append(procs, proc)

		ch := make(chan stats.Sample, sampleBuffer)
		channels = append(channels, ch)
		readers.Go(func() error {
			defer close(ch)
			return s.readSamples(proc.Out, ch)
		})
	}

	agg := stats.NewAggregator(channels, s.Report)
	agg.Run(ctx, s.Duration)

	// Hard stop: in-flight requests are abandoned, worker overrun is
	// not tolerated past the deadline.
	for _, p := range procs {
		_ = p.Kill()
	}

	// The aggregator is gone, so drain what the readers still hold to
	// let them observe the pipes closing.
	for _, ch := range channels {
		go func(c <-chan stats.Sample) {
			for range c {
			}
		}(ch)
	}

	if err := readers.Wait(); err != nil {
		return err
	}
	for _, p := range procs {
		_ = p.Wait()
		p.Out.Close()
	}
	return nil
}

// readSamples decodes the NDJSON metrics pipe of one process into its
// channel. End-of-stream is benign: a killed or crashed process simply
// stops contributing samples.
func (s *Supervisor) readSamples(r io.Reader, ch chan<- stats.Sample) error {
	dec := json.NewDecoder(r)
	for {
		var sample stats.Sample
		if err := dec.Decode(&sample); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			// A process killed mid-record leaves a torn line behind;
			// that is shutdown noise, not a failure.
			s.Logger.Printf("metrics channel closed: %v", err)
			return nil
		}
		ch <- sample
	}
}

func (s *Supervisor) processCount() int {
	if s.ProcessCount > 0 {
		return s.ProcessCount
	}
	return runtime.NumCPU()
}

func terminate(procs []*Process) {
	for _, p := range procs {
		_ = p.Kill()
	}
	for _, p := range procs {
		_ = p.Wait()
		p.Out.Close()
	}
}
