package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/terratrax/swgbench/internal/manifest"
	"github.com/terratrax/swgbench/internal/stats"
	"github.com/terratrax/swgbench/internal/target"
)

// ProcessConfig is everything a worker process needs, passed explicitly
// at spawn time. Nothing here is shared mutable state.
type ProcessConfig struct {
	Host            string
	Connections     int
	HTTPSPercent    float64
	AvgObjectSizeMB float64
	Duration        time.Duration
	ManifestPath    string
	Weights         target.Weights
	Seed            int64
}

// RunProcess hosts one worker process: exactly cfg.Connections
// connection workers sharing one pooled client, running until the
// duration elapses. Samples are coalesced onto a single NDJSON encoder
// writing to out, which is the producer end of the metrics channel.
func RunProcess(ctx context.Context, cfg *ProcessConfig, out io.Writer, logger *log.Logger) error {
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return err
	}

	client, err := NewClient(cfg.Connections)
	if err != nil {
		return err
	}

	// Build every selector up front so no worker starts if any input
	// is bad. Each gets its own RNG: math/rand sources are not safe for
	// concurrent use.
	selectors := make([]*target.Selector, cfg.Connections)
	for i := range selectors {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		sel, err := target.NewSelector(m, cfg.Weights, cfg.Host, cfg.AvgObjectSizeMB, cfg.HTTPSPercent, rng)
		if err != nil {
			return fmt.Errorf("failed to build selector: %w", err)
		}
		selectors[i] = sel
	}

	samples := make(chan stats.Sample, cfg.Connections*4)

	// Single consumer of the in-process sample channel; the pipe sees
	// one writer, so no locking around the encoder is needed.
	encoderDone := make(chan error, 1)
	go func() {
		enc := json.NewEncoder(out)
		for s := range samples {
			if err := enc.Encode(s); err != nil {
				// Supervisor went away; drain the channel so workers
				// never block on emit.
				for range samples {
				}
				encoderDone <- err
				return
			}
		}
		encoderDone <- nil
	}()

	deadline := time.Now().Add(cfg.Duration)

	var wg sync.WaitGroup
	for _, sel := range selectors {
		w := &Worker{
			Selector: sel,
			Client:   client,
			Samples:  samples,
			Logger:   logger,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx, deadline)
		}()
	}

	wg.Wait()
	close(samples)

	if err := <-encoderDone; err != nil {
		return fmt.Errorf("metrics channel closed early: %w", err)
	}
	return nil
}
