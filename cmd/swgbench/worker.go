package main

import (
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/terratrax/swgbench/internal/loadgen"
	"github.com/terratrax/swgbench/internal/target"
)

var workerFlags struct {
	host        string
	connections int
	httpsPct    float64
	avgSizeMB   float64
	durationSec int
	manifest    string
	weightsFile string
	seed        int64
}

// workerCmd is the re-exec entry point for one worker process. It is
// hidden: the supervisor spawns it, users never invoke it directly.
// Stdout carries the metrics channel, diagnostics go to stderr, and
// interrupts are ignored so only the supervisor reacts to Ctrl-C.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		signal.Ignore(os.Interrupt)

		weights := target.DefaultWeights()
		if workerFlags.weightsFile != "" {
			var err error
			weights, err = target.LoadWeights(workerFlags.weightsFile)
			if err != nil {
				return err
			}
		}

		cfg := &loadgen.ProcessConfig{
			Host:            workerFlags.host,
			Connections:     workerFlags.connections,
			HTTPSPercent:    workerFlags.httpsPct,
			AvgObjectSizeMB: workerFlags.avgSizeMB,
			Duration:        time.Duration(workerFlags.durationSec) * time.Second,
			ManifestPath:    workerFlags.manifest,
			Weights:         weights,
			Seed:            workerFlags.seed,
		}

		logger := log.New(os.Stderr, "worker: ", log.LstdFlags)
		return loadgen.RunProcess(cmd.Context(), cfg, os.Stdout, logger)
	},
}

func init() {
	workerCmd.Flags().StringVar(&workerFlags.host, "host", "127.0.0.1", "Target server address")
	workerCmd.Flags().IntVar(&workerFlags.connections, "connections", 1, "Connection workers in this process")
	workerCmd.Flags().Float64Var(&workerFlags.httpsPct, "https-percent", 50, "Percentage of requests over HTTPS")
	workerCmd.Flags().Float64Var(&workerFlags.avgSizeMB, "avg-size", 2, "Target average object size in MB")
	workerCmd.Flags().IntVar(&workerFlags.durationSec, "duration", 60, "Run duration in seconds")
	workerCmd.Flags().StringVar(&workerFlags.manifest, "manifest", "config.txt", "Path to the content manifest")
	workerCmd.Flags().StringVar(&workerFlags.weightsFile, "weights", "", "YAML file overriding category selection weights")
	workerCmd.Flags().Int64Var(&workerFlags.seed, "seed", 0, "RNG seed base for this process")
}
