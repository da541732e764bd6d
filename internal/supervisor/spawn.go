package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/terratrax/swgbench/internal/config"
)

// WorkerCommand is the hidden subcommand worker processes re-exec into.
const WorkerCommand = "worker"

// ExecSpawner returns a SpawnFunc that re-executes the current binary
// as a worker process. The worker inherits stderr for its diagnostics;
// stdout carries the metrics channel and nothing else.
func ExecSpawner(settings *config.Settings, weightsFile string) (SpawnFunc, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate own binary: %w", err)
	}

	return func(ctx context.Context, share int, index int) (*Process, error) {
		args := []string{
			WorkerCommand,
			"--host", settings.ServerIP,
			"--connections", strconv.Itoa(share),
			"--https-percent", strconv.FormatFloat(settings.HTTPSPercent, 'f', -1, 64),
			"--avg-size", strconv.FormatFloat(settings.AvgObjectSizeMB, 'f', -1, 64),
			"--duration", strconv.Itoa(settings.DurationSec),
			"--manifest", settings.ManifestPath,
			"--seed", strconv.FormatInt(time.Now().UnixNano()+int64(index)<<16, 10),
		}
		if weightsFile != "" {
			args = append(args, "--weights", weightsFile)
		}

		cmd := exec.CommandContext(ctx, self, args...)
		cmd.Stderr = os.Stderr

		out, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to open metrics pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, err
		}

		return &Process{
			Out:  out,
			Kill: func() error { return cmd.Process.Kill() },
			Wait: cmd.Wait,
		}, nil
	}, nil
}
