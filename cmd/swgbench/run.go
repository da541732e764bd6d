package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/terratrax/swgbench/internal/config"
	"github.com/terratrax/swgbench/internal/history"
	"github.com/terratrax/swgbench/internal/stats"
	"github.com/terratrax/swgbench/internal/supervisor"
	"github.com/terratrax/swgbench/internal/target"
	"github.com/terratrax/swgbench/internal/tui"
)

var runFlags struct {
	host        string
	connections int
	httpsPct    float64
	avgSizeMB   float64
	durationSec int
	manifest    string
	weightsFile string
	processes   int
	useTUI      bool
	noHistory   bool
	noColor     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate load against the target server",
	Long: `Run the load generator: spawn one worker process per CPU, partition
the requested connection count across them, and print one statistics
line per second until the duration elapses.

Only this supervisor handles interrupts; pressing Ctrl-C stops the run
early and terminates every worker process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		settings := settingsFromFlags()
		if err := settings.Validate(); err != nil {
			return err
		}

		weights := target.DefaultWeights()
		if runFlags.weightsFile != "" {
			var err error
			weights, err = target.LoadWeights(runFlags.weightsFile)
			if err != nil {
				return err
			}
		}
		if err := weights.Validate(); err != nil {
			return err
		}

		logger := log.New(os.Stderr, "", log.LstdFlags)

		// The supervisor owns interrupt handling; worker processes
		// ignore the signal themselves.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		spawn, err := supervisor.ExecSpawner(settings, runFlags.weightsFile)
		if err != nil {
			return err
		}

		procCount := runFlags.processes
		if procCount <= 0 {
			procCount = runtime.NumCPU()
		}

		var recorder *runRecorder
		if !runFlags.noHistory {
			recorder, err = newRunRecorder(settings, procCount)
			if err != nil {
				// Recording is best-effort; the run itself matters more.
				logger.Printf("run history disabled: %v", err)
				recorder = nil
			} else {
				defer recorder.Close()
			}
		}

		var mu sync.Mutex
		var totalBytes, totalCompleted uint64
		accumulate := func(r stats.Report) {
			mu.Lock()
			totalBytes += r.Bytes
			totalCompleted += r.Completed
			mu.Unlock()
		}

		var report func(stats.Report)
		var finishTUI func()

		if runFlags.useTUI {
			reports := make(chan stats.Report, 64)
			program := tea.NewProgram(tui.NewLiveModel(
				fmt.Sprintf("swgbench: %d conns -> %s (%.0f%% https, %ds)",
					settings.MaxConnections, settings.ServerIP, settings.HTTPSPercent, settings.DurationSec),
				reports))

			tuiDone := make(chan struct{})
			go func() {
				defer close(tuiDone)
				if _, err := program.Run(); err != nil {
					logger.Printf("tui error: %v", err)
				}
			}()

			report = func(r stats.Report) {
				accumulate(r)
				select {
				case reports <- r:
				default:
				}
			}
			finishTUI = func() {
				close(reports)
				<-tuiDone
			}
		} else {
			console := &stats.ConsoleReporter{Out: os.Stdout, Styled: !runFlags.noColor}
			report = func(r stats.Report) {
				accumulate(r)
				console.Report(r)
			}
		}

		sup := &supervisor.Supervisor{
			Total:        settings.MaxConnections,
			ProcessCount: procCount,
			Duration:     settings.Duration(),
			Spawn:        spawn,
			Report:       report,
			Logger:       logger,
		}

		runErr := sup.Run(ctx)
		if finishTUI != nil {
			finishTUI()
		}

		mu.Lock()
		bytes, completed := totalBytes, totalCompleted
		mu.Unlock()

		if recorder != nil {
			status := "completed"
			if runErr != nil {
				status = "failed"
			} else if ctx.Err() != nil {
				status = "interrupted"
			}
			recorder.Finish(status, bytes, completed)
		}

		return runErr
	},
}

func init() {
	defaults := config.FromEnv()
	runCmd.Flags().StringVar(&runFlags.host, "host", defaults.ServerIP, "Target server address")
	runCmd.Flags().IntVarP(&runFlags.connections, "connections", "c", defaults.MaxConnections, "Total concurrent connections across all processes")
	runCmd.Flags().Float64Var(&runFlags.httpsPct, "https-percent", defaults.HTTPSPercent, "Percentage of requests over HTTPS (0-100)")
	runCmd.Flags().Float64Var(&runFlags.avgSizeMB, "avg-size", defaults.AvgObjectSizeMB, "Target average object size in MB")
	runCmd.Flags().IntVarP(&runFlags.durationSec, "duration", "d", defaults.DurationSec, "Run duration in seconds")
	runCmd.Flags().StringVar(&runFlags.manifest, "manifest", defaults.ManifestPath, "Path to the content manifest")
	runCmd.Flags().StringVar(&runFlags.weightsFile, "weights", "", "YAML file overriding category selection weights")
	runCmd.Flags().IntVar(&runFlags.processes, "processes", 0, "Worker process count (default: one per CPU)")
	runCmd.Flags().BoolVar(&runFlags.useTUI, "tui", false, "Show a live dashboard instead of plain report lines")
	runCmd.Flags().BoolVar(&runFlags.noHistory, "no-history", false, "Skip recording the run in the history database")
	runCmd.Flags().BoolVar(&runFlags.noColor, "no-color", false, "Plain report lines without styling")
}

func settingsFromFlags() *config.Settings {
	return &config.Settings{
		ServerIP:        runFlags.host,
		MaxConnections:  runFlags.connections,
		HTTPSPercent:    runFlags.httpsPct,
		AvgObjectSizeMB: runFlags.avgSizeMB,
		DurationSec:     runFlags.durationSec,
		ManifestPath:    runFlags.manifest,
	}
}

// runRecorder persists one run's lifecycle into the history database.
type runRecorder struct {
	manager *history.Manager
	run     *history.Run
}

func newRunRecorder(settings *config.Settings, procCount int) (*runRecorder, error) {
	manager, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return nil, err
	}

	run := &history.Run{
		StartedAt:       time.Now(),
		Status:          "running",
		ServerAddr:      settings.ServerIP,
		Connections:     settings.MaxConnections,
		ProcessCount:    procCount,
		HTTPSPercent:    settings.HTTPSPercent,
		AvgObjectSizeMB: settings.AvgObjectSizeMB,
		DurationSec:     settings.DurationSec,
	}
	if err := manager.CreateRun(run); err != nil {
		manager.Close()
		return nil, err
	}

	return &runRecorder{manager: manager, run: run}, nil
}

func (r *runRecorder) Finish(status string, totalBytes, totalCompleted uint64) {
	now := time.Now()
	elapsed := now.Sub(r.run.StartedAt).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	r.run.CompletedAt = &now
	r.run.Status = status
	r.run.TotalBytes = totalBytes
	r.run.TotalCompleted = totalCompleted
	r.run.AvgCPS = float64(totalCompleted) / elapsed
	r.run.AvgGbps = float64(totalBytes) * 8 / (elapsed * 1e9)

	if err := r.manager.UpdateRun(r.run); err != nil {
		log.Printf("failed to record run summary: %v", err)
	}
}

func (r *runRecorder) Close() {
	r.manager.Close()
}
