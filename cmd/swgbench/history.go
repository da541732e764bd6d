package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/terratrax/swgbench/internal/analytics"
	"github.com/terratrax/swgbench/internal/config"
	"github.com/terratrax/swgbench/internal/history"
)

var historyFlags struct {
	limit   int
	stats   bool
	noColor bool
}

var historyStatusStyles = map[string]lipgloss.Style{
	"completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	"failed":      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	"interrupted": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"running":     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past load-generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}

		if historyFlags.stats {
			return printRunStats()
		}

		manager, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer manager.Close()

		runs, err := manager.ListRuns(historyFlags.limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tSERVER\tCONNS\tPROCS\tHTTPS%\tDURATION\tCPS\tGBPS")
		for _, run := range runs {
			status := run.Status
			if !historyFlags.noColor {
				if style, ok := historyStatusStyles[status]; ok {
					status = style.Render(status)
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%.0f\t%ds\t%.2f\t%.2f\n",
				run.ID,
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				status,
				run.ServerAddr,
				run.Connections,
				run.ProcessCount,
				run.HTTPSPercent,
				run.DurationSec,
				run.AvgCPS,
				run.AvgGbps,
			)
		}
		return w.Flush()
	},
}

func printRunStats() error {
	manager, err := analytics.NewManager(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer manager.Close()

	s, err := manager.Summarize()
	if err != nil {
		return err
	}
	if s.TotalRuns == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total runs\t%d (%d completed, %d failed, %d interrupted)\n",
		s.TotalRuns, s.CompletedRuns, s.FailedRuns, s.InterruptedRuns)
	fmt.Fprintf(w, "Total transferred\t%.2f GB over %d fetches\n",
		float64(s.TotalBytes)/1e9, s.TotalCompleted)
	fmt.Fprintf(w, "CPS\tavg %.2f, best %.2f\n", s.AvgCPS, s.MaxCPS)
	fmt.Fprintf(w, "Throughput\tavg %.2f Gbps, best %.2f Gbps\n", s.AvgGbps, s.MaxGbps)
	if s.FirstRun != nil && s.LastRun != nil {
		fmt.Fprintf(w, "Range\t%s to %s\n",
			s.FirstRun.Local().Format("2006-01-02 15:04:05"),
			s.LastRun.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().BoolVar(&historyFlags.stats, "stats", false, "Show aggregate statistics instead of the run list")
	historyCmd.Flags().BoolVar(&historyFlags.noColor, "no-color", false, "Plain output without styling")
}
