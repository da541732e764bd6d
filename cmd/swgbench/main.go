package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "swgbench",
	Short: "swgbench - synthetic HTTP/HTTPS traffic generator",
	Long: `swgbench drives sustained concurrent HTTP/HTTPS traffic against a
target server and reports live throughput and request-rate statistics.

It fans out across one worker process per CPU, each hosting a pool of
connection workers that fetch objects from a generated content corpus,
mixing protocols and object sizes according to configuration.

All run settings default from the environment (SERVER_IP, MAX_CONNECTIONS,
HTTPS_PERCENT, AVG_OBJECT_SIZE_MB, DURATION, CONFIG_PATH) and can be
overridden with flags.

Examples:
  swgbench generate --out server_content          # Build the test corpus
  swgbench serve --content server_content         # Serve it on 8080/8443
  swgbench run --host 10.0.0.5 -c 300 -d 60       # Generate load for 60s
  swgbench run --tui                              # Live dashboard
  swgbench history                                # Past run summaries`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}
