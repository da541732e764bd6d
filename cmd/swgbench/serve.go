package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/terratrax/swgbench/internal/config"
	"github.com/terratrax/swgbench/internal/fileserver"
)

var serveFlags struct {
	contentDir string
	addr       string
	httpPort   int
	httpsPort  int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the corpus over HTTP and HTTPS",
	Long: `Serve the generated corpus directory on both a plaintext and a TLS
listener. A self-signed certificate is created under ~/.swgbench on
first use; load-generation clients skip verification, so that is
enough for this harness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}

		if _, err := os.Stat(serveFlags.contentDir); err != nil {
			return fmt.Errorf("content directory %s: %w (run \"swgbench generate\" first)", serveFlags.contentDir, err)
		}

		if err := fileserver.EnsureCert(config.CertFile, config.KeyFile); err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		srv := &fileserver.Server{
			ContentDir: serveFlags.contentDir,
			Addr:       serveFlags.addr,
			HTTPPort:   serveFlags.httpPort,
			HTTPSPort:  serveFlags.httpsPort,
			CertFile:   config.CertFile,
			KeyFile:    config.KeyFile,
			Logger:     log.New(os.Stderr, "serve: ", log.LstdFlags),
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.contentDir, "content", "server_content", "Directory holding the generated corpus")
	serveCmd.Flags().StringVar(&serveFlags.addr, "bind", "0.0.0.0", "Address to bind both listeners to")
	serveCmd.Flags().IntVar(&serveFlags.httpPort, "http-port", config.HTTPPort, "Plaintext listener port")
	serveCmd.Flags().IntVar(&serveFlags.httpsPort, "https-port", config.HTTPSPort, "TLS listener port")
}
