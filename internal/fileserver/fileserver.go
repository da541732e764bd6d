package fileserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the generated corpus on both transports: plaintext on
// HTTPPort and TLS on HTTPSPort, serving identical paths straight from
// the content directory.
type Server struct {
	ContentDir string
	Addr       string // bind address, usually 0.0.0.0
	HTTPPort   int
	HTTPSPort  int
	CertFile   string
	KeyFile    string
	Logger     *log.Logger
}

// Run starts both listeners and blocks until ctx is cancelled or either
// listener fails. Shutdown drains in-flight responses briefly, then
// gives up.
func (s *Server) Run(ctx context.Context) error {
	handler := http.FileServer(http.Dir(s.ContentDir))

	plain := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Addr, s.HTTPPort),
		Handler: handler,
	}
	secure := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Addr, s.HTTPSPort),
		Handler: handler,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Printf("starting HTTP server on %s", plain.Addr)
		if err := plain.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.Logger.Printf("starting HTTPS server on %s", secure.Addr)
		if err := secure.ListenAndServeTLS(s.CertFile, s.KeyFile); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("https server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = plain.Shutdown(shutdownCtx)
		_ = secure.Shutdown(shutdownCtx)
		return nil
	})

	return g.Wait()
}
