package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pdf_watermark/api"
	"pdf_watermark/logger"

	"github.com/spf13/cobra"
)

const (
	// ServerReadTimeout is the HTTP server read timeout
	ServerReadTimeout = 15 * time.Second

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API:

  POST /api/pdf/analyze-watermarks   multipart: pdf, sensitivity, sample_pages, pages
  POST /api/pdf/remove-watermarks    multipart: pdf, sensitivity, watermarks, format=file|base64
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

// newServer builds the HTTP server from the loaded config
func newServer() (*http.Server, error) {
	cleaner, err := newCleaner()
	if err != nil {
		return nil, err
	}
	port := cfg.Server.Port
	if servePort != "" {
		port = servePort
	}
	router := api.NewRouter(&api.Config{
		MaxFileSize: cfg.Server.MaxFileSize,
		TempDir:     cfg.Server.TempDir,
		Options:     cfg.Options(),
		Cleaner:     cleaner,
	})
	return &http.Server{
		Addr:        fmt.Sprintf(":%s", port),
		Handler:     router,
		ReadTimeout: ServerReadTimeout,
		// Removal runs mutool more than once per request
		WriteTimeout: 3 * cfg.Mutool.Timeout,
		IdleTimeout:  ServerIdleTimeout,
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := newServer()
	if err != nil {
		return err
	}
	log := logger.Named("server")

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int64("max_file_size", cfg.Server.MaxFileSize).
			Str("temp_dir", cfg.Server.TempDir).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited gracefully")
	return nil
}
