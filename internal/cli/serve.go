package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestfin/gestfin/internal/server"
	"github.com/gestfin/gestfin/pkg/ledger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Gestfin HTTP API",
	Long: `Start the HTTP API and the periodic alert regeneration loop. Pending
payables past their due date are swept to overdue on startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	listen, _ := cmd.Flags().GetString("listen")
	if listen != "" {
		cfg.Server.Listen = listen
	}

	logger := newLogger(cfg)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	eng, err := newEngine(cfg, store, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	swept, err := store.MarkPayablesOverdue(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sweep overdue payables: %w", err)
	}
	if swept > 0 {
		logger.Info("payables marked overdue", "count", swept)
	}

	if err := eng.Regenerate(ctx); err != nil {
		return fmt.Errorf("initial alert pass: %w", err)
	}

	interval, _ := time.ParseDuration(cfg.Alerts.Interval)
	go eng.Run(ctx, interval)

	apiServer := server.NewServer(eng, store, ledger.New(store, logger), logger)

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 60 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gestfin started", "listen", cfg.Server.Listen)
		fmt.Fprintf(os.Stderr, "Gestfin API listening on %s\n", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("gestfin stopped")
	return nil
}
