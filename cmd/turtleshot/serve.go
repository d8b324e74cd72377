package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/turtleshot"
	httpAdapter "github.com/aretw0/turtleshot/internal/adapters/http"
	"github.com/aretw0/turtleshot/internal/cli"
	"github.com/aretw0/turtleshot/internal/logging"
	"github.com/aretw0/turtleshot/internal/presentation/tui"
	"github.com/aretw0/turtleshot/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /run, the run ledger and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := logging.NewWithFormat(os.Stderr, level, logging.Format(cfg.LogFormat))

		ledger, closeLedger, err := cli.OpenLedger(cfg, logger)
		if err != nil {
			return err
		}
		defer closeLedger()

		recorder := metrics.New()
		pipeline := turtleshot.New(
			turtleshot.WithLogger(logger),
			turtleshot.WithLedger(ledger),
			turtleshot.WithLifecycleHooks(recorder.Hooks()),
		)
		handler := httpAdapter.NewHandler(pipeline,
			httpAdapter.WithLedger(ledger),
			httpAdapter.WithMetrics(recorder.Handler()),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithDefaultMargin(cfg.Margin),
		)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(cmd.ErrOrStderr(), turtleshot.Version)
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown incomplete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			logger.Info("server stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
}
