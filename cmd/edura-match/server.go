package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/intake"
	"github.com/rawanfarouq/EduRA-sub001/internal/jobs"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/server"
)

const shutdownTimeout = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API and the course posting watcher",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		comps, err := initializeComponents(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer comps.Close()

		tracker := jobs.NewTracker(jobs.WithLogger(logger))
		srv := server.NewServer(comps.Engine, comps.Storage, tracker, &cfg.Server, &cfg.Matching, logger)

		var watcher *intake.Watcher
		if len(cfg.Intake.Directories) > 0 {
			svc := intake.NewService(comps.Storage, func(target models.TargetItem) (string, error) {
				return srv.SubmitPush(target)
			}, logger)
			watcher, err = svc.Watch(ctx, cfg.Intake.Directories, cfg.Intake.SyncExisting,
				intake.WithDebounce(cfg.Intake.Debounce))
			if err != nil {
				return err
			}
			logger.Info("watching course postings", zap.Strings("directories", cfg.Intake.Directories))
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
		case err := <-errCh:
			logger.Error("server failed", zap.Error(err))
			return err
		}

		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if watcher != nil {
			watcher.Stop()
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		if err := tracker.Shutdown(shutdownCtx); err != nil {
			logger.Warn("jobs did not finish before shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
