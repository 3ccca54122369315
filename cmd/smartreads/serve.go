package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"smartreads/internal/catalog"
	"smartreads/internal/handlers"
	"smartreads/internal/jobs"
	"smartreads/internal/middleware"
	"smartreads/internal/queue"
	"smartreads/internal/server"
	"smartreads/internal/storage"
	"smartreads/internal/tasks"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := a.log
	cfg := a.cfg

	cat := catalog.NewWithFixtures()
	activity := catalog.NewActivityLog(10)
	cat.Subscribe(activity.Record)

	var snapshots tasks.SnapshotStore
	if cfg.SnapshotsEnabled() {
		store, err := storage.NewSnapshotStore(cfg.Storage)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure snapshot bucket failed")
		}
		snapshots = store
	}

	processor := tasks.NewProcessor(cat, a.guard, snapshots, cfg.Security.ProfileSecret, logger)
	if cfg.Storage.RestoreOnStart {
		if err := processor.RestoreLatest(ctx); err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
			logger.Warn().Err(err).Msg("restore catalog snapshot failed, starting from fixtures")
		}
	}

	var dispatcher queue.Dispatcher = queue.NewInlineDispatcher(processor, logger)
	if client := a.conns.Redis; client != nil {
		dispatcher = queue.NewRedisDispatcher(client, cfg.Jobs.Stream)

		consumer := queue.NewConsumer(client, cfg.Jobs.Stream, cfg.Jobs.Group, cfg.Jobs.Consumer, cfg.Jobs.ClaimInterval, logger, processor)
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("task consumer stopped")
			}
		}()

		publisher := queue.NewEventPublisher(client, cfg.Jobs.EventStream, logger)
		cat.Subscribe(publisher.Observe)
		go func() { _ = publisher.Run(ctx) }()
	}

	scheduler := jobs.NewScheduler(dispatcher, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimit, cfg.Security.Burst)
	go limiter.Cleanup(ctx)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Auth:     a.auth,
		Guard:    a.guard,
		Catalog:  cat,
		Activity: activity,
		Limiter:  limiter,
		Store:    a.store,
	})
	httpServer, err := server.NewHTTPServer(cfg, logger, handlerSet)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Start() }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			scheduler.Stop()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop()

	if _, err := processor.Snapshot(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("final snapshot failed")
	}

	logger.Info().Msg("server exited cleanly")
	return nil
}
