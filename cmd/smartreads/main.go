package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smartreads/internal/config"
	"smartreads/internal/database"
	"smartreads/internal/kv"
	"smartreads/internal/log"
	"smartreads/internal/repository"
	"smartreads/internal/security"
	"smartreads/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smartreads",
		Short:         "SmartReads library catalog admin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newUsersCmd(), newSnapshotCmd())
	return root
}

// app is what every command needs: config, logger and the persisted
// user and session stores.
type app struct {
	cfg      *config.AppConfig
	log      zerolog.Logger
	conns    *database.Connections
	store    kv.Store
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	auth     *service.AuthService
	guard    *service.SessionGuard
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.New(cfg.Environment, cfg.Log.Level)

	if cfg.Security.ProfileSecret == "" {
		secret, err := security.RandomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Security.ProfileSecret = secret
		logger.Warn().Msg("security.profilesecret not set, using a random secret; cookies and snapshot signatures will not survive a restart")
	}

	conns, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(ctx, cfg.KV, kv.Backends{Redis: conns.Redis, Postgres: conns.Postgres})
	if err != nil {
		conns.Close(logger)
		return nil, fmt.Errorf("open kv: %w", err)
	}

	users := repository.NewUserRepository(store)
	sessions := repository.NewSessionRepository(store)

	return &app{
		cfg:      cfg,
		log:      logger,
		conns:    conns,
		store:    store,
		users:    users,
		sessions: sessions,
		auth:     service.NewAuthService(users, sessions, logger),
		guard:    service.NewSessionGuard(sessions, cfg.Security.SessionTTL, logger),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("kv close error")
	}
	a.conns.Close(a.log)
}
