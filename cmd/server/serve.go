package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serbe/rugo-sub000/internal/config"
	"github.com/serbe/rugo-sub000/internal/credstore"
	"github.com/serbe/rugo-sub000/internal/limiter"
	"github.com/serbe/rugo-sub000/internal/migrate"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/registry"
	"github.com/serbe/rugo-sub000/internal/repository"
	"github.com/serbe/rugo-sub000/internal/repository/postgres"
	"github.com/serbe/rugo-sub000/internal/server/ws"
	"github.com/serbe/rugo-sub000/internal/service"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger, skipMigrate bool) error {
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.BindAddr),
	)

	dsn := cfg.Database.DSN()
	if !skipMigrate {
		if err := migrate.Up(ctx, dsn); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}

	db, err := postgres.New(ctx, dsn, int32(cfg.Database.MaxConns), cfg.Database.AcquireTimeout)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer db.Close()

	users := postgres.NewUserRepo()
	creds, err := seedCredentials(ctx, db, users)
	if err != nil {
		return fmt.Errorf("seed credentials: %w", err)
	}
	log.Info("credentials seeded", zap.Int("tokens", creds.Len()))

	lim := limiter.NewPG(db.Pool, limiter.Policy{
		Window:   cfg.Login.Window,
		MaxFails: cfg.Login.MaxFails,
		BlockFor: cfg.Login.Block,
	})

	reg := registry.New()
	postgres.Register(reg)

	dispatcher := service.NewDispatcher(
		service.NewAuthService(db, users, creds, lim),
		service.NewUserService(db, users, creds),
		reg,
		db,
	)
	handler := ws.Chain(dispatcher, ws.Logging(log), ws.Recover(log))

	hub := ws.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	srv := ws.NewServer(cfg.BindAddr, hub, handler, log, ws.Options{
		HeartbeatInterval: cfg.HeartbeatInterval,
		ClientTimeout:     cfg.ClientTimeout,
		TrustProxy:        cfg.TrustProxy,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Warn("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}

func seedCredentials(ctx context.Context, db repository.Runner, users repository.UserRepository) (*credstore.Store, error) {
	var all []model.User
	err := db.Run(ctx, func(q repository.Querier) error {
		var err error
		all, err = users.All(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return credstore.Seed(all)
}
