// Package app wires configuration, storage, services, transport, and the
// background scheduler into a running application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	accountrepo "github.com/Freskan23/cuentascontrol/internal/adapter/postgres/account"
	businessrepo "github.com/Freskan23/cuentascontrol/internal/adapter/postgres/business"
	userrepo "github.com/Freskan23/cuentascontrol/internal/adapter/postgres/user"

	"github.com/Freskan23/cuentascontrol/internal/adapter/postgres"
	jwtauth "github.com/Freskan23/cuentascontrol/internal/auth"
	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/scheduler"
	"github.com/Freskan23/cuentascontrol/internal/server"
	"github.com/Freskan23/cuentascontrol/internal/service/account"
	"github.com/Freskan23/cuentascontrol/internal/service/assignment"
	authsvc "github.com/Freskan23/cuentascontrol/internal/service/auth"
	"github.com/Freskan23/cuentascontrol/internal/service/business"
	"github.com/Freskan23/cuentascontrol/internal/transport/middleware"
	"github.com/Freskan23/cuentascontrol/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled,
// then shuts everything down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := NewLogger(cfg.Log)
	log.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	accounts := accountrepo.New(pool)
	businesses := businessrepo.New(pool)
	users := userrepo.New(pool)

	jwtManager := jwtauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	authService := authsvc.NewService(log, users, jwtManager, cfg.Auth)
	accountService := account.NewService(log, accounts)
	businessService := business.NewService(log, businesses)
	assignmentService := assignment.NewService(log, accounts, businesses, txManager, cfg.Risk)

	trafficDispatcher := scheduler.NewTrafficDispatcher(
		log, accounts, businesses, txManager, cfg.Scheduler.TrafficBatchSize,
	)

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(log, cfg.Scheduler, accountService, trafficDispatcher)
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}
		jobs.Start()
	}

	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	defer rateLimiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Health:      rest.NewHealthHandler(pool, BuildVersion()),
		Auth:        rest.NewAuthHandler(authService, log),
		Accounts:    rest.NewAccountHandler(accountService, log),
		Businesses:  rest.NewBusinessHandler(businessService, log),
		Assignments: rest.NewAssignmentHandler(assignmentService, log),
		Admin:       rest.NewAdminHandler(accountService, trafficDispatcher, authService, log),
		CORS:        cfg.CORS,
		Logger:      middleware.Logger(log),
		Recovery:    middleware.Recovery(log),
		RateLimit:   rateLimiter.Limit(30),
	}, middleware.Auth(jwtManager))

	srv := server.New(log, cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Error("scheduler shutdown", slog.Any("error", err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("application stopped")
	return nil
}
