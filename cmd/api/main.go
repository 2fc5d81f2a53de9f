package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/libms/library-backend/internal/api"
	"github.com/libms/library-backend/internal/auth"
	"github.com/libms/library-backend/internal/config"
	"github.com/libms/library-backend/internal/db"
	"github.com/libms/library-backend/internal/logger"
	"github.com/libms/library-backend/internal/metrics"
	"github.com/libms/library-backend/internal/repository/postgres"
	"github.com/libms/library-backend/internal/services"
	"github.com/libms/library-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)

	metrics.Init()
	r := api.NewRouter(api.Deps{
		Cfg:       cfg,
		TM:        tm,
		AuthSvc:   services.NewAuthService(repos.Users, tm),
		BookSvc:   services.NewBookService(repos.Books, repos.AuditLogs, wp),
		UserSvc:   services.NewUserService(repos.Users),
		BorrowSvc: services.NewBorrowService(repos.Users, repos.Books, repos.Borrows, repos.AuditLogs, wp),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
