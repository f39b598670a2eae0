// Package app wires configuration, storage, use cases and the HTTP server
// together and runs them until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/auth"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	repository "github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
)

const serviceName = "shortlink"

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg)

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	migrator := repository.NewMigrator(cfg.Postgres.DSN())

	if cfg.Postgres.AutoMigrate {
		applied, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}
		logger.Info("database schema ready", slog.Bool("applied", applied))
	}

	urlRepo := repository.NewURLRepository(db, cfg.Postgres.QueryTimeout)
	urlUseCase := usecase.NewURLUseCase(urlRepo, migrator, usecase.AliasPolicy{
		MinLength:    cfg.Alias.MinLength,
		MaxLength:    cfg.Alias.MaxLength,
		AllowNumeric: cfg.Alias.AllowNumeric,
		Reserved:     cfg.Alias.Reserved,
	})

	authUseCase := usecase.NewAuthUseCase(
		auth.NewPasskeyVerifier(cfg.Auth.Passkey, cfg.Auth.PasskeyHash),
		auth.NewTokenManager(cfg.Auth.TokenKey(), cfg.Auth.TokenTTL, cfg.Auth.Issuer),
	)

	router := delivery.NewRouter(logger, urlUseCase, authUseCase, delivery.RouterOptions{
		BaseURL:  cfg.BaseURL,
		HomePath: cfg.HomePath,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

func newLogger(cfg *config.Config) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:        cfg.Log.SlogLevel(),
		Concise:         true,
		RequestHeaders:  false,
		TimeFieldFormat: time.RFC3339,
		Tags: map[string]string{
			"env": cfg.Env,
		},
		QuietDownRoutes: []string{"/api/ping"},
		QuietDownPeriod: 10 * time.Second,
	}

	if cfg.Env != config.EnvDev {
		opts.JSON = true
		opts.Concise = false
	}

	return httplog.NewLogger(serviceName, opts)
}
