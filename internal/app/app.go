// Package app wires configuration, logging, storage, services, and the
// HTTP server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	categoryrepo "github.com/brunovale/catalog-backend/internal/adapter/postgres/category"
	productrepo "github.com/brunovale/catalog-backend/internal/adapter/postgres/product"
	recoveryrepo "github.com/brunovale/catalog-backend/internal/adapter/postgres/recovery"
	rolerepo "github.com/brunovale/catalog-backend/internal/adapter/postgres/role"
	userrepo "github.com/brunovale/catalog-backend/internal/adapter/postgres/user"
	"github.com/brunovale/catalog-backend/internal/adapter/smtp"
	"github.com/brunovale/catalog-backend/internal/auth"
	"github.com/brunovale/catalog-backend/internal/config"
	"github.com/brunovale/catalog-backend/internal/service/authn"
	"github.com/brunovale/catalog-backend/internal/service/catalog"
	"github.com/brunovale/catalog-backend/internal/service/recovery"
	usersvc "github.com/brunovale/catalog-backend/internal/service/user"
	"github.com/brunovale/catalog-backend/internal/transport/middleware"
	"github.com/brunovale/catalog-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled,
// then shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	products := productrepo.New(pool)
	categories := categoryrepo.New(pool)
	users := userrepo.New(pool)
	roles := rolerepo.New(pool)
	recoveries := recoveryrepo.New(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var mailSender interface {
		Send(ctx context.Context, to, subject, body string) error
	}
	if cfg.Mail.Enabled() {
		mailSender = smtp.NewSender(cfg.Mail)
	} else {
		logger.Warn("mail delivery not configured, recovery mails are logged only")
		mailSender = smtp.NewLogSender(logger)
	}

	catalogSvc := catalog.NewService(logger, products, categories, txManager)
	userSvc := usersvc.NewService(logger, users, roles, txManager, cfg.Auth)
	authnSvc := authn.NewService(logger, users, jwtManager, cfg.Auth)
	recoverySvc := recovery.NewService(logger, users, recoveries, mailSender, txManager, cfg.Recovery, cfg.Auth)

	mux := rest.NewRouter(rest.Handlers{
		Product:  rest.NewProductHandler(catalogSvc, logger),
		Category: rest.NewCategoryHandler(catalogSvc, logger),
		User:     rest.NewUserHandler(userSvc, logger),
		Auth:     rest.NewAuthHandler(authnSvc, recoverySvc, logger),
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
	})

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if cfg.Server.RateLimitPerMin > 0 {
		limiter := middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
		mws = append(mws, limiter.Limit(cfg.Server.RateLimitPerMin))
	}
	mws = append(mws, middleware.Auth(authnSvc))

	handler := middleware.Chain(mws...)(mux)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
