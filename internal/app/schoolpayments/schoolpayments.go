// Package schoolpayments assembles the API server: storage, session
// store, notification broker, services and the HTTP router.
package schoolpayments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/qalopay/school-payments/internal/config"
	"github.com/qalopay/school-payments/internal/lib/jwt"
	"github.com/qalopay/school-payments/internal/lib/rabbitmq"
	"github.com/qalopay/school-payments/internal/migrations"
	"github.com/qalopay/school-payments/internal/services/adminops"
	authservice "github.com/qalopay/school-payments/internal/services/auth"
	"github.com/qalopay/school-payments/internal/services/billing"
	"github.com/qalopay/school-payments/internal/services/roster"
	"github.com/qalopay/school-payments/internal/services/tenant"
	"github.com/qalopay/school-payments/internal/session"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	broker *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	sessions, err := session.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AMQPConnection, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := &rabbitmq.Publisher{Ch: ch}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	resolver := tenant.NewResolver(db, logger)

	authService := authservice.New(logger, db, sessions, resolver, publisher, tokens,
		cfg.SessionTTL, cfg.TrialDays, cfg.RequireConfirmation)
	rosterService := roster.New(logger, db)
	billingService := billing.New(logger, db)
	adminService := adminops.New(logger, db, cfg.TrialDays)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, tokens, db, resolver,
		authService, rosterService, billingService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		broker: conn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		_ = a.broker.Close()
		return err
	}
}
