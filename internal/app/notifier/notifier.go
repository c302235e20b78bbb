// Package notifier assembles the background worker: the trial-expiry
// sweep publishing to the broker and the mail consumers draining it.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/qalopay/school-payments/internal/config"
	"github.com/qalopay/school-payments/internal/lib/rabbitmq"
	"github.com/qalopay/school-payments/internal/lib/smtp"
	schedulerservice "github.com/qalopay/school-payments/internal/services/scheduler"
	senderservice "github.com/qalopay/school-payments/internal/services/sender"
	"github.com/qalopay/school-payments/internal/storage/repository"
)

// SweepInterval is how often the trial-expiry sweep reruns.
const SweepInterval = 24 * time.Hour

type App struct {
	scheduler *schedulerservice.Scheduler
	sender    *senderservice.Sender
	conn      *amqp.Connection
	ch        *amqp.Channel
	logger    *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AMQPConnection, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	publisher := &rabbitmq.Publisher{Ch: ch}
	transport := smtp.NewTransport(cfg, logger)

	return &App{
		scheduler: schedulerservice.New(db, publisher, logger),
		sender:    senderservice.New(transport, logger),
		conn:      conn,
		ch:        ch,
		logger:    logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumeMessages(ctx, a.ch, "notification.trial-expiry", a.sender.HandleTrialExpiry); err != nil {
		a.logger.Error("failed to start trial-expiry consumer", slog.Any("err", err))
		return err
	}
	if err := rabbitmq.ConsumeMessages(ctx, a.ch, "notification.welcome", a.sender.HandleWelcome); err != nil {
		a.logger.Error("failed to start welcome consumer", slog.Any("err", err))
		return err
	}

	go a.scheduler.Run(ctx, SweepInterval)

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	closeResources(a.ch, a.conn, a.logger)
	return nil
}
