// Package scheduler periodically finds schools whose trial window ends
// today and publishes a notice for each to the broker.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/qalopay/school-payments/internal/lib/rabbitmq"
	"github.com/qalopay/school-payments/internal/lib/sl"
	"github.com/qalopay/school-payments/internal/models"
)

// Repository finds the schools due for a trial-expiry notice.
type Repository interface {
	FindSchoolsWithTrialEndingToday(ctx context.Context) ([]*models.TrialNotice, error)
}

// Publisher sends notices to the broker.
type Publisher interface {
	Publish(exchange, routingkey string, message any) error
}

// Scheduler runs the trial-expiry sweep.
type Scheduler struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New creates the scheduler.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Run sweeps at the given interval until the context is cancelled. The
// first sweep happens immediately so a restart does not skip a day.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep publishes one trial-expiry notice per school whose trial ends
// today. A publish failure skips that school; the next sweep retries.
func (s *Scheduler) Sweep(ctx context.Context) {
	s.log.Info("starting sweep for trials ending today")

	notices, err := s.repo.FindSchoolsWithTrialEndingToday(ctx)
	if err != nil {
		s.log.Error("failed to find schools with ending trials", sl.Err(err))
		return
	}

	for _, notice := range notices {
		if err = s.publisher.Publish(rabbitmq.Exchange, rabbitmq.KeyTrialExpiry, notice); err != nil {
			s.log.Error("failed to publish trial-expiry notice", sl.Err(err),
				slog.String("school_id", notice.SchoolID))
		}
	}

	s.log.Info("sweep finished", slog.Int("notices", len(notices)))
}
