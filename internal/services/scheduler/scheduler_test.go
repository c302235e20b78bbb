package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qalopay/school-payments/internal/lib/rabbitmq"
	"github.com/qalopay/school-payments/internal/models"
	"github.com/qalopay/school-payments/internal/services/scheduler"
)

type mockRepo struct {
	FindFunc func(ctx context.Context) ([]*models.TrialNotice, error)
}

func (m *mockRepo) FindSchoolsWithTrialEndingToday(ctx context.Context) ([]*models.TrialNotice, error) {
	return m.FindFunc(ctx)
}

type mockPublisher struct {
	PublishFunc func(exchange, routingkey string, message any) error
	published   []any
}

func (m *mockPublisher) Publish(exchange, routingkey string, message any) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(exchange, routingkey, message); err != nil {
			return err
		}
	}
	m.published = append(m.published, message)
	return nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestSweep(t *testing.T) {
	t.Run("publishes one notice per ending trial", func(t *testing.T) {
		notices := []*models.TrialNotice{
			{SchoolID: "school-1", Email: "a@x.com", TrialEnd: time.Now()},
			{SchoolID: "school-2", Email: "b@x.com", TrialEnd: time.Now()},
		}
		repo := &mockRepo{
			FindFunc: func(_ context.Context) ([]*models.TrialNotice, error) {
				return notices, nil
			},
		}
		publisher := &mockPublisher{
			PublishFunc: func(exchange, routingkey string, _ any) error {
				assert.Equal(t, rabbitmq.Exchange, exchange)
				assert.Equal(t, rabbitmq.KeyTrialExpiry, routingkey)
				return nil
			},
		}

		s := scheduler.New(repo, publisher, makeLogger())
		s.Sweep(context.Background())

		assert.Len(t, publisher.published, 2)
	})

	t.Run("storage failure publishes nothing", func(t *testing.T) {
		repo := &mockRepo{
			FindFunc: func(_ context.Context) ([]*models.TrialNotice, error) {
				return nil, errors.New("connection refused")
			},
		}
		publisher := &mockPublisher{}

		s := scheduler.New(repo, publisher, makeLogger())
		s.Sweep(context.Background())

		assert.Empty(t, publisher.published)
	})

	t.Run("one failed publish does not stop the rest", func(t *testing.T) {
		repo := &mockRepo{
			FindFunc: func(_ context.Context) ([]*models.TrialNotice, error) {
				return []*models.TrialNotice{
					{SchoolID: "school-1"},
					{SchoolID: "school-2"},
				}, nil
			},
		}
		calls := 0
		publisher := &mockPublisher{
			PublishFunc: func(_, _ string, _ any) error {
				calls++
				if calls == 1 {
					return errors.New("broker hiccup")
				}
				return nil
			},
		}

		s := scheduler.New(repo, publisher, makeLogger())
		s.Sweep(context.Background())

		assert.Equal(t, 2, calls)
		assert.Len(t, publisher.published, 1)
	})
}
