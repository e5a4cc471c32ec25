package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) ClaimOutboxEvents(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}

func (m *MockOutbox) MarkOutboxPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutbox) MarkOutboxFailed(ctx context.Context, id int64, reason string, retryAt time.Time, terminal bool) error {
	return m.Called(ctx, id, reason, retryAt, terminal).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	return m.Called(ctx, exchange, routingKey, body).Error(0)
}

type MockExpirer struct {
	mock.Mock
}

func (m *MockExpirer) ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error) {
	args := m.Called(ctx, grace)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var now = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

func newTestService(o *MockOutbox, p *MockPublisher, e *MockExpirer) *Service {
	s := NewService(o, p, e, Options{
		BatchSize:      10,
		MaxAttempts:    3,
		RetryBaseDelay: 30 * time.Second,
		Grace:          72 * time.Hour,
	}, newNoopLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestDispatchOutbox(t *testing.T) {
	events := []models.OutboxEvent{
		{ID: 1, Exchange: models.ExchangeMarketplace, RoutingKey: models.RoutingReviewDecided, Payload: []byte(`{"a":1}`), Attempts: 1},
		{ID: 2, Exchange: models.ExchangeMarketplace, RoutingKey: models.RoutingIdentitySubmitted, Payload: []byte(`{"b":2}`), Attempts: 2},
		{ID: 3, Exchange: models.ExchangeMarketplace, RoutingKey: models.RoutingEntitlementGranted, Payload: []byte(`{"c":3}`), Attempts: 3},
	}

	o, p := new(MockOutbox), new(MockPublisher)
	o.On("ClaimOutboxEvents", mock.Anything, 10, claimLease).Return(events, nil).Once()

	p.On("Publish", mock.Anything, "marketplace", models.RoutingReviewDecided, []byte(`{"a":1}`)).Return(nil).Once()
	o.On("MarkOutboxPublished", mock.Anything, int64(1)).Return(nil).Once()

	p.On("Publish", mock.Anything, "marketplace", models.RoutingIdentitySubmitted, mock.Anything).Return(errors.New("channel closed")).Once()
	o.On("MarkOutboxFailed", mock.Anything, int64(2), "channel closed", now.Add(time.Minute), false).Return(nil).Once()

	p.On("Publish", mock.Anything, "marketplace", models.RoutingEntitlementGranted, mock.Anything).Return(errors.New("channel closed")).Once()
	o.On("MarkOutboxFailed", mock.Anything, int64(3), "channel closed", now.Add(2*time.Minute), true).Return(nil).Once()

	sent := newTestService(o, p, new(MockExpirer)).DispatchOutbox(context.Background())
	assert.Equal(t, 1, sent)
	o.AssertExpectations(t)
	p.AssertExpectations(t)
}

func TestDispatchOutbox_ClaimError(t *testing.T) {
	o, p := new(MockOutbox), new(MockPublisher)
	o.On("ClaimOutboxEvents", mock.Anything, 10, claimLease).Return(nil, errors.New("db down")).Once()

	assert.Equal(t, 0, newTestService(o, p, new(MockExpirer)).DispatchOutbox(context.Background()))
	p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBackoff_Capped(t *testing.T) {
	s := newTestService(new(MockOutbox), new(MockPublisher), new(MockExpirer))
	assert.Equal(t, 30*time.Second, s.backoff(1))
	assert.Equal(t, 4*time.Minute, s.backoff(4))
	assert.Equal(t, time.Hour, s.backoff(50))
}

func TestExpireSubscriptions(t *testing.T) {
	e := new(MockExpirer)
	e.On("ExpireLapsed", mock.Anything, 72*time.Hour).Return(int64(2), nil).Once()
	e.On("ExpireLapsed", mock.Anything, 72*time.Hour).Return(int64(0), errors.New("db down")).Once()

	s := newTestService(new(MockOutbox), new(MockPublisher), e)
	s.ExpireSubscriptions(context.Background())
	s.ExpireSubscriptions(context.Background())
	e.AssertExpectations(t)
}
