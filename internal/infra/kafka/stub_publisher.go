package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, typically in development.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishTenantCreated logs platform.tenant.created events.
func (p *StubPublisher) PublishTenantCreated(_ context.Context, event domain.TenantCreatedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", tenantCreatedTopic),
		zap.String("tenant_id", event.TenantID.String()),
		zap.String("slug", event.Slug),
		zap.Time("created_at", event.CreatedAt),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
