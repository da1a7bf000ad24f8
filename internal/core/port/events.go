package port

import (
	"context"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
)

// EventPublisher publishes tenant lifecycle events to the message bus.
type EventPublisher interface {
	PublishTenantCreated(ctx context.Context, event domain.TenantCreatedEvent) error
}
