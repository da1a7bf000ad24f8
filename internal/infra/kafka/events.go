package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
	"github.com/top-magar/indigo-sub018/internal/infra/config"
)

const (
	schemaVersion      = "1.0"
	tenantCreatedTopic = "platform.tenant.created"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	appCfg   config.AppSettings
	logger   *zap.Logger
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	TenantID  string            `json:"tenant_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// PublishTenantCreated emits a tenant.created event to the bus.
func (p *EventPublisher) PublishTenantCreated(ctx context.Context, event domain.TenantCreatedEvent) error {
	payload := map[string]any{
		"tenant_id":  event.TenantID,
		"slug":       event.Slug,
		"name":       event.Name,
		"created_at": event.CreatedAt,
	}

	return p.publish(ctx, tenantCreatedTopic, event.TenantID.String(), event.CreatedAt, payload)
}

func (p *EventPublisher) publish(ctx context.Context, eventType, tenantID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := map[string]string{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		TenantID:  tenantID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(tenantID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.EventPublisher = (*EventPublisher)(nil)
