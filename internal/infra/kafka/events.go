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

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
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
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes account.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID             string         `json:"user_id"`
		AccountID          string         `json:"account_id"`
		Username           string         `json:"username"`
		Email              string         `json:"email"`
		Locale             *string        `json:"locale,omitempty"`
		RegisteredAt       time.Time      `json:"registered_at"`
		RegistrationMethod string         `json:"registration_method"`
		Metadata           map[string]any `json:"metadata,omitempty"`
	}{
		UserID:             event.UserID,
		AccountID:          event.AccountID,
		Username:           event.Username,
		Email:              event.Email,
		Locale:             event.Locale,
		RegisteredAt:       event.RegisteredAt.UTC(),
		RegistrationMethod: event.RegistrationMethod,
		Metadata:           event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserConfirmed publishes account.user.confirmed events.
func (p *EventPublisher) PublishUserConfirmed(ctx context.Context, event domain.UserConfirmedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		ConfirmedAt time.Time      `json:"confirmed_at"`
		Method      string         `json:"method"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		ConfirmedAt: event.ConfirmedAt.UTC(),
		Method:      event.Method,
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.user.confirmed", event.UserID, event.ConfirmedAt, payload)
}

// PublishUserSignedIn publishes account.user.signed_in events.
func (p *EventPublisher) PublishUserSignedIn(ctx context.Context, event domain.UserSignedInEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		SignInCount int            `json:"sign_in_count"`
		IPAddress   *string        `json:"ip_address,omitempty"`
		Method      string         `json:"method"`
		SignedInAt  time.Time      `json:"signed_in_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		SignInCount: event.SignInCount,
		IPAddress:   event.IPAddress,
		Method:      event.Method,
		SignedInAt:  event.SignedInAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.user.signed_in", event.UserID, event.SignedInAt, payload)
}

// PublishOAuthLinked publishes account.oauth.linked events.
func (p *EventPublisher) PublishOAuthLinked(ctx context.Context, event domain.OAuthLinkedEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		Provider string         `json:"provider"`
		UID      string         `json:"uid"`
		NewUser  bool           `json:"new_user"`
		LinkedAt time.Time      `json:"linked_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		Provider: event.Provider,
		UID:      event.UID,
		NewUser:  event.NewUser,
		LinkedAt: event.LinkedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.oauth.linked", event.UserID, event.LinkedAt, payload)
}

// PublishTwoFactorEnabled publishes account.two_factor.enabled events.
func (p *EventPublisher) PublishTwoFactorEnabled(ctx context.Context, event domain.TwoFactorEnabledEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		BackupCodes int            `json:"backup_codes"`
		EnabledAt   time.Time      `json:"enabled_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		BackupCodes: event.BackupCodes,
		EnabledAt:   event.EnabledAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.two_factor.enabled", event.UserID, event.EnabledAt, payload)
}

// PublishTwoFactorDisabled publishes account.two_factor.disabled events.
func (p *EventPublisher) PublishTwoFactorDisabled(ctx context.Context, event domain.TwoFactorDisabledEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		DisabledAt time.Time      `json:"disabled_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		DisabledAt: event.DisabledAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.two_factor.disabled", event.UserID, event.DisabledAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
