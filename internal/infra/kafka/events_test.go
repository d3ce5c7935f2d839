package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "account",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "accounts-service",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishUserRegisteredEnvelope(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	locale := "en"
	registeredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	event := domain.UserRegisteredEvent{
		EventID:            "event-123",
		UserID:             "user-456",
		AccountID:          "account-789",
		Username:           "alice",
		Email:              "alice@example.com",
		Locale:             &locale,
		RegisteredAt:       registeredAt,
		RegistrationMethod: "email",
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "account.user.registered" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message value: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope["event_id"] != "event-123" {
			t.Fatalf("unexpected event_id: %v", envelope["event_id"])
		}
		if envelope["event_type"] != "account.user.registered" {
			t.Fatalf("unexpected event_type: %v", envelope["event_type"])
		}
		if envelope["version"] != "1.0" {
			t.Fatalf("unexpected version: %v", envelope["version"])
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing: %v", envelope)
		}
		if payload["username"] != "alice" {
			t.Fatalf("unexpected username: %v", payload["username"])
		}
		if payload["locale"] != "en" {
			t.Fatalf("unexpected locale: %v", payload["locale"])
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok || metadata["service"] != "accounts-service" {
			t.Fatalf("unexpected metadata: %v", envelope["metadata"])
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishTwoFactorDisabledTopic(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.TwoFactorDisabledEvent{
		EventID:    "event-321",
		UserID:     "user-654",
		DisabledAt: time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
	}

	if err := publisher.PublishTwoFactorDisabled(context.Background(), event); err != nil {
		t.Fatalf("PublishTwoFactorDisabled returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "account.two_factor.disabled" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	// Unbuffered input channel forces publish to block until ctx fires.
	asyncProducer := newFakeAsyncProducer()
	asyncProducer.input = make(chan *sarama.ProducerMessage)
	publisher := newTestPublisher(t, asyncProducer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishUserConfirmed(ctx, domain.UserConfirmedEvent{
		EventID:     "event-999",
		UserID:      "user-999",
		ConfirmedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected context error")
	}
}
