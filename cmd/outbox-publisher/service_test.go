package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox/registry"
)

func orderEvent(t *testing.T, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelopePayload(t, uuid.NewString()),
		AttemptCount:  attempts,
	}
}

func resolvedOrderEvent() *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "dmz-order-events",
			AggregateType: enums.AggregateOrder,
		},
		Payload: &payloads.OrderTransitionEvent{},
	}
}

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			orderEvent(t, enums.EventOrderInitiated, 0),
			orderEvent(t, enums.EventOrderCompleted, 0),
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: resolvedOrderEvent()}, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("expected first row marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("expected second row published, got %v", repo.published)
	}
	if len(repo.terminal) != 0 {
		t.Fatalf("transient failure should not park the row")
	}
}

func TestServiceProcessBatchSetsMessageAttributes(t *testing.T) {
	event := orderEvent(t, enums.EventOrderAwaitingPayment, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: resolvedOrderEvent()}, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.messages))
	}
	attrs := pub.messages[0].Attributes
	if attrs["event_type"] != string(enums.EventOrderAwaitingPayment) {
		t.Fatalf("unexpected event_type %q", attrs["event_type"])
	}
	if attrs["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id %q", attrs["aggregate_id"])
	}
	if attrs["topic"] != "dmz-order-events" {
		t.Fatalf("unexpected topic %q", attrs["topic"])
	}
}

func TestServiceProcessBatchParksNonRetryable(t *testing.T) {
	event := orderEvent(t, enums.EventOrderFailed, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	reg := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	service := newTestService(t, repo, &fakePublisher{}, reg, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("expected row parked, got %v", repo.terminal)
	}
	if repo.terminalAttempts != 5 {
		t.Fatalf("expected terminal attempts to equal max attempts, got %d", repo.terminalAttempts)
	}
}

func TestServiceProcessBatchParksOnMaxAttempts(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCancelled, 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{err: errors.New("transient")}}}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: resolvedOrderEvent()}, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.terminal) != 1 {
		t.Fatalf("expected row parked after max attempts, got %d", len(repo.terminal))
	}
	if len(repo.failed) != 0 {
		t.Fatalf("parked row should not also be marked failed")
	}
}

func TestServiceProcessBatchReportsIdle(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, nil)
	processed, err := service.processBatch(context.Background())
	if err != nil || processed {
		t.Fatalf("expected idle batch, got processed=%v err=%v", processed, err)
	}
}

func TestEnsureReadinessCombinesFailures(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, nil)
	service.db = &fakeDB{pingErr: errors.New("db down")}
	service.pubsub = &fakePubSubClient{pingErr: errors.New("topic missing")}

	err := service.ensureReadiness(context.Background())
	if err == nil {
		t.Fatal("expected readiness error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "database ping failed") || !strings.Contains(msg, "pubsub ping failed") {
		t.Fatalf("expected both failures reported, got %q", msg)
	}
}

func TestNextBackoffCaps(t *testing.T) {
	if got := nextBackoff(0, time.Second, 10*time.Second); got != 2*time.Second {
		t.Fatalf("expected 2s, got %s", got)
	}
	if got := nextBackoff(8*time.Second, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected cap at 10s, got %s", got)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, reg registryResolver, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	service, err := NewService(ServiceParams{
		Config:           &config.Config{Outbox: outboxCfg},
		Logger:           logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:               &fakeDB{},
		PubSub:           &fakePubSubClient{},
		Repository:       repo,
		Registry:         reg,
		PublisherFactory: func(_ string) publisher { return pub },
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func mustEnvelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

type fakeRepo struct {
	events           []models.OutboxEvent
	published        []uuid.UUID
	failed           []uuid.UUID
	terminal         []uuid.UUID
	terminalAttempts int
}

func (f *fakeRepo) FetchUnpublishedForPublish(_ *gorm.DB, _, _ int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	f.terminalAttempts = terminalAttempts
	return nil
}

type fakeDB struct {
	pingErr error
}

func (f *fakeDB) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct {
	pingErr error
}

func (f *fakePubSubClient) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakePubSubClient) Publisher(string) *gcppubsub.Publisher {
	return nil
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "", f.err
}

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Descriptor.AggregateType = event.AggregateType
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, f.err
}
