package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/karimfarhat/suqly-backend/pkg/config"
	"github.com/karimfarhat/suqly-backend/pkg/db/models"
	"github.com/karimfarhat/suqly-backend/pkg/enums"
	"github.com/karimfarhat/suqly-backend/pkg/logger"
)

type fakeOutboxRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    map[uuid.UUID]error
}

func (f *fakeOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.events) {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeOutboxRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	if f.failed == nil {
		f.failed = map[uuid.UUID]error{}
	}
	f.failed[id] = err
	return nil
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	errFor   map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if err, ok := f.errFor[msg.Attributes["aggregate_id"]]; ok {
		return fakeResult{err: err}
	}
	return fakeResult{}
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type failPinger struct{ err error }

func (p failPinger) Ping(context.Context) error { return p.err }

func testEvent(t *testing.T, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"hello": "world"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateQuotation,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func newTestService(t *testing.T, repo *fakeOutboxRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 5
	cfg.Outbox.PollIntervalMS = 1

	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test"}),
		DB:         okPinger{},
		PubSub:     okPinger{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	if err == nil {
		t.Fatal("expected error for empty params")
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := testEvent(t, enums.EventQuotationCreated)
	second := testEvent(t, enums.EventQuotationResponded)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected processed=true")
	}
	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 published messages, got %d", len(pub.messages))
	}
	if got := pub.messages[0].Attributes["event_type"]; got != string(first.EventType) {
		t.Fatalf("unexpected event_type attribute %q", got)
	}
	if string(pub.messages[0].Data) != string(first.Payload) {
		t.Fatal("payload was not forwarded verbatim")
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected 2 events marked published, got %d", len(repo.published))
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no failures, got %d", len(repo.failed))
	}
}

func TestProcessBatchRecordsFailureAndContinues(t *testing.T) {
	bad := testEvent(t, enums.EventQuotationCreated)
	good := testEvent(t, enums.EventQuotationConverted)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{bad, good}}
	pub := &fakePublisher{errFor: map[string]error{
		bad.AggregateID.String(): errors.New("topic unavailable"),
	}}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected processed=true")
	}
	if len(repo.failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(repo.failed))
	}
	if _, ok := repo.failed[bad.ID]; !ok {
		t.Fatal("failed event was not the one that errored")
	}
	if len(repo.published) != 1 || repo.published[0] != good.ID {
		t.Fatal("remaining event should still publish")
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if processed {
		t.Fatal("expected processed=false for empty queue")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunFailsReadinessCheck(t *testing.T) {
	repo := &fakeOutboxRepo{}
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 1
	cfg.Outbox.MaxAttempts = 1
	cfg.Outbox.PollIntervalMS = 1

	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test"}),
		DB:         failPinger{err: errors.New("connection refused")},
		PubSub:     okPinger{},
		Repository: repo,
		Publisher:  &fakePublisher{},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected readiness error")
	}
}
