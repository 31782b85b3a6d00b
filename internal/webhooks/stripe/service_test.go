package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

func TestService_CompletedSessionConfirmsPayment(t *testing.T) {
	checkout := &stubCheckout{}
	service := newTestService(t, checkout)

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, stripe.CheckoutSession{
		ID:            "cs_paid",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{"idempotency_token": "tok-1"},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(checkout.confirmed) != 1 || checkout.confirmed[0] != "tok-1" {
		t.Fatalf("expected confirm for tok-1, got %v", checkout.confirmed)
	}
	if len(checkout.expired) != 0 {
		t.Fatalf("expected no expiry, got %v", checkout.expired)
	}
}

func TestService_UnpaidCompletionWaitsForAsyncPayment(t *testing.T) {
	checkout := &stubCheckout{}
	service := newTestService(t, checkout)

	unpaid := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, stripe.CheckoutSession{
		ID:            "cs_async",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		Metadata:      map[string]string{"idempotency_token": "tok-async"},
	})
	if err := service.HandleEvent(context.Background(), unpaid); err != nil {
		t.Fatalf("handle unpaid event: %v", err)
	}
	if len(checkout.confirmed) != 0 {
		t.Fatalf("unpaid session must not confirm, got %v", checkout.confirmed)
	}

	settled := sessionEvent(t, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded, stripe.CheckoutSession{
		ID:            "cs_async",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{"idempotency_token": "tok-async"},
	})
	if err := service.HandleEvent(context.Background(), settled); err != nil {
		t.Fatalf("handle async event: %v", err)
	}
	if len(checkout.confirmed) != 1 {
		t.Fatalf("expected confirm after async success, got %v", checkout.confirmed)
	}
}

func TestService_ExpiredSessionExpiresPayment(t *testing.T) {
	checkout := &stubCheckout{}
	service := newTestService(t, checkout)

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionExpired, stripe.CheckoutSession{
		ID:       "cs_expired",
		Metadata: map[string]string{"idempotency_token": "tok-late"},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(checkout.expired) != 1 || checkout.expired[0] != "tok-late" {
		t.Fatalf("expected expiry for tok-late, got %v", checkout.expired)
	}
}

func TestService_IgnoresOtherEvents(t *testing.T) {
	checkout := &stubCheckout{}
	service := newTestService(t, checkout)

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeCustomerSubscriptionCreated,
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_1"}`)},
	}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(checkout.confirmed)+len(checkout.expired) != 0 {
		t.Fatalf("expected no checkout calls")
	}
}

func TestService_MissingTokenIsValidationError(t *testing.T) {
	service := newTestService(t, &stubCheckout{})

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, stripe.CheckoutSession{
		ID:            "cs_anon",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	})
	err := service.HandleEvent(context.Background(), event)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_PropagatesCheckoutErrors(t *testing.T) {
	checkout := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeConflict, "retry")}
	service := newTestService(t, checkout)

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, stripe.CheckoutSession{
		ID:            "cs_race",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{"idempotency_token": "tok-race"},
	})
	err := service.HandleEvent(context.Background(), event)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestIdempotencyGuard_MarksAndReleases(t *testing.T) {
	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil || seen {
		t.Fatalf("first claim: seen=%v err=%v", seen, err)
	}
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil || !seen {
		t.Fatalf("second claim: seen=%v err=%v", seen, err)
	}
	if err := guard.Delete(ctx, "evt_1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil || seen {
		t.Fatalf("claim after release: seen=%v err=%v", seen, err)
	}
	if _, err := guard.CheckAndMark(ctx, ""); err == nil {
		t.Fatalf("expected error for empty event id")
	}
}

func TestIdempotencyGuard_SurfacesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	guard, err := NewIdempotencyGuard(store, time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	if _, err := guard.CheckAndMark(context.Background(), "evt_2"); err == nil {
		t.Fatalf("expected store error")
	}
}

func newTestService(t *testing.T, checkout *stubCheckout) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Checkout: checkout,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func sessionEvent(t *testing.T, eventType stripe.EventType, session stripe.CheckoutSession) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

type stubCheckout struct {
	confirmed []string
	expired   []string
	err       error
}

func (s *stubCheckout) ConfirmPayment(_ context.Context, token string) (*models.Order, error) {
	s.confirmed = append(s.confirmed, token)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: uuid.New(), Phase: enums.CheckoutPhaseCompleted}, nil
}

func (s *stubCheckout) ExpirePayment(_ context.Context, token string) (*models.Order, error) {
	s.expired = append(s.expired, token)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: uuid.New(), Phase: enums.CheckoutPhaseFailed}, nil
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("dmz:idempotency:%s:%s", scope, id)
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
