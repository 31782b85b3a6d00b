package checkout

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/internal/trail"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox/payloads"
)

// phaseChange carries the columns written together with a phase move.
type phaseChange struct {
	FailureKind      *string
	FailureMessage   *string
	PaymentSessionID *string
	CheckoutURL      *string
	CompletedAt      *time.Time
	TotalPriceCents  *int64
	TotalEnergy      *int64
}

func (c phaseChange) columns() map[string]any {
	cols := map[string]any{}
	if c.FailureKind != nil {
		cols["failure_kind"] = *c.FailureKind
	}
	if c.FailureMessage != nil {
		cols["failure_message"] = *c.FailureMessage
	}
	if c.PaymentSessionID != nil {
		cols["payment_session_id"] = *c.PaymentSessionID
	}
	if c.CheckoutURL != nil {
		cols["checkout_url"] = *c.CheckoutURL
	}
	if c.CompletedAt != nil {
		cols["completed_at"] = *c.CompletedAt
	}
	if c.TotalPriceCents != nil {
		cols["total_price_cents"] = *c.TotalPriceCents
	}
	if c.TotalEnergy != nil {
		cols["total_energy"] = *c.TotalEnergy
	}
	return cols
}

func (c phaseChange) apply(order *models.Order, to enums.CheckoutPhase, at time.Time) {
	order.Phase = to
	order.Status = to.OrderStatus()
	order.PhaseChangedAt = at
	if c.FailureKind != nil {
		order.FailureKind = c.FailureKind
	}
	if c.FailureMessage != nil {
		order.FailureMessage = c.FailureMessage
	}
	if c.PaymentSessionID != nil {
		order.PaymentSessionID = c.PaymentSessionID
	}
	if c.CheckoutURL != nil {
		order.CheckoutURL = c.CheckoutURL
	}
	if c.CompletedAt != nil {
		order.CompletedAt = c.CompletedAt
	}
	if c.TotalPriceCents != nil {
		order.TotalPriceCents = *c.TotalPriceCents
	}
	if c.TotalEnergy != nil {
		order.TotalEnergy = *c.TotalEnergy
	}
}

func (s *service) advance(ctx context.Context, order *models.Order, to enums.CheckoutPhase, change phaseChange) (bool, error) {
	return s.advanceWith(ctx, order, to, change, nil)
}

// advanceWith moves order to `to` and, in the same transaction, runs extra and records
// the trail entry, outbox event and closing narrative. It reports false without side
// effects when the order already left every phase that may reach `to`. order is only
// updated in memory after the commit.
func (s *service) advanceWith(ctx context.Context, order *models.Order, to enums.CheckoutPhase, change phaseChange, extra func(tx *gorm.DB) error) (bool, error) {
	from := order.Phase
	at := s.now()
	next := *order
	moved := false

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Transition(ctx, order.ID, predecessors[to], to, at, change.columns())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order")
		}
		if !ok {
			return nil
		}
		moved = true
		change.apply(&next, to, at)
		if extra != nil {
			if err := extra(tx); err != nil {
				if pkgerrors.As(err) != nil {
					return err
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transition writes")
			}
		}
		return s.recordTransition(ctx, tx, &next, from)
	})
	if err != nil {
		return false, err
	}
	if !moved {
		return false, nil
	}
	*order = next
	s.observe(ctx, order, from)
	return true, nil
}

// recordTransition writes everything that accompanies order entering its current phase.
func (s *service) recordTransition(ctx context.Context, tx *gorm.DB, order *models.Order, from enums.CheckoutPhase) error {
	failureKind := ""
	if order.FailureKind != nil {
		failureKind = *order.FailureKind
	}
	if _, err := s.trail.Record(ctx, tx, order.CartID, trail.Event{
		Kind:            enums.TrailKindCheckoutTransition,
		Phase:           order.Phase,
		TransactionCode: order.TransactionCode,
		FailureKind:     failureKind,
	}); err != nil {
		return err
	}

	if order.Phase.IsTerminal() {
		narrative := s.narrator.Narrate(*order)
		if err := s.repo.WithTx(tx).SetNarrative(ctx, order.ID, narrative); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store transaction narrative")
		}
		order.TransactionNarrative = narrative
		if err := s.recordOracle(ctx, tx, order); err != nil {
			return err
		}
	}

	eventType, ok := outboxEvents[order.Phase]
	if !ok {
		return nil
	}
	failureMessage := ""
	if order.FailureMessage != nil {
		failureMessage = *order.FailureMessage
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{OwnerID: order.OwnerID, Source: "checkout"},
		OccurredAt:    order.PhaseChangedAt,
		Data: payloads.OrderTransitionEvent{
			OrderID:         order.ID,
			OwnerID:         order.OwnerID,
			CartID:          order.CartID,
			TransactionCode: order.TransactionCode,
			Phase:           order.Phase,
			Status:          order.Status,
			TotalPriceCents: order.TotalPriceCents,
			TotalEnergy:     order.TotalEnergy,
			Currency:        order.Currency,
			FailureKind:     failureKind,
			FailureMessage:  failureMessage,
		},
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
	}
	return nil
}

func (s *service) recordOracle(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	entry := oracle.Entry{
		Type:     enums.OracleLogTransactionRitual,
		Severity: enums.OracleSeverityInfo,
		Message:  order.TransactionNarrative,
		OwnerID:  &order.OwnerID,
		OrderID:  &order.ID,
	}
	if order.Phase == enums.CheckoutPhaseFailed {
		entry.Severity = enums.OracleSeverityWarning
		if order.FailureKind != nil {
			switch pkgerrors.Code(*order.FailureKind) {
			case pkgerrors.CodeInsufficientEnergy:
				entry.Type = enums.OracleLogEnergyAnomaly
			case pkgerrors.CodeStockChanged:
				entry.Type = enums.OracleLogStockFluctuation
			}
		}
	}
	return s.oracle.Record(ctx, tx, entry)
}

// fail moves order to failed with kind and returns the matching domain error. Failing
// happens at most once; a lost race still reports the original cause.
func (s *service) fail(ctx context.Context, order *models.Order, kind pkgerrors.Code, message string, details map[string]any) error {
	kindValue := string(kind)
	moved, err := s.advance(ctx, order, enums.CheckoutPhaseFailed, phaseChange{
		FailureKind:    &kindValue,
		FailureMessage: &message,
	})
	if err != nil {
		s.logg.Error(ctx, "checkout.fail_transition", err)
		return err
	}
	if moved {
		s.metrics.ObserveFailure(kindValue)
	}

	out := map[string]any{
		"order_id":         order.ID.String(),
		"transaction_code": order.TransactionCode,
		"phase":            order.Phase,
	}
	for k, v := range details {
		out[k] = v
	}
	return pkgerrors.New(kind, message).WithDetails(out)
}

func (s *service) observe(ctx context.Context, order *models.Order, from enums.CheckoutPhase) {
	s.metrics.ObserveTransition(string(from), string(order.Phase))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":         order.ID.String(),
		"transaction_code": order.TransactionCode,
		"from":             from,
		"to":               order.Phase,
	})
	if order.Phase == enums.CheckoutPhaseFailed {
		s.logg.Warn(logCtx, "checkout.failed")
		return
	}
	s.logg.Info(logCtx, "checkout.transition")
}
