package checkout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

const sweepBatchSize = 100

// SweepResult counts what one sweep did.
type SweepResult struct {
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
	Completed int `json:"completed"`
}

// SweepStale bounds every waiting phase: stalled pre-payment orders and lapsed payment
// windows fail with TIMEOUT, and orders stuck in synchronizing are driven to completion.
func (s *service) SweepStale(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult
	var errs error

	stalled, err := s.repo.ListStale(ctx, prePaymentPhases, now.Add(-s.cfg.PortalTTL), sweepBatchSize)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stalled orders")
	}
	for i := range stalled {
		order := &stalled[i]
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		failErr := s.fail(orderCtx, order, pkgerrors.CodeTimeout,
			fmt.Sprintf("checkout stalled in %s", order.Phase), nil)
		if pkgerrors.CodeOf(failErr) != pkgerrors.CodeTimeout {
			errs = multierr.Append(errs, fmt.Errorf("fail order %s: %w", order.ID, failErr))
			continue
		}
		if order.Phase == enums.CheckoutPhaseFailed {
			result.Failed++
		}
	}

	lapsed, err := s.repo.ListStale(ctx, []enums.CheckoutPhase{enums.CheckoutPhaseAwaitingPayment}, now.Add(-s.cfg.PaymentTTL), sweepBatchSize)
	if err != nil {
		return result, multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lapsed payments"))
	}
	for i := range lapsed {
		order := &lapsed[i]
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		failErr := s.fail(orderCtx, order, pkgerrors.CodeTimeout, "payment window elapsed", nil)
		if pkgerrors.CodeOf(failErr) != pkgerrors.CodeTimeout {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, failErr))
			continue
		}
		if order.Phase == enums.CheckoutPhaseFailed {
			result.Expired++
			s.expireSession(orderCtx, order)
		}
	}

	stuck, err := s.repo.ListStale(ctx, []enums.CheckoutPhase{enums.CheckoutPhaseSynchronizing}, now.Add(-s.cfg.SynchronizingTTL), sweepBatchSize)
	if err != nil {
		return result, multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list synchronizing orders"))
	}
	for i := range stuck {
		order := &stuck[i]
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		finished, err := s.finishSynchronizing(orderCtx, order)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("resume order %s: %w", order.ID, err))
			continue
		}
		if finished.Phase == enums.CheckoutPhaseCompleted {
			result.Completed++
		}
	}

	return result, errs
}
