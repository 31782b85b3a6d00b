package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

type checkoutSweeper interface {
	SweepStale(ctx context.Context, now time.Time) (checkout.SweepResult, error)
}

type CheckoutSweeperJobParams struct {
	Logger   *logger.Logger
	Checkout checkoutSweeper
}

// NewCheckoutSweeperJob bounds every waiting checkout phase on each cycle.
func NewCheckoutSweeperJob(params CheckoutSweeperJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	return &checkoutSweeperJob{
		logg:     params.Logger,
		checkout: params.Checkout,
		now:      time.Now,
	}, nil
}

type checkoutSweeperJob struct {
	logg     *logger.Logger
	checkout checkoutSweeper
	now      func() time.Time
}

func (j *checkoutSweeperJob) Name() string { return "checkout-sweeper" }

func (j *checkoutSweeperJob) Run(ctx context.Context) error {
	result, err := j.checkout.SweepStale(ctx, j.now().UTC())
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"failed":    result.Failed,
		"expired":   result.Expired,
		"completed": result.Completed,
	})
	if err != nil {
		return fmt.Errorf("sweep stale checkouts: %w", err)
	}
	if result != (checkout.SweepResult{}) {
		j.logg.Info(logCtx, "checkout.sweep_applied")
	}
	return nil
}
