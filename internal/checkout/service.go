package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/internal/cart"
	"github.com/angelmondragon/dimensionalz-backend/internal/catalog"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/internal/payments"
	"github.com/angelmondragon/dimensionalz-backend/internal/trail"
	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox"
	"github.com/angelmondragon/dimensionalz-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/dimensionalz-backend/pkg/pagination"
)

const (
	maxTokenLength    = 128
	maxSettleAttempts = 3
	expireCallTimeout = 5 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	GetCart(ctx context.Context, actor identity.Actor) (*cart.View, error)
	SettlePurchasedTx(ctx context.Context, tx *gorm.DB, actor identity.Actor, purchased map[uuid.UUID]int) error
}

type productLoader interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
}

type trailRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, event trail.Event) (*models.TrailEntry, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type oracleRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry oracle.Entry) error
}

type checkoutMetrics interface {
	ObserveTransition(from, to string)
	ObserveFailure(kind string)
	ObserveSession(outcome string, d time.Duration)
}

// Service drives an order through the checkout phases. Every phase change is a
// compare-and-set on the order row, so concurrent callers can never move an order twice.
type Service interface {
	Review(ctx context.Context, actor identity.Actor) (*Review, error)
	Initiate(ctx context.Context, actor identity.Actor, token string) (*models.Order, error)
	CreateSession(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error)
	ConfirmPayment(ctx context.Context, token string) (*models.Order, error)
	ExpirePayment(ctx context.Context, token string) (*models.Order, error)
	Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error)
	Status(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, actor identity.Actor, params pagination.Params) (*OrderPage, error)
	SweepStale(ctx context.Context, now time.Time) (SweepResult, error)
}

// Review is the pre-checkout read of the cart.
type Review struct {
	Cart  *cart.View
	Empty bool
}

// OrderPage is one page of an owner's order history, newest first.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

type ServiceParams struct {
	Repository OrderRepository
	Tx         txRunner
	Carts      cartStore
	Catalog    productLoader
	Payments   payments.Gateway
	Trail      trailRecorder
	Outbox     outboxEmitter
	Oracle     oracleRecorder
	Metrics    checkoutMetrics
	Narrator   TransactionNarrator
	Codes      func() (string, error)
	Now        func() time.Time
	Config     config.CheckoutConfig
	Logger     *logger.Logger
}

type service struct {
	repo     OrderRepository
	tx       txRunner
	carts    cartStore
	catalog  productLoader
	payments payments.Gateway
	trail    trailRecorder
	outbox   outboxEmitter
	oracle   oracleRecorder
	metrics  checkoutMetrics
	narrator TransactionNarrator
	codes    func() (string, error)
	now      func() time.Time
	cfg      config.CheckoutConfig
	logg     *logger.Logger
}

// NewService wires the orchestrator. Metrics, narrator, code generator and clock fall back
// to defaults when omitted.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repository == nil:
		return nil, fmt.Errorf("order repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart store required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("catalog required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payment gateway required")
	case params.Trail == nil:
		return nil, fmt.Errorf("trail recorder required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Oracle == nil:
		return nil, fmt.Errorf("oracle recorder required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	if params.Config.SessionTimeout <= 0 {
		return nil, fmt.Errorf("payment session timeout must be positive")
	}

	svc := &service{
		repo:     params.Repository,
		tx:       params.Tx,
		carts:    params.Carts,
		catalog:  params.Catalog,
		payments: params.Payments,
		trail:    params.Trail,
		outbox:   params.Outbox,
		oracle:   params.Oracle,
		metrics:  params.Metrics,
		narrator: params.Narrator,
		codes:    params.Codes,
		now:      params.Now,
		cfg:      params.Config,
		logg:     params.Logger,
	}
	if svc.metrics == nil {
		svc.metrics = noopMetrics{}
	}
	if svc.narrator == nil {
		svc.narrator = NewThemedNarrator(nil)
	}
	if svc.codes == nil {
		svc.codes = NewTransactionCode
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	if strings.TrimSpace(svc.cfg.Currency) == "" {
		svc.cfg.Currency = "usd"
	}
	return svc, nil
}

func (s *service) Review(ctx context.Context, actor identity.Actor) (*Review, error) {
	view, err := s.carts.GetCart(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &Review{Cart: view, Empty: view.IsEmpty()}, nil
}

// Initiate creates the order for token and runs it through energy_check and
// portal_opening. The returned order is in portal_opening, ready for CreateSession.
func (s *service) Initiate(ctx context.Context, actor identity.Actor, token string) (*models.Order, error) {
	if actor.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency token is required")
	}
	if len(token) > maxTokenLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("idempotency token must be at most %d characters", maxTokenLength))
	}
	ctx = s.logg.WithUserID(ctx, actor.OwnerID.String())

	existing, err := s.repo.FindByToken(ctx, token)
	if err == nil {
		return nil, duplicateCheckout(actor, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup checkout token")
	}

	view, err := s.carts.GetCart(ctx, actor)
	if err != nil {
		return nil, err
	}
	if view.Evaluation.ShouldQuestion {
		return nil, pkgerrors.New(pkgerrors.CodeQuestionPending, "rare items in the cart need confirmation before checkout").
			WithDetails(map[string]any{"unquestioned_rare_count": view.Evaluation.UnquestionedRareCount})
	}
	if view.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithDetails(map[string]any{"reason": "empty_cart"})
	}

	code, err := s.codes()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate transaction code")
	}
	now := s.now()
	order := &models.Order{
		OwnerID:          actor.OwnerID,
		CartID:           view.CartID,
		TransactionCode:  code,
		Phase:            enums.CheckoutPhaseInitiating,
		Status:           enums.CheckoutPhaseInitiating.OrderStatus(),
		IdempotencyToken: token,
		TotalPriceCents:  view.Evaluation.TotalPriceCents,
		TotalEnergy:      view.Evaluation.TotalEnergy,
		Currency:         s.cfg.Currency,
		PhaseChangedAt:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.recordTransition(ctx, tx, order, enums.CheckoutPhaseReview)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "ux_orders_idempotency_token") {
			if existing, findErr := s.repo.FindByToken(ctx, token); findErr == nil {
				return nil, duplicateCheckout(actor, existing)
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout collided with another request; retry")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	s.observe(ctx, order, enums.CheckoutPhaseReview)

	if _, err := s.advance(ctx, order, enums.CheckoutPhaseEnergyCheck, phaseChange{}); err != nil {
		return nil, err
	}
	if view.Evaluation.TotalEnergy > actor.EnergyBalance {
		return nil, s.fail(ctx, order, pkgerrors.CodeInsufficientEnergy,
			fmt.Sprintf("checkout needs %d energy but only %d is available", view.Evaluation.TotalEnergy, actor.EnergyBalance),
			map[string]any{"required": view.Evaluation.TotalEnergy, "available": actor.EnergyBalance})
	}

	items, shortages, err := s.snapshot(ctx, order.ID, view.Items)
	if err != nil {
		return nil, err
	}
	if len(shortages) > 0 {
		return nil, s.fail(ctx, order, pkgerrors.CodeStockChanged, "stock changed since the items were added",
			map[string]any{"items": shortages})
	}
	var totalPrice, totalEnergy int64
	for _, item := range items {
		totalPrice += item.UnitPriceCents * int64(item.Quantity)
		totalEnergy += item.UnitEnergyCost * int64(item.Quantity)
	}
	if totalEnergy > actor.EnergyBalance {
		return nil, s.fail(ctx, order, pkgerrors.CodeInsufficientEnergy,
			fmt.Sprintf("checkout needs %d energy but only %d is available", totalEnergy, actor.EnergyBalance),
			map[string]any{"required": totalEnergy, "available": actor.EnergyBalance})
	}

	moved, err := s.advanceWith(ctx, order, enums.CheckoutPhasePortalOpening, phaseChange{
		TotalPriceCents: &totalPrice,
		TotalEnergy:     &totalEnergy,
	}, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).InsertItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, s.stateConflict(ctx, order.ID, "order left energy_check before the portal opened")
	}
	order.Items = items
	return order, nil
}

// CreateSession opens the payment session for an order in portal_opening. A repeat
// call while awaiting payment returns the stored session.
func (s *service) CreateSession(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	switch order.Phase {
	case enums.CheckoutPhaseAwaitingPayment:
		return order, nil
	case enums.CheckoutPhasePortalOpening:
	default:
		return nil, phaseConflict(order, "payment session can only be opened from portal_opening")
	}

	req := payments.SessionRequest{
		OrderID:          order.ID,
		IdempotencyToken: order.IdempotencyToken,
		TransactionCode:  order.TransactionCode,
		Currency:         order.Currency,
	}
	for _, item := range order.Items {
		req.Lines = append(req.Lines, payments.SessionLine{
			Name:            item.ProductName,
			Description:     fmt.Sprintf("%s · %s", item.DimensionalCode, item.RarityLevel),
			Quantity:        int64(item.Quantity),
			UnitAmountCents: item.UnitPriceCents,
		})
	}

	// the session call outlives a dropped client but never the configured timeout
	sessCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SessionTimeout)
	started := time.Now()
	session, err := s.payments.CreateSession(sessCtx, req)
	deadlineHit := errors.Is(sessCtx.Err(), context.DeadlineExceeded)
	cancel()
	if err != nil {
		if deadlineHit || errors.Is(err, context.DeadlineExceeded) {
			s.metrics.ObserveSession("timeout", time.Since(started))
			return nil, s.fail(ctx, order, pkgerrors.CodeTimeout,
				fmt.Sprintf("payment session was not created within %s", s.cfg.SessionTimeout), nil)
		}
		s.metrics.ObserveSession("error", time.Since(started))
		return nil, s.fail(ctx, order, pkgerrors.CodePaymentSessionError, err.Error(), nil)
	}
	s.metrics.ObserveSession("ok", time.Since(started))

	moved, err := s.advance(ctx, order, enums.CheckoutPhaseAwaitingPayment, phaseChange{
		PaymentSessionID: &session.ID,
		CheckoutURL:      &session.URL,
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		// a concurrent call may already have stored the same session
		current, err := s.reload(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.Phase == enums.CheckoutPhaseAwaitingPayment {
			return current, nil
		}
		return nil, phaseConflict(current, "order moved while the payment session was being created")
	}
	return order, nil
}

// ConfirmPayment is called when the payment provider reports success for token.
func (s *service) ConfirmPayment(ctx context.Context, token string) (*models.Order, error) {
	order, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	switch order.Phase {
	case enums.CheckoutPhaseCompleted:
		return order, nil
	case enums.CheckoutPhaseCancelled, enums.CheckoutPhaseFailed:
		return order, s.recordLateConfirmation(ctx, order)
	case enums.CheckoutPhaseAwaitingPayment:
		moved, err := s.advance(ctx, order, enums.CheckoutPhaseSynchronizing, phaseChange{})
		if err != nil {
			return nil, err
		}
		if !moved {
			current, err := s.reload(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			if current.Phase == enums.CheckoutPhaseCancelled || current.Phase == enums.CheckoutPhaseFailed {
				return current, s.recordLateConfirmation(ctx, current)
			}
			if current.Phase != enums.CheckoutPhaseSynchronizing {
				return current, nil
			}
			order = current
		}
	case enums.CheckoutPhaseSynchronizing:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment confirmed before the session was recorded; retry").
			WithDetails(map[string]any{"order_id": order.ID.String(), "phase": order.Phase})
	}
	return s.finishSynchronizing(ctx, order)
}

// ExpirePayment fails an order whose payment session lapsed.
func (s *service) ExpirePayment(ctx context.Context, token string) (*models.Order, error) {
	order, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if order.Phase != enums.CheckoutPhaseAwaitingPayment {
		return order, nil
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	failErr := s.fail(ctx, order, pkgerrors.CodeTimeout, "payment session expired", nil)
	if pkgerrors.CodeOf(failErr) != pkgerrors.CodeTimeout {
		return nil, failErr
	}
	return s.reload(ctx, order.ID)
}

// Cancel withdraws an order that is still waiting for payment. A payment that already
// started synchronizing wins.
func (s *service) Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if order.Phase == enums.CheckoutPhaseCancelled {
		return order, nil
	}
	if order.Phase != enums.CheckoutPhaseAwaitingPayment {
		return nil, phaseConflict(order, "only orders awaiting payment can be cancelled")
	}

	moved, err := s.advance(ctx, order, enums.CheckoutPhaseCancelled, phaseChange{})
	if err != nil {
		return nil, err
	}
	if !moved {
		current, err := s.reload(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.Phase == enums.CheckoutPhaseCancelled {
			return current, nil
		}
		return nil, phaseConflict(current, "order moved before it could be cancelled")
	}
	s.expireSession(ctx, order)
	return order, nil
}

func (s *service) Status(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOwned(ctx, actor, orderID)
}

func (s *service) ListOrders(ctx context.Context, actor identity.Actor, params pagination.Params) (*OrderPage, error) {
	if actor.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	orders, next, err := s.repo.ListByOwner(ctx, actor.OwnerID, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := &OrderPage{Orders: orders}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func (s *service) finishSynchronizing(ctx context.Context, order *models.Order) (*models.Order, error) {
	purchased := make(map[uuid.UUID]int, len(order.Items))
	for _, item := range order.Items {
		purchased[item.ProductID] += item.Quantity
	}
	owner := identity.Actor{OwnerID: order.OwnerID}
	settle := func(tx *gorm.DB) error {
		return s.carts.SettlePurchasedTx(ctx, tx, owner, purchased)
	}

	for attempt := 1; ; attempt++ {
		completedAt := s.now()
		moved, err := s.advanceWith(ctx, order, enums.CheckoutPhaseCompleted, phaseChange{CompletedAt: &completedAt}, settle)
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) && attempt < maxSettleAttempts {
			continue
		}
		if err != nil {
			// stays in synchronizing; the sweeper resumes it
			s.logg.Error(ctx, "checkout.cart_settle_failed", err)
			return nil, err
		}
		if !moved {
			return s.reload(ctx, order.ID)
		}
		return order, nil
	}
}

func (s *service) recordLateConfirmation(ctx context.Context, order *models.Order) error {
	owner := order.OwnerID
	orderID := order.ID
	sessionID := ""
	if order.PaymentSessionID != nil {
		sessionID = *order.PaymentSessionID
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.oracle.Record(ctx, tx, oracle.Entry{
			Type:     enums.OracleLogTransactionRitual,
			Severity: enums.OracleSeverityCritical,
			Message:  fmt.Sprintf("payment arrived for %s after it was %s", order.TransactionCode, order.Phase),
			OwnerID:  &owner,
			OrderID:  &orderID,
		}); err != nil {
			return err
		}
		// webhook redeliveries must not queue a second event
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentAfterClose,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{OwnerID: order.OwnerID, Source: "payments"},
			Data: payloads.PaymentAfterCloseEvent{
				OrderID:          order.ID,
				OwnerID:          order.OwnerID,
				TransactionCode:  order.TransactionCode,
				Phase:            order.Phase,
				PaymentSessionID: sessionID,
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record late payment")
	}
	s.logg.Warn(s.logg.WithField(ctx, "phase", order.Phase), "checkout.payment_after_close")
	return nil
}

func (s *service) expireSession(ctx context.Context, order *models.Order) {
	if order.PaymentSessionID == nil || *order.PaymentSessionID == "" {
		return
	}
	expireCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), expireCallTimeout)
	defer cancel()
	if err := s.payments.ExpireSession(expireCtx, *order.PaymentSessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.session_expire_failed")
	}
}

// snapshot re-reads every line from the catalog. Lines that are gone or short on
// stock are reported instead of snapshotted.
func (s *service) snapshot(ctx context.Context, orderID uuid.UUID, lines []models.CartLineItem) ([]models.OrderItem, []map[string]any, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	var shortages []map[string]any
	for _, line := range lines {
		product, ok := products[line.ProductID]
		available := 0
		if ok {
			available = product.CurrentStock
		}
		if !ok || available < line.Quantity {
			shortages = append(shortages, map[string]any{
				"product_id": line.ProductID.String(),
				"requested":  line.Quantity,
				"available":  available,
			})
			continue
		}
		items = append(items, models.OrderItem{
			OrderID:         orderID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			DimensionalCode: product.DimensionalCode,
			Quantity:        line.Quantity,
			UnitPriceCents:  product.PriceCents,
			UnitEnergyCost:  product.EnergyCost,
			RarityLevel:     product.RarityLevel,
		})
	}
	return items, shortages, nil
}

func (s *service) findByToken(ctx context.Context, token string) (*models.Order, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency token is required")
	}
	order, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadOwned(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*models.Order, error) {
	if actor.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	order, err := s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != actor.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) stateConflict(ctx context.Context, orderID uuid.UUID, message string) error {
	current, err := s.reload(ctx, orderID)
	if err != nil {
		return err
	}
	return phaseConflict(current, message)
}

func duplicateCheckout(actor identity.Actor, existing *models.Order) error {
	err := pkgerrors.New(pkgerrors.CodeDuplicateCheckout, "checkout already submitted for this token")
	if existing.OwnerID != actor.OwnerID {
		return err
	}
	return err.WithDetails(map[string]any{
		"order_id":         existing.ID.String(),
		"transaction_code": existing.TransactionCode,
		"status":           existing.Status,
		"phase":            existing.Phase,
	})
}

func phaseConflict(order *models.Order, message string) error {
	details := map[string]any{
		"order_id": order.ID.String(),
		"phase":    order.Phase,
		"status":   order.Status,
	}
	if order.FailureKind != nil {
		details["failure_kind"] = *order.FailureKind
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).WithDetails(details)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(string, string) {}
func (noopMetrics) ObserveFailure(string) {}
func (noopMetrics) ObserveSession(string, time.Duration) {}
