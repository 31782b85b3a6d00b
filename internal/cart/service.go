package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/internal/catalog"
	"github.com/angelmondragon/dimensionalz-backend/internal/consciousness"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/internal/trail"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

const (
	maxMutationAttempts = 3
	maxResponseLength   = 500
)

var errVersionConflict = errors.New("cart version conflict")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

type trailRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, event trail.Event) (*models.TrailEntry, error)
	List(ctx context.Context, cartID uuid.UUID, limit int) ([]models.TrailEntry, error)
}

type oracleRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry oracle.Entry) error
}

// Service is the line item store. Every successful mutation re-runs the evaluator and
// appends exactly one trail entry in the same transaction.
type Service interface {
	GetCart(ctx context.Context, actor identity.Actor) (*View, error)
	AddItem(ctx context.Context, actor identity.Actor, productID uuid.UUID, quantity int) (*View, error)
	UpdateQuantity(ctx context.Context, actor identity.Actor, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, actor identity.Actor) (*View, error)
	RespondToQuestion(ctx context.Context, actor identity.Actor, itemID uuid.UUID, response string) (*View, error)
	Trail(ctx context.Context, actor identity.Actor, limit int) ([]models.TrailEntry, error)
	SettlePurchasedTx(ctx context.Context, tx *gorm.DB, actor identity.Actor, purchased map[uuid.UUID]int) error
}

// View is a cart read with freshly computed metrics.
type View struct {
	CartID     uuid.UUID
	OwnerID    uuid.UUID
	Version    int64
	Items      []models.CartLineItem
	Evaluation consciousness.Evaluation
	CanAfford  bool
}

// IsEmpty reports whether the cart has no lines.
func (v *View) IsEmpty() bool {
	return v == nil || len(v.Items) == 0
}

type ServiceParams struct {
	Repository CartRepository
	Tx         txRunner
	Catalog    productLoader
	Trail      trailRecorder
	Oracle     oracleRecorder
	Logger     *logger.Logger
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog productLoader
	trail   trailRecorder
	oracle  oracleRecorder
	logg    *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Trail == nil {
		return nil, fmt.Errorf("trail recorder required")
	}
	if params.Oracle == nil {
		return nil, fmt.Errorf("oracle recorder required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repository,
		tx:      params.Tx,
		catalog: params.Catalog,
		trail:   params.Trail,
		oracle:  params.Oracle,
		logg:    params.Logger,
	}, nil
}

func (s *service) GetCart(ctx context.Context, actor identity.Actor) (*View, error) {
	if actor.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	cart, err := s.repo.FindByOwner(ctx, actor.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return buildView(actor, &models.Cart{OwnerID: actor.OwnerID}), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildView(actor, cart), nil
}

func (s *service) AddItem(ctx context.Context, actor identity.Actor, productID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, invalidQuantity(quantity)
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		existing, err := repo.FindItemByProduct(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		total := quantity
		if existing != nil {
			total += existing.Quantity
		}
		if total > product.CurrentStock {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds available stock").
				WithDetails(stockDetails(productID, total, product.CurrentStock))
		}

		if existing != nil {
			if err := repo.UpdateItemQuantity(ctx, existing.ID, total); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		} else {
			item := &models.CartLineItem{
				CartID:         cart.ID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       quantity,
				UnitPriceCents: product.PriceCents,
				UnitEnergyCost: product.EnergyCost,
				RarityLevel:    product.RarityLevel,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		}
		return &trail.Event{
			Kind:        enums.TrailKindItemAdded,
			ProductName: product.Name,
			Rarity:      product.RarityLevel,
			Quantity:    quantity,
		}, nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, actor identity.Actor, itemID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, invalidQuantity(quantity)
	}
	current, err := s.repo.FindOwnerItem(ctx, actor.OwnerID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	product, err := s.catalog.GetProduct(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.CurrentStock {
		return nil, pkgerrors.New(pkgerrors.CodeExceedsStock, "quantity exceeds available stock").
			WithDetails(stockDetails(product.ID, quantity, product.CurrentStock))
	}

	return s.mutate(ctx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if item.Quantity == quantity {
			return nil, nil
		}
		if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return &trail.Event{
			Kind:             enums.TrailKindQuantityUpdated,
			ProductName:      item.ProductName,
			Rarity:           item.RarityLevel,
			Quantity:         quantity,
			PreviousQuantity: item.Quantity,
		}, nil
	})
}

// RemoveItem treats an absent item as already removed.
func (s *service) RemoveItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) (*View, error) {
	return s.mutate(ctx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		deleted, err := repo.DeleteItem(ctx, cart.ID, item.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		if deleted == 0 {
			return nil, nil
		}
		return &trail.Event{
			Kind:        enums.TrailKindItemRemoved,
			ProductName: item.ProductName,
			Rarity:      item.RarityLevel,
			Quantity:    item.Quantity,
		}, nil
	})
}

func (s *service) Clear(ctx context.Context, actor identity.Actor) (*View, error) {
	return s.mutate(ctx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		deleted, err := repo.DeleteAllItems(ctx, cart.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if deleted == 0 {
			return nil, nil
		}
		return &trail.Event{Kind: enums.TrailKindCartCleared, RemovedCount: int(deleted)}, nil
	})
}

// RespondToQuestion confirms intent for a single rare-tier line.
func (s *service) RespondToQuestion(ctx context.Context, actor identity.Actor, itemID uuid.UUID, response string) (*View, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "response is required")
	}
	if utf8.RuneCountInString(response) > maxResponseLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("response must be at most %d characters", maxResponseLength))
	}

	return s.mutate(ctx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if !item.RarityLevel.IsRareTier() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item does not require confirmation")
		}
		if item.WasQuestioned {
			return nil, nil
		}
		if err := repo.MarkItemQuestioned(ctx, item.ID, response); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm cart item")
		}
		return &trail.Event{
			Kind:        enums.TrailKindQuestionAnswered,
			ProductName: item.ProductName,
			Rarity:      item.RarityLevel,
			Response:    response,
		}, nil
	})
}

// SettlePurchasedTx takes paid quantities, keyed by product id, out of the owner's cart
// inside the caller's transaction. A line bought in full is removed and a line that grew
// after checkout keeps the surplus. Lines added later are left alone.
func (s *service) SettlePurchasedTx(ctx context.Context, tx *gorm.DB, actor identity.Actor, purchased map[uuid.UUID]int) error {
	if actor.OwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	if tx == nil {
		return errors.New("transaction required")
	}
	if len(purchased) == 0 {
		return nil
	}
	ctx = s.logg.WithUserID(ctx, actor.OwnerID.String())
	err := s.applyMutation(ctx, tx, actor, func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error) {
		settled := 0
		for _, item := range cart.Items {
			paid := purchased[item.ProductID]
			if paid <= 0 {
				continue
			}
			if item.Quantity > paid {
				if err := repo.UpdateItemQuantity(ctx, item.ID, item.Quantity-paid); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reduce settled cart item")
				}
			} else if _, err := repo.DeleteItem(ctx, cart.ID, item.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove settled cart item")
			}
			settled++
		}
		if settled == 0 {
			return nil, nil
		}
		return &trail.Event{Kind: enums.TrailKindItemsSettled, RemovedCount: settled}, nil
	})
	if errors.Is(err, errVersionConflict) {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart changed concurrently; retry")
	}
	return err
}

func (s *service) Trail(ctx context.Context, actor identity.Actor, limit int) ([]models.TrailEntry, error) {
	cart, err := s.repo.FindByOwner(ctx, actor.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.TrailEntry{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.trail.List(ctx, cart.ID, limit)
}

type mutation func(ctx context.Context, repo CartRepository, cart *models.Cart) (*trail.Event, error)

// mutate runs fn under the cart's version guard. A nil event means nothing changed and
// no trail entry is written.
func (s *service) mutate(ctx context.Context, actor identity.Actor, fn mutation) (*View, error) {
	if actor.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	ctx = s.logg.WithUserID(ctx, actor.OwnerID.String())

	for attempt := 1; ; attempt++ {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.applyMutation(ctx, tx, actor, fn)
		})
		if errors.Is(err, errVersionConflict) {
			if attempt < maxMutationAttempts {
				s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "cart.version_conflict")
				continue
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart changed concurrently; retry")
		}
		if err != nil {
			return nil, err
		}
		return s.GetCart(ctx, actor)
	}
}

func (s *service) applyMutation(ctx context.Context, tx *gorm.DB, actor identity.Actor, fn mutation) error {
	repo := s.repo.WithTx(tx)
	cart, err := repo.EnsureForOwner(ctx, actor.OwnerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	// claim the version first so concurrent writers block here and then fail the check
	ok, err := repo.BumpVersion(ctx, cart.ID, cart.Version)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	if !ok {
		return errVersionConflict
	}

	before := consciousness.Evaluate(toEvaluatorItems(cart.Items))
	event, err := fn(ctx, repo, cart)
	if err != nil || event == nil {
		return err
	}

	entry, err := s.trail.Record(ctx, tx, cart.ID, *event)
	if err != nil {
		return err
	}

	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart items")
	}
	after := consciousness.Evaluate(toEvaluatorItems(items))
	if err := s.recordShift(ctx, tx, actor, before, after); err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"cart_id":             cart.ID.String(),
		"trail_kind":          entry.Kind,
		"consciousness_level": after.ConsciousnessLevel,
		"should_question":     after.ShouldQuestion,
	})
	s.logg.Info(logCtx, "cart."+string(event.Kind))
	return nil
}

// recordShift logs gating and peak-level crossings to the oracle.
func (s *service) recordShift(ctx context.Context, tx *gorm.DB, actor identity.Actor, before, after consciousness.Evaluation) error {
	owner := actor.OwnerID
	if !before.ShouldQuestion && after.ShouldQuestion {
		if err := s.oracle.Record(ctx, tx, oracle.Entry{
			Type:     enums.OracleLogConsciousnessEvent,
			Severity: enums.OracleSeverityWarning,
			Message:  fmt.Sprintf("%d unconfirmed rare presences gathered in one cart", after.UnquestionedRareCount),
			OwnerID:  &owner,
		}); err != nil {
			return err
		}
	}
	if before.ConsciousnessLevel < consciousness.MaxLevel && after.ConsciousnessLevel == consciousness.MaxLevel {
		if err := s.oracle.Record(ctx, tx, oracle.Entry{
			Type:     enums.OracleLogConsciousnessEvent,
			Severity: enums.OracleSeverityTranscendent,
			Message:  "a cart reached full consciousness",
			OwnerID:  &owner,
		}); err != nil {
			return err
		}
	}
	return nil
}

func buildView(actor identity.Actor, cart *models.Cart) *View {
	items := cart.Items
	if items == nil {
		items = []models.CartLineItem{}
	}
	eval := consciousness.Evaluate(toEvaluatorItems(items))
	return &View{
		CartID:     cart.ID,
		OwnerID:    cart.OwnerID,
		Version:    cart.Version,
		Items:      items,
		Evaluation: eval,
		CanAfford:  eval.CanAfford(actor.EnergyBalance),
	}
}

// ToEvaluatorItems maps persisted lines onto evaluator input.
func ToEvaluatorItems(items []models.CartLineItem) []consciousness.Item {
	return toEvaluatorItems(items)
}

func toEvaluatorItems(items []models.CartLineItem) []consciousness.Item {
	out := make([]consciousness.Item, 0, len(items))
	for _, item := range items {
		out = append(out, consciousness.Item{
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitEnergyCost: item.UnitEnergyCost,
			Rarity:         item.RarityLevel,
			WasQuestioned:  item.WasQuestioned,
		})
	}
	return out
}

func invalidQuantity(quantity int) error {
	return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be at least 1").
		WithDetails(map[string]any{"quantity": quantity})
}

func stockDetails(productID uuid.UUID, requested, available int) map[string]any {
	return map[string]any{
		"product_id": productID.String(),
		"requested":  requested,
		"available":  available,
	}
}
