package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
)

// Repository persists carts and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("owner_id = ?", ownerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// EnsureForOwner returns the owner's cart, creating it on first use. Concurrent
// creators collapse onto the unique owner index.
func (r *Repository) EnsureForOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByOwner(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &models.Cart{OwnerID: ownerID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindByOwner(ctx, ownerID)
}

// BumpVersion advances the cart version only if it still equals expected.
func (r *Repository) BumpVersion(ctx context.Context, cartID uuid.UUID, expected int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expected).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartLineItem, error) {
	var items []models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartLineItem, error) {
	var item models.CartLineItem
	if err := r.db.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindOwnerItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.CartLineItem, error) {
	var item models.CartLineItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_line_items.cart_id").
		Where("carts.owner_id = ? AND cart_line_items.id = ?", ownerID, itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartLineItem, error) {
	var item models.CartLineItem
	if err := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *Repository) MarkItemQuestioned(ctx context.Context, itemID uuid.UUID, response string) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"was_questioned":    true,
			"question_response": response,
		}).Error
}

func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&models.CartLineItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteAllItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartLineItem{})
	return res.RowsAffected, res.Error
}
