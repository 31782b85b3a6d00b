package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	EnsureForOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	BumpVersion(ctx context.Context, cartID uuid.UUID, expected int64) (bool, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartLineItem, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartLineItem, error)
	FindOwnerItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.CartLineItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartLineItem, error)
	CreateItem(ctx context.Context, item *models.CartLineItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	MarkItemQuestioned(ctx context.Context, itemID uuid.UUID, response string) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (int64, error)
	DeleteAllItems(ctx context.Context, cartID uuid.UUID) (int64, error)
}
