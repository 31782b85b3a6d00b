package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	"github.com/angelmondragon/dimensionalz-backend/pkg/pagination"
)

// OrderRepository persists orders and moves them between phases.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	InsertItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByToken(ctx context.Context, token string) (*models.Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, *pagination.Cursor, error)
	ListStale(ctx context.Context, phases []enums.CheckoutPhase, before time.Time, limit int) ([]models.Order, error)
	Transition(ctx context.Context, id uuid.UUID, from []enums.CheckoutPhase, to enums.CheckoutPhase, at time.Time, updates map[string]any) (bool, error)
	SetNarrative(ctx context.Context, id uuid.UUID, narrative string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) OrderRepository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("idempotency_token = ?", token).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("owner_id = ?", ownerID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&orders).Error
	if err != nil {
		return nil, nil, err
	}
	if len(orders) > normalized {
		orders = orders[:normalized]
		last := orders[normalized-1]
		return orders, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return orders, nil, nil
}

func (r *repository) ListStale(ctx context.Context, phases []enums.CheckoutPhase, before time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("phase IN ? AND phase_changed_at < ?", phases, before).
		Order("phase_changed_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Transition moves the order to `to` only if it is still in one of `from`. It reports
// false when another writer got there first.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, from []enums.CheckoutPhase, to enums.CheckoutPhase, at time.Time, updates map[string]any) (bool, error) {
	values := map[string]any{
		"phase":            to,
		"status":           to.OrderStatus(),
		"phase_changed_at": at,
	}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND phase IN ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) SetNarrative(ctx context.Context, id uuid.UUID, narrative string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("transaction_narrative", narrative).Error
}
