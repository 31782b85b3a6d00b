package trail

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
)

// Repository only inserts and reads; trail rows are never updated or deleted.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Append(ctx context.Context, entry *models.TrailEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByCart returns the newest entries first.
func (r *Repository) ListByCart(ctx context.Context, cartID uuid.UUID, limit int) ([]models.TrailEntry, error) {
	var rows []models.TrailEntry
	q := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CountByCart(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TrailEntry{}).Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}
