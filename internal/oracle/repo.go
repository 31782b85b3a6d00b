package oracle

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

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

func (r *Repository) Insert(ctx context.Context, row *models.OracleLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// List returns the newest entries first, optionally filtered by severity.
func (r *Repository) List(ctx context.Context, severity enums.OracleSeverity, limit int) ([]models.OracleLog, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit)
	if severity != "" {
		q = q.Where("severity = ?", severity)
	}
	var rows []models.OracleLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type CatalogCounts struct {
	Products   int64
	TotalStock int64
}

type OrderCounts struct {
	Orders       int64
	Completed    int64
	RevenueCents int64
}

func (r *Repository) CatalogTotals(ctx context.Context) (CatalogCounts, error) {
	var out CatalogCounts
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COUNT(*) AS products, COALESCE(SUM(current_stock), 0) AS total_stock").
		Scan(&out).Error
	return out, err
}

// OrderTotals counts every order; revenue only sums completed ones.
func (r *Repository) OrderTotals(ctx context.Context) (OrderCounts, error) {
	var out OrderCounts
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"COUNT(*) AS orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN total_price_cents ELSE 0 END), 0) AS revenue_cents",
			enums.OrderStatusCompleted, enums.OrderStatusCompleted,
		).
		Scan(&out).Error
	return out, err
}

func (r *Repository) TotalEnergy(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("COALESCE(SUM(energy_balance), 0)").
		Scan(&total).Error
	return total, err
}

func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Products lists the whole catalog by name, retired rows included.
func (r *Repository) Products(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("name ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
