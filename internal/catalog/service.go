// Package catalog answers product price, energy, stock and rarity lookups for the cart
// and checkout flows.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

// Product is the subset of catalog data the cart and checkout flows rely on.
type Product struct {
	ID              uuid.UUID
	Name            string
	DimensionalCode string
	PriceCents      int64
	EnergyCost      int64
	CurrentStock    int
	RarityLevel     enums.RarityLevel
	StockMood       enums.StockMood
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type Service struct {
	repo productRepository
}

func NewService(repo productRepository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &Service{repo: repo}, nil
}

// GetProduct returns NOT_FOUND for unknown and inactive products.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !row.IsActive {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return fromModel(row), nil
}

// GetProducts loads ids in one query. Unknown and inactive products are absent from the
// returned map.
func (s *Service) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	out := make(map[uuid.UUID]Product, len(rows))
	for i := range rows {
		if !rows[i].IsActive {
			continue
		}
		out[rows[i].ID] = fromModel(&rows[i])
	}
	return out, nil
}

func fromModel(row *models.Product) Product {
	return Product{
		ID:              row.ID,
		Name:            row.Name,
		DimensionalCode: row.DimensionalCode,
		PriceCents:      row.PriceCents,
		EnergyCost:      row.EnergyCost,
		CurrentStock:    row.CurrentStock,
		RarityLevel:     row.RarityLevel,
		StockMood:       row.StockMood,
	}
}
