// Package oracle keeps the system log of notable cart and checkout events and
// serves the admin dashboard reads.
package oracle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

const (
	defaultListLimit   = 50
	maxListLimit       = 200
	defaultOrdersLimit = 20
)

type Entry struct {
	Type     enums.OracleLogType
	Severity enums.OracleSeverity
	Message  string
	OwnerID  *uuid.UUID
	OrderID  *uuid.UUID
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("oracle repository required")
	}
	return &Service{repo: repo}, nil
}

// Record writes entry, inside tx when one is given.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if !entry.Type.IsValid() || !entry.Severity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("invalid oracle entry %s/%s", entry.Type, entry.Severity))
	}
	row := &models.OracleLog{
		LogType:  entry.Type,
		Severity: entry.Severity,
		Message:  entry.Message,
		OwnerID:  entry.OwnerID,
		OrderID:  entry.OrderID,
	}
	if err := s.repo.WithTx(tx).Insert(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record oracle log")
	}
	return nil
}

func (s *Service) List(ctx context.Context, severity string, limit int) ([]models.OracleLog, error) {
	var level enums.OracleSeverity
	if severity != "" {
		parsed, err := enums.ParseOracleSeverity(severity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity")
		}
		level = parsed
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.repo.List(ctx, level, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list oracle logs")
	}
	return rows, nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalProducts   int64
	TotalStock      int64
	TotalOrders     int64
	CompletedOrders int64
	RevenueCents    int64
	TotalEnergy     int64
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	catalogTotals, err := s.repo.CatalogTotals(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog totals")
	}
	orderTotals, err := s.repo.OrderTotals(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order totals")
	}
	energy, err := s.repo.TotalEnergy(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load energy total")
	}
	return Stats{
		TotalProducts:   catalogTotals.Products,
		TotalStock:      catalogTotals.TotalStock,
		TotalOrders:     orderTotals.Orders,
		CompletedOrders: orderTotals.Completed,
		RevenueCents:    orderTotals.RevenueCents,
		TotalEnergy:     energy,
	}, nil
}

// RecentOrders lists orders across every owner, newest first.
func (s *Service) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent orders")
	}
	return rows, nil
}

func (s *Service) Products(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.repo.Products(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}
