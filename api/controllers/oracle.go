package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/api/validators"
	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

type oracleLister interface {
	List(ctx context.Context, severity string, limit int) ([]models.OracleLog, error)
}

type oracleLogResponse struct {
	LogType   string    `json:"log_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// OracleLogs lists recent oracle entries, optionally filtered by ?severity=.
// Owner and order references are not exposed.
func OracleLogs(svc oracleLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oracle service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		severity := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("severity")))

		rows, err := svc.List(r.Context(), severity, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]oracleLogResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, oracleLogResponse{
				LogType:   string(row.LogType),
				Severity:  string(row.Severity),
				Message:   row.Message,
				CreatedAt: row.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{"logs": out})
	}
}

type oracleDashboard interface {
	Stats(ctx context.Context) (oracle.Stats, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	Products(ctx context.Context, limit int) ([]models.Product, error)
}

type oracleStatsResponse struct {
	Products struct {
		Total      int64 `json:"total"`
		TotalStock int64 `json:"total_stock"`
	} `json:"products"`
	Orders struct {
		Total        int64 `json:"total"`
		Completed    int64 `json:"completed"`
		RevenueCents int64 `json:"revenue_cents"`
	} `json:"orders"`
	Users struct {
		TotalEnergy int64 `json:"total_energy"`
	} `json:"users"`
}

type oracleOrderResponse struct {
	ID              string    `json:"id"`
	TransactionCode string    `json:"transaction_code"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
	TotalEnergy     int64     `json:"total_energy"`
	CreatedAt       time.Time `json:"created_at"`
}

type oracleProductResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DimensionalCode string `json:"dimensional_code"`
	RarityLevel     string `json:"rarity_level"`
	CurrentStock    int    `json:"current_stock"`
	BaseStock       int    `json:"base_stock"`
	PriceCents      int64  `json:"price_cents"`
	IsActive        bool   `json:"is_active"`
}

func OracleStats(svc oracleDashboard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oracle service unavailable"))
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var out oracleStatsResponse
		out.Products.Total = stats.TotalProducts
		out.Products.TotalStock = stats.TotalStock
		out.Orders.Total = stats.TotalOrders
		out.Orders.Completed = stats.CompletedOrders
		out.Orders.RevenueCents = stats.RevenueCents
		out.Users.TotalEnergy = stats.TotalEnergy
		responses.WriteSuccess(w, out)
	}
}

// OracleOrders lists the most recent orders across all owners.
func OracleOrders(svc oracleDashboard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oracle service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.RecentOrders(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]oracleOrderResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, oracleOrderResponse{
				ID:              row.ID.String(),
				TransactionCode: row.TransactionCode,
				Status:          string(row.Status),
				TotalPriceCents: row.TotalPriceCents,
				TotalEnergy:     row.TotalEnergy,
				CreatedAt:       row.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{"orders": out})
	}
}

func OracleProducts(svc oracleDashboard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "oracle service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 200, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Products(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]oracleProductResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, oracleProductResponse{
				ID:              row.ID.String(),
				Name:            row.Name,
				DimensionalCode: row.DimensionalCode,
				RarityLevel:     string(row.RarityLevel),
				CurrentStock:    row.CurrentStock,
				BaseStock:       row.BaseStock,
				PriceCents:      row.PriceCents,
				IsActive:        row.IsActive,
			})
		}
		responses.WriteSuccess(w, map[string]any{"products": out})
	}
}
