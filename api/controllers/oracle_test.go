package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/internal/oracle"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

type stubOracle struct {
	severity string
	limit    int
	rows     []models.OracleLog
	err      error
}

func (s *stubOracle) List(_ context.Context, severity string, limit int) ([]models.OracleLog, error) {
	s.severity = severity
	s.limit = limit
	return s.rows, s.err
}

func TestOracleLogsPassesFilters(t *testing.T) {
	owner := uuid.New()
	svc := &stubOracle{rows: []models.OracleLog{{
		LogType:  enums.OracleLogEnergyAnomaly,
		Severity: enums.OracleSeverityWarning,
		Message:  "the energy field flickers",
		OwnerID:  &owner,
	}}}
	rec := httptest.NewRecorder()
	OracleLogs(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/logs?severity=Warning&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.severity != "warning" || svc.limit != 5 {
		t.Fatalf("unexpected filters %q %d", svc.severity, svc.limit)
	}
	if body := rec.Body.String(); !json.Valid([]byte(body)) || strings.Contains(body, owner.String()) {
		t.Fatalf("owner reference leaked: %s", body)
	}
}

func TestOracleLogsRejectsBadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	OracleLogs(&stubOracle{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/logs?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOracleLogsPropagatesValidation(t *testing.T) {
	svc := &stubOracle{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid severity")}
	rec := httptest.NewRecorder()
	OracleLogs(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/logs?severity=loud", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

type stubDashboard struct {
	stats    oracle.Stats
	orders   []models.Order
	products []models.Product
	limit    int
}

func (s *stubDashboard) Stats(context.Context) (oracle.Stats, error) {
	return s.stats, nil
}

func (s *stubDashboard) RecentOrders(_ context.Context, limit int) ([]models.Order, error) {
	s.limit = limit
	return s.orders, nil
}

func (s *stubDashboard) Products(_ context.Context, limit int) ([]models.Product, error) {
	s.limit = limit
	return s.products, nil
}

func TestOracleStatsGroupsTotals(t *testing.T) {
	svc := &stubDashboard{stats: oracle.Stats{
		TotalProducts:   3,
		TotalStock:      42,
		TotalOrders:     5,
		CompletedOrders: 2,
		RevenueCents:    9900,
		TotalEnergy:     640,
	}}
	rec := httptest.NewRecorder()
	OracleStats(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var body struct {
		Data struct {
			Products struct {
				Total      int64 `json:"total"`
				TotalStock int64 `json:"total_stock"`
			} `json:"products"`
			Orders struct {
				Completed    int64 `json:"completed"`
				RevenueCents int64 `json:"revenue_cents"`
			} `json:"orders"`
			Users struct {
				TotalEnergy int64 `json:"total_energy"`
			} `json:"users"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Products.Total != 3 || body.Data.Products.TotalStock != 42 {
		t.Fatalf("unexpected product totals %+v", body.Data.Products)
	}
	if body.Data.Orders.Completed != 2 || body.Data.Orders.RevenueCents != 9900 {
		t.Fatalf("unexpected order totals %+v", body.Data.Orders)
	}
	if body.Data.Users.TotalEnergy != 640 {
		t.Fatalf("unexpected energy total %d", body.Data.Users.TotalEnergy)
	}
}

func TestOracleOrdersDefaultsLimitAndHidesOwner(t *testing.T) {
	owner := uuid.New()
	svc := &stubDashboard{orders: []models.Order{{
		ID:              uuid.New(),
		OwnerID:         owner,
		TransactionCode: "TX-1",
		Status:          enums.OrderStatusCompleted,
		TotalPriceCents: 1200,
	}}}
	rec := httptest.NewRecorder()
	OracleOrders(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/orders", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.limit != 20 {
		t.Fatalf("expected default limit 20, got %d", svc.limit)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "TX-1") || strings.Contains(body, owner.String()) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestOracleProductsListsCatalog(t *testing.T) {
	svc := &stubDashboard{products: []models.Product{{
		ID:              uuid.New(),
		Name:            "Quantum Lattice",
		DimensionalCode: "DIM-7",
		RarityLevel:     enums.RarityMythic,
		CurrentStock:    2,
		BaseStock:       9,
	}}}
	rec := httptest.NewRecorder()
	OracleProducts(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oracle/products?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.limit != 10 {
		t.Fatalf("expected limit 10, got %d", svc.limit)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Quantum Lattice") || !strings.Contains(body, `"base_stock":9`) {
		t.Fatalf("unexpected body %s", body)
	}
}
