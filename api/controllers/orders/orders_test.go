package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/dimensionalz-backend/internal/checkout"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/pagination"
)

type stubOrders struct {
	checkoutsvc.Service

	page       *checkoutsvc.OrderPage
	order      *models.Order
	err        error
	lastParams pagination.Params
}

func (s *stubOrders) ListOrders(_ context.Context, _ identity.Actor, params pagination.Params) (*checkoutsvc.OrderPage, error) {
	s.lastParams = params
	return s.page, s.err
}

func (s *stubOrders) Status(context.Context, identity.Actor, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func newRouter(svc checkoutsvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), identity.Actor{OwnerID: uuid.New()})))
		})
	})
	r.Get("/orders", List(svc, nil))
	r.Get("/orders/{orderId}", Detail(svc, nil))
	return r
}

func TestListPassesPagination(t *testing.T) {
	svc := &stubOrders{page: &checkoutsvc.OrderPage{
		Orders: []models.Order{
			{ID: uuid.New(), Phase: enums.CheckoutPhaseCompleted, Status: enums.OrderStatusCompleted, Currency: "usd", CreatedAt: time.Now()},
			{ID: uuid.New(), Phase: enums.CheckoutPhaseFailed, Status: enums.OrderStatusFailed, Currency: "usd", CreatedAt: time.Now()},
		},
		NextCursor: "next",
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?limit=2&cursor=abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastParams.Limit != 2 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.lastParams)
	}
	var body struct {
		Data struct {
			Orders     []map[string]any `json:"orders"`
			NextCursor string           `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Orders) != 2 || body.Data.NextCursor != "next" {
		t.Fatalf("unexpected page %+v", body.Data)
	}
}

func TestListRejectsOversizedLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubOrders{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?limit=1000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDetailHidesForeignOrders(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
