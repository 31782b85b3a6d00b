package oracle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

func TestRecordAndList(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	ctx := context.Background()
	owner := uuid.New()
	require.NoError(t, svc.Record(ctx, nil, Entry{
		Type:     enums.OracleLogConsciousnessEvent,
		Severity: enums.OracleSeverityWarning,
		Message:  "three mythic presences await confirmation",
		OwnerID:  &owner,
	}))
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Record(ctx, tx, Entry{
			Type:     enums.OracleLogTransactionRitual,
			Severity: enums.OracleSeverityInfo,
			Message:  "order completed",
		})
	}))

	all, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	warnings, err := svc.List(ctx, "warning", 10)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, owner, *warnings[0].OwnerID)

	_, err = svc.List(ctx, "apocalyptic", 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = svc.Record(ctx, nil, Entry{Type: "weather", Severity: enums.OracleSeverityInfo})
	assert.Error(t, err)
}

func seedOrder(t *testing.T, conn *gorm.DB, status enums.OrderStatus, phase enums.CheckoutPhase, cents int64) *models.Order {
	t.Helper()
	code := uuid.NewString()
	order := &models.Order{
		OwnerID:          uuid.New(),
		CartID:           uuid.New(),
		TransactionCode:  "TX-" + code[:8],
		Status:           status,
		Phase:            phase,
		IdempotencyToken: "checkout-" + code,
		TotalPriceCents:  cents,
		Currency:         "usd",
		PhaseChangedAt:   time.Now().UTC(),
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestStatsAndDashboardListings(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	empty, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, empty)

	for i, stock := range []int{4, 7} {
		require.NoError(t, conn.Create(&models.Product{
			Name:            fmt.Sprintf("Relic %d", i),
			DimensionalCode: fmt.Sprintf("DIM-%d", i),
			PriceCents:      100,
			CurrentStock:    stock,
			BaseStock:       stock,
			RarityLevel:     enums.RarityRare,
			IsActive:        true,
		}).Error)
	}
	require.NoError(t, conn.Create(&models.User{Email: "a@example.com", DisplayName: "A", EnergyBalance: 120}).Error)
	require.NoError(t, conn.Create(&models.User{Email: "b@example.com", DisplayName: "B", EnergyBalance: 30}).Error)

	seedOrder(t, conn, enums.OrderStatusCompleted, enums.CheckoutPhaseCompleted, 2500)
	seedOrder(t, conn, enums.OrderStatusCompleted, enums.CheckoutPhaseCompleted, 1500)
	seedOrder(t, conn, enums.OrderStatusFailed, enums.CheckoutPhaseFailed, 9900)
	last := seedOrder(t, conn, enums.OrderStatusInitiating, enums.CheckoutPhaseInitiating, 700)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalProducts:   2,
		TotalStock:      11,
		TotalOrders:     4,
		CompletedOrders: 2,
		RevenueCents:    4000,
		TotalEnergy:     150,
	}, stats)

	orders, err := svc.RecentOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, last.ID, orders[0].ID)

	limited, err := svc.RecentOrders(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	products, err := svc.Products(ctx, 0)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Relic 0", products[0].Name)
}
