package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

func TestGetProduct(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ctx := context.Background()
	active := &models.Product{
		Name:            "Chrono Shard",
		DimensionalCode: "DIM-7",
		PriceCents:      4200,
		EnergyCost:      12,
		CurrentStock:    3,
		RarityLevel:     enums.RarityLegendary,
		StockMood:       enums.StockMoodScarce,
		IsActive:        true,
	}
	require.NoError(t, repo.Create(ctx, active))
	retired := &models.Product{Name: "Old", DimensionalCode: "DIM-0", PriceCents: 1, RarityLevel: enums.RarityCommon, IsActive: true}
	require.NoError(t, repo.Create(ctx, retired))
	require.NoError(t, conn.Model(retired).UpdateColumn("is_active", false).Error)

	got, err := svc.GetProduct(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), got.PriceCents)
	assert.Equal(t, 3, got.CurrentStock)
	assert.Equal(t, enums.RarityLegendary, got.RarityLevel)

	_, err = svc.GetProduct(ctx, retired.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, conn.Model(active).UpdateColumn("current_stock", 1).Error)
	got, err = svc.GetProduct(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStock)

	batch, err := svc.GetProducts(ctx, []uuid.UUID{active.ID, retired.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "Chrono Shard", batch[active.ID].Name)
	assert.Equal(t, 1, batch[active.ID].CurrentStock)
}
