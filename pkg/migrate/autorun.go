package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db"
	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

// MaybeRunDev migrates automatically when the app runs in dev with the auto-migrate flag
// enabled. Postgres gets the embedded goose migrations; sqlite (local mode) is migrated
// from the gorm models because the SQL files use Postgres-only syntax.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	driver := client.Driver()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": driver})
	logg.Info(ctx, "migrate.dev_autorun_start")

	if driver == db.DriverSQLite {
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("sqlite auto-migrate: %w", err)
		}
		logg.Info(ctx, "migrate.dev_autorun_complete")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.dev_autorun_complete")
	return nil
}
