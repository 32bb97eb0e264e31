package migrate

import (
	"context"
	"fmt"

	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/db"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/logger"
)

// MaybeRunDev brings the products and customers tables up to date when the
// app runs in dev mode with auto-migrate on. SQLite databases are migrated
// from the models; Postgres runs the embedded goose migrations.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	conn := client.DB()
	meta := map[string]any{"env": cfg.App.Env, "dialect": conn.Dialector.Name()}
	ctx = logg.WithFields(ctx, meta)

	if conn.Dialector.Name() == "sqlite" {
		logg.Info(ctx, "auto-migrating sqlite tables (dev auto-run)")
		if err := conn.WithContext(ctx).AutoMigrate(&models.Product{}, &models.Customer{}); err != nil {
			return fmt.Errorf("auto-migrating sqlite: %w", err)
		}
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running Goose migrations (dev auto-run)")
	if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
