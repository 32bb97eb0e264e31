package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/grameenmart/storefront/internal/bootstrap"
	"github.com/grameenmart/storefront/internal/catalogimport"
	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-import"})

	_ = godotenv.Load()

	path := flag.String("file", "products.csv", "CSV file with one product per row")
	dryRun := flag.Bool("dry-run", false, "validate and summarize without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "catalog-import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"file":    *path,
		"backend": cfg.Data.Backend,
		"dry_run": *dryRun,
	})

	products, err := run(ctx, cfg, logg, *path, *dryRun)
	if err != nil {
		logg.Error(ctx, "catalog import failed", err)
		os.Exit(1)
	}
	if err := catalogimport.Summarize(products).Write(os.Stdout); err != nil {
		logg.Error(ctx, "failed to print summary", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "count", len(products)), "catalog import finished")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, path string, dryRun bool) ([]models.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	now := time.Now()
	if dryRun {
		return catalogimport.Parse(file, now)
	}

	res, err := bootstrap.Open(ctx, cfg, logg, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logg.Error(ctx, "error closing resources", err)
		}
	}()

	return catalogimport.Import(ctx, file, res.Products, now)
}
