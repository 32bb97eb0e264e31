package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/grameenmart/storefront/api"
	"github.com/grameenmart/storefront/api/controllers"
	"github.com/grameenmart/storefront/api/routes"
	"github.com/grameenmart/storefront/internal/auth"
	"github.com/grameenmart/storefront/internal/binding"
	"github.com/grameenmart/storefront/internal/bootstrap"
	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/catalog"
	"github.com/grameenmart/storefront/internal/checkout"
	"github.com/grameenmart/storefront/internal/cron"
	"github.com/grameenmart/storefront/internal/customers"
	"github.com/grameenmart/storefront/internal/dataproxy"
	"github.com/grameenmart/storefront/pkg/auth/session"
	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/metrics"
	"github.com/grameenmart/storefront/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	res, err := bootstrap.Open(ctx, cfg, logg, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	deps, err := buildDependencies(cfg, logg, reg, res)
	if err != nil {
		return err
	}
	housekeeping, err := buildHousekeeping(cfg, logg, reg, res, deps.ReloadTargets)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	cfg.App.Port = port
	server := api.NewServer(cfg, routes.NewRouter(deps))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    server.Addr,
		"backend": cfg.Data.Backend,
		"admin":   deps.Auth != nil,
		"proxy":   deps.DataProxy != nil,
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	if housekeeping != nil {
		g.Go(func() error { return housekeeping.Run(gctx) })
	}
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, reg *prometheus.Registry, res *bootstrap.Resources) (routes.Dependencies, error) {
	var deps routes.Dependencies

	products, err := binding.NewProducts(res.Products)
	if err != nil {
		return deps, err
	}
	customerBinding, err := binding.NewCustomers(res.Customers)
	if err != nil {
		return deps, err
	}
	banner, err := binding.NewBanner(res.Blobs)
	if err != nil {
		return deps, err
	}

	catalogSvc, err := catalog.NewService(products, logg, catalog.WithMaxImageBytes(int(cfg.Media.MaxImageBytes())))
	if err != nil {
		return deps, err
	}
	customerSvc, err := customers.NewService(customerBinding)
	if err != nil {
		return deps, err
	}
	cartSvc, err := cart.NewService(cart.NewStore(res.Blobs, cfg.Cart.SessionTTL, time.Now), products)
	if err != nil {
		return deps, err
	}
	checkoutSvc, err := checkout.NewService(cartSvc, customerBinding, checkout.Storefront{
		Name:           cfg.Checkout.StoreName,
		WhatsAppNumber: cfg.Checkout.WhatsAppNumber,
		DeliveryNote:   cfg.Checkout.DeliveryNote,
	}, logg, checkout.WithMetrics(metrics.NewOrderMetrics(reg)))
	if err != nil {
		return deps, err
	}

	pingers := map[string]controllers.Pinger{"blobs": res.Blobs}
	if res.DB != nil {
		pingers["db"] = res.DB
	}
	if res.Redis != nil {
		pingers["redis"] = res.Redis
	}

	deps = routes.Dependencies{
		Config:    cfg,
		Logger:    logg,
		Pingers:   pingers,
		Gatherer:  reg,
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Banner:    banner,
		Carts:     cartSvc,
		Checkout:  checkoutSvc,
		ReloadTargets: map[string]controllers.Reloader{
			"products":  products,
			"customers": customerBinding,
			"banner":    banner,
		},
		MaxImageBytes: cfg.Media.MaxImageBytes(),
	}

	if cfg.Admin.Enabled() && cfg.JWT.Secret != "" {
		sessions, err := session.NewManager(res.Blobs, cfg.JWT.TTL())
		if err != nil {
			return deps, err
		}
		authSvc, err := auth.NewService(auth.ServiceParams{
			Admin:          cfg.Admin,
			JWTConfig:      cfg.JWT,
			SessionManager: sessions,
		})
		if err != nil {
			return deps, err
		}
		deps.Auth = authSvc
		deps.Sessions = sessions
		if res.Redis != nil {
			deps.LoginLimiter = res.Redis
		}
	} else {
		logg.Warn(context.Background(), "admin credentials or jwt secret missing, admin api disabled")
	}

	if cfg.FeatureFlags.ProxyEndpoint && res.SQLProducts != nil {
		proxySvc, err := dataproxy.NewService(res.SQLProducts, res.SQLCustomers)
		if err != nil {
			return deps, err
		}
		deps.DataProxy = proxySvc
	}

	return deps, nil
}

// buildHousekeeping returns nil when there is nothing to schedule.
func buildHousekeeping(cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer, res *bootstrap.Resources, views map[string]controllers.Reloader) (*cron.Service, error) {
	if cfg.Housekeeping.Interval <= 0 {
		return nil, nil
	}
	registry, err := cron.NewRegistry()
	if err != nil {
		return nil, err
	}
	if bolt, ok := res.Blobs.(*storage.BoltStore); ok {
		job, err := cron.NewPurgeExpiredJob(bolt, logg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	if cfg.Housekeeping.ReloadBindings {
		targets := make(map[string]cron.Reloader, len(views))
		for name, view := range views {
			targets[name] = view
		}
		job, err := cron.NewReloadJob(targets)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	if registry.Len() == 0 {
		return nil, nil
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Metrics:  metrics.NewJobMetrics(reg),
		Interval: cfg.Housekeeping.Interval,
	})
}
