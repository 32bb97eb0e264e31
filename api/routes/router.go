package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grameenmart/storefront/api/controllers"
	"github.com/grameenmart/storefront/api/middleware"
	"github.com/grameenmart/storefront/internal/auth"
	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/catalog"
	"github.com/grameenmart/storefront/internal/checkout"
	"github.com/grameenmart/storefront/internal/customers"
	"github.com/grameenmart/storefront/internal/dataproxy"
	"github.com/grameenmart/storefront/pkg/auth/session"
	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/logger"
)

// Dependencies carries everything the HTTP surface is built from. Nil
// optional members switch their routes off: without Auth there is no admin
// API, without DataProxy there is no proxy endpoint.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Pingers  map[string]controllers.Pinger
	Gatherer prometheus.Gatherer

	Catalog   catalog.Service
	Customers customers.Service
	Banner    controllers.BannerService
	Carts     cart.Service
	Checkout  checkout.Service

	Auth          auth.Service
	Sessions      session.AccessSessionChecker
	LoginLimiter  middleware.RateLimiterStore
	ReloadTargets map[string]controllers.Reloader
	DataProxy     dataproxy.Service
	MaxImageBytes int64
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Pingers, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.DataProxy != nil {
		path := cfg.Data.ProxyEndpointPath
		if path == "" {
			path = "/api/data-proxy"
		}
		r.Post(path, controllers.DataProxy(deps.DataProxy, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/banner", controllers.GetBanner(deps.Banner, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Catalog, logg))
			r.Get("/{productId}/units", controllers.ProductUnits(deps.Catalog, logg))
		})

		r.Get("/customers/{mobile}", controllers.LookupCustomer(deps.Customers, logg))

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", controllers.CreateCart(logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.Checkout, logg))
				r.Delete("/", controllers.ClearCart(deps.Carts, logg))
				r.Post("/items", controllers.AddCartItem(deps.Carts, logg))
				r.Delete("/items", controllers.RemoveCartItem(deps.Carts, logg))
				r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			})
		})
	})

	if deps.Auth != nil {
		r.Route("/api/admin/v1", func(r chi.Router) {
			loginPolicy := middleware.NewAuthRateLimitPolicy("admin_login", cfg.Admin.LoginWindow, cfg.Admin.LoginIPLimit, cfg.Admin.LoginUserLimit)
			r.With(middleware.AuthRateLimit(loginPolicy, deps.LoginLimiter, logg)).
				Post("/login", controllers.AdminLogin(deps.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(cfg.JWT, deps.Sessions, logg))

				r.Post("/logout", controllers.AdminLogout(deps.Auth, logg))

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.AdminListProducts(deps.Catalog, logg))
					r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
					r.Put("/", controllers.AdminSaveProducts(deps.Catalog, logg))
					r.Get("/export.xlsx", controllers.AdminExportProducts(deps.Catalog, logg))
					r.Route("/{productId}", func(r chi.Router) {
						r.Patch("/", controllers.AdminUpdateProduct(deps.Catalog, logg))
						r.Delete("/", controllers.AdminDeleteProduct(deps.Catalog, logg))
						r.Post("/toggle-stock", controllers.AdminToggleStock(deps.Catalog, logg))
						r.Put("/image", controllers.AdminUploadProductImage(deps.Catalog, deps.MaxImageBytes, logg))
						r.Delete("/image", controllers.AdminRemoveProductImage(deps.Catalog, logg))
					})
				})

				r.Route("/customers", func(r chi.Router) {
					r.Get("/", controllers.AdminListCustomers(deps.Customers, logg))
					r.Delete("/{mobile}", controllers.AdminDeleteCustomer(deps.Customers, logg))
				})

				r.Get("/banner", controllers.GetBanner(deps.Banner, logg))
				r.Put("/banner", controllers.AdminSetBanner(deps.Banner, logg))

				r.Post("/reload", controllers.AdminReload(deps.ReloadTargets, cfg.Admin.ReloadTimeout, logg))
			})
		})
	}

	return r
}
