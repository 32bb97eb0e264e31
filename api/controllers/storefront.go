package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grameenmart/storefront/api/responses"
	"github.com/grameenmart/storefront/api/validators"
	"github.com/grameenmart/storefront/internal/catalog"
	"github.com/grameenmart/storefront/internal/customers"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
)

// BannerService reads and replaces the promotional banner text.
type BannerService interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, text string) error
}

type unitOptionsResponse struct {
	ProductID int64                `json:"productId"`
	Unit      enums.ProductUnit    `json:"unit"`
	Options   []enums.SelectedUnit `json:"options"`
	Default   enums.SelectedUnit   `json:"default"`
}

type bannerResponse struct {
	Text string `json:"text"`
}

// ListProducts serves the shop catalog. The storefront only filters by
// category; "all" or no value returns everything.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter := catalog.ParseFilter(strings.TrimSpace(r.URL.Query().Get("category")))
		if !filter.IsValid() || filter == catalog.FilterNoImage {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category must be one of all, vegetable, fruit"))
			return
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductUnits lists the units a shopper may pick for a product.
func ProductUnits(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, unitOptionsResponse{
			ProductID: product.ID,
			Unit:      product.Unit,
			Options:   product.Unit.UnitOptions(),
			Default:   product.Unit.DefaultSelectedUnit(),
		})
	}
}

func GetBanner(svc BannerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner unavailable"))
			return
		}
		text, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bannerResponse{Text: text})
	}
}

// LookupCustomer returns the saved profile for a returning shopper.
func LookupCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		mobile := strings.TrimSpace(chi.URLParam(r, "mobile"))
		customer, err := svc.Lookup(r.Context(), mobile)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}
