package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/grameenmart/storefront/api/responses"
	"github.com/grameenmart/storefront/api/validators"
	"github.com/grameenmart/storefront/internal/cart"
	"github.com/grameenmart/storefront/internal/checkout"
	checkoutrules "github.com/grameenmart/storefront/pkg/checkout"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
)

// CreateCart hands out a fresh session id. Nothing is stored until the first
// item is added.
func CreateCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusCreated, createCartResponse{SessionID: uuid.NewString()})
	}
}

// GetCart returns the priced cart. Optional mobile and points query
// parameters preview a loyalty redemption.
func GetCart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}

		points, err := validators.ParseQueryInt(r, "points", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mobile := strings.TrimSpace(r.URL.Query().Get("mobile"))

		result, err := svc.Quote(ctx, sessionID, mobile, points)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuoteResponse(result))
	}
}

func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.AddItem(ctx, sessionID, cart.AddItemInput{
			ProductID:    payload.ProductID,
			SelectedUnit: payload.SelectedUnit,
			Quantity:     payload.ActualQuantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(updated))
	}
}

// RemoveCartItem takes one add-action off a line identified by the
// productId and selectedUnit query parameters.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}

		query := r.URL.Query()
		productID, err := strconv.ParseInt(strings.TrimSpace(query.Get("productId")), 10, 64)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId query parameter must be numeric"))
			return
		}
		unit := enums.SelectedUnit(strings.TrimSpace(query.Get("selectedUnit")))
		if unit == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "selectedUnit query parameter is required"))
			return
		}

		updated, err := svc.RemoveItem(ctx, sessionID, productID, unit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(updated))
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		if err := svc.Clear(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// Checkout settles the cart and returns the WhatsApp hand-off.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Checkout(ctx, checkout.Input{
			SessionID: sessionID,
			Customer: checkoutrules.CustomerDetails{
				Name:     payload.Name,
				Mobile:   payload.Mobile,
				Place:    payload.Place,
				Landmark: payload.Landmark,
			},
			PointsToRedeem: payload.PointsToRedeem,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "mobile", result.Customer.Mobile), "order placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}
