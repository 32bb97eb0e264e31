package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/grameenmart/storefront/api/responses"
	"github.com/grameenmart/storefront/api/validators"
	"github.com/grameenmart/storefront/internal/customers"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/pagination"
)

// Reloader refreshes a cached view from its backend.
type Reloader interface {
	Reload(ctx context.Context) error
}

type setBannerRequest struct {
	Text string `json:"text"`
}

type reloadResponse struct {
	Reloaded []string `json:"reloaded"`
}

func AdminListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeListing(w, r, logg, items)
	}
}

// writeListing answers with the whole slice unless limit or cursor is given,
// in which case one page is returned.
func writeListing[T any](w http.ResponseWriter, r *http.Request, logg *logger.Logger, items []T) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	params := pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")}
	if !params.Requested() {
		responses.WriteSuccess(w, items)
		return
	}
	page, err := pagination.Slice(items, params)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
		return
	}
	responses.WriteSuccess(w, page)
}

func AdminDeleteCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		mobile := strings.TrimSpace(chi.URLParam(r, "mobile"))
		if err := svc.Delete(r.Context(), mobile); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminSetBanner stores the banner text. Blank text restores the default.
func AdminSetBanner(svc BannerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner unavailable"))
			return
		}

		var payload setBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Set(r.Context(), payload.Text); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

// AdminReload refreshes every named view concurrently and fails if any of
// them fails.
func AdminReload(views map[string]Reloader, timeout time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		names := make([]string, 0, len(views))
		g, gctx := errgroup.WithContext(ctx)
		for name, view := range views {
			if view == nil {
				continue
			}
			names = append(names, name)
			name, view := name, view
			g.Go(func() error {
				if err := view.Reload(gctx); err != nil {
					return pkgerrors.Backend(err, "reload "+name)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "views", names), "views reloaded")
		}
		responses.WriteSuccess(w, reloadResponse{Reloaded: names})
	}
}
