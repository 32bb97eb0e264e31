package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grameenmart/storefront/api/responses"
	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/internal/dataproxy"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
)

// DataProxy serves the single-endpoint data protocol used by proxy-backed
// storefronts. It answers {result} or {error}: 400 for an unknown action or
// a malformed body, 500 for anything else.
func DataProxy(svc dataproxy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteJSON(w, http.StatusInternalServerError, dataclient.ProxyResponse{Error: "data proxy unavailable"})
			return
		}

		var req dataclient.ProxyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responses.WriteJSON(w, http.StatusBadRequest, dataclient.ProxyResponse{Error: "Invalid request body"})
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDataOp(ctx, "proxy", req.Table, req.Action.String())
		}

		result, err := svc.Dispatch(ctx, req)
		if err != nil {
			status := http.StatusInternalServerError
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				status = http.StatusBadRequest
			}
			if logg != nil {
				if status >= http.StatusInternalServerError {
					logg.Error(ctx, "data proxy failed", err)
				} else {
					logg.Warn(ctx, "data proxy rejected: "+err.Error())
				}
			}
			responses.WriteJSON(w, status, dataclient.ProxyResponse{Error: proxyErrorMessage(err)})
			return
		}
		responses.WriteJSON(w, http.StatusOK, dataclient.ProxyResponse{Result: result})
	}
}

// proxyErrorMessage strips the code prefix from typed errors so clients see
// the same text the handler would have raised.
func proxyErrorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && errors.Unwrap(typed) == nil {
		return typed.Message()
	}
	return err.Error()
}
