// Package dataproxy serves the data proxy endpoint: it decodes an
// {action, table, ...} request and runs it against the SQL backend.
package dataproxy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
)

// Service dispatches proxy requests to the per-table clients.
type Service interface {
	Dispatch(ctx context.Context, req dataclient.ProxyRequest) (json.RawMessage, error)
}

type service struct {
	products  dataclient.ProductClient
	customers dataclient.CustomerClient
}

func NewService(products dataclient.ProductClient, customers dataclient.CustomerClient) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("products client required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customers client required")
	}
	return &service{products: products, customers: customers}, nil
}

// Dispatch returns the JSON result of the action; mutations return a nil
// result. An unknown action is a validation error, everything else that
// fails is reported as-is.
func (s *service) Dispatch(ctx context.Context, req dataclient.ProxyRequest) (json.RawMessage, error) {
	if !req.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid action")
	}
	table, err := enums.ParseTable(req.Table)
	if err != nil {
		return nil, err
	}
	switch table {
	case enums.TableCustomers:
		return dispatch(ctx, s.customers, dataclient.CustomerSchema, req)
	default:
		return dispatch(ctx, s.products, dataclient.ProductSchema, req)
	}
}

func dispatch[T any, K comparable, P any](ctx context.Context, client dataclient.Client[T, K, P], schema dataclient.Schema[T, K, P], req dataclient.ProxyRequest) (json.RawMessage, error) {
	switch req.Action {
	case enums.DataActionGetAll:
		records, err := client.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(records)

	case enums.DataActionGetByID:
		key, err := wireKey(schema, req)
		if err != nil {
			return nil, err
		}
		record, err := client.GetByID(ctx, key)
		if err != nil {
			return nil, err
		}
		return json.Marshal(record)

	case enums.DataActionAdd:
		var record T
		if err := decodePayload(req.Payload, &record); err != nil {
			return nil, err
		}
		return nil, client.Add(ctx, record)

	case enums.DataActionUpdate:
		key, err := wireKey(schema, req)
		if err != nil {
			return nil, err
		}
		var payload dataclient.UpdatePayload[P]
		if err := decodePayload(req.Payload, &payload); err != nil {
			return nil, err
		}
		return nil, client.Update(ctx, key, payload.Updates)

	case enums.DataActionDelete:
		key, err := wireKey(schema, req)
		if err != nil {
			return nil, err
		}
		return nil, client.Delete(ctx, key)

	case enums.DataActionSetAll:
		var records []T
		if err := decodePayload(req.Payload, &records); err != nil {
			return nil, err
		}
		return nil, client.SetAll(ctx, records)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid action")
}

func wireKey[T any, K comparable, P any](schema dataclient.Schema[T, K, P], req dataclient.ProxyRequest) (K, error) {
	key, ok := schema.KeyFromWire(req)
	if !ok {
		return key, fmt.Errorf("%s is required for %s", schema.Table.KeyColumn(), req.Action)
	}
	return key, nil
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("payload is required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
