// Package proxy calls the data proxy endpoint. Every operation is a single
// POST carrying {action, table, payload, id, mobile}.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grameenmart/storefront/internal/dataclient"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
)

const defaultTimeout = 10 * time.Second

const (
	responseReadLimit  int64 = 8 << 20
	errorBodyReadLimit int64 = 1024
)

var errEndpointRequired = errors.New("data proxy endpoint is required")

// Client implements dataclient.Client by forwarding to the proxy endpoint.
type Client[T any, K comparable, P any] struct {
	httpClient *http.Client
	endpoint   string
	schema     dataclient.Schema[T, K, P]
}

// Option configures optional client behavior.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func New[T any, K comparable, P any](endpoint string, schema dataclient.Schema[T, K, P], opts ...Option) (*Client[T, K, P], error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}

	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client[T, K, P]{
		httpClient: o.httpClient,
		endpoint:   trimmed,
		schema:     schema,
	}, nil
}

func NewProducts(endpoint string, opts ...Option) (dataclient.ProductClient, error) {
	return New(endpoint, dataclient.ProductSchema, opts...)
}

func NewCustomers(endpoint string, opts ...Option) (dataclient.CustomerClient, error) {
	return New(endpoint, dataclient.CustomerSchema, opts...)
}

func (c *Client[T, K, P]) GetAll(ctx context.Context) ([]T, error) {
	records := []T{}
	result, err := c.call(ctx, dataclient.ProxyRequest{Action: enums.DataActionGetAll})
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return records, nil
	}
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode getAll result")
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Client[T, K, P]) GetByID(ctx context.Context, key K) (*T, error) {
	req := dataclient.ProxyRequest{Action: enums.DataActionGetByID}
	c.schema.WireKey(key, &req)
	result, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, nil
	}
	var record T
	if err := json.Unmarshal(result, &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode getById result")
	}
	return &record, nil
}

func (c *Client[T, K, P]) Add(ctx context.Context, record T) error {
	return c.send(ctx, dataclient.ProxyRequest{Action: enums.DataActionAdd}, record)
}

func (c *Client[T, K, P]) Update(ctx context.Context, key K, patch P) error {
	req := dataclient.ProxyRequest{Action: enums.DataActionUpdate}
	c.schema.WireKey(key, &req)
	return c.send(ctx, req, dataclient.UpdatePayload[P]{Updates: patch})
}

func (c *Client[T, K, P]) Delete(ctx context.Context, key K) error {
	req := dataclient.ProxyRequest{Action: enums.DataActionDelete}
	c.schema.WireKey(key, &req)
	_, err := c.call(ctx, req)
	return err
}

func (c *Client[T, K, P]) SetAll(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.send(ctx, dataclient.ProxyRequest{Action: enums.DataActionSetAll}, records)
}

func (c *Client[T, K, P]) send(ctx context.Context, req dataclient.ProxyRequest, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode proxy payload")
	}
	req.Payload = raw
	_, err = c.call(ctx, req)
	return err
}

func (c *Client[T, K, P]) call(ctx context.Context, req dataclient.ProxyRequest) (json.RawMessage, error) {
	req.Table = c.schema.Table.String()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode proxy request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build proxy request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute proxy request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, statusError(resp), fmt.Sprintf("%s %s failed", req.Table, req.Action))
	}

	var out dataclient.ProxyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseReadLimit)).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode proxy response")
	}
	if out.Error != "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(out.Error), fmt.Sprintf("%s %s failed", req.Table, req.Action))
	}
	return out.Result, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var payload dataclient.ProxyResponse
	if json.Unmarshal(msg, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
