// Package legacy bridges SwiftPOS to the store's previous POS backend. The
// bridge keeps the old reporting pipeline fed while registers move to this
// service: checkout lines are mirrored to the legacy branch-checkout
// endpoint, and the legacy store/branch data remains readable.
//
// The legacy API is slow to fail when it is down, so every call runs behind
// a circuit breaker; an open breaker turns calls into immediate errors that
// callers treat as soft failures.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
	"github.com/swiftpos/swiftpos/internal/domain/store"
)

// maxBodySize caps how much of a legacy response is read.
const maxBodySize = 4 << 20

// Config configures the legacy bridge client.
type Config struct {
	// BaseURL is the legacy API root, e.g. https://pos.example.com/api.
	BaseURL string
	Timeout time.Duration
}

// Client is an HTTP client for the legacy POS API.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	lg      *zap.Logger
}

var _ sale.Recorder = (*Client)(nil)

// NewClient creates a legacy bridge client. The breaker opens after five
// consecutive failures and probes again after 30 seconds.
func NewClient(cfg Config, lg *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "legacy-pos",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Info("legacy bridge breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		base:    cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		lg:      lg,
	}
}

// StoreName fetches the store display name. Missing names resolve to "".
func (c *Client) StoreName(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/POS/GetStore", nil, nil)
	if err != nil {
		return "", err
	}
	return decodeStoreName(body)
}

// UpdateStoreName pushes a new store display name to the legacy backend.
func (c *Client) UpdateStoreName(ctx context.Context, name string) error {
	payload, err := json.Marshal(map[string]string{"StoreName": name})
	if err != nil {
		return errors.Wrap(err, "marshal store name")
	}
	_, err = c.do(ctx, http.MethodPut, "/POS/UpdateStore", nil, payload)
	return err
}

// Branches lists the branch codes registered in the legacy backend.
func (c *Client) Branches(ctx context.Context) ([]store.Branch, error) {
	body, err := c.do(ctx, http.MethodGet, "/Branch/GetAll", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeBranches(body)
}

// RecordCheckout mirrors one sold line to the legacy branch-checkout
// endpoint. The legacy API takes everything as query parameters on a POST
// with an empty body; that is its contract, not a choice made here.
func (c *Client) RecordCheckout(ctx context.Context, rec sale.CheckoutRecord) error {
	q := url.Values{}
	q.Set("BranchCode", rec.BranchCode)
	q.Set("Category", rec.Category)
	q.Set("ItemName", rec.ItemName)
	q.Set("PricePerItem", rec.PricePerItem.String())
	q.Set("Quantity", strconv.Itoa(rec.Quantity))

	_, err := c.do(ctx, http.MethodPost, "/BranchCheckout/Create", q, []byte{})
	return err
}

// CheckoutHistory lists the checkout records stored in the legacy backend.
func (c *Client) CheckoutHistory(ctx context.Context) ([]sale.CheckoutRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/BranchCheckout/GetAll", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeCheckoutRecords(body)
}

// do performs one request through the breaker and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		u := c.base + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}
		if method == http.MethodPut {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "*/*")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", method, path)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, errors.Wrap(err, "read body")
		}
		return data, nil
	})
}
