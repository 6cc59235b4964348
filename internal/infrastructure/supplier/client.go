package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a supplier API (20MB)
const maxResponseSize = 20 * 1024 * 1024

// maxErrorMessage bounds the upstream body echoed into error messages
const maxErrorMessage = 256

// httpCore is the request pipeline shared by the HTTP connectors:
// rate limit -> authenticate -> send -> classify -> decode, wrapped in the retry policy.
type httpCore struct {
	supplier   integration.SupplierID
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	limiter    *rate.Limiter
	retryer    *Retryer
	logger     *zap.Logger
}

// CoreOptions carries the dependencies every HTTP connector accepts
type CoreOptions struct {
	HTTPClient    *http.Client
	Retryer       *Retryer
	Logger        *zap.Logger
	RatePerMinute int
}

func newHTTPCore(supplier integration.SupplierID, baseURL string, timeout time.Duration, auth Authenticator, opts CoreOptions) *httpCore {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retryer := opts.Retryer
	if retryer == nil {
		retryer = NewRetryer(DefaultRetryPolicy())
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), opts.RatePerMinute)
	}
	return &httpCore{
		supplier:   supplier,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		auth:       auth,
		limiter:    limiter,
		retryer:    retryer,
		logger:     logger.With(zap.String("supplier_id", supplier.String())),
	}
}

// getJSON performs a GET with retries and returns the raw body
func (c *httpCore) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var body []byte
	err := c.retryer.Do(ctx, c.supplier, func(ctx context.Context) error {
		b, err := c.do(ctx, http.MethodGet, path, query)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// do performs a single attempt
func (c *httpCore) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, integration.NetworkError(c.supplier, err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.supplier, err)
	}
	req.Header.Set("Accept", "application/json")

	if c.auth != nil {
		if err := c.auth.Apply(ctx, req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, integration.NetworkError(c.supplier, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, integration.NetworkError(c.supplier, err)
	}

	c.logger.Debug("Supplier request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.auth.(Invalidator); ok {
				inv.Invalidate()
			}
		}
		return nil, integration.NewStatusError(c.supplier, resp.StatusCode, errorMessage(body, resp.Status))
	}
	return body, nil
}

// errorMessage extracts a readable message from an upstream error body
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fallback
	}
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	return msg
}

// decodeItems accepts either a bare JSON array or an object wrapping the
// array under one of the given keys
func decodeItems(supplier integration.SupplierID, body []byte, keys ...string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, integration.InvalidResponseError(supplier, err)
		}
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, integration.InvalidResponseError(supplier, err)
	}
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, integration.InvalidResponseError(supplier, err)
		}
		return items, nil
	}
	return nil, integration.InvalidResponseError(supplier, errors.New("no item list in response"))
}

// testConnection performs a cheap call against path and reports success
func (c *httpCore) testConnection(ctx context.Context, path string, query url.Values) bool {
	_, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		c.logger.Warn("Supplier connection test failed", zap.Error(err))
		return false
	}
	return true
}
