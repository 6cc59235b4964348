package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

const (
	// ASColourAPIURL is the production API endpoint
	ASColourAPIURL = "https://api.ascolour.com"

	asColourDefaultPageSize = 100
	asColourMaxPages        = 500
)

// Errors for AS Colour configuration
var (
	ErrASColourConfigMissingAPIKey = errors.New("ascolour: subscription key is required")
)

// ASColourConfig holds configuration for the AS Colour API
type ASColourConfig struct {
	// APIKey is the subscription key sent on every request
	APIKey string
	// Email and Password log in for account pricing and stock (optional)
	Email    string
	Password string
	// BaseURL defaults to ASColourAPIURL
	BaseURL        string
	PageSize       int
	TimeoutSeconds int
	RatePerMinute  int
}

// Validate validates the configuration and fills defaults
func (c *ASColourConfig) Validate() error {
	if c.APIKey == "" {
		return ErrASColourConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = ASColourAPIURL
	}
	if c.PageSize <= 0 {
		c.PageSize = asColourDefaultPageSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// ASColourConnector implements SupplierConnector for AS Colour
type ASColourConnector struct {
	config *ASColourConfig
	core   *httpCore
}

// NewASColourConnector creates a new AS Colour connector
func NewASColourConnector(config *ASColourConfig, opts CoreOptions) (*ASColourConnector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	auth := NewLoginTokenAuth(integration.SupplierASColour, config.BaseURL+"/v1/api/authentication",
		config.APIKey, config.Email, config.Password, opts.HTTPClient)
	return &ASColourConnector{
		config: config,
		core:   newHTTPCore(integration.SupplierASColour, config.BaseURL, timeout, auth, opts),
	}, nil
}

// SupplierID implements SupplierConnector
func (c *ASColourConnector) SupplierID() integration.SupplierID {
	return integration.SupplierASColour
}

// asColourStyleRef is the subset of a style needed to key a RawProduct
type asColourStyleRef struct {
	StyleCode string `json:"styleCode"`
	Code      string `json:"code"`
}

func (r asColourStyleRef) id() string {
	if r.StyleCode != "" {
		return r.StyleCode
	}
	return r.Code
}

// FetchProducts implements SupplierConnector, walking pageNumber until a short page
func (c *ASColourConnector) FetchProducts(ctx context.Context) ([]integration.RawProduct, error) {
	var out []integration.RawProduct
	for page := 1; page <= asColourMaxPages; page++ {
		q := url.Values{}
		q.Set("pageNumber", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(c.config.PageSize))

		body, err := c.core.getJSON(ctx, "/v1/catalog/products", q)
		if err != nil {
			return nil, err
		}
		items, err := decodeItems(c.SupplierID(), body, "data", "items", "products")
		if err != nil {
			return nil, err
		}
		now := time.Now()
		for _, item := range items {
			var ref asColourStyleRef
			if err := json.Unmarshal(item, &ref); err != nil {
				return nil, integration.InvalidResponseError(c.SupplierID(), err)
			}
			out = append(out, integration.RawProduct{
				SupplierID: c.SupplierID(),
				ExternalID: ref.id(),
				Payload:    item,
				FetchedAt:  now,
			})
		}
		if len(items) < c.config.PageSize {
			break
		}
	}
	return out, nil
}

// FetchProduct implements SupplierConnector
func (c *ASColourConnector) FetchProduct(ctx context.Context, id string) (*integration.RawProduct, error) {
	body, err := c.core.getJSON(ctx, "/v1/catalog/products/"+url.PathEscape(id), nil)
	if err != nil {
		if integration.IsKind(err, integration.ErrorKindNotFound) {
			return nil, integration.NotFoundError(c.SupplierID(), id)
		}
		return nil, err
	}
	// Single-style responses may also be wrapped in {"data": {...}}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Data) > 0 && wrapper.Data[0] == '{' {
		body = wrapper.Data
	}
	return &integration.RawProduct{
		SupplierID: c.SupplierID(),
		ExternalID: id,
		Payload:    body,
		FetchedAt:  time.Now(),
	}, nil
}

// TestConnection implements SupplierConnector
func (c *ASColourConnector) TestConnection(ctx context.Context) bool {
	return c.core.testConnection(ctx, "/v1/catalog/colours", nil)
}

// Ensure ASColourConnector implements SupplierConnector
var _ integration.SupplierConnector = (*ASColourConnector)(nil)
