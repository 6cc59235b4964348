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
	// SSActivewearAPIURL is the production API endpoint
	SSActivewearAPIURL = "https://api.ssactivewear.com"

	ssActivewearDefaultPageSize = 500
	ssActivewearMaxPages        = 1000
)

// Errors for S&S Activewear configuration
var (
	ErrSSActivewearConfigMissingAccount = errors.New("ssactivewear: account number is required")
	ErrSSActivewearConfigMissingAPIKey  = errors.New("ssactivewear: api key is required")
)

// SSActivewearConfig holds configuration for the S&S Activewear API
type SSActivewearConfig struct {
	// AccountNumber and APIKey are sent as HTTP basic credentials
	AccountNumber  string
	APIKey         string
	BaseURL        string
	PageSize       int
	TimeoutSeconds int
	RatePerMinute  int
}

// Validate validates the configuration and fills defaults
func (c *SSActivewearConfig) Validate() error {
	if c.AccountNumber == "" {
		return ErrSSActivewearConfigMissingAccount
	}
	if c.APIKey == "" {
		return ErrSSActivewearConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = SSActivewearAPIURL
	}
	if c.PageSize <= 0 {
		c.PageSize = ssActivewearDefaultPageSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// SSActivewearConnector implements SupplierConnector for S&S Activewear.
// The S&S product feed is SKU level; rows are grouped into one RawProduct per style.
type SSActivewearConnector struct {
	config *SSActivewearConfig
	core   *httpCore
}

// NewSSActivewearConnector creates a new S&S Activewear connector
func NewSSActivewearConnector(config *SSActivewearConfig, opts CoreOptions) (*SSActivewearConnector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	auth := BasicAuth{Username: config.AccountNumber, Password: config.APIKey}
	return &SSActivewearConnector{
		config: config,
		core:   newHTTPCore(integration.SupplierSSActivewear, config.BaseURL, timeout, auth, opts),
	}, nil
}

// SupplierID implements SupplierConnector
func (c *SSActivewearConnector) SupplierID() integration.SupplierID {
	return integration.SupplierSSActivewear
}

type ssRowRef struct {
	StyleID json.Number `json:"styleID"`
}

// FetchProducts implements SupplierConnector
func (c *SSActivewearConnector) FetchProducts(ctx context.Context) ([]integration.RawProduct, error) {
	var rows []json.RawMessage
	for page := 1; page <= ssActivewearMaxPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("perPage", strconv.Itoa(c.config.PageSize))

		body, err := c.core.getJSON(ctx, "/v2/products/", q)
		if err != nil {
			return nil, err
		}
		items, err := decodeItems(c.SupplierID(), body, "products", "data")
		if err != nil {
			return nil, err
		}
		rows = append(rows, items...)
		if len(items) < c.config.PageSize {
			break
		}
	}
	return c.groupByStyle(rows)
}

// FetchProduct implements SupplierConnector; id is the S&S style id
func (c *SSActivewearConnector) FetchProduct(ctx context.Context, id string) (*integration.RawProduct, error) {
	q := url.Values{}
	q.Set("style", id)
	body, err := c.core.getJSON(ctx, "/v2/products/", q)
	if err != nil {
		if integration.IsKind(err, integration.ErrorKindNotFound) {
			return nil, integration.NotFoundError(c.SupplierID(), id)
		}
		return nil, err
	}
	rows, err := decodeItems(c.SupplierID(), body, "products", "data")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, integration.NotFoundError(c.SupplierID(), id)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, integration.InvalidResponseError(c.SupplierID(), err)
	}
	return &integration.RawProduct{
		SupplierID: c.SupplierID(),
		ExternalID: id,
		Payload:    payload,
		FetchedAt:  time.Now(),
	}, nil
}

// groupByStyle folds SKU rows into one payload per style, keeping feed order
func (c *SSActivewearConnector) groupByStyle(rows []json.RawMessage) ([]integration.RawProduct, error) {
	order := []string{}
	grouped := map[string][]json.RawMessage{}
	for _, row := range rows {
		var ref ssRowRef
		if err := json.Unmarshal(row, &ref); err != nil {
			return nil, integration.InvalidResponseError(c.SupplierID(), err)
		}
		key := ref.StyleID.String()
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	now := time.Now()
	out := make([]integration.RawProduct, 0, len(order))
	for _, style := range order {
		payload, err := json.Marshal(grouped[style])
		if err != nil {
			return nil, integration.InvalidResponseError(c.SupplierID(), err)
		}
		out = append(out, integration.RawProduct{
			SupplierID: c.SupplierID(),
			ExternalID: style,
			Payload:    payload,
			FetchedAt:  now,
		})
	}
	return out, nil
}

// TestConnection implements SupplierConnector
func (c *SSActivewearConnector) TestConnection(ctx context.Context) bool {
	return c.core.testConnection(ctx, "/v2/categories/", nil)
}

// Ensure SSActivewearConnector implements SupplierConnector
var _ integration.SupplierConnector = (*SSActivewearConnector)(nil)
