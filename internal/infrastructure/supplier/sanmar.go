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
	// SanMarAPIURL is the production API endpoint
	SanMarAPIURL = "https://api.sanmar.com"
	// SanMarTokenURL is the OAuth2 token endpoint
	SanMarTokenURL = "https://api.sanmar.com/oauth/token"

	sanMarDefaultPageSize = 100
	sanMarMaxPages        = 1000
)

// Errors for SanMar configuration
var (
	ErrSanMarConfigMissingClientID     = errors.New("sanmar: client id is required")
	ErrSanMarConfigMissingClientSecret = errors.New("sanmar: client secret is required")
)

// SanMarConfig holds configuration for the SanMar API
type SanMarConfig struct {
	ClientID       string
	ClientSecret   string
	Scopes         []string
	BaseURL        string
	TokenURL       string
	PageSize       int
	TimeoutSeconds int
	RatePerMinute  int
}

// Validate validates the configuration and fills defaults
func (c *SanMarConfig) Validate() error {
	if c.ClientID == "" {
		return ErrSanMarConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrSanMarConfigMissingClientSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = SanMarAPIURL
	}
	if c.TokenURL == "" {
		c.TokenURL = SanMarTokenURL
	}
	if c.PageSize <= 0 {
		c.PageSize = sanMarDefaultPageSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// SanMarConnector implements SupplierConnector for SanMar using OAuth2 client credentials
type SanMarConnector struct {
	config *SanMarConfig
	core   *httpCore
	auth   *OAuth2ClientCredentials
}

// NewSanMarConnector creates a new SanMar connector
func NewSanMarConnector(config *SanMarConfig, opts CoreOptions) (*SanMarConnector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	auth := NewOAuth2ClientCredentials(integration.SupplierSanMar, config.ClientID, config.ClientSecret,
		config.TokenURL, config.Scopes, opts.HTTPClient)
	return &SanMarConnector{
		config: config,
		core:   newHTTPCore(integration.SupplierSanMar, config.BaseURL, timeout, auth, opts),
		auth:   auth,
	}, nil
}

// SupplierID implements SupplierConnector
func (c *SanMarConnector) SupplierID() integration.SupplierID {
	return integration.SupplierSanMar
}

type sanMarPage struct {
	Products   []json.RawMessage `json:"products"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

type sanMarStyleRef struct {
	Style string `json:"style"`
}

// FetchProducts implements SupplierConnector, following totalPages
func (c *SanMarConnector) FetchProducts(ctx context.Context) ([]integration.RawProduct, error) {
	var out []integration.RawProduct
	for page := 1; page <= sanMarMaxPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(c.config.PageSize))

		body, err := c.core.getJSON(ctx, "/v1/products", q)
		if err != nil {
			return nil, err
		}
		var resp sanMarPage
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, integration.InvalidResponseError(c.SupplierID(), err)
		}
		now := time.Now()
		for _, item := range resp.Products {
			var ref sanMarStyleRef
			if err := json.Unmarshal(item, &ref); err != nil {
				return nil, integration.InvalidResponseError(c.SupplierID(), err)
			}
			out = append(out, integration.RawProduct{
				SupplierID: c.SupplierID(),
				ExternalID: ref.Style,
				Payload:    item,
				FetchedAt:  now,
			})
		}
		if page >= resp.TotalPages || len(resp.Products) == 0 {
			break
		}
	}
	return out, nil
}

// FetchProduct implements SupplierConnector
func (c *SanMarConnector) FetchProduct(ctx context.Context, id string) (*integration.RawProduct, error) {
	body, err := c.core.getJSON(ctx, "/v1/products/"+url.PathEscape(id), nil)
	if err != nil {
		if integration.IsKind(err, integration.ErrorKindNotFound) {
			return nil, integration.NotFoundError(c.SupplierID(), id)
		}
		return nil, err
	}
	return &integration.RawProduct{
		SupplierID: c.SupplierID(),
		ExternalID: id,
		Payload:    body,
		FetchedAt:  time.Now(),
	}, nil
}

// TestConnection implements SupplierConnector. A token grant counts as reachability.
func (c *SanMarConnector) TestConnection(ctx context.Context) bool {
	if _, err := c.auth.Token(ctx); err != nil {
		c.core.logger.Warn("Supplier connection test failed")
		return false
	}
	return true
}

// Ensure SanMarConnector implements SupplierConnector
var _ integration.SupplierConnector = (*SanMarConnector)(nil)
