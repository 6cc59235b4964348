package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// Authenticator decorates outgoing supplier requests with credentials
type Authenticator interface {
	Apply(ctx context.Context, req *http.Request) error
}

// Invalidator is implemented by authenticators holding a cached token that
// must be dropped after the supplier rejects it
type Invalidator interface {
	Invalidate()
}

// tokenExpirySkew refreshes tokens slightly before they actually expire
const tokenExpirySkew = 30 * time.Second

// ---------------------------------------------------------------------------
// Static credentials
// ---------------------------------------------------------------------------

// BasicAuth sends HTTP basic credentials
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements Authenticator
func (a BasicAuth) Apply(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// APIKeyAuth sends a static key in a request header
type APIKeyAuth struct {
	Header string
	Key    string
}

// Apply implements Authenticator
func (a APIKeyAuth) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set(a.Header, a.Key)
	return nil
}

// ---------------------------------------------------------------------------
// OAuth2 client credentials
// ---------------------------------------------------------------------------

// OAuth2ClientCredentials fetches a bearer token with the client credentials
// grant and caches it until it expires. The token state belongs to this
// instance and is refreshed lazily on the next request after expiry.
type OAuth2ClientCredentials struct {
	supplier   integration.SupplierID
	config     clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewOAuth2ClientCredentials creates the authenticator for a token endpoint
func NewOAuth2ClientCredentials(supplier integration.SupplierID, clientID, clientSecret, tokenURL string, scopes []string, httpClient *http.Client) *OAuth2ClientCredentials {
	return &OAuth2ClientCredentials{
		supplier: supplier,
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Apply implements Authenticator
func (a *OAuth2ClientCredentials) Apply(ctx context.Context, req *http.Request) error {
	tok, err := a.Token(ctx)
	if err != nil {
		return err
	}
	tok.SetAuthHeader(req)
	return nil
}

// Token returns the cached token, fetching a new one when it is missing or
// about to expire
func (a *OAuth2ClientCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != nil && (a.token.Expiry.IsZero() || a.now().Add(tokenExpirySkew).Before(a.token.Expiry)) {
		return a.token, nil
	}

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	tok, err := a.config.Token(ctx)
	if err != nil {
		return nil, tokenError(a.supplier, err)
	}
	a.token = tok
	return tok, nil
}

// tokenError classifies a failed token request. Only a rejection of the
// client credentials is an auth error; token endpoint outages are retried
// like any other supplier call.
func tokenError(supplier integration.SupplierID, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		switch rerr.ErrorCode {
		case "invalid_client", "invalid_grant", "unauthorized_client":
			return &integration.ConnectorError{
				Kind:     integration.ErrorKindAuth,
				Supplier: supplier,
				Status:   status,
				Message:  "client credentials rejected: " + rerr.ErrorCode,
				Attempts: 1,
				Err:      err,
			}
		}
		if status == 0 {
			return integration.InvalidResponseError(supplier, err)
		}
		ce := integration.NewStatusError(supplier, status, "token request failed")
		ce.Err = err
		return ce
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return integration.NetworkError(supplier, err)
	}
	return integration.InvalidResponseError(supplier, err)
}

// Invalidate drops the cached token
func (a *OAuth2ClientCredentials) Invalidate() {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Subscription key + login token (AS Colour)
// ---------------------------------------------------------------------------

// defaultLoginTokenTTL is assumed when a login token carries no exp claim
const defaultLoginTokenTTL = time.Hour

// LoginTokenAuth sends a subscription key on every request and, when an
// account is configured, a bearer token obtained by posting the account
// credentials to the login endpoint. The token's expiry is read from its
// JWT exp claim.
type LoginTokenAuth struct {
	supplier        integration.SupplierID
	loginURL        string
	subscriptionKey string
	email           string
	password        string
	httpClient      *http.Client
	now             func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewLoginTokenAuth creates the authenticator
func NewLoginTokenAuth(supplier integration.SupplierID, loginURL, subscriptionKey, email, password string, httpClient *http.Client) *LoginTokenAuth {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LoginTokenAuth{
		supplier:        supplier,
		loginURL:        loginURL,
		subscriptionKey: subscriptionKey,
		email:           email,
		password:        password,
		httpClient:      httpClient,
		now:             time.Now,
	}
}

// Apply implements Authenticator
func (a *LoginTokenAuth) Apply(ctx context.Context, req *http.Request) error {
	req.Header.Set("Subscription-Key", a.subscriptionKey)
	if a.email == "" || a.password == "" {
		return nil
	}
	tok, err := a.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

// Token returns the cached login token, logging in again when it expired
func (a *LoginTokenAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Add(tokenExpirySkew).Before(a.expiresAt) {
		return a.token, nil
	}

	tok, err := a.login(ctx)
	if err != nil {
		return "", err
	}
	a.token = tok
	a.expiresAt = tokenExpiry(tok, a.now())
	return tok, nil
}

// Invalidate drops the cached token
func (a *LoginTokenAuth) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.expiresAt = time.Time{}
	a.mu.Unlock()
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

func (a *LoginTokenAuth) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"email": a.email, "password": a.password})
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode login: %w", a.supplier, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: failed to create login request: %w", a.supplier, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Subscription-Key", a.subscriptionKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", integration.NetworkError(a.supplier, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", integration.NetworkError(a.supplier, err)
	}
	if resp.StatusCode >= 400 {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", integration.NewStatusError(a.supplier, resp.StatusCode, "login failed")
		}
		return "", &integration.ConnectorError{
			Kind:     integration.ErrorKindAuth,
			Supplier: a.supplier,
			Status:   resp.StatusCode,
			Message:  "login rejected",
			Attempts: 1,
		}
	}

	var lr loginResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		return "", integration.InvalidResponseError(a.supplier, err)
	}
	tok := lr.Token
	if tok == "" {
		tok = lr.AccessToken
	}
	if tok == "" {
		return "", integration.AuthError(a.supplier, "login response carried no token", nil)
	}
	return tok, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the token
// is only ever sent back to the issuer.
func tokenExpiry(tok string, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return now.Add(defaultLoginTokenTTL)
}
