package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// userScopes is the fixed, whitelisted scope list sent on every
// authorization and refresh exchange. The upstream rejects unknown scope
// combinations with invalid_scope, so caller-supplied scopes are never
// accepted anywhere; this list is the only valid set.
var userScopes = []string{
	"https://api.ebay.com/oauth/api_scope",
	"https://api.ebay.com/oauth/api_scope/sell.inventory",
	"https://api.ebay.com/oauth/api_scope/sell.account",
	"https://api.ebay.com/oauth/api_scope/sell.fulfillment",
}

// IdentityClient performs the eBay user OAuth2 exchanges: building the
// consent URL, exchanging an authorization code, and refreshing a token.
type IdentityClient struct {
	clientID     string
	clientSecret string
	redirectName string // eBay RuName
	authURL      string
	tokenURL     string
	client       *http.Client
	nowFunc      func() time.Time
}

// IdentityOption configures the IdentityClient.
type IdentityOption func(*IdentityClient)

// WithIdentityAuthURL overrides the consent page URL.
func WithIdentityAuthURL(u string) IdentityOption {
	return func(c *IdentityClient) {
		c.authURL = u
	}
}

// WithIdentityTokenURL overrides the token endpoint.
func WithIdentityTokenURL(u string) IdentityOption {
	return func(c *IdentityClient) {
		c.tokenURL = u
	}
}

// WithIdentityHTTPClient overrides the default HTTP client.
func WithIdentityHTTPClient(hc *http.Client) IdentityOption {
	return func(c *IdentityClient) {
		c.client = hc
	}
}

// WithIdentityNowFunc overrides the time function for testing.
func WithIdentityNowFunc(f func() time.Time) IdentityOption {
	return func(c *IdentityClient) {
		c.nowFunc = f
	}
}

// NewIdentityClient creates an identity client for the given environment.
func NewIdentityClient(
	clientID, clientSecret, redirectName string,
	endpoints Endpoints,
	opts ...IdentityOption,
) *IdentityClient {
	c := &IdentityClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectName: redirectName,
		authURL:      endpoints.AuthURL,
		tokenURL:     endpoints.TokenURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationURL builds the upstream consent URL for the connect flow.
// The scope set is the package-level whitelist; there is no parameter to
// extend it.
func (c *IdentityClient) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectName)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(userScopes, " "))
	params.Set("state", state)

	return c.authURL + "?" + params.Encode()
}

// userTokenResponse is the token endpoint response for user token grants.
type userTokenResponse struct {
	AccessToken           string `json:"access_token"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	TokenType             string `json:"token_type"`
}

// ExchangeCode trades an authorization code for a fresh TokenSet.
func (c *IdentityClient) ExchangeCode(
	ctx context.Context,
	code string,
) (*domain.TokenSet, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectName},
	}

	resp, err := c.exchange(ctx, form)
	if err != nil {
		return nil, err
	}

	return c.toTokenSet(resp, nil), nil
}

// Refresh trades the refresh token of prev for a replacement TokenSet.
// The upstream may omit the refresh token fields on this grant; the
// previous values are retained in that case. The returned set is a full
// replacement; prev is not modified.
func (c *IdentityClient) Refresh(
	ctx context.Context,
	prev *domain.TokenSet,
) (*domain.TokenSet, error) {
	if !prev.HasRefreshToken() {
		return nil, fmt.Errorf("no refresh token available")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {prev.RefreshToken},
		"scope":         {strings.Join(userScopes, " ")},
	}

	resp, err := c.exchange(ctx, form)
	if err != nil {
		return nil, err
	}

	return c.toTokenSet(resp, prev), nil
}

// exchange POSTs a grant to the token endpoint with basic auth. Non-2xx
// responses come back as *OAuthError; the caller never retries them.
func (c *IdentityClient) exchange(
	ctx context.Context,
	form url.Values,
) (*userTokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		return nil, &OAuthError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	var tokenResp userTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	return &tokenResp, nil
}

// toTokenSet converts a token response to a TokenSet, deriving absolute
// expiry times from the issue time plus server-declared lifetimes.
func (c *IdentityClient) toTokenSet(
	resp *userTokenResponse,
	prev *domain.TokenSet,
) *domain.TokenSet {
	now := c.nowFunc()

	ts := &domain.TokenSet{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresAt:   now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	switch {
	case resp.RefreshToken != "":
		ts.RefreshToken = resp.RefreshToken
		ts.RefreshExpiresAt = now.Add(
			time.Duration(resp.RefreshTokenExpiresIn) * time.Second,
		)
	case prev != nil:
		ts.RefreshToken = prev.RefreshToken
		ts.RefreshExpiresAt = prev.RefreshExpiresAt
	}

	return ts
}
