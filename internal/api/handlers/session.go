package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/tokens"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// sessionCookie holds the encrypted TokenSet. The cookie is the only
// credential store; the server keeps no session table.
const sessionCookie = "ebay_session"

// stateCookie holds the OAuth state nonce between /oauth/start and the
// provider redirect back to /oauth/callback.
const stateCookie = "ebay_oauth_state"

const stateTTL = 10 * time.Minute

// Sessions reads and writes the encrypted seller session cookie and runs
// the token lifecycle against it. Every request re-reads the cookie; two
// browser profiles with different cookies are two independent sessions
// against the same process.
type Sessions struct {
	codec   *tokens.Codec
	manager *tokens.Manager
	maxAge  time.Duration
	secure  bool
}

// NewSessions creates the session helper. The Secure cookie attribute
// follows the environment: production always sets it, sandbox allows
// plain-HTTP local development.
func NewSessions(
	codec *tokens.Codec,
	manager *tokens.Manager,
	maxAge time.Duration,
	environment domain.Environment,
) *Sessions {
	return &Sessions{
		codec:   codec,
		manager: manager,
		maxAge:  maxAge,
		secure:  environment == domain.EnvProduction,
	}
}

// Read decodes the session cookie. Nil means no usable credentials:
// missing cookie, tampered value, or a value sealed under a rotated key
// all land here identically.
func (s *Sessions) Read(c echo.Context) *domain.TokenSet {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.codec.Decode(cookie.Value)
}

// Write seals ts into the session cookie on the response.
func (s *Sessions) Write(c echo.Context, ts *domain.TokenSet) error {
	value, err := s.codec.Encode(ts)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AccessToken returns a currently-valid access token for the request's
// session, refreshing and re-sealing the cookie when needed. On refresh
// failure the cookie is cleared before the error is returned; the dead
// refresh token must not be presented again.
func (s *Sessions) AccessToken(c echo.Context) (string, error) {
	ts := s.Read(c)

	token, refreshed, err := s.manager.Ensure(c.Request().Context(), ts)
	if err != nil {
		var refreshErr *tokens.RefreshFailedError
		if errors.As(err, &refreshErr) {
			s.manager.Forget(ts)
			s.Clear(c)
		}
		return "", err
	}

	if refreshed != nil {
		if err := s.Write(c, refreshed); err != nil {
			return "", err
		}
	}
	return token, nil
}

// writeAuthError maps token lifecycle errors to the error envelope. All
// variants are 401; the kind tells the client whether reconnecting or
// retrying can help.
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, tokens.ErrNotAuthenticated):
		return errorJSON(c, http.StatusUnauthorized, ErrorDetail{
			Kind:    KindNotAuthenticated,
			Message: "no eBay account connected",
			Hint:    "start the connect flow at /oauth/start",
		})
	case errors.Is(err, tokens.ErrTokenExpired):
		return errorJSON(c, http.StatusUnauthorized, ErrorDetail{
			Kind:    KindTokenExpired,
			Message: "session expired",
			Hint:    "reconnect the eBay account at /oauth/start",
		})
	}

	var refreshErr *tokens.RefreshFailedError
	if errors.As(err, &refreshErr) {
		detail := ErrorDetail{
			Kind:    KindTokenRefreshFailed,
			Message: "refreshing the eBay session failed",
			Hint:    "reconnect the eBay account at /oauth/start",
		}

		var oauthErr *ebay.OAuthError
		if errors.As(err, &oauthErr) && oauthErr.IsInvalidScope() {
			detail.Kind = KindInvalidScope
			detail.Message = "eBay rejected the requested permissions"
			detail.Hint = "reconnect to grant the current permission set"
		}
		return errorJSON(c, http.StatusUnauthorized, detail)
	}

	return errorJSON(c, http.StatusInternalServerError, ErrorDetail{
		Kind:    KindTokenRefreshFailed,
		Message: err.Error(),
	})
}
