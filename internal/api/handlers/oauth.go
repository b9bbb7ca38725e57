package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/metrics"
	"github.com/donaldgifford/listing-manager/internal/tokens"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// connectedHTML is served after a successful code exchange. The connect
// flow runs in a popup; the page posts a typed message to the opener and
// closes itself. The tokens themselves never appear in the message, the
// sealed cookie is the only credential transport.
const connectedHTML = `<!DOCTYPE html>
<html>
<head><title>eBay connected</title></head>
<body>
<p>eBay account connected. You can close this window.</p>
<script>
if (window.opener) {
	window.opener.postMessage({type: "EBAY_AUTH_SUCCESS"}, window.location.origin);
	window.close();
}
</script>
</body>
</html>`

// connectErrorHTML is the failure variant of the popup page. The %s slot
// takes the JSON-encoded ErrorDetail so the opener receives the same
// error envelope the API endpoints use.
const connectErrorHTML = `<!DOCTYPE html>
<html>
<head><title>eBay connection failed</title></head>
<body>
<p>Connecting the eBay account failed. You can close this window.</p>
<script>
if (window.opener) {
	window.opener.postMessage({type: "EBAY_AUTH_ERROR", error: %s}, window.location.origin);
	window.close();
}
</script>
</body>
</html>`

// OAuthHandler implements the seller connect flow: consent redirect, code
// exchange callback, forced refresh, status, and disconnect.
type OAuthHandler struct {
	identity *ebay.IdentityClient
	sessions *Sessions
	manager  *tokens.Manager
	log      *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(
	identity *ebay.IdentityClient,
	sessions *Sessions,
	manager *tokens.Manager,
	log *slog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		identity: identity,
		sessions: sessions,
		manager:  manager,
		log:      log,
	}
}

// Start redirects to the eBay consent page. A random state nonce is set as
// a short-lived cookie and verified at the callback.
func (h *OAuthHandler) Start(c echo.Context) error {
	state := uuid.NewString()

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.sessions.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, h.identity.AuthorizationURL(state))
}

// Callback handles the provider redirect: it verifies the state nonce,
// exchanges the authorization code, and seals the resulting TokenSet into
// the session cookie.
func (h *OAuthHandler) Callback(c echo.Context) error {
	// The state nonce is single-use. Expire it before any branch writes
	// a body; a Set-Cookie added after the response is committed is
	// dropped.
	h.clearStateCookie(c)

	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		metrics.ConnectsTotal.WithLabelValues("bad_state").Inc()
		return h.connectErrorPage(c, http.StatusBadRequest, ErrorDetail{
			Kind:    KindNotAuthenticated,
			Message: "state mismatch",
			Hint:    "restart the connect flow at /oauth/start",
		})
	}

	code := c.QueryParam("code")
	if code == "" {
		metrics.ConnectsTotal.WithLabelValues("denied").Inc()
		return h.connectErrorPage(c, http.StatusBadRequest, ErrorDetail{
			Kind:    KindNotAuthenticated,
			Message: "missing authorization code",
			Hint:    "the consent page was likely dismissed; restart at /oauth/start",
		})
	}

	ts, err := h.identity.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		metrics.ConnectsTotal.WithLabelValues("error").Inc()
		h.log.Error("authorization code exchange failed", "error", err)
		return h.connectErrorPage(c, http.StatusBadGateway, exchangeErrorDetail(err))
	}

	if err := h.sessions.Write(c, ts); err != nil {
		metrics.ConnectsTotal.WithLabelValues("error").Inc()
		return h.connectErrorPage(c, http.StatusInternalServerError, ErrorDetail{
			Kind:    KindNotAuthenticated,
			Message: "sealing session cookie failed",
		})
	}

	metrics.ConnectsTotal.WithLabelValues("ok").Inc()
	h.log.Info("ebay account connected",
		"access_expires_at", ts.ExpiresAt,
		"refresh_expires_at", ts.RefreshExpiresAt,
	)
	return c.HTML(http.StatusOK, connectedHTML)
}

// Refresh forces a token refresh regardless of remaining lifetime and
// re-seals the cookie. Useful for verifying a session without waiting for
// the expiry buffer.
func (h *OAuthHandler) Refresh(c echo.Context) error {
	ts := h.sessions.Read(c)

	refreshed, err := h.manager.ForceRefresh(c.Request().Context(), ts)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()

		var refreshErr *tokens.RefreshFailedError
		if errors.As(err, &refreshErr) {
			h.manager.Forget(ts)
			h.sessions.Clear(c)
		}
		return writeAuthError(c, err)
	}

	if err := h.sessions.Write(c, refreshed); err != nil {
		return errorJSON(c, http.StatusInternalServerError, ErrorDetail{
			Kind:    KindTokenRefreshFailed,
			Message: "sealing session cookie failed",
		})
	}

	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, sessionStatus(refreshed, h.manager))
}

// Status reports the session state without touching the upstream.
func (h *OAuthHandler) Status(c echo.Context) error {
	ts := h.sessions.Read(c)
	return c.JSON(http.StatusOK, sessionStatus(ts, h.manager))
}

// Disconnect drops the session: the cached refresh result is forgotten and
// the cookie expired. The upstream grant is not revoked; reconnecting
// reuses it.
func (h *OAuthHandler) Disconnect(c echo.Context) error {
	h.manager.Forget(h.sessions.Read(c))
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, StatusResponse{Status: "disconnected"})
}

// SessionStatus is the response body for status and refresh. The boolean
// flags always serialize; clients branch on their values, not on key
// presence.
type SessionStatus struct {
	Connected        bool       `json:"connected"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	NeedsRefresh     bool       `json:"needs_refresh"`
	HasRefreshToken  bool       `json:"has_refresh_token"`
}

func sessionStatus(ts *domain.TokenSet, manager *tokens.Manager) SessionStatus {
	if ts == nil {
		return SessionStatus{}
	}

	status := SessionStatus{
		Connected:       true,
		ExpiresAt:       &ts.ExpiresAt,
		NeedsRefresh:    manager.NeedsRefresh(ts),
		HasRefreshToken: ts.HasRefreshToken(),
	}
	if !ts.RefreshExpiresAt.IsZero() {
		status.RefreshExpiresAt = &ts.RefreshExpiresAt
	}
	return status
}

func (h *OAuthHandler) clearStateCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.sessions.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// connectErrorPage renders the popup failure page. The callback runs in
// a popup window, so failures are delivered as an opener message rather
// than a JSON body nobody reads.
func (h *OAuthHandler) connectErrorPage(c echo.Context, status int, detail ErrorDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte(`{"kind":"` + KindNotAuthenticated + `"}`)
	}
	return c.HTML(status, fmt.Sprintf(connectErrorHTML, payload))
}

// exchangeErrorDetail maps a failed code exchange to the error envelope.
// invalid_scope gets its own kind so the UI can explain the permission
// mismatch instead of showing a generic failure.
func exchangeErrorDetail(err error) ErrorDetail {
	var oauthErr *ebay.OAuthError
	if errors.As(err, &oauthErr) && oauthErr.IsInvalidScope() {
		return ErrorDetail{
			Kind:    KindInvalidScope,
			Message: "eBay rejected the requested permissions",
			Hint:    "verify the application keyset is enabled for the sell scopes",
		}
	}

	return ErrorDetail{
		Kind:    KindNotAuthenticated,
		Message: "authorization code exchange failed",
		Hint:    "restart the connect flow at /oauth/start",
	}
}

// RegisterOAuthRoutes registers the connect flow endpoints.
func RegisterOAuthRoutes(e *echo.Echo, h *OAuthHandler) {
	e.GET("/oauth/start", h.Start)
	e.GET("/oauth/callback", h.Callback)
	e.POST("/oauth/refresh", h.Refresh)
	e.GET("/oauth/status", h.Status)
	e.POST("/oauth/disconnect", h.Disconnect)
}
