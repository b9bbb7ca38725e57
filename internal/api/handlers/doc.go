// Package handlers implements HTTP handlers for the listing-manager API.
//
// Cookie-bound endpoints (OAuth connect flow, listing drafting and publish)
// are plain Echo handlers: they set cookies, redirect, and render small
// HTML pages. Token-free JSON endpoints (search, pricing, quota, history)
// are Huma operations so they land in the generated OpenAPI document.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error kinds carried in error responses. Clients branch on kind, never on
// message text.
const (
	KindNotAuthenticated   = "NOT_AUTHENTICATED"
	KindTokenExpired       = "TOKEN_EXPIRED"
	KindTokenRefreshFailed = "TOKEN_REFRESH_FAILED"
	KindInvalidScope       = "INVALID_SCOPE"
	KindValidationFailed   = "VALIDATION_FAILED"
	KindUpstreamStepFailed = "UPSTREAM_STEP_FAILED"
)

// ErrorDetail is the machine-readable error payload.
type ErrorDetail struct {
	Kind    string `json:"kind"    example:"NOT_AUTHENTICATED"`
	Message string `json:"message" example:"no eBay account connected"`
	Hint    string `json:"hint,omitempty"`

	// Publish failures carry the failed step and any offer ID minted
	// before the failure so the caller can resume.
	Step    string `json:"step,omitempty"     example:"offer"`
	OfferID string `json:"offer_id,omitempty"`

	// Draft validation failures list every violation at once.
	Errors []string `json:"errors,omitempty"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// errorJSON writes the standard error envelope.
func errorJSON(c echo.Context, status int, detail ErrorDetail) error {
	return c.JSON(status, ErrorResponse{Error: detail})
}

// validationError writes a 400 carrying every collected violation.
func validationError(c echo.Context, errs []string) error {
	return errorJSON(c, http.StatusBadRequest, ErrorDetail{
		Kind:    KindValidationFailed,
		Message: "draft validation failed",
		Errors:  errs,
	})
}
