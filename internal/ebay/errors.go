package ebay

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// APIError is a non-2xx response from an eBay REST API, carrying the
// upstream status and the first error entry of the response body.
type APIError struct {
	StatusCode int
	ErrorID    string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"eBay API error (status %d, id %s): %s",
		e.StatusCode, e.ErrorID, e.Message,
	)
}

// restErrorBody is the standard eBay REST error envelope.
type restErrorBody struct {
	Errors []struct {
		ErrorID     int64  `json:"errorId"`
		Domain      string `json:"domain"`
		Message     string `json:"message"`
		LongMessage string `json:"longMessage"`
	} `json:"errors"`
}

// newAPIError builds an APIError from a non-2xx response body. Bodies that
// do not match the standard envelope fall back to the raw text.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope restErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		apiErr.ErrorID = strconv.FormatInt(first.ErrorID, 10)
		apiErr.Message = first.Message
		if first.LongMessage != "" {
			apiErr.Message = first.LongMessage
		}
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}

// OAuthError is a non-2xx response from the OAuth2 token endpoint.
type OAuthError struct {
	StatusCode  int
	Code        string // e.g. invalid_grant, invalid_scope
	Description string
}

func (e *OAuthError) Error() string {
	return fmt.Sprintf(
		"token request failed (status %d): %s - %s",
		e.StatusCode, e.Code, e.Description,
	)
}

// IsInvalidScope reports whether the upstream rejected the requested scope
// combination. This gets distinct user messaging (retry the connect flow)
// rather than generic OAuth failure handling.
func (e *OAuthError) IsInvalidScope() bool {
	return e.Code == "invalid_scope"
}
