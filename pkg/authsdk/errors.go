package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned in the "error" field.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeUnauthenticated   = "unauthenticated"
	ErrorCodeForbidden         = "forbidden"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeConflict          = "conflict"
	ErrorCodeWeakPassword      = "weak_password"
	ErrorCodeRateLimited       = "rate_limited"
	ErrorCodeServerError       = "server_error"
	ErrorCodeAccountInactive   = "account_inactive"
	ErrorCodeLastAdmin         = "last_admin"
	ErrorCodeSelfActionDenied  = "self_action_denied"
	ErrorCodeInviteUnavailable = "invite_unavailable"
)

// APIError is a decoded error response from the auth service. It implements
// the error interface so SDK callers can branch on StatusCode and Code with
// errors.As.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`

	// Code is the stable machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable explanation.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsAuthError reports whether err is an APIError with a 401 or 403 status,
// i.e. the kind of failure a token refresh might cure.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
// Bodies that are not the standard error shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
