package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionLoad indicates a session read failed.
var ErrSessionLoad = errors.New("failed to load session")

// APIError is a structured backend error: a machine-readable code (vendor or
// backend code, falling back to the HTTP status), the HTTP status, and any
// structured details the backend attached.
type APIError struct {
	Code    string                 `json:"code"`
	Status  int                    `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api error %s (status %d)", e.Code, e.Status)
}

// User-facing messages; one human-readable sentence per failure class.
const (
	msgDeclined     = "Your card was declined. Please try a different payment method."
	msgProcessor    = "The payment processor encountered an error. Please try again."
	msgInvalid      = "The payment request was invalid. Please check your details and try again."
	msgUnauthorized = "This request was not authorized. Please sign in and try again."
	msgTimeout      = "The request timed out. Please try again."
	msgGeneric      = "Payment failed. Please try again."
)

// UserMessage maps an error to the fixed set of user-facing messages. Unmapped
// codes fall back to a generic failure sentence.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return msgGeneric
	}

	switch apiErr.Code {
	case "card_declined", "declined", "insufficient_funds":
		return msgDeclined
	case "processor_error":
		return msgProcessor
	case "invalid_request", "validation_failed":
		return msgInvalid
	}

	switch apiErr.Status {
	case http.StatusPaymentRequired:
		return msgDeclined
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return msgInvalid
	case http.StatusUnauthorized, http.StatusForbidden:
		return msgUnauthorized
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return msgTimeout
	case http.StatusBadGateway:
		return msgProcessor
	}
	return msgGeneric
}
