package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/boglepay/go-checkout-flow/internal/idempotency"
	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetries      = 3
	defaultRetryDelay   = time.Second
	retryBackoffFactor  = 2
	defaultPollInterval = 2 * time.Second
)

// Client talks to the checkout backend. Reads are retried with exponential
// backoff; session creation and payment confirmation are never auto-retried,
// so a retry is always a deliberate caller decision carrying a fresh
// idempotency key.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	newKey     func() string
	sleep      func(context.Context, time.Duration) error
}

// NewClient returns a Client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		newKey:     idempotency.NewKey,
		sleep:      sleepCtx,
	}
}

// CreateSession creates a checkout session and returns its id. The request
// carries a fresh idempotency key.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	key := c.newKey()
	if err := c.post(ctx, "/v1/checkout-sessions", key, params, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &APIError{Code: "missing_session_id", Status: http.StatusBadGateway}
	}
	logger.Info("checkout session created", map[string]interface{}{"session_id": out.ID})
	return out.ID, nil
}

type confirmRequest struct {
	SessionID      string        `json:"session_id"`
	FraudSessionID string        `json:"fraud_session_id,omitempty"`
	PaymentMethod  paymentMethod `json:"payment_method"`
}

type paymentMethod struct {
	Type              string `json:"type"`
	CardToken         string `json:"card_token"`
	BillingPostalCode string `json:"billing_postal_code,omitempty"`
	BillingAddress    string `json:"billing_address,omitempty"`
}

// ConfirmPayment confirms the session's payment with a tokenized card. It uses
// a fresh idempotency key, distinct from the one used at session creation.
// fraudSessionID may be empty; it only affects downstream fraud scoring.
func (c *Client) ConfirmPayment(ctx context.Context, sessionID, cardToken string, billing BillingInfo, fraudSessionID string) (*PaymentRecord, error) {
	body := confirmRequest{
		SessionID:      sessionID,
		FraudSessionID: fraudSessionID,
		PaymentMethod: paymentMethod{
			Type:              "card",
			CardToken:         cardToken,
			BillingPostalCode: billing.PostalCode,
			BillingAddress:    billing.Address,
		},
	}
	var rec PaymentRecord
	key := c.newKey()
	if err := c.post(ctx, "/v1/payments", key, body, &rec); err != nil {
		return nil, err
	}
	logger.Info("payment confirmed", map[string]interface{}{
		"session_id":     sessionID,
		"transaction_id": rec.TransactionID,
		"status":         rec.Status,
	})
	return &rec, nil
}

// GetSession fetches the current session state. Reads are retried with
// exponential backoff before giving up.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		lastErr = c.do(ctx, http.MethodGet, "/v1/checkout-sessions/"+sessionID, "", nil, &s)
		if lastErr == nil {
			return &s, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < c.retries {
			delay := c.retryDelay * time.Duration(pow(retryBackoffFactor, attempt-1))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrSessionLoad, lastErr)
}

// PollUntilComplete polls the session at a fixed interval until it reaches a
// terminal status, returning that status. No backoff is applied here. The
// loop is bounded only by ctx: cancel it or attach a deadline to stop a
// runaway poll.
func (c *Client) PollUntilComplete(ctx context.Context, sessionID string, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	for {
		s, err := c.GetSession(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if IsTerminal(s.Status) {
			return s.Status, nil
		}
		if err := c.sleep(ctx, interval); err != nil {
			return "", err
		}
	}
}

// post issues a non-retried mutating request with an Idempotency-Key header.
func (c *Client) post(ctx context.Context, path, idempotencyKey string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, idempotencyKey, body, out)
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFromResponse(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiErrorFromResponse builds a structured APIError from a non-2xx body,
// falling back to the HTTP status when the backend sent no code.
func apiErrorFromResponse(status int, raw []byte) error {
	var payload struct {
		Code    string                 `json:"code"`
		Error   string                 `json:"error"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	}
	_ = json.Unmarshal(raw, &payload)

	code := payload.Code
	if code == "" {
		code = payload.Error
	}
	if code == "" {
		code = fmt.Sprintf("http_%d", status)
	}
	return &APIError{
		Code:    code,
		Status:  status,
		Message: payload.Message,
		Details: payload.Details,
	}
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
