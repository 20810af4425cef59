package checkout

import "time"

// Session statuses. The machine only moves forward:
// pending -> processing -> {paid, failed}.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
)

// IsTerminal reports whether a session status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusPaid || status == StatusFailed
}

// LineItem is one purchasable entry of a checkout session. Amounts are in
// minor units (cents).
type LineItem struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// Customer identifies the buyer on session creation.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionParams is the payload for POST /v1/checkout-sessions.
type SessionParams struct {
	LineItems  []LineItem `json:"line_items"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
	Customer   Customer   `json:"customer"`
}

// Session is the server-held checkout session record.
type Session struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	LineItems []LineItem    `json:"line_items,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Params    SessionParams `json:"params,omitempty"`
}

// BillingInfo carries the AVS fields collected alongside the card.
type BillingInfo struct {
	PostalCode string `json:"billing_postal_code,omitempty"`
	Address    string `json:"billing_address,omitempty"`
}

// PaymentRecord is the confirmation result returned by POST /v1/payments.
type PaymentRecord struct {
	ID             string    `json:"id"`
	TransactionID  string    `json:"transaction_id"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	Method         string    `json:"method"`
	CardToken      string    `json:"card_token,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty"`
	FraudSessionID string    `json:"fraud_session_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Transaction is one history entry appended when a payment reaches a terminal
// state.
type Transaction struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
