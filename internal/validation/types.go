package validation

// LineItem is a single purchasable entry in a create-session request.
// unit_amount is in minor units (cents).
type LineItem struct {
	Name       string `json:"name" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
	UnitAmount int64  `json:"unit_amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3"`
}

// Customer identifies the buyer.
type Customer struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// CreateSessionRequest is the payload for POST /v1/checkout-sessions.
type CreateSessionRequest struct {
	LineItems  []LineItem `json:"line_items" validate:"required,min=1,dive"`
	SuccessURL string     `json:"success_url" validate:"omitempty,url"`
	CancelURL  string     `json:"cancel_url" validate:"omitempty,url"`
	Customer   Customer   `json:"customer" validate:"required"`
}

// PaymentMethod carries the tokenized card plus AVS fields.
type PaymentMethod struct {
	Type              string `json:"type" validate:"required,eq=card"`
	CardToken         string `json:"card_token" validate:"required"`
	BillingPostalCode string `json:"billing_postal_code" validate:"omitempty,zipcode"`
	BillingAddress    string `json:"billing_address" validate:"omitempty"`
}

// ConfirmPaymentRequest is the payload for POST /v1/payments.
type ConfirmPaymentRequest struct {
	SessionID      string        `json:"session_id" validate:"required"`
	FraudSessionID string        `json:"fraud_session_id,omitempty"`
	PaymentMethod  PaymentMethod `json:"payment_method" validate:"required"`
}
