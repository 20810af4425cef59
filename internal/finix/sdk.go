package finix

// The vendor SDK is consumed, not produced, by this module. Its observed
// surface is a page-global object exposing an Auth constructor and a card
// token form constructor. We model that surface as narrow interfaces so tests
// and the stub runtime can substitute their own builds.

// SDK is the loaded vendor handle (the window.Finix analog).
type SDK interface {
	// Auth constructs the fraud/session service for a merchant. The callback
	// is invoked asynchronously with the session key once the vendor assigns
	// one; it may fire late or never.
	Auth(environment, merchantID string, onSessionKey func(sessionKey string)) (AuthClient, error)

	// CardTokenForm constructs the hosted card-entry widget bound to a
	// container id. The returned handle is deliberately untyped: observed SDK
	// builds expose inconsistent method sets, which the Tokenizer probes for.
	CardTokenForm(containerID string, opts FormOptions) (interface{}, error)
}

// AuthClient is the handle returned by the vendor's Auth constructor.
type AuthClient interface {
	GetSessionKey() string
}

// FormOptions configures the card-entry widget.
type FormOptions struct {
	ShowLabels       bool
	ShowPlaceholders bool
	ShowAddress      bool
}

// TokenOptions is the options-object calling convention some SDK builds accept.
type TokenOptions struct {
	ApplicationID string
	Environment   string
}

// PaymentToken is the canonical, normalized tokenization result.
type PaymentToken struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	LastFour string `json:"last_four"`
}
