package finix

import "errors"

var (
	// ErrScriptLoad indicates the vendor SDK bundle could not be fetched.
	// Recoverable outside production by falling back to stub tokenization.
	ErrScriptLoad = errors.New("failed to load Finix SDK")

	// ErrAuthInit indicates auth/session setup failed after all retries.
	// Non-fatal: checkout proceeds without fraud-session data.
	ErrAuthInit = errors.New("finix auth initialization failed")

	// ErrNotReady indicates Tokenize was called before the card form was
	// mounted. Callers must block submission until the form is ready.
	ErrNotReady = errors.New("finix card form not ready")

	// ErrEmptyResponse indicates the vendor returned no tokenization response.
	ErrEmptyResponse = errors.New("empty tokenization response")

	// ErrInvalidTokenFormat indicates the extracted token id does not carry
	// the vendor's required "TK" prefix.
	ErrInvalidTokenFormat = errors.New("invalid token format: expected TK prefix")

	// ErrTokenizationFailed indicates every calling convention against the
	// card form was tried and none produced a usable result.
	ErrTokenizationFailed = errors.New("all tokenization attempts failed")
)
