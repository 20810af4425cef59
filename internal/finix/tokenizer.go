package finix

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

const (
	defaultFraudTimeout = 5 * time.Second
	stubTokenDelay      = 400 * time.Millisecond
)

// Capability interfaces for the card form handle. Observed vendor SDK builds
// expose inconsistent method sets, so the Tokenizer probes the handle for each
// convention instead of assuming one.
type callbackSubmitter interface {
	Submit(environment, applicationID string, cb func(err error, data interface{}))
}

type tokenCreator interface {
	CreateToken(opts TokenOptions) (interface{}, error)
}

type optionsSubmitter interface {
	SubmitWithOptions(opts TokenOptions, cb func(err error, data interface{}))
}

// tokenAttempt is one calling convention tried against the widget. run reports
// applicable=false when the handle lacks the capability; such attempts are
// skipped without counting as failures.
type tokenAttempt struct {
	name string
	run  func(ctx context.Context, widget interface{}, env, appID string) (raw interface{}, applicable bool, err error)
}

// tokenAttempts is the fixed, ordered fallback list. The first attempt that is
// applicable and yields a non-empty result wins; later entries run only when
// an earlier one errors or returns nothing. Order matters and is part of the
// adapter's contract: new vendor quirks are added here, not as inline branches.
var tokenAttempts = []tokenAttempt{
	{
		name: "submit(env, appId, cb)",
		run: func(ctx context.Context, widget interface{}, env, appID string) (interface{}, bool, error) {
			form, ok := widget.(callbackSubmitter)
			if !ok {
				return nil, false, nil
			}
			raw, err := awaitCallback(ctx, func(cb func(error, interface{})) {
				form.Submit(env, appID, cb)
			})
			return raw, true, err
		},
	},
	{
		name: "createToken(options)",
		run: func(ctx context.Context, widget interface{}, env, appID string) (interface{}, bool, error) {
			form, ok := widget.(tokenCreator)
			if !ok {
				return nil, false, nil
			}
			raw, err := form.CreateToken(TokenOptions{ApplicationID: appID, Environment: env})
			return raw, true, err
		},
	},
	{
		name: "submit(options, cb)",
		run: func(ctx context.Context, widget interface{}, env, appID string) (interface{}, bool, error) {
			form, ok := widget.(optionsSubmitter)
			if !ok {
				return nil, false, nil
			}
			raw, err := awaitCallback(ctx, func(cb func(error, interface{})) {
				form.SubmitWithOptions(TokenOptions{ApplicationID: appID, Environment: env}, cb)
			})
			return raw, true, err
		},
	},
}

// awaitCallback bridges a callback-style vendor method to a blocking call.
func awaitCallback(ctx context.Context, start func(cb func(error, interface{}))) (interface{}, error) {
	type result struct {
		data interface{}
		err  error
	}
	ch := make(chan result, 1)
	start(func(err error, data interface{}) {
		ch <- result{data: data, err: err}
	})
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("tokenization failed: %w", res.err)
		}
		return res.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tokenizer wraps the vendor card form behind a single normalized Tokenize
// operation. It must be mounted before use.
type Tokenizer struct {
	environment   string
	applicationID string
	auth          *AuthService

	widget      interface{}
	ready       bool
	stubAllowed bool // non-production fallback when no widget is available

	sleep func(context.Context, time.Duration) error
}

// NewTokenizer returns a Tokenizer for the given vendor configuration.
// stubAllowed enables the development-only synthetic token fallback and must
// be false in production.
func NewTokenizer(environment, applicationID string, auth *AuthService, stubAllowed bool) *Tokenizer {
	return &Tokenizer{
		environment:   environment,
		applicationID: applicationID,
		auth:          auth,
		stubAllowed:   stubAllowed,
		sleep:         sleepCtx,
	}
}

// Mount attaches the constructed vendor widget and marks the form ready.
func (t *Tokenizer) Mount(widget interface{}) {
	t.widget = widget
	t.ready = true
}

// MountStub marks the form ready with no widget at all, the state reached when
// the SDK failed to load. Tokenize then uses the stub (or errors in
// production).
func (t *Tokenizer) MountStub() {
	t.widget = nil
	t.ready = true
}

// Ready reports whether Tokenize may be called.
func (t *Tokenizer) Ready() bool { return t.ready }

// Tokenize produces a single-use payment token. It walks the fixed attempt
// list in order against the mounted widget and normalizes the first usable
// response.
func (t *Tokenizer) Tokenize(ctx context.Context) (PaymentToken, error) {
	if !t.ready {
		return PaymentToken{}, ErrNotReady
	}

	if t.widget == nil {
		if !t.stubAllowed {
			return PaymentToken{}, fmt.Errorf("%w: sdk unavailable in production", ErrTokenizationFailed)
		}
		return t.stubToken(ctx)
	}

	for _, attempt := range tokenAttempts {
		raw, applicable, err := attempt.run(ctx, t.widget, t.environment, t.applicationID)
		if !applicable {
			continue
		}
		if ctx.Err() != nil {
			return PaymentToken{}, ctx.Err()
		}
		if err != nil {
			logger.Warn("tokenization attempt failed", map[string]interface{}{
				"attempt": attempt.name,
				"error":   err.Error(),
			})
			continue
		}
		if raw == nil {
			continue
		}
		token, nerr := NormalizeToken(raw)
		if nerr != nil {
			return PaymentToken{}, nerr
		}
		logger.Info("tokenization successful", map[string]interface{}{"attempt": attempt.name})
		return token, nil
	}

	return PaymentToken{}, ErrTokenizationFailed
}

// stubToken fabricates a clearly-marked development token so UI work can
// proceed without live vendor credentials.
func (t *Tokenizer) stubToken(ctx context.Context) (PaymentToken, error) {
	logger.Warn("Finix SDK not available, using stub tokenization", nil)
	if err := t.sleep(ctx, stubTokenDelay); err != nil {
		return PaymentToken{}, err
	}
	return PaymentToken{
		ID:       fmt.Sprintf("TKstub_%08x", rand.Uint32()),
		Brand:    "VISA",
		LastFour: "4242",
	}, nil
}

// FraudSessionID returns the vendor fraud session key if one can be obtained
// within the timeout. It never fails: absence only degrades fraud scoring.
func (t *Tokenizer) FraudSessionID(ctx context.Context, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = defaultFraudTimeout
	}
	if t.auth == nil {
		return ""
	}
	if key := t.auth.SessionKey(); key != "" {
		return key
	}
	t.auth.mu.Lock()
	handle := t.auth.handle
	t.auth.mu.Unlock()
	if handle == nil {
		logger.Warn("Finix Auth not initialized, proceeding without fraud session id", nil)
		return ""
	}
	key, _ := handle.SessionKey(ctx, timeout)
	return key
}
