package finix

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

const (
	defaultAuthRetries   = 3
	defaultAuthBaseDelay = time.Second

	// grace period to wait for the session-key callback after constructing
	// the vendor auth client; the callback may legitimately fire later.
	authCallbackGrace = 500 * time.Millisecond

	sessionKeyPollInterval = 200 * time.Millisecond
)

// AuthService owns the process-wide vendor auth handle. The vendor SDK forbids
// multiple concurrent auth instances for one merchant, so the service shares a
// single in-flight initialization among all callers and caches the result for
// the process lifetime. Construct one per process and inject it.
type AuthService struct {
	environment string
	merchantID  string

	mu         sync.Mutex
	handle     *AuthHandle
	inflight   chan struct{}
	initErr    error
	sessionKey string // set at most once by the vendor callback

	sleep func(context.Context, time.Duration) error
}

// NewAuthService returns an AuthService for the given merchant.
func NewAuthService(environment, merchantID string) *AuthService {
	return &AuthService{
		environment: environment,
		merchantID:  merchantID,
		sleep:       sleepCtx,
	}
}

// AuthHandle is the initialized auth session. A handle with an empty session
// key is still valid: the vendor callback may deliver the key later.
type AuthHandle struct {
	client  AuthClient
	service *AuthService
}

// Init initializes vendor auth with retry and exponential backoff
// (baseDelay * attempt between attempts). It returns the existing handle
// immediately if one was already created, and joins an in-flight
// initialization rather than constructing a second vendor instance.
// Failure is non-fatal to checkout: callers degrade to no fraud signal.
func (a *AuthService) Init(ctx context.Context, sdk SDK, retries int, baseDelay time.Duration) (*AuthHandle, error) {
	if retries <= 0 {
		retries = defaultAuthRetries
	}
	if baseDelay <= 0 {
		baseDelay = defaultAuthBaseDelay
	}

	a.mu.Lock()
	if a.handle != nil {
		h := a.handle
		a.mu.Unlock()
		logger.Info("using existing Finix Auth instance", nil)
		return h, nil
	}
	if a.inflight != nil {
		ch := a.inflight
		a.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		a.mu.Lock()
		h, err := a.handle, a.initErr
		a.mu.Unlock()
		if h != nil {
			return h, nil
		}
		return nil, err
	}
	ch := make(chan struct{})
	a.inflight = ch
	a.mu.Unlock()

	handle, err := a.initWithRetry(ctx, sdk, retries, baseDelay)

	a.mu.Lock()
	a.handle = handle
	a.initErr = err
	a.inflight = nil
	close(ch)
	a.mu.Unlock()

	return handle, err
}

func (a *AuthService) initWithRetry(ctx context.Context, sdk SDK, retries int, baseDelay time.Duration) (*AuthHandle, error) {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		logger.Info("initializing Finix Auth", map[string]interface{}{
			"attempt": attempt,
			"retries": retries,
		})

		client, err := sdk.Auth(a.environment, a.merchantID, func(sessionKey string) {
			if sessionKey == "" {
				return
			}
			a.mu.Lock()
			if a.sessionKey == "" {
				a.sessionKey = sessionKey
			}
			a.mu.Unlock()
		})
		if err == nil {
			// Wait briefly for the session-key callback; an empty key is not
			// a failure, the handle is usable either way.
			_ = a.sleep(ctx, authCallbackGrace)
			if key := client.GetSessionKey(); key != "" {
				a.mu.Lock()
				if a.sessionKey == "" {
					a.sessionKey = key
				}
				a.mu.Unlock()
				logger.Info("Finix Auth initialized with session key", nil)
			} else {
				logger.Info("Finix Auth initialized, waiting for session key", nil)
			}
			return &AuthHandle{client: client, service: a}, nil
		}

		lastErr = err
		logger.Warn("Finix Auth init attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < retries {
			if serr := a.sleep(ctx, baseDelay*time.Duration(attempt)); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrAuthInit, lastErr)
}

// SessionKey returns the fraud session key if already observed, without
// blocking. The empty string means not yet available.
func (a *AuthService) SessionKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionKey
}

// SessionKey polls the vendor handle at a fixed interval until the key is
// available or the timeout elapses. Absence is a valid outcome, not an error.
func (h *AuthHandle) SessionKey(ctx context.Context, timeout time.Duration) (string, error) {
	if key := h.service.SessionKey(); key != "" {
		return key, nil
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if key := h.client.GetSessionKey(); key != "" {
			h.service.mu.Lock()
			if h.service.sessionKey == "" {
				h.service.sessionKey = key
			}
			h.service.mu.Unlock()
			return key, nil
		}
		if err := h.service.sleep(ctx, sessionKeyPollInterval); err != nil {
			return "", nil
		}
	}
	logger.Warn("fraud session key not available after timeout", nil)
	return "", nil
}

// sleepCtx sleeps for d or until ctx is cancelled.
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
