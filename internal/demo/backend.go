package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/boglepay/go-checkout-flow/internal/checkout"
	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

// ErrSessionNotFound indicates a confirm or read referenced a session the
// demo store has never seen.
var ErrSessionNotFound = errors.New("session not found")

// Simulated latencies, matching the feel of a remote backend.
const (
	createDelay   = 200 * time.Millisecond
	confirmDelay  = 300 * time.Millisecond
	getDelay      = 120 * time.Millisecond
	completeDelay = 900 * time.Millisecond
	pollInterval  = 400 * time.Millisecond
)

// Backend simulates the checkout backend against local storage, mirroring the
// session state machine without a real processor. Confirmation returns a
// processing payment immediately; a background transition settles the session
// to a terminal state after a simulated processing delay.
type Backend struct {
	store *Store

	// successRate in [0, 1] decides how often simulated payments succeed.
	// Default 1.0: the demo always settles to paid unless dialed down.
	successRate float64
	randFloat   func() float64

	sleep    func(context.Context, time.Duration) error
	settleIn time.Duration
}

// NewBackend returns a Backend over the given store with the configured
// success policy.
func NewBackend(store *Store, successRate float64) *Backend {
	if successRate < 0 || successRate > 1 {
		successRate = 1.0
	}
	return &Backend{
		store:       store,
		successRate: successRate,
		randFloat:   rand.Float64,
		sleep:       sleepCtx,
		settleIn:    completeDelay,
	}
}

// CreateCheckoutSession stores a pending session and returns its id after a
// simulated latency delay.
func (b *Backend) CreateCheckoutSession(ctx context.Context, params checkout.SessionParams) (string, error) {
	id := localID("sess")
	err := b.store.Update(func(doc *Document) {
		doc.Sessions[id] = &checkout.Session{
			ID:        id,
			Status:    checkout.StatusPending,
			CreatedAt: time.Now().UTC(),
			Params:    params,
		}
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := b.sleep(ctx, createDelay); err != nil {
		return "", err
	}
	return id, nil
}

// ConfirmPayment moves the session to processing and returns the processing
// payment record. The terminal transition happens asynchronously.
func (b *Backend) ConfirmPayment(ctx context.Context, sessionID, cardToken, postalCode, fraudSessionID string) (*checkout.PaymentRecord, error) {
	paymentID := localID("pay")
	txID := localID("txn")

	var rec *checkout.PaymentRecord
	err := b.store.Update(func(doc *Document) {
		session, ok := doc.Sessions[sessionID]
		if !ok {
			return
		}

		var amountCents int64
		for _, item := range session.Params.LineItems {
			qty := int64(item.Quantity)
			if qty <= 0 {
				qty = 1
			}
			amountCents += qty * item.UnitAmount
		}

		rec = &checkout.PaymentRecord{
			ID:             paymentID,
			TransactionID:  txID,
			AmountCents:    amountCents,
			Currency:       "USD",
			Status:         "processing",
			Method:         "card",
			CardToken:      cardToken,
			PostalCode:     postalCode,
			FraudSessionID: fraudSessionID,
			CreatedAt:      time.Now().UTC(),
		}
		doc.Payments[paymentID] = rec
		session.Status = checkout.StatusProcessing
	})
	if err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}
	if rec == nil {
		return nil, ErrSessionNotFound
	}

	go b.settle(sessionID, paymentID)

	if err := b.sleep(ctx, confirmDelay); err != nil {
		return nil, err
	}
	return rec, nil
}

// settle performs the simulated processor completion: after the processing
// delay the session and payment reach a terminal state and exactly one
// transaction history entry is prepended.
func (b *Backend) settle(sessionID, paymentID string) {
	time.Sleep(b.settleIn)

	success := b.randFloat() < b.successRate
	err := b.store.Update(func(doc *Document) {
		session, sok := doc.Sessions[sessionID]
		payment, pok := doc.Payments[paymentID]
		if !sok || !pok {
			return
		}
		if checkout.IsTerminal(session.Status) {
			return
		}

		if success {
			session.Status = checkout.StatusPaid
			payment.Status = "succeeded"
		} else {
			session.Status = checkout.StatusFailed
			payment.Status = "failed"
		}

		doc.Transactions = append([]checkout.Transaction{{
			ID:          payment.TransactionID,
			AmountCents: payment.AmountCents,
			Currency:    payment.Currency,
			Method:      payment.Method,
			Status:      payment.Status,
			CreatedAt:   time.Now().UTC(),
		}}, doc.Transactions...)
	})
	if err != nil {
		logger.Error(err, "demo settlement failed", map[string]interface{}{"session_id": sessionID})
	}
}

// GetSession returns the current session state after a simulated read delay.
func (b *Backend) GetSession(ctx context.Context, sessionID string) (*checkout.Session, error) {
	doc := b.store.Load()
	session, ok := doc.Sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := b.sleep(ctx, getDelay); err != nil {
		return nil, err
	}
	return session, nil
}

// PollUntilComplete polls the session until it reaches a terminal status.
// Bounded only by ctx, like the client-side poller.
func (b *Backend) PollUntilComplete(ctx context.Context, sessionID string) (string, error) {
	for {
		s, err := b.GetSession(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if checkout.IsTerminal(s.Status) {
			return s.Status, nil
		}
		if err := b.sleep(ctx, pollInterval); err != nil {
			return "", err
		}
	}
}

// Transactions returns the transaction history, newest first.
func (b *Backend) Transactions() []checkout.Transaction {
	return b.store.Load().Transactions
}

// Reset wipes all demo state.
func (b *Backend) Reset() error {
	return b.store.Reset()
}

// localID generates a demo-scope identifier: prefix, base36 timestamp,
// random suffix.
func localID(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("%s_%s_%08x", prefix, ts, rand.Uint32())
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
