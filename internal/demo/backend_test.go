package demo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/boglepay/go-checkout-flow/internal/checkout"
)

func testBackend(t *testing.T, successRate float64) *Backend {
	t.Helper()
	b := NewBackend(NewStore(filepath.Join(t.TempDir(), "store.json")), successRate)
	b.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	b.settleIn = 50 * time.Millisecond
	return b
}

func sessionParams() checkout.SessionParams {
	return checkout.SessionParams{
		LineItems: []checkout.LineItem{
			{Name: "Premium Product", Quantity: 1, UnitAmount: 1000, Currency: "USD"},
		},
		Customer: checkout.Customer{Email: "user@example.com", Name: "User Name"},
	}
}

func TestCreateThenGet_IsPending(t *testing.T) {
	b := testBackend(t, 1.0)
	ctx := context.Background()

	id, err := b.CreateCheckoutSession(ctx, sessionParams())
	if err != nil {
		t.Fatalf("CreateCheckoutSession error: %v", err)
	}

	s, err := b.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if s.Status != checkout.StatusPending {
		t.Fatalf("expected pending before confirm, got %s", s.Status)
	}
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	b := testBackend(t, 1.0)
	_, err := b.ConfirmPayment(context.Background(), "sess_missing", "TK123", "94107", "")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFullScenario_PaidWithSingleTransaction(t *testing.T) {
	b := testBackend(t, 1.0)
	ctx := context.Background()

	id, err := b.CreateCheckoutSession(ctx, sessionParams())
	if err != nil {
		t.Fatalf("CreateCheckoutSession error: %v", err)
	}

	rec, err := b.ConfirmPayment(ctx, id, "TK123", "94107", "fs-1")
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	if rec.Status != "processing" {
		t.Fatalf("expected processing payment, got %s", rec.Status)
	}
	if rec.AmountCents != 1000 {
		t.Fatalf("expected amount 1000, got %d", rec.AmountCents)
	}

	// session moves to processing immediately; terminal only after settlement
	s, err := b.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if s.Status != checkout.StatusProcessing {
		t.Fatalf("expected processing right after confirm, got %s", s.Status)
	}

	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	status, err := b.PollUntilComplete(pollCtx, id)
	if err != nil {
		t.Fatalf("PollUntilComplete error: %v", err)
	}
	if status != checkout.StatusPaid {
		t.Fatalf("expected paid, got %s", status)
	}

	txs := b.Transactions()
	count := 0
	for _, tx := range txs {
		if tx.ID == rec.TransactionID {
			count++
			if tx.AmountCents != 1000 {
				t.Fatalf("expected transaction amount 1000, got %d", tx.AmountCents)
			}
			if tx.Status != "succeeded" {
				t.Fatalf("expected succeeded transaction, got %s", tx.Status)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one transaction record, got %d", count)
	}
}

func TestFullScenario_FailurePolicy(t *testing.T) {
	b := testBackend(t, 0.0) // every payment fails

	ctx := context.Background()
	id, err := b.CreateCheckoutSession(ctx, sessionParams())
	if err != nil {
		t.Fatalf("CreateCheckoutSession error: %v", err)
	}
	if _, err := b.ConfirmPayment(ctx, id, "TK123", "94107", ""); err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	status, err := b.PollUntilComplete(pollCtx, id)
	if err != nil {
		t.Fatalf("PollUntilComplete error: %v", err)
	}
	if status != checkout.StatusFailed {
		t.Fatalf("expected failed with zero success rate, got %s", status)
	}

	txs := b.Transactions()
	if len(txs) != 1 || txs[0].Status != "failed" {
		t.Fatalf("expected one failed transaction, got %+v", txs)
	}
}

func TestSettle_DoesNotReopenTerminalSession(t *testing.T) {
	b := testBackend(t, 1.0)
	b.settleIn = 10 * time.Millisecond
	ctx := context.Background()

	id, err := b.CreateCheckoutSession(ctx, sessionParams())
	if err != nil {
		t.Fatalf("CreateCheckoutSession error: %v", err)
	}
	rec, err := b.ConfirmPayment(ctx, id, "TK123", "94107", "")
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := b.PollUntilComplete(pollCtx, id); err != nil {
		t.Fatalf("PollUntilComplete error: %v", err)
	}

	// a second settlement for the same payment must be a no-op
	b.settle(id, rec.ID)

	count := 0
	for _, tx := range b.Transactions() {
		if tx.ID == rec.TransactionID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("terminal session settled twice: %d transactions", count)
	}
}
