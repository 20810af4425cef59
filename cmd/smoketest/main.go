package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/boglepay/go-checkout-flow/internal/checkout"
	"github.com/boglepay/go-checkout-flow/internal/config"
	"github.com/boglepay/go-checkout-flow/internal/finix"
	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

// Exit codes reported to the calling shell.
const (
	exitOK          = 0
	exitConfigError = 1
	exitFlowError   = 2
	exitPollTimeout = 3
)

const (
	pollInterval = 2 * time.Second
	pollDeadline = 30 * time.Second
	fraudTimeout = 2 * time.Second
)

// main drives one full checkout flow against a running mock API: create a
// session, tokenize a card (stub path, since no vendor runtime is embedded),
// confirm the payment and poll until the session settles.
func main() {
	_ = godotenv.Load()
	logger.Init()

	os.Exit(run())
}

func run() int {
	cfg := config.New()

	if cfg.IsProduction() {
		logger.Error(nil, "refusing to run the smoke test against the live vendor environment", map[string]interface{}{
			"environment": cfg.FinixEnvironment,
		})
		return exitConfigError
	}
	if cfg.APIBase == "" {
		logger.Error(nil, "API_BASE is not set", nil)
		return exitConfigError
	}

	ctx := context.Background()
	client := checkout.NewClient(cfg.APIBase)

	sessionID, err := client.CreateSession(ctx, checkout.SessionParams{
		LineItems: []checkout.LineItem{
			{Name: "Premium Product", Quantity: 1, UnitAmount: 4900, Currency: "USD"},
		},
		Customer: checkout.Customer{Email: "smoke@example.com", Name: "Smoke Test"},
	})
	if err != nil {
		logger.Error(err, "session creation failed", map[string]interface{}{
			"user_message": checkout.UserMessage(err),
		})
		return exitFlowError
	}

	token, fraudSessionID := tokenize(ctx, cfg)
	if token.ID == "" {
		return exitFlowError
	}

	rec, err := client.ConfirmPayment(ctx, sessionID, token.ID,
		checkout.BillingInfo{PostalCode: "94107"}, fraudSessionID)
	if err != nil {
		logger.Error(err, "payment confirmation failed", map[string]interface{}{
			"session_id":   sessionID,
			"user_message": checkout.UserMessage(err),
		})
		return exitFlowError
	}

	pollCtx, cancel := context.WithTimeout(ctx, pollDeadline)
	defer cancel()

	status, err := client.PollUntilComplete(pollCtx, sessionID, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error(err, "session did not settle before the deadline", map[string]interface{}{
				"session_id": sessionID,
				"deadline":   pollDeadline.String(),
			})
			return exitPollTimeout
		}
		logger.Error(err, "polling failed", map[string]interface{}{"session_id": sessionID})
		return exitFlowError
	}

	if status != checkout.StatusPaid {
		logger.Error(nil, "session settled unpaid", map[string]interface{}{
			"session_id": sessionID,
			"status":     status,
		})
		return exitFlowError
	}

	logger.Info("smoke test passed", map[string]interface{}{
		"session_id":     sessionID,
		"transaction_id": rec.TransactionID,
		"card_brand":     token.Brand,
		"card_last_four": token.LastFour,
		"status":         status,
	})
	return exitOK
}

// tokenize runs the vendor tokenization path. No vendor runtime is embedded in
// this binary, so the loader always fails over to the stub form; the point is
// to exercise the same load/auth/tokenize sequence the real flow uses.
func tokenize(ctx context.Context, cfg *config.Config) (finix.PaymentToken, string) {
	loader := finix.NewLoader(func(ctx context.Context, url string) (finix.SDK, error) {
		return nil, fmt.Errorf("no embedded vendor runtime")
	})

	auth := finix.NewAuthService(cfg.FinixEnvironment, cfg.FinixMerchantID)
	tokenizer := finix.NewTokenizer(cfg.FinixEnvironment, cfg.FinixApplicationID, auth, !cfg.IsProduction())

	if _, err := loader.EnsureLoaded(ctx, cfg.FinixSDKURL); err != nil {
		logger.Warn("vendor SDK unavailable, continuing with stub tokenization", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if sdk := loader.Current(); sdk != nil {
		if _, err := auth.Init(ctx, sdk, 3, time.Second); err != nil {
			logger.Warn("fraud auth init failed, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if widget, err := sdk.CardTokenForm("card-form", finix.FormOptions{}); err == nil {
			tokenizer.Mount(widget)
		}
	}
	if !tokenizer.Ready() {
		tokenizer.MountStub()
	}

	fraudSessionID := ""
	if cfg.FraudEnabled {
		fraudSessionID = tokenizer.FraudSessionID(ctx, fraudTimeout)
	}

	token, err := tokenizer.Tokenize(ctx)
	if err != nil {
		logger.Error(err, "tokenization failed", map[string]interface{}{
			"user_message": checkout.UserMessage(err),
		})
		return finix.PaymentToken{}, ""
	}
	return token, fraudSessionID
}
