package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boglepay/go-checkout-flow/internal/checkout"
	"github.com/boglepay/go-checkout-flow/internal/demo"
	"github.com/boglepay/go-checkout-flow/internal/idempotency"
	"github.com/boglepay/go-checkout-flow/internal/validation"
)

// HandlerConfig groups dependencies for the checkout routes.
type HandlerConfig struct {
	Backend     *demo.Backend
	Idempotency *idempotency.Store
}

// RegisterCheckoutRoutes registers the /v1 checkout contract on the mock
// server. Payment confirmation is guarded by the idempotency store so a
// duplicate Idempotency-Key replays the stored response instead of charging
// twice.
func RegisterCheckoutRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/v1/checkout-sessions", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateSessionRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		params := checkout.SessionParams{
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
			Customer:   checkout.Customer{Email: req.Customer.Email, Name: req.Customer.Name},
		}
		for _, it := range req.LineItems {
			params.LineItems = append(params.LineItems, checkout.LineItem{
				Name:       it.Name,
				Quantity:   it.Quantity,
				UnitAmount: it.UnitAmount,
				Currency:   it.Currency,
			})
		}

		id, err := cfg.Backend.CreateCheckoutSession(ctx, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session_creation_failed", "message": err.Error()})
			return
		}

		c.Header("Location", "/v1/checkout-sessions/"+id)
		c.JSON(http.StatusCreated, gin.H{"id": id, "status": checkout.StatusPending})
	})

	r.POST("/v1/payments", func(c *gin.Context) {
		ctx := c.Request.Context()

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		var req validation.ConfirmPaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		created, err := cfg.Idempotency.CreateIfNotExists(idempKey, req.SessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "message": err.Error()})
			return
		}
		if !created {
			rec, getErr := cfg.Idempotency.Get(idempKey)
			if getErr != nil || rec == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed"})
				return
			}
			switch rec.Status {
			case idempotency.StatusDone:
				if rec.ResponseBody != "" {
					c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
					return
				}
				c.JSON(http.StatusOK, gin.H{"session_id": rec.SessionID})
			case idempotency.StatusInProgress:
				c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "session_id": rec.SessionID})
			case idempotency.StatusFailed:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "session_id": rec.SessionID})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
			}
			return
		}

		rec, err := cfg.Backend.ConfirmPayment(ctx, req.SessionID, req.PaymentMethod.CardToken,
			req.PaymentMethod.BillingPostalCode, req.FraudSessionID)
		if err != nil {
			_ = cfg.Idempotency.MarkFailed(idempKey, err.Error())
			if errors.Is(err, demo.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation_failed", "message": err.Error()})
			return
		}

		body, _ := json.Marshal(rec)
		_ = cfg.Idempotency.MarkDone(idempKey, string(body), http.StatusCreated)
		c.JSON(http.StatusCreated, rec)
	})

	r.GET("/v1/checkout-sessions/:id", func(c *gin.Context) {
		session, err := cfg.Backend.GetSession(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, demo.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session_load_failed"})
			return
		}
		c.JSON(http.StatusOK, session)
	})

	r.GET("/v1/transactions", func(c *gin.Context) {
		txs := cfg.Backend.Transactions()
		if txs == nil {
			txs = []checkout.Transaction{}
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs})
	})

	r.POST("/v1/demo/reset", func(c *gin.Context) {
		if err := cfg.Backend.Reset(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
