package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/boglepay/go-checkout-flow/internal/config"
	"github.com/boglepay/go-checkout-flow/internal/demo"
	"github.com/boglepay/go-checkout-flow/internal/handlers"
	"github.com/boglepay/go-checkout-flow/internal/idempotency"
	"github.com/boglepay/go-checkout-flow/pkg/logger"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterCheckoutRoutes(r, cfg)

	return r
}

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg := config.New()

	store := demo.NewStore(cfg.DemoStorePath)
	hc := handlers.HandlerConfig{
		Backend:     demo.NewBackend(store, cfg.DemoSuccessRate),
		Idempotency: idempotency.NewStore(48 * time.Hour),
	}

	r := setupRouter(hc)

	addr := ":" + cfg.Port
	logger.Info("mock checkout API listening", map[string]interface{}{
		"addr":         addr,
		"store_path":   cfg.DemoStorePath,
		"success_rate": cfg.DemoSuccessRate,
	})
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", map[string]interface{}{"error": err.Error()})
	}
}
