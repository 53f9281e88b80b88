// internal/server/router.go
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	WebhookHandler *WebhookHandler
	BotHandler     *BotHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ===============
	// || Public    ||
	// ===============
	router.GET("/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ===============
	// || Gateway   ||
	// ===============
	webhooks := router.Group("/click")
	{
		webhooks.POST("/prepare", cfg.WebhookHandler.Prepare)
		webhooks.POST("/complete", cfg.WebhookHandler.Complete)
	}

	// ===============
	// || Bot       ||
	// ===============
	if cfg.BotHandler != nil {
		bot := router.Group("/bot/:chat_id")
		{
			bot.POST("/start", cfg.BotHandler.Start)
			bot.POST("/message", cfg.BotHandler.Message)
			bot.POST("/payment-check", cfg.BotHandler.PaymentCheck)
			bot.POST("/cancel", cfg.BotHandler.Cancel)
		}
	}

	return router
}
