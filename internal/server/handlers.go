// internal/server/handlers.go
package server

import (
	"net/http"

	"abiturbot/internal/common/logger"
	"abiturbot/internal/payments/click"

	"github.com/gin-gonic/gin"
)

// WebhookHandler exposes the gateway callback endpoints. Per the gateway
// protocol the HTTP status is always 200; the outcome travels in the
// body's error code.
type WebhookHandler struct {
	service *click.WebhookService
	logger  logger.Logger
}

func NewWebhookHandler(service *click.WebhookService, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  log.WithFields(map[string]interface{}{"component": "webhook-handler"}),
	}
}

func (h *WebhookHandler) Prepare(c *gin.Context) {
	var req click.PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("malformed prepare callback", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusOK, &click.PrepareResponse{Error: click.CodeBadRequest, ErrorNote: click.NoteBadRequest})
		return
	}
	c.JSON(http.StatusOK, h.service.Prepare(&req))
}

func (h *WebhookHandler) Complete(c *gin.Context) {
	var req click.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("malformed complete callback", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusOK, &click.CompleteResponse{Error: click.CodeBadRequest, ErrorNote: click.NoteBadRequest})
		return
	}
	c.JSON(http.StatusOK, h.service.Complete(c.Request.Context(), &req))
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
