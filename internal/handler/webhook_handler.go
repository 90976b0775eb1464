package handler

import (
	"errors"

	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives messaging-provider callbacks. The endpoint is
// unauthenticated; payloads carry no secrets and an invalid upsert only
// overwrites per-user status.
type WebhookHandler struct {
	svc *service.WhatsappService
}

func NewWebhookHandler(svc *service.WhatsappService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) Whatsapp(c *gin.Context) {
	var ev service.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	if err := h.svc.HandleEvent(c.Request.Context(), &ev); err != nil {
		InternalError(c, "Falha ao registrar evento")
		return
	}
	Success(c, nil)
}

// WhatsappStatus reports the connection state of the authenticated user.
func (h *WebhookHandler) WhatsappStatus(c *gin.Context) {
	status, err := h.svc.Status(c.Request.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Success(c, gin.H{"estado": "disconnected"})
			return
		}
		InternalError(c, "Falha ao consultar estado")
		return
	}
	Success(c, status)
}
