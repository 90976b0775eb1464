package service

import (
	"context"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
)

// Gateway sends messages through an external WhatsApp provider. The concrete
// integration lives outside this codebase; callers only ever depend on this
// interface.
type Gateway interface {
	SendDocument(ctx context.Context, to, filename string, pdf []byte) error
}

// WhatsappService records the connection state the messaging provider
// reports through webhooks.
type WhatsappService struct {
	repo *repository.WhatsappRepository
}

func NewWhatsappService(repo *repository.WhatsappRepository) *WhatsappService {
	return &WhatsappService{repo: repo}
}

// WebhookEvent is the provider payload; unknown fields are ignored.
type WebhookEvent struct {
	UserID string `json:"user_id" binding:"required"`
	Estado string `json:"estado" binding:"required"`
	QRCode string `json:"qr_code"`
}

// HandleEvent upserts the per-user connection state. Events are not ordered
// by the provider; the last write wins.
func (s *WhatsappService) HandleEvent(ctx context.Context, ev *WebhookEvent) error {
	return s.repo.Upsert(ctx, &entity.WhatsappStatus{
		UserID:    ev.UserID,
		Estado:    ev.Estado,
		QRCode:    ev.QRCode,
		UpdatedAt: time.Now(),
	})
}

func (s *WhatsappService) Status(ctx context.Context, userID string) (*entity.WhatsappStatus, error) {
	return s.repo.FindByUser(ctx, userID)
}
