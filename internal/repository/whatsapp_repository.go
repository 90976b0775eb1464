package repository

import (
	"context"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WhatsappRepository struct {
	db *gorm.DB
}

func NewWhatsappRepository(db *gorm.DB) *WhatsappRepository {
	return &WhatsappRepository{db: db}
}

// Upsert applies a webhook-reported connection state. Keyed by user with
// last-write-wins semantics: webhooks arrive out of order and repeat, so the
// write must be idempotent.
func (r *WhatsappRepository) Upsert(ctx context.Context, status *entity.WhatsappStatus) error {
	status.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"estado", "qr_code", "updated_at"}),
		}).
		Create(status).Error
}

func (r *WhatsappRepository) FindByUser(ctx context.Context, userID string) (*entity.WhatsappStatus, error) {
	var status entity.WhatsappStatus
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&status).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &status, nil
}
