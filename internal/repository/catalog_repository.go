package repository

import (
	"context"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) FindByID(ctx context.Context, orgID, id string) (*entity.CatalogItem, error) {
	var item entity.CatalogItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ? AND deleted_at IS NULL", id, orgID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *CatalogRepository) List(ctx context.Context, orgID string) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND deleted_at IS NULL", orgID).
		Order("nome").
		Find(&items).Error
	return items, err
}

func (r *CatalogRepository) Create(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CatalogRepository) Update(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete is soft: proposals keep their snapshotted item names regardless.
func (r *CatalogRepository) Delete(ctx context.Context, orgID, id string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.CatalogItem{}).
		Where("id = ? AND organization_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
