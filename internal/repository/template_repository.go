package repository

import (
	"context"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) FindByID(ctx context.Context, orgID, id string) (*entity.Template, error) {
	var tmpl entity.Template
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&tmpl).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tmpl, nil
}

// FindActive returns the organization's single active template, or
// ErrNotFound when none is active.
func (r *TemplateRepository) FindActive(ctx context.Context, orgID string) (*entity.Template, error) {
	var tmpl entity.Template
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND ativo = ?", orgID, true).
		First(&tmpl).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tmpl, nil
}

func (r *TemplateRepository) List(ctx context.Context, orgID string) ([]entity.Template, error) {
	var templates []entity.Template
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *entity.Template) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

// Activate flips the chosen template on and every other template of the
// organization off in a single transaction, preserving the one-active
// invariant under concurrent activations.
func (r *TemplateRepository) Activate(ctx context.Context, orgID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Template{}).
			Where("organization_id = ?", orgID).
			Update("ativo", false).Error; err != nil {
			return err
		}
		res := tx.Model(&entity.Template{}).
			Where("id = ? AND organization_id = ?", id, orgID).
			Update("ativo", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *TemplateRepository) Delete(ctx context.Context, orgID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&entity.Template{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
