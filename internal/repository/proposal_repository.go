package repository

import (
	"context"
	"fmt"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"gorm.io/gorm"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) FindByID(ctx context.Context, orgID, id string) (*entity.Proposal, error) {
	var p entity.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProposalRepository) List(ctx context.Context, orgID, status string, page, pageSize int) ([]entity.Proposal, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Proposal{}).Where("organization_id = ?", orgID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []entity.Proposal
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&proposals).Error
	return proposals, total, err
}

// CreateWithItems persists the proposal and its line items atomically.
func (r *ProposalRepository) CreateWithItems(ctx context.Context, p *entity.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
}

func (r *ProposalRepository) Update(ctx context.Context, p *entity.Proposal) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ReplaceItems swaps the proposal's line items inside one transaction and
// saves the proposal row itself.
func (r *ProposalRepository) ReplaceItems(ctx context.Context, p *entity.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", p.ID).Delete(&entity.ProposalItem{}).Error; err != nil {
			return err
		}
		return tx.Save(p).Error
	})
}

func (r *ProposalRepository) Delete(ctx context.Context, orgID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&entity.ProposalItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND organization_id = ?", id, orgID).Delete(&entity.Proposal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateDocumentPath records the storage path of the latest generated PDF.
func (r *ProposalRepository) UpdateDocumentPath(ctx context.Context, id, path string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Proposal{}).
		Where("id = ?", id).
		Update("document_path", path).Error
}

// NextNumero issues the next display number for the organization, formatted
// PRP-0001, PRP-0002, ... Derived from the highest suffix already issued, so
// deleted proposals never free a number for reuse.
func (r *ProposalRepository) NextNumero(ctx context.Context, orgID string) (string, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&entity.Proposal{}).
		Where("organization_id = ?", orgID).
		Select("COALESCE(MAX(CAST(SUBSTR(numero, 5) AS INTEGER)), 0)").
		Scan(&max).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRP-%04d", max+1), nil
}

func (r *ProposalRepository) ListAll(ctx context.Context, orgID string) ([]entity.Proposal, error) {
	var proposals []entity.Proposal
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}
