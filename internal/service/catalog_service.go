package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/google/uuid"
)

// CatalogService is plain CRUD over reusable products/services.
type CatalogService struct {
	repo *repository.CatalogRepository
}

func NewCatalogService(repo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

type CatalogItemRequest struct {
	Nome          string  `json:"nome" binding:"required"`
	Descricao     string  `json:"descricao"`
	PrecoUnitario float64 `json:"preco_unitario" binding:"required"`
	DescontoMax   float64 `json:"desconto_max"`
}

func (s *CatalogService) List(ctx context.Context, orgID string) ([]entity.CatalogItem, error) {
	return s.repo.List(ctx, orgID)
}

func (s *CatalogService) Get(ctx context.Context, orgID, id string) (*entity.CatalogItem, error) {
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *CatalogService) Create(ctx context.Context, orgID string, req *CatalogItemRequest) (*entity.CatalogItem, error) {
	if req.DescontoMax < 0 || req.DescontoMax > 100 {
		return nil, fmt.Errorf("%w: desconto máximo fora do intervalo 0-100", ErrInvalidItem)
	}

	now := time.Now()
	item := &entity.CatalogItem{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Nome:           req.Nome,
		Descricao:      req.Descricao,
		PrecoUnitario:  req.PrecoUnitario,
		DescontoMax:    req.DescontoMax,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create catalog item: %w", err)
	}
	return item, nil
}

func (s *CatalogService) Update(ctx context.Context, orgID, id string, req *CatalogItemRequest) (*entity.CatalogItem, error) {
	item, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.DescontoMax < 0 || req.DescontoMax > 100 {
		return nil, fmt.Errorf("%w: desconto máximo fora do intervalo 0-100", ErrInvalidItem)
	}

	item.Nome = req.Nome
	item.Descricao = req.Descricao
	item.PrecoUnitario = req.PrecoUnitario
	item.DescontoMax = req.DescontoMax
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update catalog item: %w", err)
	}
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, orgID, id string) error {
	return s.repo.Delete(ctx, orgID, id)
}
