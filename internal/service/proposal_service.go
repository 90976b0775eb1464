package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrProposalLocked   = errors.New("proposta enviada não pode ser alterada")
	ErrInvalidItem      = errors.New("item inválido")
	ErrDescontoExcedido = errors.New("desconto acima do máximo permitido para o item")
)

// ProposalService owns the proposal lifecycle: creation with line items,
// draft-only mutation, sending and expiry derivation.
type ProposalService struct {
	proposals *repository.ProposalRepository
	catalog   *repository.CatalogRepository
}

func NewProposalService(proposals *repository.ProposalRepository, catalog *repository.CatalogRepository) *ProposalService {
	return &ProposalService{proposals: proposals, catalog: catalog}
}

// ItemInput is one requested line. When CatalogItemID is set the name,
// description and price are snapshotted from the catalog entry and the
// catalog's maximum discount is enforced.
type ItemInput struct {
	CatalogItemID string  `json:"catalog_item_id"`
	Nome          string  `json:"nome"`
	Descricao     string  `json:"descricao"`
	PrecoUnitario float64 `json:"preco_unitario"`
	Quantidade    int     `json:"quantidade" binding:"required"`
	DescontoPct   float64 `json:"desconto_pct"`
}

type CreateProposalRequest struct {
	ClienteNome     string `json:"cliente_nome" binding:"required"`
	ClienteEmail    string `json:"cliente_email"`
	ClienteWhatsapp string `json:"cliente_whatsapp"`
	ClienteEmpresa  string `json:"cliente_empresa"`
	ClienteEndereco string `json:"cliente_endereco"`
	ClienteCpfCnpj  string `json:"cliente_cpf_cnpj"`

	CondicoesPagamento string      `json:"condicoes_pagamento"`
	ValidadeDias       int         `json:"validade_dias"`
	Items              []ItemInput `json:"items" binding:"required"`
}

type UpdateProposalRequest struct {
	ClienteNome     string `json:"cliente_nome"`
	ClienteEmail    string `json:"cliente_email"`
	ClienteWhatsapp string `json:"cliente_whatsapp"`
	ClienteEmpresa  string `json:"cliente_empresa"`
	ClienteEndereco string `json:"cliente_endereco"`
	ClienteCpfCnpj  string `json:"cliente_cpf_cnpj"`

	CondicoesPagamento *string      `json:"condicoes_pagamento"`
	ValidadeDias       *int         `json:"validade_dias"`
	Items              *[]ItemInput `json:"items"`
}

type ProposalListResult struct {
	Items      []entity.Proposal `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

func (s *ProposalService) Create(ctx context.Context, orgID, vendorID string, req *CreateProposalRequest) (*entity.Proposal, error) {
	items, err := s.buildItems(ctx, orgID, req.Items)
	if err != nil {
		return nil, err
	}

	numero, err := s.proposals.NextNumero(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("next numero: %w", err)
	}

	validade := req.ValidadeDias
	if validade <= 0 {
		validade = 30
	}

	now := time.Now()
	expires := now.AddDate(0, 0, validade)
	p := &entity.Proposal{
		ID:              uuid.New().String(),
		OrganizationID:  orgID,
		VendorID:        vendorID,
		Numero:          numero,
		ClienteNome:     req.ClienteNome,
		ClienteEmail:    req.ClienteEmail,
		ClienteWhatsapp: req.ClienteWhatsapp,
		ClienteEmpresa:  req.ClienteEmpresa,
		ClienteEndereco: req.ClienteEndereco,
		ClienteCpfCnpj:  req.ClienteCpfCnpj,

		CondicoesPagamento: req.CondicoesPagamento,
		ValidadeDias:       validade,
		Status:             entity.ProposalStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
		ExpiresAt:          &expires,
		Items:              items,
	}
	for i := range p.Items {
		p.Items[i].ProposalID = p.ID
	}

	if err := s.proposals.CreateWithItems(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return p, nil
}

func (s *ProposalService) Get(ctx context.Context, orgID, id string) (*entity.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	s.deriveExpiry(ctx, p)
	return p, nil
}

func (s *ProposalService) List(ctx context.Context, orgID, status string, page, pageSize int) (*ProposalListResult, error) {
	proposals, total, err := s.proposals.List(ctx, orgID, status, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	for i := range proposals {
		s.deriveExpiry(ctx, &proposals[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ProposalListResult{
		Items:      proposals,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update mutates a draft. Sent and expired proposals are immutable by
// policy. A validity change recomputes the expiry date so the
// created+validity relationship never drifts.
func (s *ProposalService) Update(ctx context.Context, orgID, id string, req *UpdateProposalRequest) (*entity.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.ProposalStatusDraft {
		return nil, ErrProposalLocked
	}

	if req.ClienteNome != "" {
		p.ClienteNome = req.ClienteNome
	}
	if req.ClienteEmail != "" {
		p.ClienteEmail = req.ClienteEmail
	}
	if req.ClienteWhatsapp != "" {
		p.ClienteWhatsapp = req.ClienteWhatsapp
	}
	if req.ClienteEmpresa != "" {
		p.ClienteEmpresa = req.ClienteEmpresa
	}
	if req.ClienteEndereco != "" {
		p.ClienteEndereco = req.ClienteEndereco
	}
	if req.ClienteCpfCnpj != "" {
		p.ClienteCpfCnpj = req.ClienteCpfCnpj
	}
	if req.CondicoesPagamento != nil {
		p.CondicoesPagamento = *req.CondicoesPagamento
	}
	if req.ValidadeDias != nil && *req.ValidadeDias > 0 {
		p.ValidadeDias = *req.ValidadeDias
		expires := p.CreatedAt.AddDate(0, 0, p.ValidadeDias)
		p.ExpiresAt = &expires
	}
	p.UpdatedAt = time.Now()

	if req.Items != nil {
		items, err := s.buildItems(ctx, orgID, *req.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].ProposalID = p.ID
		}
		p.Items = items
		if err := s.proposals.ReplaceItems(ctx, p); err != nil {
			return nil, fmt.Errorf("replace items: %w", err)
		}
		return p, nil
	}

	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}
	return p, nil
}

func (s *ProposalService) Delete(ctx context.Context, orgID, id string) error {
	p, err := s.proposals.FindByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if p.Status != entity.ProposalStatusDraft {
		return ErrProposalLocked
	}
	return s.proposals.Delete(ctx, orgID, id)
}

// Send marks the proposal sent and fixes its expiry window.
func (s *ProposalService) Send(ctx context.Context, orgID, id string) (*entity.Proposal, error) {
	p, err := s.proposals.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.ProposalStatusDraft {
		return nil, ErrProposalLocked
	}

	now := time.Now()
	expires := p.CreatedAt.AddDate(0, 0, p.ValidadeDias)
	p.Status = entity.ProposalStatusSent
	p.SentAt = &now
	p.ExpiresAt = &expires
	p.UpdatedAt = now

	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("send proposal: %w", err)
	}
	return p, nil
}

// buildItems validates and snapshots the requested lines. Catalog-backed
// lines inherit name, description and price from the catalog entry; the
// request may still override price downward-or-up but never the discount
// ceiling.
func (s *ProposalService) buildItems(ctx context.Context, orgID string, inputs []ItemInput) ([]entity.ProposalItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: proposta sem itens", ErrInvalidItem)
	}

	items := make([]entity.ProposalItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantidade < 1 {
			return nil, fmt.Errorf("%w: quantidade deve ser no mínimo 1", ErrInvalidItem)
		}
		if in.DescontoPct < 0 || in.DescontoPct > 100 {
			return nil, fmt.Errorf("%w: desconto fora do intervalo 0-100", ErrInvalidItem)
		}

		item := entity.ProposalItem{
			ID:            uuid.New().String(),
			CatalogItemID: in.CatalogItemID,
			Nome:          in.Nome,
			Descricao:     in.Descricao,
			PrecoUnitario: in.PrecoUnitario,
			Quantidade:    in.Quantidade,
			DescontoPct:   in.DescontoPct,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		if in.CatalogItemID != "" {
			cat, err := s.catalog.FindByID(ctx, orgID, in.CatalogItemID)
			if err != nil {
				return nil, fmt.Errorf("%w: item de catálogo não encontrado", ErrInvalidItem)
			}
			if item.Nome == "" {
				item.Nome = cat.Nome
			}
			if item.Descricao == "" {
				item.Descricao = cat.Descricao
			}
			if item.PrecoUnitario == 0 {
				item.PrecoUnitario = cat.PrecoUnitario
			}
			if cat.DescontoMax > 0 && in.DescontoPct > cat.DescontoMax {
				return nil, ErrDescontoExcedido
			}
		}

		if item.Nome == "" {
			return nil, fmt.Errorf("%w: nome obrigatório", ErrInvalidItem)
		}
		item.RecalcSubtotal()
		items = append(items, item)
	}
	return items, nil
}

// deriveExpiry flips sent proposals past their validity window to expired.
// The transition is derived on read and persisted opportunistically.
func (s *ProposalService) deriveExpiry(ctx context.Context, p *entity.Proposal) {
	if p.Status != entity.ProposalStatusSent || p.ExpiresAt == nil {
		return
	}
	if time.Now().After(*p.ExpiresAt) {
		p.Status = entity.ProposalStatusExpired
		_ = s.proposals.Update(ctx, p)
	}
}
