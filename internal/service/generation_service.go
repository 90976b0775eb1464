package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
	"github.com/CocotaJobs/dealexpress-sub000/internal/docx"
	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/pdfkit"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrTemplateRequired is returned when an organization asks for a document
// but has no active template. Generation never silently falls back to the
// built-in composer; that path has its own endpoint.
var ErrTemplateRequired = errors.New("nenhum modelo ativo: envie um modelo .docx antes de gerar propostas")

// ErrStorageUnavailable is returned when object storage or the conversion
// service was not configured at startup.
var ErrStorageUnavailable = errors.New("armazenamento de documentos indisponível")

// GenerationResult is the outcome of a successful document generation.
type GenerationResult struct {
	PDFURL       string `json:"pdf_url"`
	DocxURL      string `json:"docx_url"`
	Filename     string `json:"filename"`
	TemplateUsed string `json:"template_used"`
}

// GenerationService runs the template→docx→PDF pipeline for one proposal:
// load the proposal and its collaborators, render the active .docx template,
// convert the result to PDF through the external service and store both
// artifacts under deterministic paths.
type GenerationService struct {
	repos   *repository.Repositories
	storage ObjectStorage
	conv    DocxConverter
	rdb     *redis.Client
	log     *zap.Logger
}

func NewGenerationService(repos *repository.Repositories, storage ObjectStorage, conv DocxConverter, rdb *redis.Client, log *zap.Logger) *GenerationService {
	return &GenerationService{repos: repos, storage: storage, conv: conv, rdb: rdb, log: log}
}

// Generate renders the proposal through the organization's active template
// and returns presigned URLs for the stored PDF and docx.
func (s *GenerationService) Generate(ctx context.Context, orgID, proposalID string) (*GenerationResult, error) {
	if s.storage == nil || s.conv == nil {
		return nil, ErrStorageUnavailable
	}

	p, err := s.repos.Proposal.FindByID(ctx, orgID, proposalID)
	if err != nil {
		return nil, err
	}

	var (
		vendor *entity.User
		org    *entity.Organization
		tmpl   *entity.Template
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vendor, err = s.repos.User.FindByID(gctx, p.VendorID)
		return err
	})
	g.Go(func() error {
		var err error
		org, err = s.repos.Organization.FindByID(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		tmpl, err = s.repos.Template.FindActive(gctx, orgID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateRequired
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	templateBytes, err := s.storage.Download(ctx, tmpl.StoragePath)
	if err != nil {
		s.log.Error("template download failed",
			zap.String("template_id", tmpl.ID),
			zap.String("path", tmpl.StoragePath),
			zap.Error(err))
		return nil, &docgen.Error{Titulo: "falha ao carregar o modelo"}
	}

	data := docgen.BuildTemplateData(p, vendor, org)

	rendered, err := docx.Render(templateBytes, data)
	if err != nil {
		return nil, pipelineError(err)
	}

	docxPath := fmt.Sprintf("orgs/%s/propostas/%s.docx", orgID, p.Numero)
	if err := s.storage.Upload(ctx, docxPath, rendered, docxContentType); err != nil {
		s.log.Error("docx upload failed", zap.String("path", docxPath), zap.Error(err))
		return nil, &docgen.Error{Titulo: "falha ao salvar o documento"}
	}

	filename := fmt.Sprintf("Proposta-%s.pdf", p.Numero)
	pdfBytes, err := s.conv.ConvertDocxToPDF(ctx, rendered, filename)
	if err != nil {
		return nil, err
	}

	pdfPath := fmt.Sprintf("orgs/%s/propostas/%s.pdf", orgID, p.Numero)
	if err := s.storage.Upload(ctx, pdfPath, pdfBytes, "application/pdf"); err != nil {
		s.log.Error("pdf upload failed", zap.String("path", pdfPath), zap.Error(err))
		return nil, &docgen.Error{Titulo: "falha ao salvar o documento"}
	}

	if err := s.repos.Proposal.UpdateDocumentPath(ctx, p.ID, pdfPath); err != nil {
		s.log.Warn("document path not persisted", zap.String("proposal_id", p.ID), zap.Error(err))
	}

	pdfURL, err := s.presign(ctx, pdfPath)
	if err != nil {
		return nil, &docgen.Error{Titulo: "falha ao salvar o documento"}
	}
	docxURL, err := s.presign(ctx, docxPath)
	if err != nil {
		return nil, &docgen.Error{Titulo: "falha ao salvar o documento"}
	}

	s.log.Info("proposal document generated",
		zap.String("proposal_id", p.ID),
		zap.String("numero", p.Numero),
		zap.String("template_id", tmpl.ID))

	return &GenerationResult{
		PDFURL:       pdfURL,
		DocxURL:      docxURL,
		Filename:     filename,
		TemplateUsed: tmpl.Nome,
	}, nil
}

const presignedURLTTL = time.Hour

// presign returns a download URL for path, caching it in redis for its own
// lifetime so repeated downloads of the same artifact reuse one URL.
func (s *GenerationService) presign(ctx context.Context, path string) (string, error) {
	key := "docurl:" + path
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}
	url, err := s.storage.PresignedURL(ctx, path, presignedURLTTL)
	if err != nil {
		return "", err
	}
	if s.rdb != nil {
		// Expire the cache entry before the URL itself so a hit is always
		// still valid for a reasonable download window.
		s.rdb.Set(ctx, key, url, presignedURLTTL-5*time.Minute)
	}
	return url, nil
}

// ComposeFallback builds the simplified PDF for a proposal without any
// template, storage or conversion service involved. It is always available,
// even for organizations that never uploaded a template.
func (s *GenerationService) ComposeFallback(ctx context.Context, orgID, proposalID string) ([]byte, string, error) {
	p, err := s.repos.Proposal.FindByID(ctx, orgID, proposalID)
	if err != nil {
		return nil, "", err
	}
	var vendor *entity.User
	if p.VendorID != "" {
		vendor, err = s.repos.User.FindByID(ctx, p.VendorID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, "", err
		}
	}
	org, err := s.repos.Organization.FindByID(ctx, orgID)
	if err != nil {
		return nil, "", err
	}

	data := docgen.BuildTemplateData(p, vendor, org)
	pdf := pdfkit.Compose(dadosFromTemplateData(data))
	return pdf, fmt.Sprintf("Proposta-%s.pdf", p.Numero), nil
}

// Preview renders a specific template against specimen data and returns a
// presigned URL for the resulting PDF. It exercises the full pipeline
// without touching any proposal, so template authors can vet their markup
// before activating it.
func (s *GenerationService) Preview(ctx context.Context, orgID, templateID string) (string, error) {
	if s.storage == nil || s.conv == nil {
		return "", ErrStorageUnavailable
	}

	tmpl, err := s.repos.Template.FindByID(ctx, orgID, templateID)
	if err != nil {
		return "", err
	}
	templateBytes, err := s.storage.Download(ctx, tmpl.StoragePath)
	if err != nil {
		s.log.Error("template download failed",
			zap.String("template_id", tmpl.ID),
			zap.Error(err))
		return "", &docgen.Error{Titulo: "falha ao carregar o modelo"}
	}

	rendered, err := docx.Render(templateBytes, specimenData())
	if err != nil {
		return "", pipelineError(err)
	}

	pdfBytes, err := s.conv.ConvertDocxToPDF(ctx, rendered, "preview.docx")
	if err != nil {
		return "", err
	}
	pdfPath := fmt.Sprintf("orgs/%s/previews/%s.pdf", orgID, tmpl.ID)
	if err := s.storage.Upload(ctx, pdfPath, pdfBytes, "application/pdf"); err != nil {
		return "", &docgen.Error{Titulo: "falha ao salvar o documento"}
	}
	return s.storage.PresignedURL(ctx, pdfPath, presignedURLTTL)
}

// specimenData is a fixed, recognizable dataset for template previews. Every
// placeholder the mapper produces has a value here so a preview surfaces
// unknown tags rather than blank spots.
func specimenData() docgen.TemplateData {
	now := time.Now()
	return docgen.TemplateData{
		Campos: map[string]string{
			"cliente_nome":        "Cliente de Exemplo",
			"cliente_email":       "cliente@exemplo.com.br",
			"cliente_whatsapp":    "+55 11 91234-5678",
			"cliente_empresa":     "Empresa Exemplo Ltda",
			"cliente_endereco":    "Av. Paulista, 1000 - São Paulo/SP",
			"cliente_cpf_cnpj":    "12.345.678/0001-90",
			"numero_proposta":     "PRP-0000",
			"data_criacao":        docgen.FormatDate(now),
			"data_extenso":        docgen.FormatDateExtenso(now),
			"condicoes_pagamento": "50% na assinatura, 50% na entrega",
			"validade_dias":       "30",
			"data_validade":       docgen.FormatDate(now.AddDate(0, 0, 30)),
			"valor_total":         docgen.FormatBRL(1500),
			"itens_resumo":        "1. Item de exemplo - " + docgen.FormatBRL(1500) + "\nTotal: " + docgen.FormatBRL(1500),
			"vendedor_nome":       "Vendedor de Exemplo",
			"vendedor_email":      "vendedor@exemplo.com.br",
			"empresa_nome":        "Sua Empresa",
		},
		Itens: []map[string]string{
			{
				"indice":         "1",
				"nome":           "Item de exemplo",
				"descricao":      "Descrição do item de exemplo",
				"quantidade":     "1",
				"valor_unitario": docgen.FormatBRL(1500),
				"desconto":       "",
				"valor":          docgen.FormatBRL(1500),
			},
		},
	}
}

// dadosFromTemplateData adapts the mapper output to the fallback composer
// input so both rendering paths format values identically.
func dadosFromTemplateData(data docgen.TemplateData) pdfkit.Dados {
	c := data.Campos
	d := pdfkit.Dados{
		EmpresaNome:        c["empresa_nome"],
		Numero:             c["numero_proposta"],
		DataExtenso:        c["data_extenso"],
		ClienteNome:        c["cliente_nome"],
		ClienteEmpresa:     c["cliente_empresa"],
		ClienteEmail:       c["cliente_email"],
		ClienteWhatsapp:    c["cliente_whatsapp"],
		ClienteEndereco:    c["cliente_endereco"],
		ClienteCpfCnpj:     c["cliente_cpf_cnpj"],
		ValorTotal:         c["valor_total"],
		CondicoesPagamento: c["condicoes_pagamento"],
		ValidadeDias:       c["validade_dias"],
		DataValidade:       c["data_validade"],
	}
	for _, item := range data.Itens {
		d.Itens = append(d.Itens, pdfkit.ItemRow{
			Nome:          item["nome"],
			Quantidade:    item["quantidade"],
			ValorUnitario: item["valor_unitario"],
			Desconto:      item["desconto"],
			Valor:         item["valor"],
		})
	}
	return d
}

// pipelineError collapses rendering failures into user-facing docgen errors.
func pipelineError(err error) error {
	var partErr *docx.PartError
	if errors.As(err, &partErr) {
		return &docgen.Error{Titulo: "modelo corrompido", Detalhes: partErr.Error()}
	}
	var tagErr *docx.TagError
	if errors.As(err, &tagErr) {
		return &docgen.Error{Titulo: "modelo com marcação inválida", Detalhes: tagErr.Error()}
	}
	var genErr *docgen.Error
	if errors.As(err, &genErr) {
		return genErr
	}
	return &docgen.Error{Titulo: "falha ao gerar o documento", Detalhes: err.Error()}
}
