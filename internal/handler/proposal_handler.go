package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/CocotaJobs/dealexpress-sub000/internal/converter"
	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	svc    *service.ProposalService
	gen    *service.GenerationService
	report *service.ReportService
}

func NewProposalHandler(svc *service.ProposalService, gen *service.GenerationService, report *service.ReportService) *ProposalHandler {
	return &ProposalHandler{svc: svc, gen: gen, report: report}
}

func (h *ProposalHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.List(c.Request.Context(), GetOrgID(c), c.Query("status"), page, pageSize)
	if err != nil {
		InternalError(c, "Falha ao listar propostas")
		return
	}
	Success(c, result)
}

func (h *ProposalHandler) Create(c *gin.Context) {
	var req service.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), GetOrgID(c), GetUserID(c), &req)
	if err != nil {
		writeProposalError(c, err)
		return
	}
	Created(c, p)
}

func (h *ProposalHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeProposalError(c, err)
		return
	}
	Success(c, p)
}

func (h *ProposalHandler) Update(c *gin.Context) {
	var req service.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), GetOrgID(c), c.Param("id"), &req)
	if err != nil {
		writeProposalError(c, err)
		return
	}
	Success(c, p)
}

func (h *ProposalHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		writeProposalError(c, err)
		return
	}
	Success(c, nil)
}

func (h *ProposalHandler) Send(c *gin.Context) {
	p, err := h.svc.Send(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeProposalError(c, err)
		return
	}
	Success(c, p)
}

// Generate runs the document pipeline for one proposal.
func (h *ProposalHandler) Generate(c *gin.Context) {
	result, err := h.gen.Generate(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeGenerationError(c, err)
		return
	}
	Success(c, result)
}

// SimplePDF streams the built-in fallback composition of the proposal. It
// works without any uploaded template or external service.
func (h *ProposalHandler) SimplePDF(c *gin.Context) {
	pdf, filename, err := h.gen.ComposeFallback(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeProposalError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Export streams an XLSX listing of every proposal in the organization.
func (h *ProposalHandler) Export(c *gin.Context) {
	data, err := h.report.ExportXLSX(c.Request.Context(), GetOrgID(c))
	if err != nil {
		InternalError(c, "Falha ao exportar propostas")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="propostas.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func writeProposalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Proposta não encontrada")
	case errors.Is(err, service.ErrProposalLocked):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidItem), errors.Is(err, service.ErrDescontoExcedido):
		UnprocessableEntity(c, err.Error())
	default:
		InternalError(c, "Falha ao processar proposta")
	}
}

func writeGenerationError(c *gin.Context, err error) {
	var genErr *docgen.Error
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Proposta não encontrada")
	case errors.Is(err, service.ErrTemplateRequired):
		UnprocessableEntity(c, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		Error(c, 50300, err.Error())
	case errors.Is(err, converter.ErrProcessar), errors.Is(err, converter.ErrConverter):
		Error(c, 50200, err.Error())
	case errors.As(err, &genErr):
		UnprocessableEntity(c, genErr.Error())
	default:
		InternalError(c, "Falha ao gerar o documento")
	}
}
