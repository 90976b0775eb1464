package handler

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	svc *service.TemplateService
	gen *service.GenerationService
}

func NewTemplateHandler(svc *service.TemplateService, gen *service.GenerationService) *TemplateHandler {
	return &TemplateHandler{svc: svc, gen: gen}
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.svc.List(c.Request.Context(), GetOrgID(c))
	if err != nil {
		InternalError(c, "Falha ao listar modelos")
		return
	}
	Success(c, gin.H{"items": templates})
}

// Upload receives a multipart .docx under the "file" field. The template name
// defaults to the uploaded filename without extension.
func (h *TemplateHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "Campo 'file' ausente")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".docx") {
		UnprocessableEntity(c, service.ErrInvalidTemplate.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Falha ao ler o arquivo")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, "Falha ao ler o arquivo")
		return
	}

	nome := c.PostForm("nome")
	if nome == "" {
		nome = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	tmpl, err := h.svc.Upload(c.Request.Context(), GetOrgID(c), GetUserID(c), nome, content)
	if err != nil {
		writeTemplateError(c, err)
		return
	}
	Created(c, tmpl)
}

func (h *TemplateHandler) Activate(c *gin.Context) {
	if err := h.svc.Activate(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		writeTemplateError(c, err)
		return
	}
	Success(c, nil)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		writeTemplateError(c, err)
		return
	}
	Success(c, nil)
}

// Preview renders the template against sample data and returns a download
// URL for the resulting PDF.
func (h *TemplateHandler) Preview(c *gin.Context) {
	url, err := h.gen.Preview(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeGenerationError(c, err)
		return
	}
	Success(c, gin.H{"pdf_url": url})
}

func writeTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Modelo não encontrado")
	case errors.Is(err, service.ErrInvalidTemplate):
		UnprocessableEntity(c, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		Error(c, 50300, err.Error())
	default:
		InternalError(c, "Falha ao processar modelo")
	}
}
