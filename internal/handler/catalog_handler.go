package handler

import (
	"errors"

	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetOrgID(c))
	if err != nil {
		InternalError(c, "Falha ao listar itens do catálogo")
		return
	}
	Success(c, gin.H{"items": items})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), GetOrgID(c), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	Success(c, item)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req service.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), GetOrgID(c), &req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	Created(c, item)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	var req service.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), GetOrgID(c), c.Param("id"), &req)
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	Success(c, item)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetOrgID(c), c.Param("id")); err != nil {
		writeCatalogError(c, err)
		return
	}
	Success(c, nil)
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Item não encontrado")
	case errors.Is(err, service.ErrInvalidItem):
		UnprocessableEntity(c, err.Error())
	default:
		InternalError(c, "Falha ao processar item do catálogo")
	}
}
