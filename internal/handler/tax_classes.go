package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/repository"
)

type TaxClassesHandler struct{ repo repository.TaxClassRepository }

func NewTaxClassesHandler(repo repository.TaxClassRepository) *TaxClassesHandler {
	return &TaxClassesHandler{repo: repo}
}

func (h *TaxClassesHandler) List(c *gin.Context) {
	classes, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list tax classes"))
		return
	}
	resp := make([]dto.TaxClassResponse, 0, len(classes))
	for i := range classes {
		resp = append(resp, dto.NewTaxClassResponse(&classes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaxClassesHandler) Create(c *gin.Context) {
	var req dto.CreateTaxClassRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tc, err := h.repo.FindOrCreateByPercentage(c.Request.Context(), req.Name, req.Percentage)
	if err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaxClassResponse(tc))
}
