package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
)

// SuppliersHandler manages supplier master data. Thin enough that it talks to
// the repository directly — there is no supplier business logic to mediate.
type SuppliersHandler struct{ repo repository.SupplierRepository }

func NewSuppliersHandler(repo repository.SupplierRepository) *SuppliersHandler {
	return &SuppliersHandler{repo: repo}
}

func (h *SuppliersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s := &model.Supplier{
		Name:            req.Name,
		FetcherStrategy: req.FetcherStrategy,
		ProductBaseURL:  req.ProductBaseURL,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSupplierResponse(s))
}

func (h *SuppliersHandler) List(c *gin.Context) {
	suppliers, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list suppliers"))
		return
	}
	resp := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		resp = append(resp, dto.NewSupplierResponse(&suppliers[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SuppliersHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	s, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Supplier not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSupplierResponse(s))
}
