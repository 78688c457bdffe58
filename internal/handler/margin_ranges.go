package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/service"
)

type MarginRangesHandler struct{ svc service.MarginRangeService }

func NewMarginRangesHandler(svc service.MarginRangeService) *MarginRangesHandler {
	return &MarginRangesHandler{svc: svc}
}

func (h *MarginRangesHandler) List(c *gin.Context) {
	ranges, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list margin ranges"))
		return
	}
	resp := make([]dto.MarginRangeResponse, 0, len(ranges))
	for i := range ranges {
		resp = append(resp, dto.NewMarginRangeResponse(&ranges[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MarginRangesHandler) Create(c *gin.Context) {
	var req dto.CreateMarginRangeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.SupplierID != nil && req.ProductID != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("A margin range is scoped to a supplier or a product, not both"))
		return
	}

	mr := &model.MarginRange{MarginPercentage: req.MarginPercentage}
	if req.StartPrice != nil {
		mr.StartPrice = decimal.NewNullDecimal(*req.StartPrice)
	}
	if req.EndPrice != nil {
		mr.EndPrice = decimal.NewNullDecimal(*req.EndPrice)
	}
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid supplier_id"))
			return
		}
		mr.SupplierID = &supplierID
	}
	if req.ProductID != nil {
		productID, err := uuid.Parse(*req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid product_id"))
			return
		}
		mr.ProductID = &productID
	}

	if err := h.svc.Create(c.Request.Context(), mr); err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMarginRangeResponse(mr))
}

func (h *MarginRangesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeSaveError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
