package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
	"github.com/lincomp/stizun/internal/service"
)

type SupplyItemsHandler struct{ svc service.SupplyItemService }

func NewSupplyItemsHandler(svc service.SupplyItemService) *SupplyItemsHandler {
	return &SupplyItemsHandler{svc: svc}
}

func (h *SupplyItemsHandler) Create(c *gin.Context) {
	var req dto.CreateSupplyItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid supplier_id"))
		return
	}

	si := &model.SupplyItem{
		SupplierID:              supplierID,
		Name:                    req.Name,
		Description:             req.Description,
		DescriptionURL:          req.DescriptionURL,
		ImageURL:                req.ImageURL,
		PdfURL:                  req.PdfURL,
		Manufacturer:            req.Manufacturer,
		ManufacturerProductCode: req.ManufacturerProductCode,
		SupplierProductCode:     req.SupplierProductCode,
		EANCode:                 req.EANCode,
		PurchasePrice:           req.PurchasePrice,
		Weight:                  req.Weight,
		Stock:                   req.Stock,
		Status:                  model.SupplyItemAvailable,
		WorkflowStatus:          model.WorkflowFresh,
	}
	if err := h.svc.Save(c.Request.Context(), si); err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSupplyItemResponse(si))
}

func (h *SupplyItemsHandler) List(c *gin.Context) {
	var filter dto.SupplyItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), repository.SupplyItemFilter{
		SupplierID:   filter.SupplierID,
		Manufacturer: filter.Manufacturer,
		InStockOnly:  filter.InStockOnly,
		Status:       filter.Status,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list supply items"))
		return
	}

	resp := dto.SupplyItemListResponse{
		Data:       make([]dto.SupplyItemResponse, 0, len(items)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range items {
		resp.Data = append(resp.Data, dto.NewSupplyItemResponse(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SupplyItemsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	si, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Supply item not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSupplyItemResponse(si))
}

func (h *SupplyItemsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateSupplyItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	si, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Supply item not found"))
		return
	}
	applySupplyItemUpdate(si, &req)

	if err := h.svc.Save(c.Request.Context(), si); err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSupplyItemResponse(si))
}

// SetStatus flips availability. Status writes run the dependent-product
// cascades, so this is the endpoint feed importers call when an upstream
// record vanishes or comes back.
func (h *SupplyItemsHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.SetSupplyItemStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	si, err := h.svc.SetStatus(c.Request.Context(), id, model.SupplyItemStatus(req.Status))
	if err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSupplyItemResponse(si))
}

func applySupplyItemUpdate(si *model.SupplyItem, req *dto.UpdateSupplyItemRequest) {
	if req.Name != nil {
		si.Name = *req.Name
	}
	if req.Description != nil {
		si.Description = *req.Description
	}
	if req.DescriptionURL != nil {
		si.DescriptionURL = *req.DescriptionURL
	}
	if req.ImageURL != nil {
		si.ImageURL = *req.ImageURL
	}
	if req.PdfURL != nil {
		si.PdfURL = *req.PdfURL
	}
	if req.Manufacturer != nil {
		si.Manufacturer = *req.Manufacturer
	}
	if req.ManufacturerProductCode != nil {
		si.ManufacturerProductCode = *req.ManufacturerProductCode
	}
	if req.EANCode != nil {
		si.EANCode = *req.EANCode
	}
	if req.PurchasePrice != nil {
		si.PurchasePrice = *req.PurchasePrice
	}
	if req.Weight != nil {
		si.Weight = *req.Weight
	}
	if req.Stock != nil {
		si.Stock = *req.Stock
	}
	if req.WorkflowStatus != nil {
		si.WorkflowStatus = model.WorkflowStatus(*req.WorkflowStatus)
	}
}
