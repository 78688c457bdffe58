package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
	"github.com/lincomp/stizun/internal/service"
)

// quoteCacheTTL bounds how stale a cached quote can get; pricing writes evict
// eagerly but supply sync runs out of band.
const quoteCacheTTL = 30 * time.Second

func quoteCacheKey(id uuid.UUID) string { return "quote:" + id.String() }

type ProductsHandler struct {
	svc service.ProductService
	rdb *redis.Client
}

func NewProductsHandler(svc service.ProductService, rdb *redis.Client) *ProductsHandler {
	return &ProductsHandler{svc: svc, rdb: rdb}
}

// dropQuoteCache evicts a cached quote after a write that changes pricing.
func (h *ProductsHandler) dropQuoteCache(c *gin.Context, id uuid.UUID) {
	if h.rdb != nil {
		h.rdb.Del(c.Request.Context(), quoteCacheKey(id))
	}
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	p := &model.Product{
		Name:                    req.Name,
		Description:             req.Description,
		DescriptionProtected:    req.DescriptionProtected,
		PurchasePrice:           req.PurchasePrice,
		LossLeader:              req.LossLeader,
		RebateUntil:             req.RebateUntil,
		Manufacturer:            req.Manufacturer,
		ManufacturerProductCode: req.ManufacturerCode,
		EANCode:                 req.EANCode,
		Stock:                   req.Stock,
		Available:               true,
		Visible:                 true,
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.SalesPrice != nil {
		p.SalesPrice = *req.SalesPrice
	}
	if req.AbsoluteRebate != nil {
		p.AbsoluteRebate = *req.AbsoluteRebate
	}
	if req.PercentageRebate != nil {
		p.PercentageRebate = *req.PercentageRebate
	}

	taxClassID, err := uuid.Parse(req.TaxClassID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid tax_class_id"))
		return
	}
	p.TaxClassID = taxClassID

	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid supplier_id"))
			return
		}
		p.SupplierID = &supplierID
	}

	if err := h.svc.SavePricing(c.Request.Context(), p); err != nil {
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	products, total, err := h.svc.List(c.Request.Context(), repository.ProductFilter{
		Name:          filter.Name,
		SupplierID:    filter.SupplierID,
		AvailableOnly: filter.AvailableOnly,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list products"))
		return
	}

	resp := dto.ProductListResponse{
		Data:       make([]dto.ProductResponse, 0, len(products)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range products {
		resp.Data = append(resp.Data, dto.NewProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// Quote returns the full pricing breakdown without persisting anything.
func (h *ProductsHandler) Quote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	ctx := c.Request.Context()
	if h.rdb != nil {
		if raw, err := h.rdb.Get(ctx, quoteCacheKey(id)).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	q, err := h.svc.Quote(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Product not found"))
			return
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	}

	resp := dto.NewQuoteResponse(q)
	if h.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			h.rdb.Set(ctx, quoteCacheKey(id), raw, quoteCacheTTL)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}
	if !applyProductUpdate(c, p, &req) {
		return
	}

	if err := h.svc.SavePricing(c.Request.Context(), p); err != nil {
		writeSaveError(c, err)
		return
	}
	h.dropQuoteCache(c, id)
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

func (h *ProductsHandler) Disable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}
	if err := h.svc.Disable(c.Request.Context(), p, "disabled via API"); err != nil {
		writeSaveError(c, err)
		return
	}
	h.dropQuoteCache(c, id)
	c.Status(http.StatusNoContent)
}

func (h *ProductsHandler) Enable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}
	if err := h.svc.Enable(c.Request.Context(), p, "enabled via API"); err != nil {
		writeSaveError(c, err)
		return
	}
	h.dropQuoteCache(c, id)
	c.Status(http.StatusNoContent)
}

// Bootstrap creates a product mirroring an existing supply item.
func (h *ProductsHandler) Bootstrap(c *gin.Context) {
	var req dto.BootstrapProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supplyItemID, err := uuid.Parse(req.SupplyItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid supply_item_id"))
		return
	}

	p, err := h.svc.BootstrapFromSupplyItem(c.Request.Context(), supplyItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Supply item not found"))
			return
		}
		writeSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

func (h *ProductsHandler) AddComponent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.ComponentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supplyItemID, err := uuid.Parse(req.SupplyItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid supply_item_id"))
		return
	}

	p, err := h.svc.AddComponent(c.Request.Context(), id, supplyItemID, req.Quantity)
	if err != nil {
		writeSaveError(c, err)
		return
	}
	h.dropQuoteCache(c, id)
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// RemoveComponent decrements the given quantity (?quantity=N, default 1) of a
// component line, deleting the line when it reaches zero.
func (h *ProductsHandler) RemoveComponent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	supplyItemID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid supply item ID"))
		return
	}
	quantity := 1
	if q := c.Query("quantity"); q != "" {
		if quantity, err = strconv.Atoi(q); err != nil || quantity < 1 {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid quantity"))
			return
		}
	}

	p, err := h.svc.RemoveComponent(c.Request.Context(), id, supplyItemID, quantity)
	if err != nil {
		writeSaveError(c, err)
		return
	}
	h.dropQuoteCache(c, id)
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// applyProductUpdate copies the non-nil request fields onto the model.
// Returns false after writing an error response.
func applyProductUpdate(c *gin.Context, p *model.Product, req *dto.UpdateProductRequest) bool {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.DescriptionProtected != nil {
		p.DescriptionProtected = *req.DescriptionProtected
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.PurchasePrice != nil {
		p.PurchasePrice = *req.PurchasePrice
	}
	if req.SalesPrice != nil {
		p.SalesPrice = *req.SalesPrice
	}
	if req.AbsoluteRebate != nil {
		p.AbsoluteRebate = *req.AbsoluteRebate
	}
	if req.PercentageRebate != nil {
		p.PercentageRebate = *req.PercentageRebate
	}
	if req.RebateUntil != nil {
		p.RebateUntil = req.RebateUntil
	}
	if req.LossLeader != nil {
		p.LossLeader = *req.LossLeader
	}
	if req.TaxClassID != nil {
		taxClassID, err := uuid.Parse(*req.TaxClassID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid tax_class_id"))
			return false
		}
		p.TaxClassID = taxClassID
		p.TaxClass = model.TaxClass{}
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Visible != nil {
		p.Visible = *req.Visible
	}
	return true
}

// writeSaveError distinguishes validation failures from everything else.
func writeSaveError(c *gin.Context, err error) {
	if ve, ok := repository.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Fields))
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("Not found"))
		return
	}
	c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
}
