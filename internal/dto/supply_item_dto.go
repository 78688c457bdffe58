package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
)

type CreateSupplyItemRequest struct {
	SupplierID              string          `json:"supplier_id"               validate:"required,uuid"`
	Name                    string          `json:"name"                      validate:"required,min=2,max=200"`
	Description             string          `json:"description"`
	DescriptionURL          string          `json:"description_url"           validate:"omitempty,url"`
	ImageURL                string          `json:"image_url"                 validate:"omitempty,url"`
	PdfURL                  string          `json:"pdf_url"                   validate:"omitempty,url"`
	Manufacturer            string          `json:"manufacturer"`
	ManufacturerProductCode string          `json:"manufacturer_product_code"`
	SupplierProductCode     string          `json:"supplier_product_code"     validate:"required"`
	EANCode                 string          `json:"ean_code"`
	PurchasePrice           decimal.Decimal `json:"purchase_price"            validate:"min=0"`
	Weight                  decimal.Decimal `json:"weight"`
	Stock                   int             `json:"stock"`
}

type UpdateSupplyItemRequest struct {
	Name                    *string          `json:"name"                      validate:"omitempty,min=2,max=200"`
	Description             *string          `json:"description"`
	DescriptionURL          *string          `json:"description_url"           validate:"omitempty,url"`
	ImageURL                *string          `json:"image_url"                 validate:"omitempty,url"`
	PdfURL                  *string          `json:"pdf_url"                   validate:"omitempty,url"`
	Manufacturer            *string          `json:"manufacturer"`
	ManufacturerProductCode *string          `json:"manufacturer_product_code"`
	EANCode                 *string          `json:"ean_code"`
	PurchasePrice           *decimal.Decimal `json:"purchase_price"`
	Weight                  *decimal.Decimal `json:"weight"`
	Stock                   *int             `json:"stock"`
	WorkflowStatus          *int             `json:"workflow_status"           validate:"omitempty,min=1,max=3"`
}

type SetSupplyItemStatusRequest struct {
	Status int `json:"status" validate:"required,oneof=1 2"`
}

type SupplyItemFilter struct {
	SupplierID   string `form:"supplier_id"`
	Manufacturer string `form:"manufacturer"`
	InStockOnly  bool   `form:"in_stock_only"`
	Status       int    `form:"status"`
	Page         int    `form:"page,default=1"    validate:"min=1"`
	Limit        int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type SupplyItemResponse struct {
	ID                      string          `json:"id"`
	SupplierID              string          `json:"supplier_id"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	DescriptionURL          string          `json:"description_url"`
	ImageURL                string          `json:"image_url"`
	PdfURL                  string          `json:"pdf_url"`
	Manufacturer            string          `json:"manufacturer"`
	ManufacturerProductCode string          `json:"manufacturer_product_code"`
	SupplierProductCode     string          `json:"supplier_product_code"`
	EANCode                 string          `json:"ean_code"`
	PurchasePrice           decimal.Decimal `json:"purchase_price"`
	Weight                  decimal.Decimal `json:"weight"`
	Stock                   int             `json:"stock"`
	Status                  string          `json:"status"`
	WorkflowStatus          string          `json:"workflow_status"`
}

type SupplyItemListResponse struct {
	Data       []SupplyItemResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

func NewSupplyItemResponse(si *model.SupplyItem) SupplyItemResponse {
	return SupplyItemResponse{
		ID:                      si.ID.String(),
		SupplierID:              si.SupplierID.String(),
		Name:                    si.Name,
		Description:             si.Description,
		DescriptionURL:          si.DescriptionURL,
		ImageURL:                si.ImageURL,
		PdfURL:                  si.PdfURL,
		Manufacturer:            si.Manufacturer,
		ManufacturerProductCode: si.ManufacturerProductCode,
		SupplierProductCode:     si.SupplierProductCode,
		EANCode:                 si.EANCode,
		PurchasePrice:           si.PurchasePrice,
		Weight:                  si.Weight,
		Stock:                   si.Stock,
		Status:                  si.Status.String(),
		WorkflowStatus:          si.WorkflowStatus.String(),
	}
}
