package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/pricing"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name                 string           `json:"name"                  validate:"required,min=2,max=200"`
	Description          string           `json:"description"`
	DescriptionProtected bool             `json:"description_protected"`
	Weight               *decimal.Decimal `json:"weight"`
	PurchasePrice        decimal.Decimal  `json:"purchase_price"        validate:"min=0"`
	SalesPrice           *decimal.Decimal `json:"sales_price"`
	AbsoluteRebate       *decimal.Decimal `json:"absolute_rebate"`
	PercentageRebate     *decimal.Decimal `json:"percentage_rebate"`
	RebateUntil          *time.Time       `json:"rebate_until"`
	LossLeader           bool             `json:"loss_leader"`
	TaxClassID           string           `json:"tax_class_id"          validate:"required,uuid"`
	SupplierID           *string          `json:"supplier_id"           validate:"omitempty,uuid"`
	Manufacturer         string           `json:"manufacturer"`
	ManufacturerCode     string           `json:"manufacturer_product_code"`
	EANCode              string           `json:"ean_code"`
	Stock                int              `json:"stock"                 validate:"min=0"`
}

type UpdateProductRequest struct {
	Name                 *string          `json:"name"                  validate:"omitempty,min=2,max=200"`
	Description          *string          `json:"description"`
	DescriptionProtected *bool            `json:"description_protected"`
	Weight               *decimal.Decimal `json:"weight"`
	PurchasePrice        *decimal.Decimal `json:"purchase_price"`
	SalesPrice           *decimal.Decimal `json:"sales_price"`
	AbsoluteRebate       *decimal.Decimal `json:"absolute_rebate"`
	PercentageRebate     *decimal.Decimal `json:"percentage_rebate"`
	RebateUntil          *time.Time       `json:"rebate_until"`
	LossLeader           *bool            `json:"loss_leader"`
	TaxClassID           *string          `json:"tax_class_id"          validate:"omitempty,uuid"`
	Stock                *int             `json:"stock"                 validate:"omitempty,min=0"`
	Visible              *bool            `json:"visible"`
}

type BootstrapProductRequest struct {
	SupplyItemID string `json:"supply_item_id" validate:"required,uuid"`
}

type ComponentRequest struct {
	SupplyItemID string `json:"supply_item_id" validate:"required,uuid"`
	Quantity     int    `json:"quantity"       validate:"required,min=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name          string `form:"name"`
	SupplierID    string `form:"supplier_id"`
	AvailableOnly bool   `form:"available_only"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	DescriptionProtected    bool            `json:"description_protected"`
	Weight                  decimal.Decimal `json:"weight"`
	PurchasePrice           decimal.Decimal `json:"purchase_price"`
	SalesPrice              decimal.Decimal `json:"sales_price"`
	AbsolutelyPriced        bool            `json:"absolutely_priced"`
	Componentized           bool            `json:"componentized"`
	AbsoluteRebate          decimal.Decimal `json:"absolute_rebate"`
	PercentageRebate        decimal.Decimal `json:"percentage_rebate"`
	RebateUntil             *time.Time      `json:"rebate_until"`
	LossLeader              bool            `json:"loss_leader"`
	OnSale                  bool            `json:"on_sale"`
	TaxClassID              string          `json:"tax_class_id"`
	SupplierID              *string         `json:"supplier_id"`
	SupplyItemID            *string         `json:"supply_item_id"`
	Manufacturer            string          `json:"manufacturer"`
	ManufacturerProductCode string          `json:"manufacturer_product_code"`
	SupplierProductCode     string          `json:"supplier_product_code"`
	EANCode                 string          `json:"ean_code"`
	Stock                   int             `json:"stock"`
	Available               bool            `json:"available"`
	Visible                 bool            `json:"visible"`
	Price                   decimal.Decimal `json:"price"`
	TaxedPrice              decimal.Decimal `json:"taxed_price"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// QuoteResponse exposes the full pricing breakdown, not just the cached end
// price.
type QuoteResponse struct {
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	Weight            decimal.Decimal `json:"weight"`
	BuildableStock    int             `json:"buildable_stock"`
	MarginPercentage  decimal.Decimal `json:"margin_percentage"`
	Margin            decimal.Decimal `json:"margin"`
	RoundingComponent decimal.Decimal `json:"rounding_component"`
	GrossPrice        decimal.Decimal `json:"gross_price"`
	Rebate            decimal.Decimal `json:"rebate"`
	Price             decimal.Decimal `json:"price"`
	Taxes             decimal.Decimal `json:"taxes"`
	TaxedPrice        decimal.Decimal `json:"taxed_price"`
	OnSale            bool            `json:"on_sale"`
	Profitable        bool            `json:"profitable"`
}

func NewQuoteResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		PurchasePrice:     q.PurchasePrice,
		Weight:            q.Weight,
		BuildableStock:    q.BuildableStock,
		MarginPercentage:  q.MarginPercentage,
		Margin:            q.Margin,
		RoundingComponent: q.RoundingComponent,
		GrossPrice:        q.GrossPrice,
		Rebate:            q.Rebate,
		Price:             q.Price,
		Taxes:             q.Taxes,
		TaxedPrice:        q.TaxedPrice,
		OnSale:            q.OnSale(),
		Profitable:        q.Profitable(),
	}
}

func NewProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:                      p.ID.String(),
		Name:                    p.Name,
		Description:             p.Description,
		DescriptionProtected:    p.DescriptionProtected,
		Weight:                  p.Weight,
		PurchasePrice:           p.PurchasePrice,
		SalesPrice:              p.SalesPrice,
		AbsolutelyPriced:        p.AbsolutelyPriced(),
		Componentized:           p.Componentized(),
		AbsoluteRebate:          p.AbsoluteRebate,
		PercentageRebate:        p.PercentageRebate,
		RebateUntil:             p.RebateUntil,
		LossLeader:              p.LossLeader,
		OnSale:                  p.OnSale,
		TaxClassID:              p.TaxClassID.String(),
		Manufacturer:            p.Manufacturer,
		ManufacturerProductCode: p.ManufacturerProductCode,
		SupplierProductCode:     p.SupplierProductCode,
		EANCode:                 p.EANCode,
		Stock:                   p.Stock,
		Available:               p.Available,
		Visible:                 p.Visible,
		Price:                   p.CachedPrice,
		TaxedPrice:              p.CachedTaxedPrice,
	}
	if p.SupplierID != nil {
		s := p.SupplierID.String()
		resp.SupplierID = &s
	}
	if p.SupplyItemID != nil {
		s := p.SupplyItemID.String()
		resp.SupplyItemID = &s
	}
	return resp
}
