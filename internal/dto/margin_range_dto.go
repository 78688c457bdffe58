package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
)

type CreateMarginRangeRequest struct {
	StartPrice       *decimal.Decimal `json:"start_price"`
	EndPrice         *decimal.Decimal `json:"end_price"`
	MarginPercentage decimal.Decimal  `json:"margin_percentage" validate:"required"`
	SupplierID       *string          `json:"supplier_id"       validate:"omitempty,uuid"`
	ProductID        *string          `json:"product_id"        validate:"omitempty,uuid"`
}

type MarginRangeResponse struct {
	ID               string           `json:"id"`
	StartPrice       *decimal.Decimal `json:"start_price"`
	EndPrice         *decimal.Decimal `json:"end_price"`
	MarginPercentage decimal.Decimal  `json:"margin_percentage"`
	SupplierID       *string          `json:"supplier_id"`
	ProductID        *string          `json:"product_id"`
	Scope            string           `json:"scope"` // system | supplier | product
}

func NewMarginRangeResponse(mr *model.MarginRange) MarginRangeResponse {
	resp := MarginRangeResponse{
		ID:               mr.ID.String(),
		MarginPercentage: mr.MarginPercentage,
		Scope:            "system",
	}
	if mr.StartPrice.Valid {
		d := mr.StartPrice.Decimal
		resp.StartPrice = &d
	}
	if mr.EndPrice.Valid {
		d := mr.EndPrice.Decimal
		resp.EndPrice = &d
	}
	if mr.SupplierID != nil {
		s := mr.SupplierID.String()
		resp.SupplierID = &s
		resp.Scope = "supplier"
	}
	if mr.ProductID != nil {
		s := mr.ProductID.String()
		resp.ProductID = &s
		resp.Scope = "product"
	}
	return resp
}
