package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
)

type CreateSupplierRequest struct {
	Name            string `json:"name"             validate:"required,min=2,max=120"`
	FetcherStrategy string `json:"fetcher_strategy"`
	ProductBaseURL  string `json:"product_base_url" validate:"omitempty,url"`
}

type SupplierResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	FetcherStrategy string `json:"fetcher_strategy"`
	ProductBaseURL  string `json:"product_base_url"`
}

func NewSupplierResponse(s *model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID.String(),
		Name:            s.Name,
		FetcherStrategy: s.FetcherStrategy,
		ProductBaseURL:  s.ProductBaseURL,
	}
}

type CreateTaxClassRequest struct {
	Name       string          `json:"name"       validate:"required,min=1,max=80"`
	Percentage decimal.Decimal `json:"percentage" validate:"min=0"`
}

type TaxClassResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

func NewTaxClassResponse(tc *model.TaxClass) TaxClassResponse {
	return TaxClassResponse{
		ID:         tc.ID.String(),
		Name:       tc.Name,
		Percentage: tc.Percentage,
	}
}
