package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
)

// ReconcileSummary counts what one reconciliation pass did. Per-item failures
// are isolated: a failed item bumps Failed and the pass keeps going.
type ReconcileSummary struct {
	Processed int `json:"processed"`
	Switched  int `json:"switched"`
	Disabled  int `json:"disabled"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

// SupplySyncService is the batch reconciliation engine keeping every backed
// product consistent with its supply item: field sync, supplier switching and
// availability cascades. Prices are not written directly — the pass adjusts
// source data and the product save path recomputes the cached prices.
type SupplySyncService interface {
	Reconcile(ctx context.Context) (ReconcileSummary, error)
}

type supplySyncService struct {
	products repository.ProductRepository
	supply   repository.SupplyItemRepository
	ranges   repository.MarginRangeRepository
	history  repository.HistoryRepository
	productS ProductService
}

func NewSupplySyncService(
	products repository.ProductRepository,
	supply repository.SupplyItemRepository,
	ranges repository.MarginRangeRepository,
	history repository.HistoryRepository,
	productS ProductService,
) SupplySyncService {
	return &supplySyncService{
		products: products,
		supply:   supply,
		ranges:   ranges,
		history:  history,
		productS: productS,
	}
}

func (s *supplySyncService) Reconcile(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	supplied, err := s.products.FindSupplied(ctx)
	if err != nil {
		return summary, fmt.Errorf("load supplied products: %w", err)
	}

	for i := range supplied {
		summary.Processed++
		s.reconcileOne(ctx, &supplied[i], &summary)
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("switched", summary.Switched).
		Int("disabled", summary.Disabled).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Msg("reconciliation pass finished")

	if err := s.history.Record(ctx,
		fmt.Sprintf("Reconciliation pass: %d processed, %d switched, %d disabled, %d updated, %d failed",
			summary.Processed, summary.Switched, summary.Disabled, summary.Updated, summary.Failed),
		model.HistorySyncRun, "", uuid.Nil); err != nil {
		log.Warn().Err(err).Msg("history record failed")
	}
	return summary, nil
}

// reconcileOne runs the multi-branch state machine for a single product. All
// failures are absorbed into the summary so one item never aborts the batch.
func (s *supplySyncService) reconcileOne(ctx context.Context, p *model.Product, summary *ReconcileSummary) {
	si := p.SupplyItem

	// The supply item is gone upstream but the product once had a supplier
	// association: nothing left to sell from.
	if si == nil {
		if p.SupplierID != nil {
			if err := s.productS.Disable(ctx, p, "its supply item is gone"); err != nil {
				summary.Failed++
				log.Error().Err(err).Str("product", p.Name).Msg("sync: disable failed")
				return
			}
			summary.Disabled++
			log.Info().Str("product", p.Name).Msg("sync: disabled product, supply item gone")
		}
		return
	}

	// A fixed sales price below the current purchase price means every sale
	// loses money.
	if p.AbsolutelyPriced() && si.PurchasePrice.GreaterThan(p.SalesPrice) {
		if err := s.productS.Disable(ctx, p, "purchase price is higher than absolute sales price"); err != nil {
			summary.Failed++
			log.Error().Err(err).Str("product", p.Name).Msg("sync: disable failed")
			return
		}
		summary.Disabled++
		log.Info().Str("product", p.Name).Msg("sync: disabled product, guaranteed loss at absolute price")
		return
	}

	quote, err := s.productS.QuoteProduct(ctx, p)
	if err != nil {
		// A missing catch-all margin range or rounding calculator is fatal
		// for this computation only.
		summary.Failed++
		log.Error().Err(err).Str("product", p.Name).Msg("sync: pricing failed")
		return
	}

	switched := false
	chosen := si

	if cheaper, err := s.cheaperSupplyItem(ctx, p, si, quote.GrossPrice); err != nil {
		summary.Failed++
		log.Error().Err(err).Str("product", p.Name).Msg("sync: cheaper candidate search failed")
		return
	} else if cheaper != nil {
		p.SupplyItemID = &cheaper.ID
		p.SupplyItem = cheaper
		chosen = cheaper
		switched = true
		log.Info().Str("product", p.Name).Str("supply_item", cheaper.SupplierProductCode).
			Msg("sync: switched to cheaper supply item")
	} else if !si.InStock() || si.Status == model.SupplyItemDeleted {
		alt, err := s.alternativeSupplyItem(ctx, p, si)
		if err != nil {
			summary.Failed++
			log.Error().Err(err).Str("product", p.Name).Msg("sync: alternative search failed")
			return
		}
		if alt != nil {
			p.SupplyItemID = &alt.ID
			p.SupplyItem = alt
			p.Available = true
			chosen = alt
			switched = true
			log.Info().Str("product", p.Name).Str("supply_item", alt.SupplierProductCode).
				Msg("sync: switched to alternative supply item")
		}
	}

	changes := syncFromSupplyItem(p, chosen)
	if len(changes) == 0 && !switched {
		return
	}

	if err := s.productS.SavePricing(ctx, p); err != nil {
		summary.Failed++
		if ve, ok := repository.AsValidationError(err); ok {
			log.Error().Str("product", p.Name).Interface("fields", ve.Fields).
				Strs("changes", changes).Msg("sync: save rejected")
		} else {
			log.Error().Err(err).Str("product", p.Name).Strs("changes", changes).Msg("sync: save failed")
		}
		return
	}

	if switched {
		summary.Switched++
	}
	if len(changes) > 0 {
		summary.Updated++
		log.Info().Str("product", p.Name).Strs("changes", changes).Msg("sync: product updated")
	}
	if err := s.history.Record(ctx,
		fmt.Sprintf("Synced product %s: %s", p.Name, strings.Join(changes, ", ")),
		model.HistoryProductChange, "product", p.ID); err != nil {
		log.Warn().Err(err).Msg("history record failed")
	}
}

// cheaperSupplyItem finds the cheapest interchangeable supply item whose
// purchase price plus its own applicable margin undercuts the product's
// current gross price. Candidates come back ordered by ascending purchase
// price, so the first hit wins.
func (s *supplySyncService) cheaperSupplyItem(ctx context.Context, p *model.Product, si *model.SupplyItem, grossPrice decimal.Decimal) (*model.SupplyItem, error) {
	candidates, err := s.supply.FindAlternatives(ctx, alternativeFilterFor(p, si, true))
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		cand := &candidates[i]

		ranges, err := s.ranges.ForSupplier(ctx, cand.SupplierID)
		if err != nil {
			return nil, err
		}
		if len(ranges) == 0 {
			if ranges, err = s.ranges.SystemWide(ctx); err != nil {
				return nil, err
			}
		}

		pct, err := pricing.PercentageForPrice(cand.PurchasePrice, ranges)
		if err != nil {
			if errors.Is(err, pricing.ErrNoApplicableMarginRange) {
				continue
			}
			return nil, err
		}
		margin := cand.PurchasePrice.Div(decimal.NewFromInt(100)).Mul(pct)
		if cand.PurchasePrice.Add(margin).LessThan(grossPrice) {
			return cand, nil
		}
	}
	return nil, nil
}

// alternativeSupplyItem returns the cheapest in-stock, available supply item
// interchangeable with the current one — price is not compared here, any
// sellable replacement beats an exhausted or deleted source.
func (s *supplySyncService) alternativeSupplyItem(ctx context.Context, p *model.Product, si *model.SupplyItem) (*model.SupplyItem, error) {
	alternatives, err := s.supply.FindAlternatives(ctx, alternativeFilterFor(p, si, true))
	if err != nil {
		return nil, err
	}
	if len(alternatives) == 0 {
		return nil, nil
	}
	return &alternatives[0], nil
}

func alternativeFilterFor(p *model.Product, si *model.SupplyItem, inStockAvailable bool) repository.AlternativeFilter {
	filter := repository.AlternativeFilter{
		ManufacturerProductCode: si.ManufacturerProductCode,
		ExcludeID:               si.ID,
		EANCode:                 p.EANCode,
		InStockOnly:             inStockAvailable,
		AvailableOnly:           inStockAvailable,
	}
	if p.Manufacturer != "" {
		filter.ManufacturerPrefix = p.Manufacturer[:1]
	}
	return filter
}

// syncFromSupplyItem copies the supplier-owned fields onto the product and
// returns a human-readable diff of what changed. Descriptions are skipped
// when the product protects its own, when the feed text is blank, or when a
// description URL exists (URL-sourced descriptions are fetched by an external
// collaborator, never copied from the feed).
func syncFromSupplyItem(p *model.Product, si *model.SupplyItem) []string {
	var changes []string

	setString := func(field string, dst *string, val string) {
		if *dst != val {
			changes = append(changes, fmt.Sprintf("%s: %q -> %q", field, *dst, val))
			*dst = val
		}
	}

	setString("name", &p.Name, si.Name)
	if !p.DescriptionProtected && si.Description != "" && si.DescriptionURL == "" {
		setString("description", &p.Description, si.Description)
	}
	if p.Stock != si.Stock {
		changes = append(changes, fmt.Sprintf("stock: %d -> %d", p.Stock, si.Stock))
		p.Stock = si.Stock
	}
	if !p.PurchasePrice.Equal(si.PurchasePrice) {
		changes = append(changes, fmt.Sprintf("purchase_price: %s -> %s", p.PurchasePrice, si.PurchasePrice))
		p.PurchasePrice = si.PurchasePrice
	}
	setString("manufacturer", &p.Manufacturer, si.Manufacturer)
	setString("manufacturer_product_code", &p.ManufacturerProductCode, si.ManufacturerProductCode)
	setString("ean_code", &p.EANCode, si.EANCode)
	setString("supplier_product_code", &p.SupplierProductCode, si.SupplierProductCode)
	if p.SupplierID == nil || *p.SupplierID != si.SupplierID {
		changes = append(changes, fmt.Sprintf("supplier_id: -> %s", si.SupplierID))
		supplierID := si.SupplierID
		p.SupplierID = &supplierID
	}

	return changes
}
