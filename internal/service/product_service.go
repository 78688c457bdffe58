package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lincomp/stizun/internal/infra"
	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
)

// PricingDefaults is the explicit configuration the product service needs at
// call time — no ambient global lookups.
type PricingDefaults struct {
	TaxClassName  string
	TaxPercentage string
}

// ProductService owns the product lifecycle. Every persistence path runs the
// pricing engine first so the cached price fields are never stale.
type ProductService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error)

	// Quote recomputes the full pricing result without persisting anything.
	Quote(ctx context.Context, id uuid.UUID) (pricing.Quote, error)

	// QuoteProduct prices an already-loaded product.
	QuoteProduct(ctx context.Context, p *model.Product) (pricing.Quote, error)

	// SavePricing recomputes the cached price fields and persists the product.
	SavePricing(ctx context.Context, p *model.Product) error

	Disable(ctx context.Context, p *model.Product, reason string) error
	Enable(ctx context.Context, p *model.Product, reason string) error

	BootstrapFromSupplyItem(ctx context.Context, supplyItemID uuid.UUID) (*model.Product, error)

	AddComponent(ctx context.Context, productID, supplyItemID uuid.UUID, quantity int) (*model.Product, error)
	RemoveComponent(ctx context.Context, productID, supplyItemID uuid.UUID, quantity int) (*model.Product, error)

	// RecalculateCaches re-prices and re-saves every given product. Returns
	// how many were refreshed; individual failures are logged and skipped.
	RecalculateCaches(ctx context.Context, products []model.Product) int
}

type productService struct {
	repo      repository.ProductRepository
	ranges    repository.MarginRangeRepository
	taxes     repository.TaxClassRepository
	supply    repository.SupplyItemRepository
	history   repository.HistoryRepository
	engine    *pricing.Engine
	fetchers  *infra.FetcherRegistry
	defaults  PricingDefaults
}

func NewProductService(
	repo repository.ProductRepository,
	ranges repository.MarginRangeRepository,
	taxes repository.TaxClassRepository,
	supply repository.SupplyItemRepository,
	history repository.HistoryRepository,
	engine *pricing.Engine,
	fetchers *infra.FetcherRegistry,
	defaults PricingDefaults,
) ProductService {
	return &productService{
		repo:     repo,
		ranges:   ranges,
		taxes:    taxes,
		supply:   supply,
		history:  history,
		engine:   engine,
		fetchers: fetchers,
		defaults: defaults,
	}
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *productService) Quote(ctx context.Context, id uuid.UUID) (pricing.Quote, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.QuoteProduct(ctx, p)
}

func (s *productService) QuoteProduct(ctx context.Context, p *model.Product) (pricing.Quote, error) {
	snap, err := s.snapshotFor(ctx, p)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.engine.QuoteFor(snap)
}

// snapshotFor assembles the pricing snapshot: component lines, scope-grouped
// margin ranges and the tax class.
func (s *productService) snapshotFor(ctx context.Context, p *model.Product) (pricing.Snapshot, error) {
	snap := pricing.Snapshot{Product: p}

	for i := range p.Components {
		// A component whose supply item disappeared upstream contributes
		// nothing; the deletion cascade disables the product separately.
		if p.Components[i].SupplyItem == nil {
			continue
		}
		snap.Components = append(snap.Components, pricing.ComponentLine{
			Item:     p.Components[i].SupplyItem,
			Quantity: p.Components[i].Quantity,
		})
	}

	itemRanges, err := s.ranges.ForProduct(ctx, p.ID)
	if err != nil {
		return snap, fmt.Errorf("load product ranges: %w", err)
	}
	snap.Ranges.Item = itemRanges

	if p.SupplierID != nil {
		supplierRanges, err := s.ranges.ForSupplier(ctx, *p.SupplierID)
		if err != nil {
			return snap, fmt.Errorf("load supplier ranges: %w", err)
		}
		snap.Ranges.Supplier = supplierRanges
	}

	systemRanges, err := s.ranges.SystemWide(ctx)
	if err != nil {
		return snap, fmt.Errorf("load system ranges: %w", err)
	}
	snap.Ranges.System = systemRanges

	if p.TaxClass.ID != uuid.Nil {
		snap.TaxClass = p.TaxClass
	} else {
		tc, err := s.taxes.FindByID(ctx, p.TaxClassID)
		if err != nil {
			return snap, fmt.Errorf("load tax class: %w", err)
		}
		snap.TaxClass = *tc
	}
	return snap, nil
}

func (s *productService) SavePricing(ctx context.Context, p *model.Product) error {
	q, err := s.QuoteProduct(ctx, p)
	if err != nil {
		return err
	}
	p.CachedPrice = q.Price
	p.CachedTaxedPrice = q.TaxedPrice
	p.RoundingComponent = q.RoundingComponent
	p.OnSale = q.OnSale()
	return s.repo.Save(ctx, p)
}

func (s *productService) Disable(ctx context.Context, p *model.Product, reason string) error {
	p.Available = false
	p.Visible = false
	if err := s.SavePricing(ctx, p); err != nil {
		s.record(ctx, fmt.Sprintf("Could not disable product %s: %v", p.Name, err), p.ID)
		return err
	}
	s.record(ctx, fmt.Sprintf("Disabled product %s: %s", p.Name, reason), p.ID)
	return nil
}

func (s *productService) Enable(ctx context.Context, p *model.Product, reason string) error {
	p.Available = true
	if err := s.SavePricing(ctx, p); err != nil {
		s.record(ctx, fmt.Sprintf("Could not enable product %s: %v", p.Name, err), p.ID)
		return err
	}
	s.record(ctx, fmt.Sprintf("Enabled product %s: %s", p.Name, reason), p.ID)
	return nil
}

// BootstrapFromSupplyItem creates a sellable product mirroring a supply item.
// When the supply item carries a description URL and its supplier has a
// fetcher strategy registered, the remote description wins over the feed text;
// a failed fetch falls back to the feed text.
func (s *productService) BootstrapFromSupplyItem(ctx context.Context, supplyItemID uuid.UUID) (*model.Product, error) {
	si, err := s.supply.FindByID(ctx, supplyItemID)
	if err != nil {
		return nil, fmt.Errorf("supply item %s: %w", supplyItemID, err)
	}

	tc, err := s.taxes.FindOrCreateByPercentage(ctx, s.defaults.TaxClassName, mustDecimal(s.defaults.TaxPercentage))
	if err != nil {
		return nil, fmt.Errorf("default tax class: %w", err)
	}

	p := &model.Product{
		Name:                    si.Name,
		Description:             si.Description,
		Manufacturer:            si.Manufacturer,
		ManufacturerProductCode: si.ManufacturerProductCode,
		SupplierProductCode:     si.SupplierProductCode,
		EANCode:                 si.EANCode,
		PurchasePrice:           si.PurchasePrice,
		Weight:                  si.Weight,
		Stock:                   si.Stock,
		TaxClassID:              tc.ID,
		TaxClass:                *tc,
		SupplierID:              &si.SupplierID,
		SupplyItemID:            &si.ID,
		Available:               true,
		Visible:                 true,
	}

	if s.fetchers != nil && si.DescriptionURL != "" && si.Supplier != nil && si.Supplier.FetcherStrategy != "" {
		if fetcher, ok := s.fetchers.Description(si.Supplier.FetcherStrategy); ok {
			if desc, err := fetcher.FetchDescription(ctx, si.DescriptionURL); err == nil && desc != "" {
				p.Description = desc
			} else if err != nil {
				log.Warn().Err(err).Str("url", si.DescriptionURL).Msg("description fetch failed, keeping feed text")
			}
		}
	}

	q, err := s.QuoteProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	p.CachedPrice = q.Price
	p.CachedTaxedPrice = q.TaxedPrice
	p.RoundingComponent = q.RoundingComponent
	p.OnSale = q.OnSale()

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, fmt.Sprintf("Created product %s from supply item %s", p.Name, si.SupplierProductCode), p.ID)
	return p, nil
}

// AddComponent merges quantity into an existing (product, supply item) entry
// or creates a new one, then refreshes the product's derived pricing.
func (s *productService) AddComponent(ctx context.Context, productID, supplyItemID uuid.UUID, quantity int) (*model.Product, error) {
	if quantity < 1 {
		return nil, errors.New("component quantity must be positive")
	}
	if _, err := s.supply.FindByID(ctx, supplyItemID); err != nil {
		return nil, fmt.Errorf("supply item %s: %w", supplyItemID, err)
	}

	components, err := s.repo.Components(ctx, productID)
	if err != nil {
		return nil, err
	}

	var entry *model.ProductComponent
	for i := range components {
		if components[i].SupplyItemID == supplyItemID {
			entry = &components[i]
			break
		}
	}
	if entry != nil {
		entry.Quantity += quantity
	} else {
		entry = &model.ProductComponent{ProductID: productID, SupplyItemID: supplyItemID, Quantity: quantity}
	}
	if err := s.repo.SaveComponent(ctx, entry); err != nil {
		return nil, err
	}
	return s.reloadAndReprice(ctx, productID)
}

// RemoveComponent decrements an entry's quantity, deleting it when the
// quantity drops to zero or below.
func (s *productService) RemoveComponent(ctx context.Context, productID, supplyItemID uuid.UUID, quantity int) (*model.Product, error) {
	components, err := s.repo.Components(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range components {
		if components[i].SupplyItemID != supplyItemID {
			continue
		}
		if components[i].Quantity-quantity <= 0 {
			if err := s.repo.DeleteComponent(ctx, &components[i]); err != nil {
				return nil, err
			}
		} else {
			components[i].Quantity -= quantity
			if err := s.repo.SaveComponent(ctx, &components[i]); err != nil {
				return nil, err
			}
		}
		return s.reloadAndReprice(ctx, productID)
	}
	return nil, fmt.Errorf("product %s has no component %s", productID, supplyItemID)
}

func (s *productService) reloadAndReprice(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.SavePricing(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) RecalculateCaches(ctx context.Context, products []model.Product) int {
	refreshed := 0
	for i := range products {
		p, err := s.repo.FindByID(ctx, products[i].ID)
		if err != nil {
			log.Error().Err(err).Str("product_id", products[i].ID.String()).Msg("cache refresh: load failed")
			continue
		}
		if err := s.SavePricing(ctx, p); err != nil {
			log.Error().Err(err).Str("product_id", p.ID.String()).Msg("cache refresh: save failed")
			continue
		}
		refreshed++
	}
	return refreshed
}

// record appends to the change log; failures are logged and swallowed.
func (s *productService) record(ctx context.Context, message string, productID uuid.UUID) {
	if err := s.history.Record(ctx, message, model.HistoryProductChange, "product", productID); err != nil {
		log.Warn().Err(err).Msg("history record failed")
	}
}
