package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
)

// MarginRangeService manages the margin rule lifecycle. Creating or deleting
// a rule refreshes the cached prices of every product whose applicable rule
// set could have changed — before the call returns, so readers never see a
// rule change without its cache invalidation.
type MarginRangeService interface {
	List(ctx context.Context) ([]model.MarginRange, error)
	Create(ctx context.Context, mr *model.MarginRange) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type marginRangeService struct {
	repo     repository.MarginRangeRepository
	products repository.ProductRepository
	history  repository.HistoryRepository
	productS ProductService
}

func NewMarginRangeService(
	repo repository.MarginRangeRepository,
	products repository.ProductRepository,
	history repository.HistoryRepository,
	productS ProductService,
) MarginRangeService {
	return &marginRangeService{repo: repo, products: products, history: history, productS: productS}
}

func (s *marginRangeService) List(ctx context.Context) ([]model.MarginRange, error) {
	return s.repo.List(ctx)
}

func (s *marginRangeService) Create(ctx context.Context, mr *model.MarginRange) error {
	if err := s.repo.Create(ctx, mr); err != nil {
		return err
	}
	refreshed := s.invalidate(ctx, mr)
	s.record(ctx, fmt.Sprintf("Created margin range %s (%d product caches refreshed)", describeRange(mr), refreshed), mr.ID)
	return nil
}

func (s *marginRangeService) Delete(ctx context.Context, id uuid.UUID) error {
	mr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	refreshed := s.invalidate(ctx, mr)
	s.record(ctx, fmt.Sprintf("Deleted margin range %s (%d product caches refreshed)", describeRange(mr), refreshed), mr.ID)
	return nil
}

// invalidate refreshes the caches of the affected product set: the single
// product for product-scoped rules, the supplier's products for
// supplier-scoped rules, and every product without a more specific rule for
// system-wide ones.
func (s *marginRangeService) invalidate(ctx context.Context, mr *model.MarginRange) int {
	var affected []model.Product

	switch {
	case mr.ProductID != nil:
		affected = []model.Product{{ID: *mr.ProductID}}
	case mr.SupplierID != nil:
		products, err := s.products.FindBySupplierID(ctx, *mr.SupplierID)
		if err != nil {
			log.Error().Err(err).Msg("margin range invalidation: supplier products lookup failed")
			return 0
		}
		affected = products
	default:
		products, err := s.products.FindWithoutSpecificRanges(ctx)
		if err != nil {
			log.Error().Err(err).Msg("margin range invalidation: unscoped products lookup failed")
			return 0
		}
		affected = products
	}

	return s.productS.RecalculateCaches(ctx, affected)
}

func (s *marginRangeService) record(ctx context.Context, message string, id uuid.UUID) {
	if err := s.history.Record(ctx, message, model.HistoryMarginRangeChange, "margin_range", id); err != nil {
		log.Warn().Err(err).Msg("history record failed")
	}
}

func describeRange(mr *model.MarginRange) string {
	bounds := func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "∗"
		}
		return d.Decimal.String()
	}
	scope := "system-wide"
	if mr.ProductID != nil {
		scope = "product " + mr.ProductID.String()
	} else if mr.SupplierID != nil {
		scope = "supplier " + mr.SupplierID.String()
	}
	return fmt.Sprintf("[%s..%s] %s%% (%s)", bounds(mr.StartPrice), bounds(mr.EndPrice), mr.MarginPercentage, scope)
}
