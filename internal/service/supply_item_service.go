package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
)

// SupplyItemService persists supply items and runs the availability cascades
// that hang off status transitions. Cascades fire on every status write, not
// only during the reconciliation pass.
type SupplyItemService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error)
	List(ctx context.Context, filter repository.SupplyItemFilter) ([]model.SupplyItem, int64, error)

	// Save persists the item, clamping negative stock to zero and running
	// status cascades when the stored status differs from the new one.
	Save(ctx context.Context, si *model.SupplyItem) error

	// SetStatus is the explicit status write used by the HTTP surface.
	SetStatus(ctx context.Context, id uuid.UUID, status model.SupplyItemStatus) (*model.SupplyItem, error)
}

type supplyItemService struct {
	repo     repository.SupplyItemRepository
	products repository.ProductRepository
	history  repository.HistoryRepository
	productS ProductService
}

func NewSupplyItemService(
	repo repository.SupplyItemRepository,
	products repository.ProductRepository,
	history repository.HistoryRepository,
	productS ProductService,
) SupplyItemService {
	return &supplyItemService{repo: repo, products: products, history: history, productS: productS}
}

func (s *supplyItemService) GetByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *supplyItemService) List(ctx context.Context, filter repository.SupplyItemFilter) ([]model.SupplyItem, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *supplyItemService) Save(ctx context.Context, si *model.SupplyItem) error {
	var previous model.SupplyItemStatus
	if si.ID != uuid.Nil {
		if existing, err := s.repo.FindByID(ctx, si.ID); err == nil {
			previous = existing.Status
		}
	}

	if si.NormalizeStock() {
		log.Debug().Str("supply_item_id", si.ID.String()).Msg("negative stock clamped to zero")
	}

	if si.ID == uuid.Nil {
		if err := s.repo.Create(ctx, si); err != nil {
			return err
		}
	} else {
		if err := s.repo.Save(ctx, si); err != nil {
			return err
		}
	}

	// Cascades run after the status write is durable so dependent pricing
	// reads never observe a half-applied transition.
	s.cascade(ctx, si, previous)
	return nil
}

func (s *supplyItemService) SetStatus(ctx context.Context, id uuid.UUID, status model.SupplyItemStatus) (*model.SupplyItem, error) {
	si, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := si.Status
	si.Status = status
	if err := s.repo.Save(ctx, si); err != nil {
		return nil, err
	}
	s.cascade(ctx, si, previous)
	return si, nil
}

// cascade applies the availability side effects of a status transition.
//
// Available → Deleted disables every product using the item as a component
// and the directly backed product. Deleted → Available re-enables the backed
// product only — componentized products stay disabled and need manual review
// (the original system behaved this way; kept deliberately).
func (s *supplyItemService) cascade(ctx context.Context, si *model.SupplyItem, previous model.SupplyItemStatus) {
	switch {
	case previous == model.SupplyItemAvailable && si.Status == model.SupplyItemDeleted:
		users, err := s.products.FindComponentUsers(ctx, si.ID)
		if err != nil {
			log.Error().Err(err).Str("supply_item_id", si.ID.String()).Msg("cascade: component user lookup failed")
		}
		for i := range users {
			s.disableLoaded(ctx, users[i].ID, fmt.Sprintf("component supply item %s was deleted", si.SupplierProductCode))
		}

		if backed, err := s.products.FindBySupplyItemID(ctx, si.ID); err == nil {
			s.disableLoaded(ctx, backed.ID, fmt.Sprintf("supply item %s was deleted", si.SupplierProductCode))
		}
		s.record(ctx, fmt.Sprintf("Supply item %s deleted, dependent products disabled", si.SupplierProductCode), si.ID)

	case previous == model.SupplyItemDeleted && si.Status == model.SupplyItemAvailable:
		if backed, err := s.products.FindBySupplyItemID(ctx, si.ID); err == nil {
			p, err := s.products.FindByID(ctx, backed.ID)
			if err == nil {
				if err := s.productS.Enable(ctx, p, fmt.Sprintf("supply item %s became available again", si.SupplierProductCode)); err != nil {
					log.Error().Err(err).Str("product_id", p.ID.String()).Msg("cascade: re-enable failed")
				}
			}
		}
		s.record(ctx, fmt.Sprintf("Supply item %s reactivated", si.SupplierProductCode), si.ID)
	}
}

func (s *supplyItemService) disableLoaded(ctx context.Context, productID uuid.UUID, reason string) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		log.Error().Err(err).Str("product_id", productID.String()).Msg("cascade: load failed")
		return
	}
	if err := s.productS.Disable(ctx, p, reason); err != nil {
		log.Error().Err(err).Str("product_id", p.ID.String()).Msg("cascade: disable failed")
	}
}

func (s *supplyItemService) record(ctx context.Context, message string, supplyItemID uuid.UUID) {
	if err := s.history.Record(ctx, message, model.HistorySupplyItemChange, "supply_item", supplyItemID); err != nil {
		log.Warn().Err(err).Msg("history record failed")
	}
}
