package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/model"
)

// AlternativeFilter describes the candidate search of the sync pass: supply
// items interchangeable with a product's current one. Results always come
// back ordered by ascending purchase price so the first hit is the cheapest.
type AlternativeFilter struct {
	ManufacturerProductCode string
	ExcludeID               uuid.UUID

	// EANCode narrows candidates further when the product has one.
	EANCode string

	// ManufacturerPrefix keeps candidates whose manufacturer is blank or
	// starts with this prefix (first character of the product's manufacturer).
	ManufacturerPrefix string

	InStockOnly   bool
	AvailableOnly bool
}

// SupplyItemRepository is the storage collaborator for upstream inventory
// records.
type SupplyItemRepository interface {
	Create(ctx context.Context, si *model.SupplyItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error)
	List(ctx context.Context, filter SupplyItemFilter) ([]model.SupplyItem, int64, error)
	Save(ctx context.Context, si *model.SupplyItem) error

	// FindAlternatives returns interchangeable supply items ordered by
	// ascending purchase price.
	FindAlternatives(ctx context.Context, filter AlternativeFilter) ([]model.SupplyItem, error)
}

// SupplyItemFilter narrows List results.
type SupplyItemFilter struct {
	SupplierID   string
	Manufacturer string
	InStockOnly  bool
	Status       int
	Page         int
	Limit        int
}

type supplyItemRepo struct{ db *gorm.DB }

func NewSupplyItemRepository(db *gorm.DB) SupplyItemRepository { return &supplyItemRepo{db: db} }

func (r *supplyItemRepo) Create(ctx context.Context, si *model.SupplyItem) error {
	if si.Status == 0 {
		si.Status = model.SupplyItemAvailable
	}
	si.NormalizeStock()
	return r.db.WithContext(ctx).Create(si).Error
}

func (r *supplyItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	var si model.SupplyItem
	err := r.db.WithContext(ctx).Preload("Supplier").First(&si, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &si, err
}

func (r *supplyItemRepo) List(ctx context.Context, filter SupplyItemFilter) ([]model.SupplyItem, int64, error) {
	var items []model.SupplyItem
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SupplyItem{})
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Manufacturer != "" {
		q = q.Where("manufacturer = ?", filter.Manufacturer)
	}
	if filter.InStockOnly {
		q = q.Where("stock > 0")
	}
	if filter.Status != 0 {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *supplyItemRepo) Save(ctx context.Context, si *model.SupplyItem) error {
	si.NormalizeStock()
	return r.db.WithContext(ctx).Save(si).Error
}

func (r *supplyItemRepo) FindAlternatives(ctx context.Context, filter AlternativeFilter) ([]model.SupplyItem, error) {
	var items []model.SupplyItem

	q := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("manufacturer_product_code != ''").
		Where("manufacturer_product_code = ?", filter.ManufacturerProductCode).
		Where("id <> ?", filter.ExcludeID)

	if filter.EANCode != "" {
		q = q.Where("ean_code = ?", filter.EANCode)
	}
	if filter.ManufacturerPrefix != "" {
		q = q.Where("(manufacturer IS NULL OR manufacturer = '' OR manufacturer LIKE ?)", filter.ManufacturerPrefix+"%")
	}
	if filter.InStockOnly {
		q = q.Where("stock > 0")
	}
	if filter.AvailableOnly {
		q = q.Where("status = ?", model.SupplyItemAvailable)
	}

	err := q.Order("purchase_price ASC").Find(&items).Error
	return items, err
}
