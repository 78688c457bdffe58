package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/model"
)

// MarginRangeRepository is the storage collaborator for margin rules.
// Ordering matters: the resolver takes the first match, so all scope queries
// return ranges in a stable order (narrowest start price first, then
// creation time).
type MarginRangeRepository interface {
	Create(ctx context.Context, mr *model.MarginRange) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MarginRange, error)
	List(ctx context.Context) ([]model.MarginRange, error)

	ForProduct(ctx context.Context, productID uuid.UUID) ([]model.MarginRange, error)
	ForSupplier(ctx context.Context, supplierID uuid.UUID) ([]model.MarginRange, error)
	SystemWide(ctx context.Context) ([]model.MarginRange, error)
}

type marginRangeRepo struct{ db *gorm.DB }

func NewMarginRangeRepository(db *gorm.DB) MarginRangeRepository { return &marginRangeRepo{db: db} }

func (r *marginRangeRepo) Create(ctx context.Context, mr *model.MarginRange) error {
	return r.db.WithContext(ctx).Create(mr).Error
}

func (r *marginRangeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.MarginRange{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *marginRangeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MarginRange, error) {
	var mr model.MarginRange
	err := r.db.WithContext(ctx).First(&mr, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &mr, err
}

func (r *marginRangeRepo) List(ctx context.Context) ([]model.MarginRange, error) {
	var ranges []model.MarginRange
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&ranges).Error
	return ranges, err
}

func (r *marginRangeRepo) ForProduct(ctx context.Context, productID uuid.UUID) ([]model.MarginRange, error) {
	return r.scoped(ctx, "product_id = ?", productID)
}

func (r *marginRangeRepo) ForSupplier(ctx context.Context, supplierID uuid.UUID) ([]model.MarginRange, error) {
	return r.scoped(ctx, "supplier_id = ? AND product_id IS NULL", supplierID)
}

func (r *marginRangeRepo) SystemWide(ctx context.Context) ([]model.MarginRange, error) {
	var ranges []model.MarginRange
	err := r.db.WithContext(ctx).
		Where("supplier_id IS NULL AND product_id IS NULL").
		Order("start_price ASC NULLS LAST, created_at ASC").
		Find(&ranges).Error
	return ranges, err
}

func (r *marginRangeRepo) scoped(ctx context.Context, cond string, arg interface{}) ([]model.MarginRange, error) {
	var ranges []model.MarginRange
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("start_price ASC NULLS LAST, created_at ASC").
		Find(&ranges).Error
	return ranges, err
}
