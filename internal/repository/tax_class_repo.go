package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/model"
)

// TaxClassRepository is the storage collaborator for tax classes.
type TaxClassRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxClass, error)
	List(ctx context.Context) ([]model.TaxClass, error)

	// FindOrCreateByPercentage backs the bootstrap path: products created
	// from supply items get the configured default tax class, created on
	// first use.
	FindOrCreateByPercentage(ctx context.Context, name string, percentage decimal.Decimal) (*model.TaxClass, error)
}

type taxClassRepo struct{ db *gorm.DB }

func NewTaxClassRepository(db *gorm.DB) TaxClassRepository { return &taxClassRepo{db: db} }

func (r *taxClassRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxClass, error) {
	var tc model.TaxClass
	err := r.db.WithContext(ctx).First(&tc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &tc, err
}

func (r *taxClassRepo) List(ctx context.Context) ([]model.TaxClass, error) {
	var classes []model.TaxClass
	err := r.db.WithContext(ctx).Order("percentage ASC").Find(&classes).Error
	return classes, err
}

func (r *taxClassRepo) FindOrCreateByPercentage(ctx context.Context, name string, percentage decimal.Decimal) (*model.TaxClass, error) {
	var tc model.TaxClass
	err := r.db.WithContext(ctx).Where("percentage = ?", percentage).First(&tc).Error
	if err == nil {
		return &tc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	tc = model.TaxClass{Name: name, Percentage: percentage}
	if err := r.db.WithContext(ctx).Create(&tc).Error; err != nil {
		return nil, err
	}
	return &tc, nil
}
