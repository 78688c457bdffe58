package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/model"
)

// ProductRepository is the storage collaborator for sellable items. Services
// depend on this interface, not on the concrete GORM implementation, so unit
// tests run against in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// Save validates and persists a product. A rejected save returns a
	// *ValidationError with field-level detail.
	Save(ctx context.Context, p *model.Product) error

	// FindSupplied returns all products carrying a supply item link, with the
	// supply item preloaded. A dangling link (record gone upstream) preloads
	// as nil — the sync pass treats that as "supply item absent".
	FindSupplied(ctx context.Context) ([]model.Product, error)

	FindBySupplierID(ctx context.Context, supplierID uuid.UUID) ([]model.Product, error)

	// FindBySupplyItemID returns the product directly backed by the supply
	// item, or ErrNotFound.
	FindBySupplyItemID(ctx context.Context, supplyItemID uuid.UUID) (*model.Product, error)

	// FindWithoutSpecificRanges returns products that have neither a
	// product-scoped range nor a supplier with supplier-scoped ranges —
	// exactly the set a system-wide range change can affect.
	FindWithoutSpecificRanges(ctx context.Context) ([]model.Product, error)

	// FindComponentUsers returns products that use the given supply item as a
	// component.
	FindComponentUsers(ctx context.Context, supplyItemID uuid.UUID) ([]model.Product, error)

	// Component list management.
	Components(ctx context.Context, productID uuid.UUID) ([]model.ProductComponent, error)
	SaveComponent(ctx context.Context, pc *model.ProductComponent) error
	DeleteComponent(ctx context.Context, pc *model.ProductComponent) error
}

// ProductFilter narrows List results.
type ProductFilter struct {
	Name          string
	SupplierID    string
	AvailableOnly bool
	Page          int
	Limit         int
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	if ve := validateProduct(p); ve != nil {
		return ve
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("TaxClass").
		Preload("Supplier").
		Preload("SupplyItem").
		Preload("Components.SupplyItem").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.AvailableOnly {
		q = q.Where("available = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Save(ctx context.Context, p *model.Product) error {
	if ve := validateProduct(p); ve != nil {
		return ve
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) FindSupplied(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("SupplyItem").
		Preload("Components.SupplyItem").
		Where("supply_item_id IS NOT NULL").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindBySupplierID(ctx context.Context, supplierID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindBySupplyItemID(ctx context.Context, supplyItemID uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "supply_item_id = ?", supplyItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *productRepo) FindWithoutSpecificRanges(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM margin_ranges WHERE margin_ranges.product_id = products.id)").
		Where("(products.supplier_id IS NULL OR NOT EXISTS (SELECT 1 FROM margin_ranges WHERE margin_ranges.supplier_id = products.supplier_id))").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindComponentUsers(ctx context.Context, supplyItemID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN product_components pc ON pc.product_id = products.id").
		Where("pc.supply_item_id = ?", supplyItemID).
		Distinct().
		Find(&products).Error
	return products, err
}

func (r *productRepo) Components(ctx context.Context, productID uuid.UUID) ([]model.ProductComponent, error) {
	var components []model.ProductComponent
	err := r.db.WithContext(ctx).
		Preload("SupplyItem").
		Where("product_id = ?", productID).
		Find(&components).Error
	return components, err
}

func (r *productRepo) SaveComponent(ctx context.Context, pc *model.ProductComponent) error {
	if pc.Quantity < 1 {
		return &ValidationError{Fields: map[string]string{"quantity": "must be positive"}}
	}
	return r.db.WithContext(ctx).Save(pc).Error
}

func (r *productRepo) DeleteComponent(ctx context.Context, pc *model.ProductComponent) error {
	return r.db.WithContext(ctx).Delete(pc).Error
}

// validateProduct enforces the invariants a save must never violate. Kept in
// the repository so every persistence path reports the same field-level
// detail.
func validateProduct(p *model.Product) *ValidationError {
	fields := make(map[string]string)
	if p.Name == "" {
		fields["name"] = "required"
	}
	if p.TaxClassID == uuid.Nil {
		fields["tax_class_id"] = "required"
	}
	if p.PurchasePrice.IsNegative() {
		fields["purchase_price"] = "must not be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
