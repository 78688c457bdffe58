package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. It is either simple (own purchase
// price), absolutely priced (fixed sales price), or componentized (price,
// weight and stock derived from its component list).
//
// CachedPrice and CachedTaxedPrice must always equal the pricing engine's
// output at the moment of the last save; every persistence path goes through
// ProductService so the caches are recomputed before each write.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	Description string

	// DescriptionProtected blocks the sync pass from overwriting a manually
	// curated description with supplier feed text.
	DescriptionProtected bool `gorm:"not null;default:false"`

	Weight        decimal.Decimal `gorm:"type:decimal(10,3)"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	// SalesPrice > 0 makes the product absolutely priced: the fixed price
	// overrides margin-based calculation.
	SalesPrice decimal.Decimal `gorm:"type:decimal(12,2)"`

	AbsoluteRebate   decimal.Decimal `gorm:"type:decimal(12,2)"`
	PercentageRebate decimal.Decimal `gorm:"type:decimal(5,2)"`
	RebateUntil      *time.Time
	LossLeader       bool `gorm:"not null;default:false"`

	TaxClassID uuid.UUID  `gorm:"type:uuid;not null"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`

	// SupplyItemID links to the backing inventory record, if any.
	SupplyItemID *uuid.UUID `gorm:"type:uuid;index"`

	Manufacturer            string
	ManufacturerProductCode string `gorm:"index"`
	SupplierProductCode     string
	EANCode                 string

	Stock     int  `gorm:"not null;default:0"`
	Available bool `gorm:"not null;default:true;index"`
	Visible   bool `gorm:"not null;default:true"`

	// OnSale is derived (rebate currently active) and re-stored on every save.
	OnSale bool `gorm:"not null;default:false"`

	CachedPrice       decimal.Decimal `gorm:"type:decimal(12,2)"`
	CachedTaxedPrice  decimal.Decimal `gorm:"type:decimal(12,2)"`
	RoundingComponent decimal.Decimal `gorm:"type:decimal(12,4)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	TaxClass   TaxClass           `gorm:"foreignKey:TaxClassID"`
	Supplier   *Supplier          `gorm:"foreignKey:SupplierID"`
	SupplyItem *SupplyItem        `gorm:"foreignKey:SupplyItemID"`
	Components []ProductComponent `gorm:"foreignKey:ProductID"`
}

// Componentized reports whether this product is built out of components.
// A componentized product never stores its own purchase price, weight or
// stock — they are always derived by the BOM aggregator.
func (p *Product) Componentized() bool {
	return len(p.Components) > 0
}

// AbsolutelyPriced reports whether a fixed sales price overrides the
// margin-based calculation.
func (p *Product) AbsolutelyPriced() bool {
	return !p.SalesPrice.IsZero() && p.SalesPrice.IsPositive()
}

// Supplied reports whether the product is backed by a supply item link.
func (p *Product) Supplied() bool {
	return p.SupplyItemID != nil
}
