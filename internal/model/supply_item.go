package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplyItemStatus is the availability state of an upstream inventory record.
type SupplyItemStatus int

const (
	SupplyItemAvailable SupplyItemStatus = 1
	SupplyItemDeleted   SupplyItemStatus = 2
)

func (s SupplyItemStatus) String() string {
	switch s {
	case SupplyItemAvailable:
		return "available"
	case SupplyItemDeleted:
		return "deleted"
	}
	return "not set"
}

// WorkflowStatus tracks how far a store manager got reviewing a supply item.
// Purely informational — it never participates in pricing or sync decisions.
type WorkflowStatus int

const (
	WorkflowFresh    WorkflowStatus = 1
	WorkflowChecked  WorkflowStatus = 2
	WorkflowRejected WorkflowStatus = 3
)

func (w WorkflowStatus) String() string {
	switch w {
	case WorkflowFresh:
		return "fresh"
	case WorkflowChecked:
		return "checked"
	case WorkflowRejected:
		return "rejected"
	}
	return "not set"
}

// SupplyItem mirrors one record of a supplier's inventory feed. Products link
// to at most one supply item and get their price/stock synced from it.
type SupplyItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name                    string `gorm:"not null"`
	Description             string
	DescriptionURL          string
	ImageURL                string
	PdfURL                  string
	Manufacturer            string
	ManufacturerProductCode string `gorm:"index"`
	SupplierProductCode     string `gorm:"index"`
	EANCode                 string `gorm:"index"`

	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Weight        decimal.Decimal `gorm:"type:decimal(10,3)"`
	Stock         int             `gorm:"not null;default:0"`

	Status         SupplyItemStatus `gorm:"not null;default:1;index"`
	WorkflowStatus WorkflowStatus   `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (si *SupplyItem) Available() bool { return si.Status == SupplyItemAvailable }
func (si *SupplyItem) InStock() bool   { return si.Stock > 0 }

// NormalizeStock clamps negative or unset stock to zero. Returns true when a
// clamp actually happened so callers can log it.
func (si *SupplyItem) NormalizeStock() bool {
	if si.Stock < 0 {
		si.Stock = 0
		return true
	}
	return false
}

// ── pricing.PricedStockedItem ────────────────────────────────────────────────

func (si *SupplyItem) UnitPurchasePrice() decimal.Decimal { return si.PurchasePrice }
func (si *SupplyItem) UnitWeight() decimal.Decimal        { return si.Weight }
func (si *SupplyItem) AvailableStock() int                { return si.Stock }
