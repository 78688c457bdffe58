package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarginRange is a price-tiered markup rule. Bounds are optional on either
// side; a range with both bounds absent is a catch-all. Scope is one of:
// system-wide (no supplier, no product), supplier-specific, or
// product-specific.
type MarginRange struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	StartPrice decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	EndPrice   decimal.NullDecimal `gorm:"type:decimal(12,2)"`

	MarginPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	ProductID  *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Matches reports whether price falls inside this range. Absent bounds are
// unbounded on that side.
func (mr *MarginRange) Matches(price decimal.Decimal) bool {
	if mr.StartPrice.Valid && price.LessThan(mr.StartPrice.Decimal) {
		return false
	}
	if mr.EndPrice.Valid && price.GreaterThan(mr.EndPrice.Decimal) {
		return false
	}
	return true
}

// SystemWide reports whether this range applies to all products lacking a
// more specific rule.
func (mr *MarginRange) SystemWide() bool {
	return mr.SupplierID == nil && mr.ProductID == nil
}
