package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductComponent is one (supply item, quantity) entry of a componentized
// product. The pair (product, supply item) is unique; adding the same
// component again increments the quantity instead.
type ProductComponent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_component"`
	SupplyItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_component"`
	Quantity     int       `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	SupplyItem *SupplyItem `gorm:"foreignKey:SupplyItemID"`
}
