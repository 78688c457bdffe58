package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxClass groups products under a single tax percentage.
type TaxClass struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string          `gorm:"uniqueIndex;not null"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
