package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is an upstream vendor whose inventory feed produces SupplyItems.
type Supplier struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"uniqueIndex;not null"`

	// FetcherStrategy names the description/image/pdf fetcher registered for
	// this supplier (empty = no remote fetching for its items).
	FetcherStrategy string

	// ProductBaseURL + supplier product code yields a deep link to the item
	// on the supplier's own site.
	ProductBaseURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DetailLink returns the supplier-side URL for a product code, or "" when the
// supplier has no base URL configured.
func (s *Supplier) DetailLink(supplierProductCode string) string {
	if s.ProductBaseURL == "" || supplierProductCode == "" {
		return ""
	}
	return s.ProductBaseURL + supplierProductCode
}
