package model

import (
	"time"

	"github.com/google/uuid"
)

// History categories. Stored as plain strings so the log stays readable
// straight out of the database.
const (
	HistoryProductChange     = "product_change"
	HistorySupplyItemChange  = "supply_item_change"
	HistoryMarginRangeChange = "margin_range_change"
	HistorySyncRun           = "sync_run"
)

// HistoryEntry is one immutable line of the change log. Entries are
// fire-and-forget appends — they are never updated or deleted, and a failed
// append must never abort the operation that produced it.
type HistoryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Message     string    `gorm:"not null"`
	Category    string    `gorm:"not null;index"`
	SubjectType string    `gorm:"index:idx_history_subject"`
	SubjectID   uuid.UUID `gorm:"type:uuid;index:idx_history_subject"`
	CreatedAt   time.Time
}
