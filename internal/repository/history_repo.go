package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lincomp/stizun/internal/model"
)

// HistoryRepository appends to the change log. Record is fire-and-forget:
// callers log failures and move on, they never abort on a history error.
type HistoryRepository interface {
	Record(ctx context.Context, message, category, subjectType string, subjectID uuid.UUID) error
	List(ctx context.Context, category string, limit int) ([]model.HistoryEntry, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) Record(ctx context.Context, message, category, subjectType string, subjectID uuid.UUID) error {
	entry := model.HistoryEntry{
		Message:     message,
		Category:    category,
		SubjectType: subjectType,
		SubjectID:   subjectID,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *historyRepo) List(ctx context.Context, category string, limit int) ([]model.HistoryEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var entries []model.HistoryEntry
	err := q.Find(&entries).Error
	return entries, err
}
