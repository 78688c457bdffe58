package dto

import (
	"time"

	"github.com/lincomp/stizun/internal/model"
)

type HistoryFilter struct {
	Category string `form:"category"`
	Limit    int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Category    string    `json:"category"`
	SubjectType string    `json:"subject_type,omitempty"`
	SubjectID   string    `json:"subject_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewHistoryEntryResponse(e *model.HistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:        e.ID.String(),
		Message:   e.Message,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
	if e.SubjectType != "" {
		resp.SubjectType = e.SubjectType
		resp.SubjectID = e.SubjectID.String()
	}
	return resp
}
