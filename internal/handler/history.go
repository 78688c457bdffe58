package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/repository"
)

type HistoryHandler struct{ repo repository.HistoryRepository }

func NewHistoryHandler(repo repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

func (h *HistoryHandler) List(c *gin.Context) {
	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	entries, err := h.repo.List(c.Request.Context(), filter.Category, filter.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list history"))
		return
	}

	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, dto.NewHistoryEntryResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}
