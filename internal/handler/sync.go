package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lincomp/stizun/internal/apierror"
	"github.com/lincomp/stizun/internal/dto"
	"github.com/lincomp/stizun/internal/middleware"
	"github.com/lincomp/stizun/internal/worker"
)

// SyncHandler exposes the reconciliation pass: runs are enqueued, never
// executed inline — a full pass over the catalog is too slow for a request
// cycle.
type SyncHandler struct {
	dispatcher *worker.Dispatcher
	rdb        *redis.Client
}

func NewSyncHandler(dispatcher *worker.Dispatcher, rdb *redis.Client) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher, rdb: rdb}
}

func (h *SyncHandler) Run(c *gin.Context) {
	requestedBy := "api"
	if claims := middleware.GetClaims(c); claims != nil {
		requestedBy = claims.Username
	}
	if err := h.dispatcher.EnqueueSyncRun(c.Request.Context(), requestedBy); err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Could not enqueue synchronization run"))
		return
	}
	c.JSON(http.StatusAccepted, dto.SyncRunResponse{Enqueued: true, Queue: worker.QueueSupplySync})
}

func (h *SyncHandler) Status(c *gin.Context) {
	raw, err := h.rdb.Get(c.Request.Context(), worker.LastRunKey).Result()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, apierror.New("No synchronization run has finished yet"))
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Could not read synchronization status"))
		return
	}

	var resp dto.SyncStatusResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Corrupt synchronization status record"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
