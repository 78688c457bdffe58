package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lincomp/stizun/internal/service"
)

const (
	QueueSupplySync = "jobs:supplysync"
	QueueRecalc     = "jobs:recalculate"

	// LastRunKey holds the JSON summary of the most recent reconciliation
	// pass, read by the sync status endpoint.
	LastRunKey = "syncrun:last"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SyncRunPayload identifies who asked for the pass.
type SyncRunPayload struct {
	RequestedBy string `json:"requested_by"`
	EnqueuedAt  string `json:"enqueued_at"` // ISO 8601
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueSyncRun pushes a full reconciliation pass onto the queue.
func (d *Dispatcher) EnqueueSyncRun(ctx context.Context, requestedBy string) error {
	payload := SyncRunPayload{
		RequestedBy: requestedBy,
		EnqueuedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	return d.enqueue(ctx, QueueSupplySync, "supplysync", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers bundles the collaborators the pool needs to execute jobs.
type Handlers struct {
	Sync service.SupplySyncService
}

// StartWorkerPool launches numWorkers goroutines consuming the queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueSupplySync, QueueRecalc}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch job.Type {
	case "supplysync":
		var payload SyncRunPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("supplysync: bad payload")
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "unmarshal: "+err.Error(), 1)
			return
		}

		log.Info().Str("requested_by", payload.RequestedBy).Msg("supplysync: pass starting")
		summary, err := handlers.Sync.Reconcile(ctx)
		if err != nil {
			log.Error().Err(err).Msg("supplysync: pass failed")
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
			return
		}
		storeLastRun(ctx, rdb, summary)

	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}

// storeLastRun caches the latest pass summary for the sync status endpoint.
func storeLastRun(ctx context.Context, rdb *redis.Client, summary service.ReconcileSummary) {
	record := struct {
		service.ReconcileSummary
		FinishedAt string `json:"finished_at"`
	}{summary, time.Now().UTC().Format(time.RFC3339)}

	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, LastRunKey, data, 0).Err(); err != nil {
		log.Warn().Err(err).Msg("supplysync: could not store last run summary")
	}
}
