package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/metrics"
	"tallergo/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SyncWorker drains the durable sync_queue table and applies each task
// to the spreadsheet mirror. Tasks that keep failing past the retry
// budget land in a redis dead-letter list for manual inspection.
type SyncWorker struct {
	db            *database.DB
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        zerolog.Logger
}

func NewSyncWorker(db *database.DB, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger zerolog.Logger) *SyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SyncWorker{
		db:            db,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		deadLetterKey: "sync:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sync worker started")
	defer w.logger.Info().Msg("sync worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *SyncWorker) drain(ctx context.Context) {
	tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("fetch pending sync tasks")
		return
	}
	for i := range tasks {
		w.processTask(ctx, &tasks[i])
	}
}

func (w *SyncWorker) processTask(ctx context.Context, task *models.SyncTask) {
	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncTaskStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark sync task completed")
	}
	metrics.IncSyncTask("completed")
}

func (w *SyncWorker) handleTask(ctx context.Context, task *models.SyncTask) error {
	switch task.TaskType {
	case models.SyncTaskAppointmentCreated:
		detail, err := decodeDetail(task.Payload)
		if err != nil {
			return err
		}
		return w.sheets.AppendAppointment(ctx, detail)

	case models.SyncTaskAppointmentStatus:
		detail, err := decodeDetail(task.Payload)
		if err != nil {
			return err
		}
		if task.AppointmentID == 0 || detail.Status == "" {
			return errors.New("appointment id or status missing")
		}
		return w.sheets.UpdateAppointmentStatus(ctx, task.AppointmentID, detail.Status)

	case models.SyncTaskCustomerUpserted:
		customers, err := w.db.ListCustomerSummaries(ctx)
		if err != nil {
			return err
		}
		return w.sheets.ReplaceCustomersSheet(ctx, customers)

	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *SyncWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncTaskStatusFailed, cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark sync task failed")
		}
		metrics.IncSyncTask("failed")
		w.pushDeadLetter(ctx, task)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncTaskStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark sync task retry")
	}
	metrics.IncSyncTask("retry")
}

func (w *SyncWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("encode dead letter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("dead letter push")
	}
}

func decodeDetail(raw string) (*models.AppointmentDetail, error) {
	var detail models.AppointmentDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &detail, nil
}
