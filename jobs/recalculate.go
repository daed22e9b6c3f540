package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-crm/internal/jobs"
)

// Recalculator reprices drafts that reference a tax.
type Recalculator interface {
	RecalculateDraftsForTax(ctx context.Context, taxID int64) (int, error)
}

// RecalculateJob handles TaskDocumentsRecalculate.
type RecalculateJob struct {
	Documents Recalculator
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewRecalculateJob wires dependencies for the recalculation handler.
func NewRecalculateJob(documents Recalculator, logger *slog.Logger, metrics *jobmetrics.Metrics) *RecalculateJob {
	return &RecalculateJob{Documents: documents, Logger: logger, Metrics: metrics}
}

// Handle processes a recalculation task. Malformed payloads are not retried.
func (j *RecalculateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Documents == nil {
		return errors.New("documents recalculate: handler not configured")
	}
	var payload RecalculatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.TaxID <= 0 {
		return fmt.Errorf("documents recalculate: bad payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskDocumentsRecalculate)
	logger := j.logger().With(slog.Int64("tax_id", payload.TaxID))
	start := time.Now()

	updated, err := j.Documents.RecalculateDraftsForTax(ctx, payload.TaxID)
	j.Metrics.AddRecalculated(updated)
	if err != nil {
		logger.Error("recalculate drafts", slog.Int("updated", updated), slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("recalculated drafts", slog.Int("updated", updated), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *RecalculateJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
