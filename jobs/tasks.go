package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDocumentsRecalculate reprices draft documents after a tax change.
	TaskDocumentsRecalculate = "documents:recalculate"
)

// RecalculatePayload identifies the tax whose drafts need repricing.
type RecalculatePayload struct {
	TaxID int64 `json:"tax_id"`
}

// RecalculateTaskID names the recalculation run for one revision of a tax.
func RecalculateTaskID(taxID int64, revision time.Time) string {
	return fmt.Sprintf("%s:%d:%d", TaskDocumentsRecalculate, taxID, revision.UnixNano())
}

// NewRecalculateTask constructs an Asynq task for draft recalculation.
func NewRecalculateTask(taxID int64) (*asynq.Task, error) {
	if taxID <= 0 {
		return nil, fmt.Errorf("jobs: invalid tax id %d", taxID)
	}
	data, err := json.Marshal(RecalculatePayload{TaxID: taxID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentsRecalculate, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}
