package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeOverdueScan is the daily scan for contribution cells past deadline.
	TaskTypeOverdueScan = "contrib:overdue_scan"
	// TaskTypeNotifyDispatch delivers fire-and-forget ledger event notifications.
	TaskTypeNotifyDispatch = "notify:dispatch"
)

// OverdueScanPayload tunes the deadline scan; zero values use defaults.
type OverdueScanPayload struct {
	// GraceDays pushes the cutoff past the deadline day.
	GraceDays int `json:"graceDays"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOverdueScan, data), nil
}

// NotifyPayload describes one ledger event to deliver.
type NotifyPayload struct {
	Event       string `json:"event"`
	OrganizerID string `json:"organizerId"`
	Detail      string `json:"detail"`
}

// NewNotifyTask constructs an Asynq task.
func NewNotifyTask(payload NotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotifyDispatch, data), nil
}

// HandleNotifyTask processes TaskTypeNotifyDispatch tasks.
func HandleNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload NotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder delivery: the committee currently reads these from the
	// worker log; SMTP wiring comes with the mailing setup.
	fmt.Printf("[jobs] notify organizer=%s event=%s detail=%s\n", payload.OrganizerID, payload.Event, payload.Detail)
	return nil
}
