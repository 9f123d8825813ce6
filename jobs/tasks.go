package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskWorkshopStatusChanged follows a workshop job status transition.
	TaskWorkshopStatusChanged = "workshop:status_changed"
	// TaskWorkshopStaleScan reports workshop jobs stuck in a waiting status.
	TaskWorkshopStaleScan = "workshop:stale_scan"
)

// StatusChangedPayload describes one workshop status transition.
type StatusChangedPayload struct {
	EventID   uuid.UUID `json:"event_id"`
	JobID     uuid.UUID `json:"job_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewStatusChangedTask constructs the transition task. The event id doubles
// as the task id so a replayed notification is deduplicated by the queue.
func NewStatusChangedTask(payload StatusChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWorkshopStatusChanged, data, asynq.TaskID(payload.EventID.String()), asynq.MaxRetry(5)), nil
}

// StaleScanPayload configures a stale job scan.
type StaleScanPayload struct {
	OlderThan time.Duration `json:"older_than"`
}

// NewStaleScanTask constructs the stale scan task.
func NewStaleScanTask(olderThan time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(StaleScanPayload{OlderThan: olderThan})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWorkshopStaleScan, data), nil
}

// NewTaskByName builds a task with default options for manual triggering.
func NewTaskByName(name string, staleAfter time.Duration) (*asynq.Task, error) {
	switch name {
	case TaskWorkshopStaleScan:
		return NewStaleScanTask(staleAfter)
	}
	return nil, ErrUnknownTask
}
