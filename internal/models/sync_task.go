package models

import "time"

const (
	SyncTaskStatusPending   = "pending"
	SyncTaskStatusRetry     = "retry"
	SyncTaskStatusCompleted = "completed"
	SyncTaskStatusFailed    = "failed"

	SyncTaskAppointmentCreated = "appointment_created"
	SyncTaskAppointmentStatus  = "appointment_status"
	SyncTaskCustomerUpserted   = "customer_upserted"
)

// SyncTask is one durable unit of work for the spreadsheet sync worker.
type SyncTask struct {
	ID            int64      `json:"id"`
	TaskType      string     `json:"task_type"`
	AppointmentID int64      `json:"appointment_id"`
	Payload       string     `json:"payload"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	LastError     string     `json:"last_error"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
}
