package models

import "time"

type RepostJob struct {
	ID           string     `db:"id" json:"id"`
	ListingID    string     `db:"listing_id" json:"listing_id"`
	PlatformID   string     `db:"platform_id" json:"platform_id"`
	AccountID    string     `db:"account_id" json:"account_id"`
	Status       string     `db:"status" json:"status"`
	ScheduledAt  time.Time  `db:"scheduled_at" json:"scheduled_at"`
	StartedAt    *time.Time `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at"`
	Attempts     int        `db:"attempts" json:"attempts"`
	MaxAttempts  int        `db:"max_attempts" json:"max_attempts"`
	ErrorMessage string     `db:"error_message" json:"error_message"`
	Rescheduled  bool       `db:"rescheduled" json:"rescheduled"`
	Config       JobConfig  `db:"config" json:"config"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type JobConfig struct {
	ScheduleType    string           `json:"schedule_type"` // now, later, recurring
	Recurring       bool             `json:"recurring"`
	RecurringConfig *RecurringConfig `json:"recurring_config,omitempty"`
}

type RecurringConfig struct {
	Frequency string `json:"frequency"` // hourly, daily, weekly, monthly
}

const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusRetrying  = "RETRYING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobStatusCancelled = "CANCELLED"
)

const DefaultMaxAttempts = 3
