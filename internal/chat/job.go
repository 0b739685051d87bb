package chat

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued chat-reply generation. The human turn is already in
// the session history when the job is enqueued; the worker only adds the
// AI turn.
type Job struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	UserID      uint64 `gorm:"not null;index;index:uniq_job_user_idempo,unique,priority:1" json:"user_id"`
	CompanionID uint64 `gorm:"index;not null" json:"companion_id"`
	SessionKey  string `gorm:"type:varchar(200);index;not null" json:"session_key"`

	Prompt string `gorm:"type:text;not null" json:"-"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_job_user_idempo,unique,priority:2" json:"-"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "chat_jobs" }
