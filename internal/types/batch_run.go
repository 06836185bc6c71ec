package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  RunStatusRunning   = "running"
  RunStatusCompleted = "completed"
  RunStatusFailed    = "failed"
)

// BatchRun is one row per batch invocation, created at run start, updated
// throughout and closed at run end. ErrorLog is an append-only JSON array of
// structured job failure entries.
type BatchRun struct {
  ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  RunType         string          `gorm:"column:run_type;not null" json:"run_type"`
  Status          string          `gorm:"column:status;not null;default:running" json:"status"`
  TotalJobs       int             `gorm:"column:total_jobs;not null;default:0" json:"total_jobs"`
  CompletedJobs   int             `gorm:"column:completed_jobs;not null;default:0" json:"completed_jobs"`
  FailedJobs      int             `gorm:"column:failed_jobs;not null;default:0" json:"failed_jobs"`
  TokensUsed      int             `gorm:"column:tokens_used;not null;default:0" json:"tokens_used"`
  APICostCents    int             `gorm:"column:api_cost_cents;not null;default:0" json:"api_cost_cents"`
  DurationSeconds float64         `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
  ErrorLog        datatypes.JSON  `gorm:"type:jsonb;column:error_log" json:"error_log"`
  StartedAt       time.Time       `gorm:"column:started_at;not null;default:now()" json:"started_at"`
  EndedAt         *time.Time      `gorm:"column:ended_at" json:"ended_at,omitempty"`
  CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

// JobError is one entry in BatchRun.ErrorLog.
type JobError struct {
  JobID     uuid.UUID `json:"job_id"`
  Error     string    `json:"error"`
  Timestamp time.Time `json:"timestamp"`
  WillRetry bool      `json:"will_retry"`
}

func (BatchRun) TableName() string {
  return "batch_run"
}
