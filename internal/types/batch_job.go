package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

const (
  JobTypeContentAnalysis  = "content_analysis"
  JobTypeEmbeddingUpdate  = "embedding_update"
  JobTypeDNARecalculation = "dna_recalculation"

  JobStatusPending    = "pending"
  JobStatusProcessing = "processing"
  JobStatusCompleted  = "completed"
  JobStatusFailed     = "failed"
  JobStatusRetry      = "retry"
)

// BatchJob is a queued unit of work. Created by upstream triggers; claimed
// and mutated exclusively by the batch runner. Terminal states are completed
// and failed (after exhausting MaxAttempts).
type BatchJob struct {
  ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  JobType      string          `gorm:"column:job_type;not null;index" json:"job_type"`
  Payload      datatypes.JSON  `gorm:"type:jsonb;column:payload" json:"payload"`
  Status       string          `gorm:"column:status;not null;default:pending;index" json:"status"`
  Priority     int             `gorm:"column:priority;not null;default:0" json:"priority"`
  Attempts     int             `gorm:"column:attempts;not null;default:0" json:"attempts"`
  MaxAttempts  int             `gorm:"column:max_attempts;not null;default:3" json:"max_attempts"`
  ScheduledFor time.Time       `gorm:"column:scheduled_for;not null;default:now();index" json:"scheduled_for"`
  StartedAt    *time.Time      `gorm:"column:started_at" json:"started_at,omitempty"`
  CompletedAt  *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
  LastError    string          `gorm:"column:last_error" json:"last_error,omitempty"`
  CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (BatchJob) TableName() string {
  return "batch_job"
}
