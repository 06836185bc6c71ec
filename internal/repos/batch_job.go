package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type BatchJobRepo interface {
  Create(ctx context.Context, tx *gorm.DB, jobs []*types.BatchJob) ([]*types.BatchJob, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BatchJob, error)
  ClaimDuePending(ctx context.Context, tx *gorm.DB, jobType string, limit int, now time.Time, staleProcessingAfter time.Duration) ([]*types.BatchJob, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type batchJobRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewBatchJobRepo(db *gorm.DB, baseLog *logger.Logger) BatchJobRepo {
  return &batchJobRepo{db: db, log: baseLog.With("repo", "BatchJobRepo")}
}

func (r *batchJobRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*types.BatchJob) ([]*types.BatchJob, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(jobs) == 0 {
    return []*types.BatchJob{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&jobs).Error; err != nil {
    return nil, err
  }
  return jobs, nil
}

func (r *batchJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BatchJob, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var job types.BatchJob
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&job).Error
  if err != nil {
    return nil, err
  }
  if job.ID == uuid.Nil {
    return nil, nil
  }
  return &job, nil
}

// ClaimDuePending picks up due pending/retry jobs of one type, plus
// processing jobs whose runner died (started long ago, never finished), and
// flips them to processing inside one transaction so concurrent runners
// cannot double-claim.
func (r *batchJobRepo) ClaimDuePending(ctx context.Context, tx *gorm.DB, jobType string, limit int, now time.Time, staleProcessingAfter time.Duration) ([]*types.BatchJob, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if jobType == "" || limit <= 0 {
    return []*types.BatchJob{}, nil
  }
  staleCutoff := now.Add(-staleProcessingAfter)
  var claimed []*types.BatchJob
  err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
    var jobs []*types.BatchJob
    q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
      Where(`
        job_type = ?
        AND (
          (status IN ? AND scheduled_for <= ?)
          OR (status = ? AND started_at IS NOT NULL AND started_at < ?)
        )
      `, jobType, []string{types.JobStatusPending, types.JobStatusRetry}, now, types.JobStatusProcessing, staleCutoff).
      Order("priority DESC, scheduled_for ASC").
      Limit(limit)
    if err := q.Find(&jobs).Error; err != nil {
      return err
    }
    if len(jobs) == 0 {
      return nil
    }
    ids := make([]uuid.UUID, 0, len(jobs))
    for _, job := range jobs {
      ids = append(ids, job.ID)
    }
    if err := txx.Model(&types.BatchJob{}).
      Where("id IN ?", ids).
      Updates(map[string]interface{}{
        "status":     types.JobStatusProcessing,
        "started_at": now,
        "updated_at": now,
      }).Error; err != nil {
      return err
    }
    for _, job := range jobs {
      job.Status = types.JobStatusProcessing
      startedAt := now
      job.StartedAt = &startedAt
    }
    claimed = jobs
    return nil
  })
  if err != nil {
    return nil, err
  }
  if claimed == nil {
    claimed = []*types.BatchJob{}
  }
  return claimed, nil
}

func (r *batchJobRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil || len(updates) == 0 {
    return nil
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.BatchJob{}).
    Where("id = ?", id).
    Updates(updates).Error
}
