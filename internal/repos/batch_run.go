package repos

import (
  "context"
  "encoding/json"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type BatchRunRepo interface {
  Create(ctx context.Context, tx *gorm.DB, run *types.BatchRun) (*types.BatchRun, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
  AppendError(ctx context.Context, tx *gorm.DB, id uuid.UUID, entry types.JobError) error
  GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.BatchRun, error)
}

type batchRunRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewBatchRunRepo(db *gorm.DB, baseLog *logger.Logger) BatchRunRepo {
  return &batchRunRepo{db: db, log: baseLog.With("repo", "BatchRunRepo")}
}

func (r *batchRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.BatchRun) (*types.BatchRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if run == nil {
    return nil, nil
  }
  if len(run.ErrorLog) == 0 {
    run.ErrorLog = datatypes.JSON([]byte("[]"))
  }
  if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
    return nil, err
  }
  return run, nil
}

func (r *batchRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
    Model(&types.BatchRun{}).
    Where("id = ?", id).
    Updates(updates).Error
}

// AppendError pushes one entry onto the run's error_log jsonb array without
// rewriting what is already there.
func (r *batchRunRepo) AppendError(ctx context.Context, tx *gorm.DB, id uuid.UUID, entry types.JobError) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  raw, err := json.Marshal(entry)
  if err != nil {
    return err
  }
  return transaction.WithContext(ctx).
    Model(&types.BatchRun{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "error_log":  gorm.Expr(`COALESCE(error_log, '[]'::jsonb) || ?::jsonb`, string(raw)),
      "updated_at": time.Now(),
    }).Error
}

func (r *batchRunRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.BatchRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.BatchRun
  if limit <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Order("started_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
