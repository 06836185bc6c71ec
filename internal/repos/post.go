package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type PostRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Post, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Post, error)
  GetRecentEmbedded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error)
  SamplePopulationEmbedded(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID, limit int) ([]*types.Post, error)
  GetUnembeddedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error)
  GetCompletedByContentHash(ctx context.Context, tx *gorm.DB, contentHash string, excludePostID uuid.UUID) (*types.Post, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type postRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
  return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var post types.Post
  err := transaction.WithContext(ctx).
    Where("id = ?", id).
    Limit(1).
    Find(&post).Error
  if err != nil {
    return nil, err
  }
  if post.ID == uuid.Nil {
    return nil, nil
  }
  return &post, nil
}

func (r *postRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Post
  if userID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *postRepo) GetRecentEmbedded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Post
  if userID == uuid.Nil || limit <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND embedding IS NOT NULL", userID).
    Order("created_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *postRepo) SamplePopulationEmbedded(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID, limit int) ([]*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Post
  if limit <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id <> ? AND embedding IS NOT NULL", excludeUserID).
    Order("created_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *postRepo) GetUnembeddedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Post
  if userID == uuid.Nil || limit <= 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND embedding IS NULL", userID).
    Order("created_at ASC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *postRepo) GetCompletedByContentHash(ctx context.Context, tx *gorm.DB, contentHash string, excludePostID uuid.UUID) (*types.Post, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if contentHash == "" {
    return nil, nil
  }
  var post types.Post
  err := transaction.WithContext(ctx).
    Where("content_hash = ? AND processing_status = ? AND id <> ?", contentHash, types.PostProcessingCompleted, excludePostID).
    Order("processed_at DESC").
    Limit(1).
    Find(&post).Error
  if err != nil {
    return nil, err
  }
  if post.ID == uuid.Nil {
    return nil, nil
  }
  return &post, nil
}

func (r *postRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
    Model(&types.Post{}).
    Where("id = ?", id).
    Updates(updates).Error
}
