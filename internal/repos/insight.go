package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type InsightRepo interface {
  Create(ctx context.Context, tx *gorm.DB, insights []*types.Insight) ([]*types.Insight, error)
  GetApprovedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Insight, error)
  GetByPostID(ctx context.Context, tx *gorm.DB, postID uuid.UUID) ([]*types.Insight, error)
}

type insightRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
  return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) Create(ctx context.Context, tx *gorm.DB, insights []*types.Insight) ([]*types.Insight, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(insights) == 0 {
    return []*types.Insight{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&insights).Error; err != nil {
    return nil, err
  }
  return insights, nil
}

func (r *insightRepo) GetApprovedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Insight, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Insight
  if userID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND status = ?", userID, types.InsightStatusApproved).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *insightRepo) GetByPostID(ctx context.Context, tx *gorm.DB, postID uuid.UUID) ([]*types.Insight, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Insight
  if postID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("post_id = ?", postID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
