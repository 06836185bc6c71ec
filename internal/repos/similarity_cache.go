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

type SimilarityCacheRepo interface {
  GetValidByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.ContentSimilarityCache, error)
  Upsert(ctx context.Context, tx *gorm.DB, entry *types.ContentSimilarityCache) error
}

type similarityCacheRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSimilarityCacheRepo(db *gorm.DB, baseLog *logger.Logger) SimilarityCacheRepo {
  return &similarityCacheRepo{db: db, log: baseLog.With("repo", "SimilarityCacheRepo")}
}

func (r *similarityCacheRepo) GetValidByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.ContentSimilarityCache, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if userID == uuid.Nil {
    return nil, nil
  }
  var entry types.ContentSimilarityCache
  err := transaction.WithContext(ctx).
    Where("user_id = ? AND valid_until > ?", userID, now).
    Limit(1).
    Find(&entry).Error
  if err != nil {
    return nil, err
  }
  if entry.ID == uuid.Nil {
    return nil, nil
  }
  return &entry, nil
}

func (r *similarityCacheRepo) Upsert(ctx context.Context, tx *gorm.DB, entry *types.ContentSimilarityCache) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if entry == nil || entry.UserID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "user_id"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "avg_similarity",
        "min_similarity",
        "max_similarity",
        "sample_size",
        "compared_posts",
        "originality_score",
        "valid_until",
        "updated_at",
      }),
    }).
    Create(entry).Error
}
