package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

type DNAScoreRepo interface {
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.DNAScore, error)
  Upsert(ctx context.Context, tx *gorm.DB, score *types.DNAScore) error
  CountTotal(ctx context.Context, tx *gorm.DB) (int64, error)
  CountAtOrBelow(ctx context.Context, tx *gorm.DB, finalScore int) (int64, error)
}

type dnaScoreRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDNAScoreRepo(db *gorm.DB, baseLog *logger.Logger) DNAScoreRepo {
  return &dnaScoreRepo{db: db, log: baseLog.With("repo", "DNAScoreRepo")}
}

func (r *dnaScoreRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.DNAScore, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if userID == uuid.Nil {
    return nil, nil
  }
  var score types.DNAScore
  err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Limit(1).
    Find(&score).Error
  if err != nil {
    return nil, err
  }
  if score.ID == uuid.Nil {
    return nil, nil
  }
  return &score, nil
}

// Upsert keeps exactly one live row per user. Tier-change bookkeeping
// (previous_tier, tier_changed_at) is decided by the caller before the write.
func (r *dnaScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, score *types.DNAScore) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if score == nil || score.UserID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns: []clause.Column{{Name: "user_id"}},
      DoUpdates: clause.AssignmentColumns([]string{
        "final_score",
        "rarity_tier",
        "percentile_rank",
        "trait_rarity_score",
        "profile_depth_score",
        "behavioral_score",
        "content_originality_score",
        "cultural_variance_score",
        "component_breakdown",
        "rare_traits",
        "unique_behaviors",
        "approved_insights_count",
        "days_active",
        "algorithm_version",
        "previous_tier",
        "tier_changed_at",
        "last_calculated_at",
        "updated_at",
      }),
    }).
    Create(score).Error
}

func (r *dnaScoreRepo) CountTotal(ctx context.Context, tx *gorm.DB) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.DNAScore{}).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *dnaScoreRepo) CountAtOrBelow(ctx context.Context, tx *gorm.DB, finalScore int) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.DNAScore{}).
    Where("final_score <= ?", finalScore).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}
